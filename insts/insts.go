// Package insts provides RISC-V instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into structured
// instruction representations. Decoding is split by ISA extension family:
//   - Privileged: uret, sret, mret, wfi, sfence.vma
//   - Zifencei: fence.i
//   - Zicsr: csrrw, csrrs, csrrc and their immediate forms
//   - RV32I / RV64I: base integer instructions
//   - RV32M / RV64M: integer multiply and divide
//   - RV32F / RV64F: single-precision floating point
//
// Usage:
//
//	decoder := insts.NewDecoder(64)
//	inst := decoder.Decode(0x02a00513) // addi a0, zero, 42
//	fmt.Printf("Op: %v, Rd: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Imm)
package insts

// Extension identifies the ISA extension family an instruction belongs to.
type Extension uint8

// Extension families, in decode priority order.
const (
	ExtUnknown Extension = iota
	ExtPrivileged
	ExtZifencei
	ExtZicsr
	ExtRV32I
	ExtRV64I
	ExtRV32M
	ExtRV64M
	ExtRV32F
	ExtRV64F
)

var extensionNames = [...]string{
	ExtUnknown:    "unknown",
	ExtPrivileged: "privileged",
	ExtZifencei:   "Zifencei",
	ExtZicsr:      "Zicsr",
	ExtRV32I:      "RV32I",
	ExtRV64I:      "RV64I",
	ExtRV32M:      "RV32M",
	ExtRV64M:      "RV64M",
	ExtRV32F:      "RV32F",
	ExtRV64F:      "RV64F",
}

func (e Extension) String() string {
	if int(e) < len(extensionNames) {
		return extensionNames[e]
	}
	return "unknown"
}

// Is64Only reports whether the family exists only on RV64 harts.
func (e Extension) Is64Only() bool {
	return e == ExtRV64I || e == ExtRV64M || e == ExtRV64F
}

// Families returns the extension families supported by a hart of the given
// XLEN, in decode priority order.
func Families(xlen int) []Extension {
	all := []Extension{
		ExtPrivileged,
		ExtZifencei,
		ExtZicsr,
		ExtRV32I,
		ExtRV64I,
		ExtRV32M,
		ExtRV64M,
		ExtRV32F,
		ExtRV64F,
	}

	if xlen == 64 {
		return all
	}

	families := make([]Extension, 0, len(all))
	for _, e := range all {
		if !e.Is64Only() {
			families = append(families, e)
		}
	}
	return families
}

// XRegNames holds the ABI names of the integer registers.
var XRegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// FRegNames holds the ABI names of the floating-point registers.
var FRegNames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// Integer register indices with special roles.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegA0   = 10
)
