// Package compliance runs riscv-tests images against the emulator and
// reports which of them pass.
//
// Each image signals completion by writing to its tohost word: 1 means
// pass, any other non-zero value v means check v>>1 failed.
package compliance

import "strings"

func suite(prefix string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + "-" + n
	}
	return out
}

var rvui = []string{
	"add", "addi", "and", "andi", "auipc", "beq", "bge", "bgeu", "blt",
	"bltu", "bne", "fence_i", "jal", "jalr", "lb", "lbu", "lh", "lhu",
	"lui", "lw", "or", "ori", "sb", "sh", "simple", "sll", "slli", "slt",
	"slti", "sltiu", "sltu", "sra", "srai", "srl", "srli", "sub", "sw",
	"xor", "xori",
}

var rvum = []string{"div", "divu", "mul", "mulh", "mulhsu", "mulhu", "rem", "remu"}

var rvuf = []string{
	"fadd", "fclass", "fcmp", "fcvt", "fcvt_w", "fdiv", "fmadd", "fmin",
	"ldst", "move", "recoding",
}

// Test lists of the riscv-tests physical-memory environment.
var (
	RV32UI = suite("rv32ui-p", rvui...)
	RV64UI = suite("rv64ui-p", append(rvui,
		"addiw", "addw", "ld", "lwu", "sd", "slliw", "sllw", "sraiw",
		"sraw", "srliw", "srlw", "subw")...)
	RV32UM = suite("rv32um-p", rvum...)
	RV64UM = suite("rv64um-p", append(rvum,
		"divuw", "divw", "mulw", "remuw", "remw")...)
	RV32UF = suite("rv32uf-p", rvuf...)
	RV64UF = suite("rv64uf-p", rvuf...)
)

// Suites maps a suite name, such as "rv64ui", to its test list.
var Suites = map[string][]string{
	"rv32ui": RV32UI,
	"rv64ui": RV64UI,
	"rv32um": RV32UM,
	"rv64um": RV64UM,
	"rv32uf": RV32UF,
	"rv64uf": RV64UF,
}

// XLENOf infers the register width from a test name's rv32/rv64 prefix.
// Names without a prefix default to 64.
func XLENOf(name string) int {
	if strings.HasPrefix(name, "rv32") {
		return 32
	}
	return 64
}
