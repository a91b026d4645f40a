// Package insts provides RISC-V instruction definitions and decoding.
package insts

// Op represents a RISC-V operation.
type Op uint16

// RISC-V operations, grouped by extension family.
const (
	OpUnknown Op = iota

	// Privileged
	OpURET
	OpSRET
	OpMRET
	OpWFI
	OpSFENCEVMA

	// Zifencei
	OpFENCEI

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// RV32I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK

	// RV64I
	OpLWU
	OpLD
	OpSD
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	// RV32M
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// RV64M
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// RV32F
	OpFLW
	OpFSW
	OpFMADDS
	OpFMSUBS
	OpFNMSUBS
	OpFNMADDS
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFCVTWS
	OpFCVTWUS
	OpFMVXW
	OpFEQS
	OpFLTS
	OpFLES
	OpFCLASSS
	OpFCVTSW
	OpFCVTSWU
	OpFMVWX

	// RV64F
	OpFCVTLS
	OpFCVTLUS
	OpFCVTSL
	OpFCVTSLU

	numOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // register-register
	FormatR4             // three sources (fused multiply-add)
	FormatI              // short immediate and loads
	FormatS              // stores
	FormatB              // conditional branches
	FormatU              // upper immediate
	FormatJ              // unconditional jump
)

// Instruction represents a decoded RISC-V instruction.
type Instruction struct {
	Op     Op        // Operation
	Format Format    // Encoding format
	Ext    Extension // Extension family that decoded the word
	Raw    uint32    // Original instruction word

	Rd     uint8 // Destination register
	Rs1    uint8 // First source register (zimm for immediate CSR forms)
	Rs2    uint8 // Second source register
	Rs3    uint8 // Third source register (R4 format)
	Funct3 uint8 // funct3 field; the rounding mode for floating-point ops
	Funct7 uint8 // funct7 field

	// Imm is the sign-extended immediate. U-format immediates already
	// include the 12-bit left shift.
	Imm int64

	// CSR is the 12-bit CSR address for Zicsr instructions.
	CSR uint16
}

// RM returns the rounding-mode field of a floating-point instruction.
func (i *Instruction) RM() uint8 {
	return i.Funct3
}

// Shamt returns the 6-bit shift amount of an immediate shift.
func (i *Instruction) Shamt() uint {
	return uint(i.Imm & 0x3F)
}

// DecodeFunc decodes one extension family. It reports false when the word
// does not belong to the family.
type DecodeFunc func(word uint32) (*Instruction, bool)

// DecodeFuncFor returns the decode function of an extension family.
func DecodeFuncFor(ext Extension) DecodeFunc {
	switch ext {
	case ExtPrivileged:
		return DecodePrivileged
	case ExtZifencei:
		return DecodeZifencei
	case ExtZicsr:
		return DecodeZicsr
	case ExtRV32I:
		return DecodeRV32I
	case ExtRV64I:
		return DecodeRV64I
	case ExtRV32M:
		return DecodeRV32M
	case ExtRV64M:
		return DecodeRV64M
	case ExtRV32F:
		return DecodeRV32F
	case ExtRV64F:
		return DecodeRV64F
	default:
		return nil
	}
}

// Decoder decodes RISC-V machine code by trying each supported extension
// family in priority order.
type Decoder struct {
	chain []DecodeFunc
}

// NewDecoder creates a decoder for a hart of the given XLEN (32 or 64).
func NewDecoder(xlen int) *Decoder {
	d := &Decoder{}
	for _, ext := range Families(xlen) {
		d.chain = append(d.chain, DecodeFuncFor(ext))
	}
	return d
}

// Decode decodes a 32-bit RISC-V instruction word. Words that no family
// recognizes decode to OpUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	for _, decode := range d.chain {
		if inst, ok := decode(word); ok {
			return inst
		}
	}

	return &Instruction{Op: OpUnknown, Format: FormatUnknown, Raw: word}
}

// newInst fills in every register field of word and the immediate of the
// given format.
func newInst(word uint32, ext Extension, op Op, format Format) *Instruction {
	inst := &Instruction{
		Op:     op,
		Format: format,
		Ext:    ext,
		Raw:    word,
		Rd:     rd(word),
		Rs1:    rs1(word),
		Rs2:    rs2(word),
		Rs3:    rs3(word),
		Funct3: funct3(word),
		Funct7: funct7(word),
	}

	switch format {
	case FormatI:
		inst.Imm = immI(word)
	case FormatS:
		inst.Imm = immS(word)
	case FormatB:
		inst.Imm = immB(word)
	case FormatU:
		inst.Imm = immU(word)
	case FormatJ:
		inst.Imm = immJ(word)
	}

	return inst
}
