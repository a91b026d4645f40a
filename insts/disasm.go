package insts

import "fmt"

var opNames = [numOps]string{
	OpUnknown:   "unknown",
	OpURET:      "uret",
	OpSRET:      "sret",
	OpMRET:      "mret",
	OpWFI:       "wfi",
	OpSFENCEVMA: "sfence.vma",
	OpFENCEI:    "fence.i",
	OpCSRRW:     "csrrw",
	OpCSRRS:     "csrrs",
	OpCSRRC:     "csrrc",
	OpCSRRWI:    "csrrwi",
	OpCSRRSI:    "csrrsi",
	OpCSRRCI:    "csrrci",
	OpLUI:       "lui",
	OpAUIPC:     "auipc",
	OpJAL:       "jal",
	OpJALR:      "jalr",
	OpBEQ:       "beq",
	OpBNE:       "bne",
	OpBLT:       "blt",
	OpBGE:       "bge",
	OpBLTU:      "bltu",
	OpBGEU:      "bgeu",
	OpLB:        "lb",
	OpLH:        "lh",
	OpLW:        "lw",
	OpLBU:       "lbu",
	OpLHU:       "lhu",
	OpSB:        "sb",
	OpSH:        "sh",
	OpSW:        "sw",
	OpADDI:      "addi",
	OpSLTI:      "slti",
	OpSLTIU:     "sltiu",
	OpXORI:      "xori",
	OpORI:       "ori",
	OpANDI:      "andi",
	OpSLLI:      "slli",
	OpSRLI:      "srli",
	OpSRAI:      "srai",
	OpADD:       "add",
	OpSUB:       "sub",
	OpSLL:       "sll",
	OpSLT:       "slt",
	OpSLTU:      "sltu",
	OpXOR:       "xor",
	OpSRL:       "srl",
	OpSRA:       "sra",
	OpOR:        "or",
	OpAND:       "and",
	OpFENCE:     "fence",
	OpECALL:     "ecall",
	OpEBREAK:    "ebreak",
	OpLWU:       "lwu",
	OpLD:        "ld",
	OpSD:        "sd",
	OpADDIW:     "addiw",
	OpSLLIW:     "slliw",
	OpSRLIW:     "srliw",
	OpSRAIW:     "sraiw",
	OpADDW:      "addw",
	OpSUBW:      "subw",
	OpSLLW:      "sllw",
	OpSRLW:      "srlw",
	OpSRAW:      "sraw",
	OpMUL:       "mul",
	OpMULH:      "mulh",
	OpMULHSU:    "mulhsu",
	OpMULHU:     "mulhu",
	OpDIV:       "div",
	OpDIVU:      "divu",
	OpREM:       "rem",
	OpREMU:      "remu",
	OpMULW:      "mulw",
	OpDIVW:      "divw",
	OpDIVUW:     "divuw",
	OpREMW:      "remw",
	OpREMUW:     "remuw",
	OpFLW:       "flw",
	OpFSW:       "fsw",
	OpFMADDS:    "fmadd.s",
	OpFMSUBS:    "fmsub.s",
	OpFNMSUBS:   "fnmsub.s",
	OpFNMADDS:   "fnmadd.s",
	OpFADDS:     "fadd.s",
	OpFSUBS:     "fsub.s",
	OpFMULS:     "fmul.s",
	OpFDIVS:     "fdiv.s",
	OpFSQRTS:    "fsqrt.s",
	OpFSGNJS:    "fsgnj.s",
	OpFSGNJNS:   "fsgnjn.s",
	OpFSGNJXS:   "fsgnjx.s",
	OpFMINS:     "fmin.s",
	OpFMAXS:     "fmax.s",
	OpFCVTWS:    "fcvt.w.s",
	OpFCVTWUS:   "fcvt.wu.s",
	OpFMVXW:     "fmv.x.w",
	OpFEQS:      "feq.s",
	OpFLTS:      "flt.s",
	OpFLES:      "fle.s",
	OpFCLASSS:   "fclass.s",
	OpFCVTSW:    "fcvt.s.w",
	OpFCVTSWU:   "fcvt.s.wu",
	OpFMVWX:     "fmv.w.x",
	OpFCVTLS:    "fcvt.l.s",
	OpFCVTLUS:   "fcvt.lu.s",
	OpFCVTSL:    "fcvt.s.l",
	OpFCVTSLU:   "fcvt.s.lu",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint16(o))
}

// Register-file selectors for operand printing.
const (
	regX = iota
	regF
)

// operandFiles gives the register files of rd, rs1, rs2 for floating-point
// ops whose operands do not all live in the f registers.
var operandFiles = map[Op][3]int{
	OpFLW:     {regF, regX, regX},
	OpFSW:     {regX, regX, regF},
	OpFCVTWS:  {regX, regF, regF},
	OpFCVTWUS: {regX, regF, regF},
	OpFCVTLS:  {regX, regF, regF},
	OpFCVTLUS: {regX, regF, regF},
	OpFMVXW:   {regX, regF, regF},
	OpFCLASSS: {regX, regF, regF},
	OpFEQS:    {regX, regF, regF},
	OpFLTS:    {regX, regF, regF},
	OpFLES:    {regX, regF, regF},
	OpFCVTSW:  {regF, regX, regX},
	OpFCVTSWU: {regF, regX, regX},
	OpFCVTSL:  {regF, regX, regX},
	OpFCVTSLU: {regF, regX, regX},
	OpFMVWX:   {regF, regX, regX},
}

func (i *Instruction) regNames() (string, string, string, string) {
	files := [3]int{regX, regX, regX}
	if i.Ext == ExtRV32F || i.Ext == ExtRV64F {
		files = [3]int{regF, regF, regF}
		if f, ok := operandFiles[i.Op]; ok {
			files = f
		}
	}

	name := func(file int, r uint8) string {
		if file == regF {
			return FRegNames[r]
		}
		return XRegNames[r]
	}

	return name(files[0], i.Rd), name(files[1], i.Rs1), name(files[2], i.Rs2), FRegNames[i.Rs3]
}

// String returns the assembly form of the instruction.
func (i *Instruction) String() string {
	if i.Op == OpUnknown {
		return fmt.Sprintf("unknown 0x%08x", i.Raw)
	}

	rd, rs1, rs2, rs3 := i.regNames()
	name := i.Op.String()

	switch i.Op {
	case OpURET, OpSRET, OpMRET, OpWFI, OpFENCEI, OpFENCE, OpECALL, OpEBREAK:
		return name
	case OpSFENCEVMA:
		return fmt.Sprintf("%s %s, %s", name, rs1, rs2)
	case OpCSRRW, OpCSRRS, OpCSRRC:
		return fmt.Sprintf("%s %s, 0x%03x, %s", name, rd, i.CSR, rs1)
	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		return fmt.Sprintf("%s %s, 0x%03x, %d", name, rd, i.CSR, i.Rs1)
	case OpJALR, OpLB, OpLH, OpLW, OpLBU, OpLHU, OpLWU, OpLD, OpFLW:
		return fmt.Sprintf("%s %s, %d(%s)", name, rd, i.Imm, rs1)
	case OpSLLI, OpSRLI, OpSRAI, OpSLLIW, OpSRLIW, OpSRAIW:
		return fmt.Sprintf("%s %s, %s, %d", name, rd, rs1, i.Shamt())
	case OpFSQRTS, OpFCVTWS, OpFCVTWUS, OpFCVTLS, OpFCVTLUS, OpFMVXW,
		OpFCLASSS, OpFCVTSW, OpFCVTSWU, OpFCVTSL, OpFCVTSLU, OpFMVWX:
		return fmt.Sprintf("%s %s, %s", name, rd, rs1)
	}

	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", name, rd, rs1, rs2)
	case FormatR4:
		return fmt.Sprintf("%s %s, %s, %s, %s", name, rd, rs1, rs2, rs3)
	case FormatI:
		return fmt.Sprintf("%s %s, %s, %d", name, rd, rs1, i.Imm)
	case FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", name, rs2, i.Imm, rs1)
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", name, rs1, rs2, i.Imm)
	case FormatU:
		return fmt.Sprintf("%s %s, 0x%x", name, rd, uint64(i.Imm)>>12&0xFFFFF)
	case FormatJ:
		return fmt.Sprintf("%s %s, %d", name, rd, i.Imm)
	}

	return name
}
