package insts

// System-opcode funct7 values for the privileged instructions.
const (
	privFunct7User       = 0b0000000
	privFunct7Supervisor = 0b0001000
	privFunct7Machine    = 0b0011000
	privFunct7SFenceVMA  = 0b0001001
)

// DecodePrivileged decodes trap-return, wfi and sfence.vma. The rs2 field
// selects between returns (2) and wfi (5), so ecall and ebreak, which share
// funct7 0 with uret, fall through to the base decoder.
func DecodePrivileged(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeSystem || funct3(word) != 0 || rd(word) != 0 {
		return nil, false
	}

	f7 := funct7(word)
	if f7 == privFunct7SFenceVMA {
		return newInst(word, ExtPrivileged, OpSFENCEVMA, FormatR), true
	}

	if rs1(word) != 0 {
		return nil, false
	}

	var op Op
	switch {
	case f7 == privFunct7User && rs2(word) == 2:
		op = OpURET
	case f7 == privFunct7Supervisor && rs2(word) == 2:
		op = OpSRET
	case f7 == privFunct7Supervisor && rs2(word) == 5:
		op = OpWFI
	case f7 == privFunct7Machine && rs2(word) == 2:
		op = OpMRET
	default:
		return nil, false
	}

	return newInst(word, ExtPrivileged, op, FormatR), true
}

// DecodeZifencei decodes fence.i.
func DecodeZifencei(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeMiscMem || funct3(word) != 0b001 {
		return nil, false
	}
	return newInst(word, ExtZifencei, OpFENCEI, FormatI), true
}

// DecodeZicsr decodes the CSR read-modify-write instructions.
func DecodeZicsr(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeSystem {
		return nil, false
	}

	var op Op
	switch funct3(word) {
	case 0b001:
		op = OpCSRRW
	case 0b010:
		op = OpCSRRS
	case 0b011:
		op = OpCSRRC
	case 0b101:
		op = OpCSRRWI
	case 0b110:
		op = OpCSRRSI
	case 0b111:
		op = OpCSRRCI
	default:
		return nil, false
	}

	inst := newInst(word, ExtZicsr, op, FormatI)
	inst.CSR = uint16(word >> 20)
	return inst, true
}

// IsImmediateCSR reports whether op takes its source operand from the rs1
// field as a 5-bit unsigned immediate.
func IsImmediateCSR(op Op) bool {
	return op == OpCSRRWI || op == OpCSRRSI || op == OpCSRRCI
}
