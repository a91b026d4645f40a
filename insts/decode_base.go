package insts

var branchOps = map[uint8]Op{
	0b000: OpBEQ,
	0b001: OpBNE,
	0b100: OpBLT,
	0b101: OpBGE,
	0b110: OpBLTU,
	0b111: OpBGEU,
}

var loadOps = map[uint8]Op{
	0b000: OpLB,
	0b001: OpLH,
	0b010: OpLW,
	0b100: OpLBU,
	0b101: OpLHU,
}

var storeOps = map[uint8]Op{
	0b000: OpSB,
	0b001: OpSH,
	0b010: OpSW,
}

var opImmOps = map[uint8]Op{
	0b000: OpADDI,
	0b010: OpSLTI,
	0b011: OpSLTIU,
	0b100: OpXORI,
	0b110: OpORI,
	0b111: OpANDI,
}

// opOps is keyed by funct7<<3 | funct3.
var opOps = map[uint16]Op{
	0b0000000_000: OpADD,
	0b0100000_000: OpSUB,
	0b0000000_001: OpSLL,
	0b0000000_010: OpSLT,
	0b0000000_011: OpSLTU,
	0b0000000_100: OpXOR,
	0b0000000_101: OpSRL,
	0b0100000_101: OpSRA,
	0b0000000_110: OpOR,
	0b0000000_111: OpAND,
}

// op32Ops is keyed by funct7<<3 | funct3.
var op32Ops = map[uint16]Op{
	0b0000000_000: OpADDW,
	0b0100000_000: OpSUBW,
	0b0000000_001: OpSLLW,
	0b0000000_101: OpSRLW,
	0b0100000_101: OpSRAW,
}

// DecodeRV32I decodes the RV32I base integer instructions. Immediate shifts
// carry a 6-bit shift amount; RV32 harts reject shamt[5] at execution.
func DecodeRV32I(word uint32) (*Instruction, bool) {
	f3 := funct3(word)

	switch opcode(word) {
	case OpcodeLUI:
		return newInst(word, ExtRV32I, OpLUI, FormatU), true
	case OpcodeAUIPC:
		return newInst(word, ExtRV32I, OpAUIPC, FormatU), true
	case OpcodeJAL:
		return newInst(word, ExtRV32I, OpJAL, FormatJ), true
	case OpcodeJALR:
		if f3 == 0 {
			return newInst(word, ExtRV32I, OpJALR, FormatI), true
		}
	case OpcodeBranch:
		if op, ok := branchOps[f3]; ok {
			return newInst(word, ExtRV32I, op, FormatB), true
		}
	case OpcodeLoad:
		if op, ok := loadOps[f3]; ok {
			return newInst(word, ExtRV32I, op, FormatI), true
		}
	case OpcodeStore:
		if op, ok := storeOps[f3]; ok {
			return newInst(word, ExtRV32I, op, FormatS), true
		}
	case OpcodeOpImm:
		return decodeOpImm(word)
	case OpcodeOp:
		key := uint16(funct7(word))<<3 | uint16(f3)
		if op, ok := opOps[key]; ok {
			return newInst(word, ExtRV32I, op, FormatR), true
		}
	case OpcodeMiscMem:
		if f3 == 0 {
			return newInst(word, ExtRV32I, OpFENCE, FormatI), true
		}
	case OpcodeSystem:
		if f3 != 0 || rd(word) != 0 || rs1(word) != 0 {
			return nil, false
		}
		switch word >> 20 {
		case 0:
			return newInst(word, ExtRV32I, OpECALL, FormatI), true
		case 1:
			return newInst(word, ExtRV32I, OpEBREAK, FormatI), true
		}
	}

	return nil, false
}

func decodeOpImm(word uint32) (*Instruction, bool) {
	f3 := funct3(word)
	if op, ok := opImmOps[f3]; ok {
		return newInst(word, ExtRV32I, op, FormatI), true
	}

	funct6 := word >> 26
	switch {
	case f3 == 0b001 && funct6 == 0:
		return newInst(word, ExtRV32I, OpSLLI, FormatI), true
	case f3 == 0b101 && funct6 == 0:
		return newInst(word, ExtRV32I, OpSRLI, FormatI), true
	case f3 == 0b101 && funct6 == 0b010000:
		return newInst(word, ExtRV32I, OpSRAI, FormatI), true
	}

	return nil, false
}

// DecodeRV64I decodes the instructions RV64I adds to the base set.
func DecodeRV64I(word uint32) (*Instruction, bool) {
	f3 := funct3(word)
	f7 := funct7(word)

	switch opcode(word) {
	case OpcodeLoad:
		switch f3 {
		case 0b011:
			return newInst(word, ExtRV64I, OpLD, FormatI), true
		case 0b110:
			return newInst(word, ExtRV64I, OpLWU, FormatI), true
		}
	case OpcodeStore:
		if f3 == 0b011 {
			return newInst(word, ExtRV64I, OpSD, FormatS), true
		}
	case OpcodeOpImm32:
		switch {
		case f3 == 0b000:
			return newInst(word, ExtRV64I, OpADDIW, FormatI), true
		case f3 == 0b001 && f7 == 0:
			return newInst(word, ExtRV64I, OpSLLIW, FormatI), true
		case f3 == 0b101 && f7 == 0:
			return newInst(word, ExtRV64I, OpSRLIW, FormatI), true
		case f3 == 0b101 && f7 == 0b0100000:
			return newInst(word, ExtRV64I, OpSRAIW, FormatI), true
		}
	case OpcodeOp32:
		key := uint16(f7)<<3 | uint16(f3)
		if op, ok := op32Ops[key]; ok {
			return newInst(word, ExtRV64I, op, FormatR), true
		}
	}

	return nil, false
}

// DecodeRV32M decodes integer multiply and divide on full registers.
func DecodeRV32M(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeOp || funct7(word) != 0b0000001 {
		return nil, false
	}

	ops := [8]Op{OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU}
	return newInst(word, ExtRV32M, ops[funct3(word)], FormatR), true
}

// DecodeRV64M decodes the word-sized multiply and divide instructions.
func DecodeRV64M(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeOp32 || funct7(word) != 0b0000001 {
		return nil, false
	}

	var op Op
	switch funct3(word) {
	case 0b000:
		op = OpMULW
	case 0b100:
		op = OpDIVW
	case 0b101:
		op = OpDIVUW
	case 0b110:
		op = OpREMW
	case 0b111:
		op = OpREMUW
	default:
		return nil, false
	}

	return newInst(word, ExtRV64M, op, FormatR), true
}
