package insts

// Floating-point funct7 values for the OP-FP opcode, single precision.
const (
	fpFunct7Add    = 0b0000000
	fpFunct7Sub    = 0b0000100
	fpFunct7Mul    = 0b0001000
	fpFunct7Div    = 0b0001100
	fpFunct7Sqrt   = 0b0101100
	fpFunct7Sgnj   = 0b0010000
	fpFunct7MinMax = 0b0010100
	fpFunct7CvtToI = 0b1100000
	fpFunct7MvXW   = 0b1110000
	fpFunct7Cmp    = 0b1010000
	fpFunct7CvtToF = 0b1101000
	fpFunct7MvWX   = 0b1111000
)

var fusedOps = map[uint32]Op{
	OpcodeMadd:  OpFMADDS,
	OpcodeMsub:  OpFMSUBS,
	OpcodeNmsub: OpFNMSUBS,
	OpcodeNmadd: OpFNMADDS,
}

// DecodeRV32F decodes the single-precision floating-point instructions.
func DecodeRV32F(word uint32) (*Instruction, bool) {
	f3 := funct3(word)
	op := opcode(word)

	switch op {
	case OpcodeLoadFP:
		if f3 == 0b010 {
			return newInst(word, ExtRV32F, OpFLW, FormatI), true
		}
		return nil, false
	case OpcodeStoreFP:
		if f3 == 0b010 {
			return newInst(word, ExtRV32F, OpFSW, FormatS), true
		}
		return nil, false
	case OpcodeMadd, OpcodeMsub, OpcodeNmsub, OpcodeNmadd:
		// fmt field, bits [26:25], is 00 for single precision.
		if (word>>25)&0x3 != 0 {
			return nil, false
		}
		return newInst(word, ExtRV32F, fusedOps[op], FormatR4), true
	case OpcodeOpFP:
		if fpOp, ok := decodeOpFP32(word); ok {
			return newInst(word, ExtRV32F, fpOp, FormatR), true
		}
	}

	return nil, false
}

func decodeOpFP32(word uint32) (Op, bool) {
	f3 := funct3(word)
	src2 := rs2(word)

	switch funct7(word) {
	case fpFunct7Add:
		return OpFADDS, true
	case fpFunct7Sub:
		return OpFSUBS, true
	case fpFunct7Mul:
		return OpFMULS, true
	case fpFunct7Div:
		return OpFDIVS, true
	case fpFunct7Sqrt:
		return OpFSQRTS, src2 == 0
	case fpFunct7Sgnj:
		switch f3 {
		case 0b000:
			return OpFSGNJS, true
		case 0b001:
			return OpFSGNJNS, true
		case 0b010:
			return OpFSGNJXS, true
		}
	case fpFunct7MinMax:
		switch f3 {
		case 0b000:
			return OpFMINS, true
		case 0b001:
			return OpFMAXS, true
		}
	case fpFunct7CvtToI:
		switch src2 {
		case 0:
			return OpFCVTWS, true
		case 1:
			return OpFCVTWUS, true
		}
	case fpFunct7MvXW:
		switch {
		case f3 == 0b000 && src2 == 0:
			return OpFMVXW, true
		case f3 == 0b001 && src2 == 0:
			return OpFCLASSS, true
		}
	case fpFunct7Cmp:
		switch f3 {
		case 0b010:
			return OpFEQS, true
		case 0b001:
			return OpFLTS, true
		case 0b000:
			return OpFLES, true
		}
	case fpFunct7CvtToF:
		switch src2 {
		case 0:
			return OpFCVTSW, true
		case 1:
			return OpFCVTSWU, true
		}
	case fpFunct7MvWX:
		if f3 == 0 && src2 == 0 {
			return OpFMVWX, true
		}
	}

	return OpUnknown, false
}

// DecodeRV64F decodes the single-precision conversions to and from 64-bit
// integers.
func DecodeRV64F(word uint32) (*Instruction, bool) {
	if opcode(word) != OpcodeOpFP {
		return nil, false
	}

	var op Op
	switch {
	case funct7(word) == fpFunct7CvtToI && rs2(word) == 2:
		op = OpFCVTLS
	case funct7(word) == fpFunct7CvtToI && rs2(word) == 3:
		op = OpFCVTLUS
	case funct7(word) == fpFunct7CvtToF && rs2(word) == 2:
		op = OpFCVTSL
	case funct7(word) == fpFunct7CvtToF && rs2(word) == 3:
		op = OpFCVTSLU
	default:
		return nil, false
	}

	return newInst(word, ExtRV64F, op, FormatR), true
}
