package insts

// Opcode field values (bits [6:0]).
const (
	OpcodeLoad    = 0b0000011
	OpcodeLoadFP  = 0b0000111
	OpcodeMiscMem = 0b0001111
	OpcodeOpImm   = 0b0010011
	OpcodeAUIPC   = 0b0010111
	OpcodeOpImm32 = 0b0011011
	OpcodeStore   = 0b0100011
	OpcodeStoreFP = 0b0100111
	OpcodeOp      = 0b0110011
	OpcodeLUI     = 0b0110111
	OpcodeOp32    = 0b0111011
	OpcodeMadd    = 0b1000011
	OpcodeMsub    = 0b1000111
	OpcodeNmsub   = 0b1001011
	OpcodeNmadd   = 0b1001111
	OpcodeOpFP    = 0b1010011
	OpcodeBranch  = 0b1100011
	OpcodeJALR    = 0b1100111
	OpcodeJAL     = 0b1101111
	OpcodeSystem  = 0b1110011
)

// SignExtend sign-extends the low nbits of value to 64 bits.
func SignExtend(value uint64, nbits uint) int64 {
	shift := 64 - nbits
	return int64(value<<shift) >> shift
}

// ShiftAmount masks a shift operand to the width used by a shift of the
// given operand size: 5 bits for 32-bit shifts, 6 bits for 64-bit shifts.
func ShiftAmount(value uint64, width int) uint {
	if width == 32 {
		return uint(value & 0x1F)
	}
	return uint(value & 0x3F)
}

func opcode(word uint32) uint32 { return word & 0x7F }
func rd(word uint32) uint8      { return uint8((word >> 7) & 0x1F) }
func funct3(word uint32) uint8  { return uint8((word >> 12) & 0x7) }
func rs1(word uint32) uint8     { return uint8((word >> 15) & 0x1F) }
func rs2(word uint32) uint8     { return uint8((word >> 20) & 0x1F) }
func rs3(word uint32) uint8     { return uint8(word >> 27) }
func funct7(word uint32) uint8  { return uint8(word >> 25) }

// immI extracts the I-format immediate: imm[11:0] = inst[31:20].
func immI(word uint32) int64 {
	return SignExtend(uint64(word>>20), 12)
}

// immS extracts the S-format immediate: imm[11:5] = inst[31:25],
// imm[4:0] = inst[11:7].
func immS(word uint32) int64 {
	v := (word>>25)<<5 | (word>>7)&0x1F
	return SignExtend(uint64(v), 12)
}

// immB extracts the B-format immediate: imm[12|10:5] = inst[31:25],
// imm[4:1|11] = inst[11:7].
func immB(word uint32) int64 {
	v := (word>>31)<<12 |
		((word>>7)&0x1)<<11 |
		((word>>25)&0x3F)<<5 |
		((word>>8)&0xF)<<1
	return SignExtend(uint64(v), 13)
}

// immU extracts the U-format immediate: imm[31:12] = inst[31:12].
func immU(word uint32) int64 {
	return int64(int32(word & 0xFFFFF000))
}

// immJ extracts the J-format immediate: imm[20|10:1|11|19:12] = inst[31:12].
func immJ(word uint32) int64 {
	v := (word>>31)<<20 |
		((word>>12)&0xFF)<<12 |
		((word>>20)&0x1)<<11 |
		((word>>21)&0x3FF)<<1
	return SignExtend(uint64(v), 21)
}
