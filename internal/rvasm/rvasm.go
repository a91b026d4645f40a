// Package rvasm assembles RISC-V instruction words field by field. It is
// shared by the test suites that build small programs in memory.
package rvasm

import "github.com/sarchlab/rvsim/insts"

// EncodeR assembles an R-format word.
func EncodeR(opc uint32, rd, f3, rs1, rs2, f7 uint8) uint32 {
	return uint32(f7)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(f3)<<12 | uint32(rd)<<7 | opc
}

// EncodeR4 assembles an R4-format word (single-precision fused ops).
func EncodeR4(opc uint32, rd, rm, rs1, rs2, rs3 uint8) uint32 {
	return uint32(rs3)<<27 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(rm)<<12 | uint32(rd)<<7 | opc
}

// EncodeI assembles an I-format word. Only the low 12 bits of imm are used.
func EncodeI(opc uint32, rd, f3, rs1 uint8, imm int64) uint32 {
	return uint32(imm&0xFFF)<<20 | uint32(rs1)<<15 | uint32(f3)<<12 |
		uint32(rd)<<7 | opc
}

// EncodeS assembles an S-format word.
func EncodeS(opc uint32, f3, rs1, rs2 uint8, imm int64) uint32 {
	v := uint32(imm & 0xFFF)
	return (v>>5)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(f3)<<12 | (v&0x1F)<<7 | opc
}

// EncodeB assembles a B-format word. imm is a byte offset with bit 0 clear.
func EncodeB(opc uint32, f3, rs1, rs2 uint8, imm int64) uint32 {
	v := uint32(imm & 0x1FFF)
	return (v>>12&0x1)<<31 | (v>>5&0x3F)<<25 | uint32(rs2)<<20 |
		uint32(rs1)<<15 | uint32(f3)<<12 | (v>>1&0xF)<<8 | (v>>11&0x1)<<7 | opc
}

// EncodeU assembles a U-format word. imm holds the value of the upper
// 20 bits, unshifted.
func EncodeU(opc uint32, rd uint8, imm uint32) uint32 {
	return (imm&0xFFFFF)<<12 | uint32(rd)<<7 | opc
}

// EncodeJ assembles a J-format word. imm is a byte offset with bit 0 clear.
func EncodeJ(opc uint32, rd uint8, imm int64) uint32 {
	v := uint32(imm & 0x1FFFFF)
	return (v>>20&0x1)<<31 | (v>>1&0x3FF)<<21 | (v>>11&0x1)<<20 |
		(v>>12&0xFF)<<12 | uint32(rd)<<7 | opc
}

// EncodeCSR assembles a Zicsr word. For the immediate forms src is the
// 5-bit zimm; otherwise it is rs1.
func EncodeCSR(f3, rd, src uint8, csr uint16) uint32 {
	return uint32(csr&0xFFF)<<20 | uint32(src)<<15 | uint32(f3)<<12 |
		uint32(rd)<<7 | insts.OpcodeSystem
}
