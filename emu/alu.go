package emu

import (
	"math"
	"math/bits"

	"github.com/sarchlab/rvsim/insts"
)

// ALU implements RISC-V integer arithmetic, logic, shift, multiply and
// divide operations. All arithmetic wraps modulo 2^XLEN.
type ALU struct {
	xlen int
}

// NewALU creates an ALU for a hart of the given XLEN.
func NewALU(xlen int) *ALU {
	return &ALU{xlen: xlen}
}

// immOps maps register-immediate operations onto their register-register
// forms.
var immOps = map[insts.Op]insts.Op{
	insts.OpADDI:  insts.OpADD,
	insts.OpSLTI:  insts.OpSLT,
	insts.OpSLTIU: insts.OpSLTU,
	insts.OpXORI:  insts.OpXOR,
	insts.OpORI:   insts.OpOR,
	insts.OpANDI:  insts.OpAND,
	insts.OpSLLI:  insts.OpSLL,
	insts.OpSRLI:  insts.OpSRL,
	insts.OpSRAI:  insts.OpSRA,
	insts.OpADDIW: insts.OpADDW,
	insts.OpSLLIW: insts.OpSLLW,
	insts.OpSRLIW: insts.OpSRLW,
	insts.OpSRAIW: insts.OpSRAW,
}

// RegisterForm returns the register-register operation an immediate
// operation computes, or op itself.
func RegisterForm(op insts.Op) insts.Op {
	if r, ok := immOps[op]; ok {
		return r
	}
	return op
}

func sext32(v uint64) uint64 {
	return uint64(int64(int32(v)))
}

func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Compute performs a register-register operation of the base or M
// extension. It reports false for operations it does not implement.
func (a *ALU) Compute(op insts.Op, x, y uint64) (uint64, bool) {
	if v, ok := a.base(op, x, y); ok {
		return v, true
	}
	if v, ok := a.word(op, x, y); ok {
		return v, true
	}
	return a.mulDiv(op, x, y)
}

func (a *ALU) base(op insts.Op, x, y uint64) (uint64, bool) {
	shamt := insts.ShiftAmount(y, a.xlen)

	switch op {
	case insts.OpADD:
		return x + y, true
	case insts.OpSUB:
		return x - y, true
	case insts.OpSLL:
		return x << shamt, true
	case insts.OpSLT:
		return boolToReg(int64(x) < int64(y)), true
	case insts.OpSLTU:
		return boolToReg(x < y), true
	case insts.OpXOR:
		return x ^ y, true
	case insts.OpSRL:
		if a.xlen == 32 {
			return uint64(uint32(x) >> shamt), true
		}
		return x >> shamt, true
	case insts.OpSRA:
		if a.xlen == 32 {
			return uint64(int64(int32(x) >> shamt)), true
		}
		return uint64(int64(x) >> shamt), true
	case insts.OpOR:
		return x | y, true
	case insts.OpAND:
		return x & y, true
	}
	return 0, false
}

// word performs the RV64 *W operations on the low 32 bits of the operands
// and sign-extends the result.
func (a *ALU) word(op insts.Op, x, y uint64) (uint64, bool) {
	shamt := insts.ShiftAmount(y, 32)
	x32, y32 := uint32(x), uint32(y)

	switch op {
	case insts.OpADDW:
		return sext32(uint64(x32 + y32)), true
	case insts.OpSUBW:
		return sext32(uint64(x32 - y32)), true
	case insts.OpSLLW:
		return sext32(uint64(x32 << shamt)), true
	case insts.OpSRLW:
		return sext32(uint64(x32 >> shamt)), true
	case insts.OpSRAW:
		return uint64(int64(int32(x32) >> shamt)), true
	case insts.OpMULW:
		return sext32(uint64(x32 * y32)), true
	case insts.OpDIVW:
		return uint64(int64(divSigned32(int32(x32), int32(y32)))), true
	case insts.OpDIVUW:
		return sext32(uint64(divUnsigned32(x32, y32))), true
	case insts.OpREMW:
		return uint64(int64(remSigned32(int32(x32), int32(y32)))), true
	case insts.OpREMUW:
		return sext32(uint64(remUnsigned32(x32, y32))), true
	}
	return 0, false
}

func (a *ALU) mulDiv(op insts.Op, x, y uint64) (uint64, bool) {
	if a.xlen == 32 {
		return a.mulDiv32(op, uint32(x), uint32(y))
	}

	switch op {
	case insts.OpMUL:
		return x * y, true
	case insts.OpMULH:
		return mulhSigned(int64(x), int64(y)), true
	case insts.OpMULHSU:
		return mulhSignedUnsigned(int64(x), y), true
	case insts.OpMULHU:
		hi, _ := bits.Mul64(x, y)
		return hi, true
	case insts.OpDIV:
		return uint64(divSigned64(int64(x), int64(y))), true
	case insts.OpDIVU:
		return divUnsigned64(x, y), true
	case insts.OpREM:
		return uint64(remSigned64(int64(x), int64(y))), true
	case insts.OpREMU:
		return remUnsigned64(x, y), true
	}
	return 0, false
}

func (a *ALU) mulDiv32(op insts.Op, x, y uint32) (uint64, bool) {
	switch op {
	case insts.OpMUL:
		return sext32(uint64(x * y)), true
	case insts.OpMULH:
		return sext32(uint64(int64(int32(x)) * int64(int32(y)) >> 32)), true
	case insts.OpMULHSU:
		return sext32(uint64(int64(int32(x)) * int64(y) >> 32)), true
	case insts.OpMULHU:
		return sext32(uint64(x) * uint64(y) >> 32), true
	case insts.OpDIV:
		return uint64(int64(divSigned32(int32(x), int32(y)))), true
	case insts.OpDIVU:
		return sext32(uint64(divUnsigned32(x, y))), true
	case insts.OpREM:
		return uint64(int64(remSigned32(int32(x), int32(y)))), true
	case insts.OpREMU:
		return sext32(uint64(remUnsigned32(x, y))), true
	}
	return 0, false
}

// mulhSigned returns the upper 64 bits of the 128-bit signed product.
func mulhSigned(x, y int64) uint64 {
	hi, _ := bits.Mul64(uint64(x), uint64(y))
	if x < 0 {
		hi -= uint64(y)
	}
	if y < 0 {
		hi -= uint64(x)
	}
	return hi
}

// mulhSignedUnsigned returns the upper 64 bits of signed x times unsigned y.
func mulhSignedUnsigned(x int64, y uint64) uint64 {
	hi, _ := bits.Mul64(uint64(x), y)
	if x < 0 {
		hi -= y
	}
	return hi
}

// Division by zero returns all ones with the dividend as remainder; signed
// overflow returns the dividend with remainder zero.

func divSigned64(x, y int64) int64 {
	switch {
	case y == 0:
		return -1
	case x == math.MinInt64 && y == -1:
		return x
	}
	return x / y
}

func remSigned64(x, y int64) int64 {
	switch {
	case y == 0:
		return x
	case x == math.MinInt64 && y == -1:
		return 0
	}
	return x % y
}

func divUnsigned64(x, y uint64) uint64 {
	if y == 0 {
		return math.MaxUint64
	}
	return x / y
}

func remUnsigned64(x, y uint64) uint64 {
	if y == 0 {
		return x
	}
	return x % y
}

func divSigned32(x, y int32) int32 {
	switch {
	case y == 0:
		return -1
	case x == math.MinInt32 && y == -1:
		return x
	}
	return x / y
}

func remSigned32(x, y int32) int32 {
	switch {
	case y == 0:
		return x
	case x == math.MinInt32 && y == -1:
		return 0
	}
	return x % y
}

func divUnsigned32(x, y uint32) uint32 {
	if y == 0 {
		return math.MaxUint32
	}
	return x / y
}

func remUnsigned32(x, y uint32) uint32 {
	if y == 0 {
		return x
	}
	return x % y
}
