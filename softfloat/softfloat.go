// Package softfloat implements IEEE 754 binary32 arithmetic with an explicit
// rounding mode and accrued exception flags, as required by the RISC-V F
// extension.
//
// Operands and results are raw binary32 bit patterns. Every NaN result is the
// canonical quiet NaN. Tininess is detected after rounding.
package softfloat

import "math/big"

// RoundingMode is a RISC-V rounding-mode encoding.
type RoundingMode uint8

// Rounding modes.
const (
	RoundNearestEven RoundingMode = 0b000
	RoundTowardZero  RoundingMode = 0b001
	RoundDown        RoundingMode = 0b010
	RoundUp          RoundingMode = 0b011
	RoundNearestMax  RoundingMode = 0b100

	// RoundDynamic selects the mode held in the frm CSR. It is only valid
	// in an instruction's rm field.
	RoundDynamic RoundingMode = 0b111
)

// Valid reports whether r names a static rounding mode.
func (r RoundingMode) Valid() bool {
	return r <= RoundNearestMax
}

// Flags is a set of IEEE exception flags in fflags bit order.
type Flags uint8

// Exception flags.
const (
	Inexact   Flags = 1 << 0 // NX
	Underflow Flags = 1 << 1 // UF
	Overflow  Flags = 1 << 2 // OF
	DivByZero Flags = 1 << 3 // DZ
	Invalid   Flags = 1 << 4 // NV
)

// Special bit patterns.
const (
	CanonicalNaN uint32 = 0x7FC00000
	PosInf       uint32 = 0x7F800000
	NegInf       uint32 = 0xFF800000
	MaxFinite    uint32 = 0x7F7FFFFF
	SignMask     uint32 = 0x80000000
)

const (
	precision  = 24
	emin       = -126
	minQuantum = emin - (precision - 1) // exponent of the smallest subnormal
	expBias    = 127
)

type class uint8

const (
	classZero class = iota
	classFinite
	classInf
	classQNaN
	classSNaN
)

// unpacked is a binary32 value as (-1)^sign * mant * 2^exp.
type unpacked struct {
	class class
	sign  bool
	mant  *big.Int
	exp   int
}

func unpack(bits uint32) unpacked {
	u := unpacked{sign: bits&SignMask != 0}
	e := int(bits>>23) & 0xFF
	frac := bits & 0x7FFFFF

	switch {
	case e == 0xFF && frac == 0:
		u.class = classInf
	case e == 0xFF && frac&0x400000 != 0:
		u.class = classQNaN
	case e == 0xFF:
		u.class = classSNaN
	case e == 0 && frac == 0:
		u.class = classZero
	case e == 0:
		u.class = classFinite
		u.mant = big.NewInt(int64(frac))
		u.exp = minQuantum
	default:
		u.class = classFinite
		u.mant = big.NewInt(int64(frac | 1<<23))
		u.exp = e - expBias - (precision - 1)
	}

	return u
}

func (u unpacked) isNaN() bool {
	return u.class == classQNaN || u.class == classSNaN
}

func signBit(sign bool) uint32 {
	if sign {
		return SignMask
	}
	return 0
}

func zero(sign bool) uint32 {
	return signBit(sign)
}

func inf(sign bool) uint32 {
	return signBit(sign) | PosInf
}

// IsNaN reports whether bits encodes a NaN.
func IsNaN(bits uint32) bool {
	return bits&0x7F800000 == 0x7F800000 && bits&0x7FFFFF != 0
}

// IsSignalingNaN reports whether bits encodes a signaling NaN.
func IsSignalingNaN(bits uint32) bool {
	return IsNaN(bits) && bits&0x400000 == 0
}

// nanResult returns the canonical NaN, raising Invalid if any operand is a
// signaling NaN.
func nanResult(operands ...unpacked) (uint32, Flags) {
	for _, o := range operands {
		if o.class == classSNaN {
			return CanonicalNaN, Invalid
		}
	}
	return CanonicalNaN, 0
}

// shouldIncrement decides whether a truncated magnitude rounds up. cmp
// compares the discarded part with half an ulp.
func shouldIncrement(sign bool, rm RoundingMode, cmp int, odd, inexact bool) bool {
	switch rm {
	case RoundNearestEven:
		return cmp > 0 || (cmp == 0 && odd)
	case RoundTowardZero:
		return false
	case RoundDown:
		return inexact && sign
	case RoundUp:
		return inexact && !sign
	case RoundNearestMax:
		return cmp >= 0 && inexact
	}
	return false
}

// roundAt rounds mant*2^exp (plus a sticky amount below its last bit) to a
// multiple of 2^q and returns the multiplier.
func roundAt(sign bool, mant *big.Int, exp int, sticky bool, q int, rm RoundingMode) (*big.Int, bool) {
	if exp >= q {
		sig := new(big.Int).Lsh(mant, uint(exp-q))
		if sticky && shouldIncrement(sign, rm, -1, false, true) {
			sig.Add(sig, big.NewInt(1))
		}
		return sig, sticky
	}

	d := uint(q - exp)
	sig := new(big.Int).Rsh(mant, d)
	rem := new(big.Int).Sub(mant, new(big.Int).Lsh(sig, d))
	half := new(big.Int).Lsh(big.NewInt(1), d-1)

	cmp := rem.Cmp(half)
	if cmp == 0 && sticky {
		cmp = 1
	}
	inexact := rem.Sign() != 0 || sticky

	if shouldIncrement(sign, rm, cmp, sig.Bit(0) == 1, inexact) {
		sig.Add(sig, big.NewInt(1))
	}
	return sig, inexact
}

func overflowResult(sign bool, rm RoundingMode) uint32 {
	switch rm {
	case RoundTowardZero:
		return signBit(sign) | MaxFinite
	case RoundDown:
		if !sign {
			return MaxFinite
		}
	case RoundUp:
		if sign {
			return SignMask | MaxFinite
		}
	}
	return inf(sign)
}

// pack rounds the exact nonzero value (-1)^sign * mant * 2^exp to binary32.
// When sticky is set the true magnitude lies strictly above mant*2^exp but
// below the next value of mant; callers keep mant wide enough that this gap
// sits below the rounding position.
func pack(sign bool, mant *big.Int, exp int, sticky bool, rm RoundingMode) (uint32, Flags) {
	lead := exp + mant.BitLen() - 1
	q := lead - (precision - 1)
	if q < minQuantum {
		q = minQuantum
	}

	sigBig, inexact := roundAt(sign, mant, exp, sticky, q, rm)
	sig := sigBig.Uint64()

	var flags Flags
	if inexact {
		flags |= Inexact
	}

	if sig == 1<<precision {
		sig >>= 1
		q++
	}

	if lead < emin && inexact {
		tiny := true
		if lead == emin-1 {
			unbounded, _ := roundAt(sign, mant, exp, sticky, lead-(precision-1), rm)
			tiny = unbounded.BitLen() <= precision
		}
		if tiny {
			flags |= Underflow
		}
	}

	if sig >= 1<<(precision-1) {
		biased := q + (precision - 1) + expBias
		if biased >= 0xFF {
			return overflowResult(sign, rm), flags | Overflow | Inexact
		}
		return signBit(sign) | uint32(biased)<<23 | uint32(sig)&0x7FFFFF, flags
	}

	return signBit(sign) | uint32(sig), flags
}

// exactZero is the sign of an exact zero sum of operands with different
// signs.
func exactZero(rm RoundingMode) uint32 {
	return zero(rm == RoundDown)
}
