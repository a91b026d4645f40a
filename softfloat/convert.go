package softfloat

import "math/big"

// toInt converts a to an integer of the given width, saturating on
// overflow. The result is returned as a signed big integer.
func toInt(a uint32, rm RoundingMode, width uint, isSigned bool) (*big.Int, Flags) {
	var lo, hi *big.Int
	if isSigned {
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width-1), big.NewInt(1))
		lo = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), width-1))
	} else {
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1))
		lo = big.NewInt(0)
	}

	x := unpack(a)
	switch x.class {
	case classQNaN, classSNaN:
		return hi, Invalid
	case classInf:
		if x.sign {
			return lo, Invalid
		}
		return hi, Invalid
	case classZero:
		return big.NewInt(0), 0
	}

	mag, inexact := roundAt(x.sign, x.mant, x.exp, false, 0, rm)
	v := mag
	if x.sign {
		v = new(big.Int).Neg(mag)
	}

	if v.Cmp(lo) < 0 {
		return lo, Invalid
	}
	if v.Cmp(hi) > 0 {
		return hi, Invalid
	}
	if inexact {
		return v, Inexact
	}
	return v, 0
}

// ToInt32 converts a to a signed 32-bit integer, sign-extended to 64 bits.
func ToInt32(a uint32, rm RoundingMode) (uint64, Flags) {
	v, flags := toInt(a, rm, 32, true)
	return uint64(v.Int64()), flags
}

// ToUint32 converts a to an unsigned 32-bit integer. The result is
// sign-extended from bit 31.
func ToUint32(a uint32, rm RoundingMode) (uint64, Flags) {
	v, flags := toInt(a, rm, 32, false)
	return uint64(int64(int32(uint32(v.Uint64())))), flags
}

// ToInt64 converts a to a signed 64-bit integer.
func ToInt64(a uint32, rm RoundingMode) (uint64, Flags) {
	v, flags := toInt(a, rm, 64, true)
	return uint64(v.Int64()), flags
}

// ToUint64 converts a to an unsigned 64-bit integer.
func ToUint64(a uint32, rm RoundingMode) (uint64, Flags) {
	v, flags := toInt(a, rm, 64, false)
	return v.Uint64(), flags
}

func fromInt(neg bool, mag uint64, rm RoundingMode) (uint32, Flags) {
	if mag == 0 {
		return 0, 0
	}
	return pack(neg, new(big.Int).SetUint64(mag), 0, false, rm)
}

// FromInt32 converts the low 32 bits of v, read as a signed integer.
func FromInt32(v uint64, rm RoundingMode) (uint32, Flags) {
	i := int64(int32(uint32(v)))
	if i < 0 {
		return fromInt(true, uint64(-i), rm)
	}
	return fromInt(false, uint64(i), rm)
}

// FromUint32 converts the low 32 bits of v, read as an unsigned integer.
func FromUint32(v uint64, rm RoundingMode) (uint32, Flags) {
	return fromInt(false, uint64(uint32(v)), rm)
}

// FromInt64 converts v read as a signed 64-bit integer.
func FromInt64(v uint64, rm RoundingMode) (uint32, Flags) {
	i := int64(v)
	if i < 0 {
		// -i overflows for the minimum value, but its bit pattern is
		// still the right magnitude.
		return fromInt(true, uint64(-i), rm)
	}
	return fromInt(false, v, rm)
}

// FromUint64 converts v read as an unsigned 64-bit integer.
func FromUint64(v uint64, rm RoundingMode) (uint32, Flags) {
	return fromInt(false, v, rm)
}
