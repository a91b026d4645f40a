package softfloat

import "math/big"

// Extra quotient and root bits computed beyond the operand width so the
// remainder only ever contributes a sticky bit.
const guardBits = 80

// Add returns a + b.
func Add(a, b uint32, rm RoundingMode) (uint32, Flags) {
	return addUnpacked(unpack(a), unpack(b), rm)
}

// Sub returns a - b.
func Sub(a, b uint32, rm RoundingMode) (uint32, Flags) {
	return addUnpacked(unpack(a), unpack(b^SignMask), rm)
}

func addUnpacked(x, y unpacked, rm RoundingMode) (uint32, Flags) {
	switch {
	case x.isNaN() || y.isNaN():
		return nanResult(x, y)
	case x.class == classInf && y.class == classInf:
		if x.sign != y.sign {
			return CanonicalNaN, Invalid
		}
		return inf(x.sign), 0
	case x.class == classInf:
		return inf(x.sign), 0
	case y.class == classInf:
		return inf(y.sign), 0
	case x.class == classZero && y.class == classZero:
		if x.sign == y.sign {
			return zero(x.sign), 0
		}
		return exactZero(rm), 0
	}

	return sumFinite(x, y, rm)
}

// sumFinite adds two values of which at least one is finite and nonzero
// and neither is infinite or NaN.
func sumFinite(x, y unpacked, rm RoundingMode) (uint32, Flags) {
	if x.class == classZero {
		return pack(y.sign, y.mant, y.exp, false, rm)
	}
	if y.class == classZero {
		return pack(x.sign, x.mant, x.exp, false, rm)
	}

	exp := x.exp
	if y.exp < exp {
		exp = y.exp
	}

	sx := signed(x, exp)
	sy := signed(y, exp)
	sum := sx.Add(sx, sy)

	if sum.Sign() == 0 {
		return exactZero(rm), 0
	}

	neg := sum.Sign() < 0
	return pack(neg, sum.Abs(sum), exp, false, rm)
}

// signed returns the value of u as a signed multiple of 2^exp, where
// exp <= u.exp.
func signed(u unpacked, exp int) *big.Int {
	v := new(big.Int).Lsh(u.mant, uint(u.exp-exp))
	if u.sign {
		v.Neg(v)
	}
	return v
}

// Mul returns a * b.
func Mul(a, b uint32, rm RoundingMode) (uint32, Flags) {
	x, y := unpack(a), unpack(b)
	sign := x.sign != y.sign

	switch {
	case x.isNaN() || y.isNaN():
		return nanResult(x, y)
	case (x.class == classInf && y.class == classZero) ||
		(x.class == classZero && y.class == classInf):
		return CanonicalNaN, Invalid
	case x.class == classInf || y.class == classInf:
		return inf(sign), 0
	case x.class == classZero || y.class == classZero:
		return zero(sign), 0
	}

	prod := new(big.Int).Mul(x.mant, y.mant)
	return pack(sign, prod, x.exp+y.exp, false, rm)
}

// MulAdd returns a*b + c with a single rounding.
func MulAdd(a, b, c uint32, rm RoundingMode) (uint32, Flags) {
	x, y, z := unpack(a), unpack(b), unpack(c)
	sign := x.sign != y.sign

	if x.isNaN() || y.isNaN() {
		return nanResult(x, y, z)
	}

	if (x.class == classInf && y.class == classZero) ||
		(x.class == classZero && y.class == classInf) {
		return CanonicalNaN, Invalid
	}

	if z.isNaN() {
		return nanResult(z)
	}

	if x.class == classInf || y.class == classInf {
		if z.class == classInf && z.sign != sign {
			return CanonicalNaN, Invalid
		}
		return inf(sign), 0
	}

	if z.class == classInf {
		return inf(z.sign), 0
	}

	p := unpacked{class: classZero, sign: sign}
	if x.class == classFinite && y.class == classFinite {
		p.class = classFinite
		p.mant = new(big.Int).Mul(x.mant, y.mant)
		p.exp = x.exp + y.exp
	}

	if p.class == classZero && z.class == classZero {
		if p.sign == z.sign {
			return zero(p.sign), 0
		}
		return exactZero(rm), 0
	}

	return sumFinite(p, z, rm)
}

// MulSub returns a*b - c with a single rounding.
func MulSub(a, b, c uint32, rm RoundingMode) (uint32, Flags) {
	return MulAdd(a, b, c^SignMask, rm)
}

// NegMulSub returns -(a*b) + c with a single rounding.
func NegMulSub(a, b, c uint32, rm RoundingMode) (uint32, Flags) {
	return MulAdd(a^SignMask, b, c, rm)
}

// NegMulAdd returns -(a*b) - c with a single rounding.
func NegMulAdd(a, b, c uint32, rm RoundingMode) (uint32, Flags) {
	return MulAdd(a^SignMask, b, c^SignMask, rm)
}

// Div returns a / b.
func Div(a, b uint32, rm RoundingMode) (uint32, Flags) {
	x, y := unpack(a), unpack(b)
	sign := x.sign != y.sign

	switch {
	case x.isNaN() || y.isNaN():
		return nanResult(x, y)
	case x.class == classInf && y.class == classInf:
		return CanonicalNaN, Invalid
	case x.class == classZero && y.class == classZero:
		return CanonicalNaN, Invalid
	case x.class == classInf:
		return inf(sign), 0
	case y.class == classInf:
		return zero(sign), 0
	case y.class == classZero:
		return inf(sign), DivByZero
	case x.class == classZero:
		return zero(sign), 0
	}

	num := new(big.Int).Lsh(x.mant, guardBits)
	quo, rem := new(big.Int).QuoRem(num, y.mant, new(big.Int))
	return pack(sign, quo, x.exp-y.exp-guardBits, rem.Sign() != 0, rm)
}

// Sqrt returns the square root of a.
func Sqrt(a uint32, rm RoundingMode) (uint32, Flags) {
	x := unpack(a)

	switch {
	case x.isNaN():
		return nanResult(x)
	case x.class == classZero:
		return a, 0
	case x.sign:
		return CanonicalNaN, Invalid
	case x.class == classInf:
		return PosInf, 0
	}

	shift := guardBits
	if (x.exp-shift)%2 != 0 {
		shift++
	}

	radicand := new(big.Int).Lsh(x.mant, uint(shift))
	root := new(big.Int).Sqrt(radicand)
	rem := new(big.Int).Sub(radicand, new(big.Int).Mul(root, root))

	return pack(false, root, (x.exp-shift)/2, rem.Sign() != 0, rm)
}
