package softfloat

// orderKey maps a non-NaN value onto an integer order in which -0 < +0.
func orderKey(bits uint32) int64 {
	if bits&SignMask != 0 {
		return -int64(bits&^SignMask) - 1
	}
	return int64(bits)
}

func isZero(bits uint32) bool {
	return bits&^SignMask == 0
}

func minMax(a, b uint32, wantMax bool) (uint32, Flags) {
	var flags Flags
	if IsSignalingNaN(a) || IsSignalingNaN(b) {
		flags = Invalid
	}

	switch {
	case IsNaN(a) && IsNaN(b):
		return CanonicalNaN, flags
	case IsNaN(a):
		return b, flags
	case IsNaN(b):
		return a, flags
	}

	if (orderKey(a) < orderKey(b)) != wantMax {
		return a, flags
	}
	return b, flags
}

// Min returns the smaller operand. A NaN operand is ignored in favour of a
// number, and -0 is smaller than +0.
func Min(a, b uint32) (uint32, Flags) {
	return minMax(a, b, false)
}

// Max returns the larger operand. A NaN operand is ignored in favour of a
// number, and +0 is larger than -0.
func Max(a, b uint32) (uint32, Flags) {
	return minMax(a, b, true)
}

// Eq is the quiet equality comparison: only signaling NaNs raise Invalid.
func Eq(a, b uint32) (bool, Flags) {
	if IsNaN(a) || IsNaN(b) {
		if IsSignalingNaN(a) || IsSignalingNaN(b) {
			return false, Invalid
		}
		return false, 0
	}

	if isZero(a) && isZero(b) {
		return true, 0
	}
	return a == b, 0
}

// Lt is the signaling less-than comparison: any NaN raises Invalid.
func Lt(a, b uint32) (bool, Flags) {
	if IsNaN(a) || IsNaN(b) {
		return false, Invalid
	}

	if isZero(a) && isZero(b) {
		return false, 0
	}
	return orderKey(a) < orderKey(b), 0
}

// Le is the signaling less-or-equal comparison: any NaN raises Invalid.
func Le(a, b uint32) (bool, Flags) {
	if IsNaN(a) || IsNaN(b) {
		return false, Invalid
	}

	if isZero(a) && isZero(b) {
		return true, 0
	}
	return orderKey(a) <= orderKey(b), 0
}

// Class bits returned by Classify.
const (
	ClassNegInf       uint32 = 1 << 0
	ClassNegNormal    uint32 = 1 << 1
	ClassNegSubnormal uint32 = 1 << 2
	ClassNegZero      uint32 = 1 << 3
	ClassPosZero      uint32 = 1 << 4
	ClassPosSubnormal uint32 = 1 << 5
	ClassPosNormal    uint32 = 1 << 6
	ClassPosInf       uint32 = 1 << 7
	ClassSignalingNaN uint32 = 1 << 8
	ClassQuietNaN     uint32 = 1 << 9
)

// Classify returns the one-hot fclass mask of a.
func Classify(a uint32) uint32 {
	neg := a&SignMask != 0
	exp := (a >> 23) & 0xFF
	frac := a & 0x7FFFFF

	pick := func(negBit, posBit uint32) uint32 {
		if neg {
			return negBit
		}
		return posBit
	}

	switch {
	case IsSignalingNaN(a):
		return ClassSignalingNaN
	case IsNaN(a):
		return ClassQuietNaN
	case exp == 0xFF:
		return pick(ClassNegInf, ClassPosInf)
	case exp == 0 && frac == 0:
		return pick(ClassNegZero, ClassPosZero)
	case exp == 0:
		return pick(ClassNegSubnormal, ClassPosSubnormal)
	default:
		return pick(ClassNegNormal, ClassPosNormal)
	}
}

// SignInject returns a with the sign of b.
func SignInject(a, b uint32) uint32 {
	return a&^SignMask | b&SignMask
}

// SignInjectNeg returns a with the opposite of b's sign.
func SignInjectNeg(a, b uint32) uint32 {
	return a&^SignMask | ^b&SignMask
}

// SignInjectXor returns a with its sign XORed with b's sign.
func SignInjectXor(a, b uint32) uint32 {
	return a ^ b&SignMask
}
