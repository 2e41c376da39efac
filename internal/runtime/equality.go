package runtime

import "math"

// SameValue implements the SameValue algorithm (distinguishes +0/-0,
// treats NaN as equal to itself) used by Object.is and property-key
// comparisons.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		if a.n == 0 && b.n == 0 {
			return math.Signbit(a.n) == math.Signbit(b.n)
		}
		return a.n == b.n
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str.Equal(b.str)
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	}
	return false
}

// SameValueZero is SameValue except +0 equals -0 (used by Array.includes,
// Map/Set key comparison, TypedArray element search).
func SameValueZero(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	}
	return SameValue(a, b)
}
