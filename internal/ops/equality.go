package ops

import (
	"math"
	"math/big"

	"github.com/pmatos/jsse/internal/runtime"
)

// StrictEquals implements === (§4.7): same type required; NaN != NaN;
// +0 == -0; strings compare by code-unit sequence; objects by identity.
func StrictEquals(a, b runtime.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case runtime.KindUndefined, runtime.KindNull:
		return true
	case runtime.KindBoolean:
		return a.AsBool() == b.AsBool()
	case runtime.KindNumber:
		return a.AsNumber() == b.AsNumber() // NaN!=NaN, +0==-0 both fall out of IEEE754 ==
	case runtime.KindBigInt:
		return a.AsBigInt().Cmp(b.AsBigInt()) == 0
	case runtime.KindString:
		return a.AsString().Equal(b.AsString())
	case runtime.KindSymbol:
		return a.AsSymbol() == b.AsSymbol()
	case runtime.KindObject:
		return a.AsObjectID() == b.AsObjectID()
	}
	return false
}

// AbstractEquals implements == (§4.7): same-type defers to strict
// equality; null==undefined; Number<->String coerces the string; Boolean
// coerces to Number; Object<->primitive coerces the object via
// ToPrimitive(default).
func AbstractEquals(h Host, a, b runtime.Value) (bool, error) {
	if a.Kind() == b.Kind() {
		return StrictEquals(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}
	if a.IsNumber() && b.IsString() {
		bn, err := ToNumber(h, b)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, a, bn)
	}
	if a.IsString() && b.IsNumber() {
		an, err := ToNumber(h, a)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, an, b)
	}
	if a.IsBigInt() && b.IsString() {
		bi, ok := bigIntFromString(b.AsString().Go())
		if !ok {
			return false, nil
		}
		return a.AsBigInt().Cmp(bi) == 0, nil
	}
	if a.IsString() && b.IsBigInt() {
		return AbstractEquals(h, b, a)
	}
	if a.IsBoolean() {
		an, err := ToNumber(h, a)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, an, b)
	}
	if b.IsBoolean() {
		bn, err := ToNumber(h, b)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, a, bn)
	}
	if (a.IsNumber() || a.IsString() || a.IsBigInt() || a.IsSymbol()) && b.IsObject() {
		bp, err := ToPrimitive(h, b, HintDefault)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, a, bp)
	}
	if a.IsObject() && (b.IsNumber() || b.IsString() || b.IsBigInt() || b.IsSymbol()) {
		ap, err := ToPrimitive(h, a, HintDefault)
		if err != nil {
			return false, err
		}
		return AbstractEquals(h, ap, b)
	}
	if a.IsBigInt() && b.IsNumber() {
		return bigIntEqualsNumber(a.AsBigInt(), b.AsNumber()), nil
	}
	if a.IsNumber() && b.IsBigInt() {
		return bigIntEqualsNumber(b.AsBigInt(), a.AsNumber()), nil
	}
	return false, nil
}

func bigIntEqualsNumber(bi *big.Int, n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return false
	}
	nb := new(big.Int)
	big.NewFloat(n).Int(nb)
	return bi.Cmp(nb) == 0
}

func bigIntFromString(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

// LessThanResult is the three-valued result of AbstractRelationalComparison
// (§4.7): Undefined when either operand is NaN.
type LessThanResult int

const (
	LessThanFalse LessThanResult = iota
	LessThanTrue
	LessThanUndefined
)

// AbstractRelationalComparison implements `<` with the leftFirst operand
// evaluation order (§4.7); strings compare lexicographically by code unit.
func AbstractRelationalComparison(h Host, left, right runtime.Value, leftFirst bool) (LessThanResult, error) {
	var px, py runtime.Value
	var err error
	if leftFirst {
		px, err = ToPrimitive(h, left, HintNumber)
		if err != nil {
			return LessThanFalse, err
		}
		py, err = ToPrimitive(h, right, HintNumber)
		if err != nil {
			return LessThanFalse, err
		}
	} else {
		py, err = ToPrimitive(h, right, HintNumber)
		if err != nil {
			return LessThanFalse, err
		}
		px, err = ToPrimitive(h, left, HintNumber)
		if err != nil {
			return LessThanFalse, err
		}
	}
	if px.IsString() && py.IsString() {
		c := px.AsString().Compare(py.AsString())
		if c < 0 {
			return LessThanTrue, nil
		}
		return LessThanFalse, nil
	}
	if px.IsBigInt() && py.IsString() {
		bi, ok := bigIntFromString(py.AsString().Go())
		if !ok {
			return LessThanUndefined, nil
		}
		if px.AsBigInt().Cmp(bi) < 0 {
			return LessThanTrue, nil
		}
		return LessThanFalse, nil
	}
	if px.IsString() && py.IsBigInt() {
		bi, ok := bigIntFromString(px.AsString().Go())
		if !ok {
			return LessThanUndefined, nil
		}
		if bi.Cmp(py.AsBigInt()) < 0 {
			return LessThanTrue, nil
		}
		return LessThanFalse, nil
	}
	if px.IsBigInt() && py.IsBigInt() {
		if px.AsBigInt().Cmp(py.AsBigInt()) < 0 {
			return LessThanTrue, nil
		}
		return LessThanFalse, nil
	}
	// Mixed numeric: coerce strings to Number, BigInt<->Number compares exactly.
	if px.IsBigInt() || py.IsBigInt() {
		return bigIntNumberLess(px, py)
	}
	nx, err := ToNumber(h, px)
	if err != nil {
		return LessThanFalse, err
	}
	ny, err := ToNumber(h, py)
	if err != nil {
		return LessThanFalse, err
	}
	if math.IsNaN(nx.AsNumber()) || math.IsNaN(ny.AsNumber()) {
		return LessThanUndefined, nil
	}
	if nx.AsNumber() < ny.AsNumber() {
		return LessThanTrue, nil
	}
	return LessThanFalse, nil
}

func bigIntNumberLess(px, py runtime.Value) (LessThanResult, error) {
	var bi *big.Int
	var n float64
	var biIsLeft bool
	if px.IsBigInt() {
		bi, n, biIsLeft = px.AsBigInt(), py.AsNumber(), true
	} else {
		bi, n, biIsLeft = py.AsBigInt(), px.AsNumber(), false
	}
	if math.IsNaN(n) {
		return LessThanUndefined, nil
	}
	bf := new(big.Float).SetInt(bi)
	nf := big.NewFloat(n)
	c := bf.Cmp(nf)
	less := c < 0
	if !biIsLeft {
		less = c > 0
	}
	if less {
		return LessThanTrue, nil
	}
	return LessThanFalse, nil
}
