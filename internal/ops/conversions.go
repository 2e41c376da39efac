package ops

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pmatos/jsse/internal/runtime"
)

// ToBoolean never throws (§4.7).
func ToBoolean(v runtime.Value) bool {
	switch v.Kind() {
	case runtime.KindUndefined, runtime.KindNull:
		return false
	case runtime.KindBoolean:
		return v.AsBool()
	case runtime.KindNumber:
		n := v.AsNumber()
		return n != 0 && !math.IsNaN(n)
	case runtime.KindBigInt:
		return v.AsBigInt().Sign() != 0
	case runtime.KindString:
		return v.AsString().Len() > 0
	case runtime.KindSymbol, runtime.KindObject:
		return true
	}
	return false
}

// Hint selects the preferred primitive type for ToPrimitive (§4.7).
type Hint string

const (
	HintDefault Hint = "default"
	HintNumber  Hint = "number"
	HintString  Hint = "string"
)

// ToPrimitive converts v to a non-Object value. Objects consult
// Symbol.toPrimitive first, then fall back to the valueOf/toString pair
// ordered by hint (§4.7).
func ToPrimitive(h Host, v runtime.Value, hint Hint) (runtime.Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	obj := h.Heap().Get(v.AsObjectID())
	if obj == nil {
		return runtime.Undefined, nil
	}
	if exotic, ok := lookupMethod(h, v, runtime.SymToPrimitive); ok && h.IsCallable(exotic) {
		hintStr := string(hint)
		if hintStr == "" {
			hintStr = string(HintDefault)
		}
		res := h.Call(exotic, v, []runtime.Value{runtime.StringFromGo(hintStr)})
		if res.Type == runtime.Throw {
			return runtime.Undefined, &Thrown{Completion: res}
		}
		if res.Value.IsObject() {
			return runtime.Undefined, throwType(h, "Cannot convert object to primitive value")
		}
		return res.Value, nil
	}
	methods := []string{"valueOf", "toString"}
	if hint == HintString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		if fn, ok := lookupMethod(h, v, name); ok && h.IsCallable(fn) {
			res := h.Call(fn, v, nil)
			if res.Type == runtime.Throw {
				return runtime.Undefined, &Thrown{Completion: res}
			}
			if !res.Value.IsObject() {
				return res.Value, nil
			}
		}
	}
	return runtime.Undefined, throwType(h, "Cannot convert object to primitive value")
}

// lookupMethod walks v's prototype chain for a property named name,
// returning its value (which may or may not be callable).
func lookupMethod(h Host, v runtime.Value, name string) (runtime.Value, bool) {
	if !v.IsObject() {
		return runtime.Undefined, false
	}
	heap := h.Heap()
	id := v.AsObjectID()
	for {
		obj := heap.Get(id)
		if obj == nil {
			return runtime.Undefined, false
		}
		if desc, ok := obj.GetOwn(name); ok {
			if desc.IsAccessor {
				if h.IsCallable(desc.Get) {
					res := h.Call(desc.Get, v, nil)
					return res.Value, true
				}
				return runtime.Undefined, false
			}
			return desc.Value, true
		}
		proto := obj.Prototype()
		if proto == nil {
			return runtime.Undefined, false
		}
		id = *proto
	}
}

// ToNumber implements the §4.7 table. Object inputs invoke ToPrimitive
// with the Number hint and then recurse.
func ToNumber(h Host, v runtime.Value) (runtime.Value, error) {
	switch v.Kind() {
	case runtime.KindUndefined:
		return runtime.Number(math.NaN()), nil
	case runtime.KindNull:
		return runtime.Number(0), nil
	case runtime.KindBoolean:
		if v.AsBool() {
			return runtime.Number(1), nil
		}
		return runtime.Number(0), nil
	case runtime.KindNumber:
		return v, nil
	case runtime.KindBigInt:
		return runtime.Undefined, throwType(h, "Cannot convert a BigInt value to a number")
	case runtime.KindString:
		return runtime.Number(StringToNumber(v.AsString().Go())), nil
	case runtime.KindSymbol:
		return runtime.Undefined, throwType(h, "Cannot convert a Symbol value to a number")
	case runtime.KindObject:
		prim, err := ToPrimitive(h, v, HintNumber)
		if err != nil {
			return runtime.Undefined, err
		}
		return ToNumber(h, prim)
	}
	return runtime.Number(math.NaN()), nil
}

// StringToNumber implements the StringNumericLiteral grammar used by
// ToNumber and the Number constructor: decimal, hex/octal/binary
// prefixes, whitespace-trimmed, empty string is +0.
func StringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	lower := strings.ToLower(t)
	neg := false
	body := lower
	if strings.HasPrefix(body, "+") {
		body = body[1:]
	} else if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}
	var base int
	switch {
	case strings.HasPrefix(body, "0x"):
		base = 16
		body = body[2:]
	case strings.HasPrefix(body, "0o"):
		base = 8
		body = body[2:]
	case strings.HasPrefix(body, "0b"):
		base = 2
		body = body[2:]
	}
	if base != 0 {
		if body == "" {
			return math.NaN()
		}
		n, err := strconv.ParseUint(body, base, 64)
		if err != nil {
			bi, ok := new(big.Int).SetString(body, base)
			if !ok {
				return math.NaN()
			}
			f := new(big.Float).SetInt(bi)
			val, _ := f.Float64()
			if neg {
				val = -val
			}
			return val
		}
		val := float64(n)
		if neg {
			val = -val
		}
		return val
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN() // ParseFloat would accept "inf"/"nan" spellings JS rejects
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToStringValue implements ToString (§4.7); Number uses Go's
// shortest-roundtrip formatting, matching the spec's ryu-style intent.
func ToStringValue(h Host, v runtime.Value) (*runtime.JsString, error) {
	switch v.Kind() {
	case runtime.KindUndefined:
		return runtime.NewJsStringFromUTF8("undefined"), nil
	case runtime.KindNull:
		return runtime.NewJsStringFromUTF8("null"), nil
	case runtime.KindBoolean:
		if v.AsBool() {
			return runtime.NewJsStringFromUTF8("true"), nil
		}
		return runtime.NewJsStringFromUTF8("false"), nil
	case runtime.KindNumber:
		return runtime.NewJsStringFromUTF8(NumberToString(v.AsNumber())), nil
	case runtime.KindBigInt:
		return runtime.NewJsStringFromUTF8(v.AsBigInt().String()), nil
	case runtime.KindString:
		return v.AsString(), nil
	case runtime.KindSymbol:
		return nil, throwType(h, "Cannot convert a Symbol value to a string")
	case runtime.KindObject:
		prim, err := ToPrimitive(h, v, HintString)
		if err != nil {
			return nil, err
		}
		return ToStringValue(h, prim)
	}
	return runtime.NewJsStringFromUTF8(""), nil
}

// NumberToString formats n the way JS's Number.prototype.toString() does
// for the default radix: shortest round-trip decimal, "NaN"/"Infinity"/
// "-Infinity" for the non-finite cases, "0"/"-0" rendered as "0".
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		return "0"
	}
	if a := math.Abs(n); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	// Exponent form: Go pads the exponent to two digits ("1e-07"), JS does not.
	s := strconv.FormatFloat(n, 'e', -1, 64)
	return strings.Replace(s, "e-0", "e-", 1)
}

// ToInt32 / ToUint32 (§4.7): NaN/Inf/+-0 map to 0, else truncate toward
// zero and take the low 32 bits.
func ToInt32(h Host, v runtime.Value) (int32, error) {
	num, err := ToNumber(h, v)
	if err != nil {
		return 0, err
	}
	return numberToInt32(num.AsNumber()), nil
}

func numberToInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	trunc := math.Trunc(n)
	mod := math.Mod(trunc, 4294967296)
	if mod < 0 {
		mod += 4294967296
	}
	u32 := uint32(mod)
	return int32(u32)
}

func ToUint32(h Host, v runtime.Value) (uint32, error) {
	num, err := ToNumber(h, v)
	if err != nil {
		return 0, err
	}
	return numberToUint32(num.AsNumber()), nil
}

func numberToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	trunc := math.Trunc(n)
	mod := math.Mod(trunc, 4294967296)
	if mod < 0 {
		mod += 4294967296
	}
	return uint32(mod)
}

// ToIntegerOrInfinity truncates toward zero, NaN becomes 0.
func ToIntegerOrInfinity(h Host, v runtime.Value) (float64, error) {
	num, err := ToNumber(h, v)
	if err != nil {
		return 0, err
	}
	n := num.AsNumber()
	if math.IsNaN(n) {
		return 0, nil
	}
	if math.IsInf(n, 0) {
		return n, nil
	}
	return math.Trunc(n), nil
}

// ToIndex (§4.7): RangeError if <0 or > 2^53-1.
func ToIndex(h Host, v runtime.Value) (int64, error) {
	n, err := ToIntegerOrInfinity(h, v)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxSafeInteger {
		return 0, throwRange(h, fmt.Sprintf("Invalid index: %v", n))
	}
	return int64(n), nil
}

const maxSafeInteger = 9007199254740991 // 2^53 - 1

// ToObject (§4.7): Undefined/Null throw TypeError; the evaluator supplies
// the actual boxed-wrapper construction via the BoxPrimitive callback,
// since constructing wrapper objects requires heap allocation and
// intrinsic prototypes the ops package does not own.
type BoxPrimitive func(h Host, v runtime.Value) (runtime.Value, error)

func ToObject(h Host, v runtime.Value, box BoxPrimitive) (runtime.Value, error) {
	switch v.Kind() {
	case runtime.KindUndefined, runtime.KindNull:
		return runtime.Undefined, throwType(h, "Cannot convert undefined or null to object")
	case runtime.KindObject:
		return v, nil
	default:
		return box(h, v)
	}
}
