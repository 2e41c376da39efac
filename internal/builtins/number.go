package builtins

import (
	"math"
	"strconv"

	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installNumber builds %Number.prototype% and the Number constructor
// (§4.9 item 5).
func (c *ctx) installNumber() {
	ev := c.ev
	proto := runtime.NewObject("Number", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	proto.PrimitiveValue = valuePtr(runtime.Number(0))
	ev.Realm.NumberPrototype = &protoID

	num := func(this runtime.Value) (float64, error) {
		if this.IsNumber() {
			return this.AsNumber(), nil
		}
		if this.IsObject() {
			if o := ev.Heap_.Get(this.AsObjectID()); o != nil && o.PrimitiveValue != nil && o.PrimitiveValue.IsNumber() {
				return o.PrimitiveValue.AsNumber(), nil
			}
		}
		return 0, typeErr(ev, "Number.prototype method called on non-number")
	}

	c.method(proto, "toString", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		n, err := num(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		radix := 10
		if len(args) > 0 && !args[0].IsUndefined() {
			radix = intArg(ev, args, 0)
		}
		if radix == 10 {
			return runtime.NormalC(runtime.StringFromGo(ops.NumberToString(n)))
		}
		return runtime.NormalC(runtime.StringFromGo(strconv.FormatInt(int64(n), radix)))
	})
	c.method(proto, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		n, err := num(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(n))
	})
	c.method(proto, "toFixed", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		n, err := num(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		digits := intArg(ev, args, 0)
		return runtime.NormalC(runtime.StringFromGo(strconv.FormatFloat(n, 'f', digits, 64)))
	})

	ctorFn := ev.NewNativeFunction("Number", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 {
			return runtime.NormalC(runtime.Number(0))
		}
		n, err := ev.ToNumber(args[0])
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(n)
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))
	ctorObj.DefineOwn("MAX_SAFE_INTEGER", runtime.DataProperty(runtime.Number(9007199254740991), false, false, false))
	ctorObj.DefineOwn("MIN_SAFE_INTEGER", runtime.DataProperty(runtime.Number(-9007199254740991), false, false, false))
	ctorObj.DefineOwn("MAX_VALUE", runtime.DataProperty(runtime.Number(math.MaxFloat64), false, false, false))
	ctorObj.DefineOwn("MIN_VALUE", runtime.DataProperty(runtime.Number(5e-324), false, false, false))
	ctorObj.DefineOwn("EPSILON", runtime.DataProperty(runtime.Number(2.220446049250313e-16), false, false, false))
	ctorObj.DefineOwn("POSITIVE_INFINITY", runtime.DataProperty(runtime.Number(math.Inf(1)), false, false, false))
	ctorObj.DefineOwn("NEGATIVE_INFINITY", runtime.DataProperty(runtime.Number(math.Inf(-1)), false, false, false))
	ctorObj.DefineOwn("NaN", runtime.DataProperty(runtime.Number(math.NaN()), false, false, false))
	c.method(ctorObj, "isInteger", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsNumber() {
			return runtime.NormalC(runtime.False)
		}
		n := v.AsNumber()
		return runtime.NormalC(runtime.Bool(!math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)))
	})
	c.method(ctorObj, "isFinite", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsNumber() {
			return runtime.NormalC(runtime.False)
		}
		n := v.AsNumber()
		return runtime.NormalC(runtime.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)))
	})
	c.method(ctorObj, "isNaN", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		return runtime.NormalC(runtime.Bool(v.IsNumber() && math.IsNaN(v.AsNumber())))
	})
	c.method(ctorObj, "parseFloat", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(parseFloatLeading(s.Go())))
	})

	c.declareGlobal("Number", ctorFn)
}

// installBoolean builds %Boolean.prototype% and the Boolean constructor
// (§4.9 item 6).
func (c *ctx) installBoolean() {
	ev := c.ev
	proto := runtime.NewObject("Boolean", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	proto.PrimitiveValue = valuePtr(runtime.False)
	ev.Realm.BooleanPrototype = &protoID

	boolOf := func(this runtime.Value) bool {
		if this.IsBoolean() {
			return this.AsBool()
		}
		if this.IsObject() {
			if o := ev.Heap_.Get(this.AsObjectID()); o != nil && o.PrimitiveValue != nil && o.PrimitiveValue.IsBoolean() {
				return o.PrimitiveValue.AsBool()
			}
		}
		return false
	}
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if boolOf(this) {
			return runtime.NormalC(runtime.StringFromGo("true"))
		}
		return runtime.NormalC(runtime.StringFromGo("false"))
	})
	c.method(proto, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(runtime.Bool(boolOf(this)))
	})

	ctorFn := ev.NewNativeFunction("Boolean", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(runtime.Bool(ops.ToBoolean(arg(args, 0))))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	c.declareGlobal("Boolean", ctorFn)
}

func parseFloatLeading(s string) float64 {
	i := 0
	n := len(s)
	for i < n && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < n && s[i] == '.' {
		i++
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < n && s[j] >= '0' && s[j] <= '9' {
			for j < n && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	if i == start {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
