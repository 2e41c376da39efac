package builtins

import (
	"math"
	"math/rand"

	"github.com/pmatos/jsse/internal/runtime"
)

// installMath builds the Math global object (§4.10 item 2): a flat
// catalogue of named numeric functions laid out as Math's own properties
// rather than a string-keyed registry.
func (c *ctx) installMath() {
	ev := c.ev
	obj := runtime.NewObject("Math", ev.Realm.ObjectPrototype)
	id := ev.Heap_.Allocate(obj)

	obj.DefineOwn("PI", runtime.DataProperty(runtime.Number(math.Pi), false, false, false))
	obj.DefineOwn("E", runtime.DataProperty(runtime.Number(math.E), false, false, false))
	obj.DefineOwn("LN2", runtime.DataProperty(runtime.Number(math.Ln2), false, false, false))
	obj.DefineOwn("LN10", runtime.DataProperty(runtime.Number(math.Log(10)), false, false, false))
	obj.DefineOwn("LOG2E", runtime.DataProperty(runtime.Number(1/math.Ln2), false, false, false))
	obj.DefineOwn("LOG10E", runtime.DataProperty(runtime.Number(1/math.Log(10)), false, false, false))
	obj.DefineOwn("SQRT2", runtime.DataProperty(runtime.Number(math.Sqrt2), false, false, false))
	obj.DefineOwn("SQRT1_2", runtime.DataProperty(runtime.Number(math.Sqrt(0.5)), false, false, false))

	unary := func(name string, fn func(float64) float64) {
		c.method(obj, name, 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			n, err := ev.ToNumber(arg(args, 0))
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(runtime.Number(fn(n.AsNumber())))
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f), f == 0:
			return f
		case f > 0:
			return 1
		default:
			return -1
		}
	})
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})

	c.method(obj, "pow", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		base, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		exp, err := ev.ToNumber(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(math.Pow(base.AsNumber(), exp.AsNumber())))
	})
	c.method(obj, "atan2", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		y, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		x, err := ev.ToNumber(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(math.Atan2(y.AsNumber(), x.AsNumber())))
	})
	c.method(obj, "max", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		best := math.Inf(-1)
		for _, a := range args {
			n, err := ev.ToNumber(a)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			f := n.AsNumber()
			if math.IsNaN(f) {
				return runtime.NormalC(runtime.Number(math.NaN()))
			}
			if f > best {
				best = f
			}
		}
		return runtime.NormalC(runtime.Number(best))
	})
	c.method(obj, "min", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		best := math.Inf(1)
		for _, a := range args {
			n, err := ev.ToNumber(a)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			f := n.AsNumber()
			if math.IsNaN(f) {
				return runtime.NormalC(runtime.Number(math.NaN()))
			}
			if f < best {
				best = f
			}
		}
		return runtime.NormalC(runtime.Number(best))
	})
	c.method(obj, "hypot", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		sum := 0.0
		for _, a := range args {
			n, err := ev.ToNumber(a)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			sum += n.AsNumber() * n.AsNumber()
		}
		return runtime.NormalC(runtime.Number(math.Sqrt(sum)))
	})
	c.method(obj, "random", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(runtime.Number(rand.Float64()))
	})

	c.declareGlobal("Math", runtime.Object(id))
}
