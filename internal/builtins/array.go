package builtins

import (
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installArray builds %Array.prototype% and the Array constructor (§4.9
// item 3), covering the subset of Array.prototype a Test262-style
// conformance interpreter exercises most: iteration, mutation, and search.
func (c *ctx) installArray() {
	ev := c.ev
	proto := runtime.NewObject("Array", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	proto.ArrayElements = &runtime.ArrayElementsData{}
	ev.Realm.ArrayPrototype = &protoID

	elems := func(v runtime.Value) *runtime.ArrayElementsData {
		if !v.IsObject() {
			return nil
		}
		obj := ev.Heap_.Get(v.AsObjectID())
		if obj == nil {
			return nil
		}
		return obj.ArrayElements
	}

	c.method(proto, "push", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil {
			return ev.ThrowCompletion(typeErr(ev, "Array.prototype.push called on non-array"))
		}
		e.Values = append(e.Values, args...)
		return runtime.NormalC(runtime.Number(float64(len(e.Values))))
	})
	c.method(proto, "pop", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil || len(e.Values) == 0 {
			return runtime.NormalC(runtime.Undefined)
		}
		last := e.Values[len(e.Values)-1]
		e.Values = e.Values[:len(e.Values)-1]
		return runtime.NormalC(last)
	})
	c.method(proto, "shift", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil || len(e.Values) == 0 {
			return runtime.NormalC(runtime.Undefined)
		}
		first := e.Values[0]
		e.Values = e.Values[1:]
		return runtime.NormalC(first)
	})
	c.method(proto, "unshift", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil {
			return ev.ThrowCompletion(typeErr(ev, "Array.prototype.unshift called on non-array"))
		}
		e.Values = append(append([]runtime.Value{}, args...), e.Values...)
		return runtime.NormalC(runtime.Number(float64(len(e.Values))))
	})
	c.method(proto, "slice", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil {
			return runtime.NormalC(ev.NewArray(nil))
		}
		start, end := sliceRange(ev, e.Values, arg(args, 0), arg(args, 1))
		return runtime.NormalC(ev.NewArray(append([]runtime.Value{}, e.Values[start:end]...)))
	})
	c.method(proto, "splice", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e == nil {
			return runtime.NormalC(ev.NewArray(nil))
		}
		n := len(e.Values)
		start := clampIndex(ev, arg(args, 0), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc, _ := ev.ToNumber(args[1])
			deleteCount = clampInt(int(dc.AsNumber()), 0, n-start)
		}
		removed := append([]runtime.Value{}, e.Values[start:start+deleteCount]...)
		var inserted []runtime.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		tail := append([]runtime.Value{}, e.Values[start+deleteCount:]...)
		e.Values = append(append(e.Values[:start], inserted...), tail...)
		return runtime.NormalC(ev.NewArray(removed))
	})
	c.method(proto, "concat", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		var out []runtime.Value
		if e != nil {
			out = append(out, e.Values...)
		} else {
			out = append(out, this)
		}
		for _, a := range args {
			if ae := elems(a); ae != nil {
				out = append(out, ae.Values...)
			} else {
				out = append(out, a)
			}
		}
		return runtime.NormalC(ev.NewArray(out))
	})
	c.method(proto, "join", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			s, err := ev.ToStringValue(args[0])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			sep = s.Go()
		}
		var parts []string
		if e != nil {
			for _, v := range e.Values {
				if v.IsNullish() {
					parts = append(parts, "")
					continue
				}
				s, err := ev.ToStringValue(v)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				parts = append(parts, s.Go())
			}
		}
		out := ""
		for i, p := range parts {
			if i > 0 {
				out += sep
			}
			out += p
		}
		return runtime.NormalC(runtime.StringFromGo(out))
	})
	c.method(proto, "indexOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		target := arg(args, 0)
		if e != nil {
			for i, v := range e.Values {
				if ops.StrictEquals(v, target) {
					return runtime.NormalC(runtime.Number(float64(i)))
				}
			}
		}
		return runtime.NormalC(runtime.Number(-1))
	})
	c.method(proto, "includes", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		target := arg(args, 0)
		if e != nil {
			for _, v := range e.Values {
				if runtime.SameValueZero(v, target) {
					return runtime.NormalC(runtime.True)
				}
			}
		}
		return runtime.NormalC(runtime.False)
	})
	c.method(proto, "forEach", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		thisArg := arg(args, 1)
		if e == nil {
			return runtime.NormalC(runtime.Undefined)
		}
		for i, v := range e.Values {
			res := ev.Call(cb, thisArg, []runtime.Value{v, runtime.Number(float64(i)), this})
			if res.IsAbrupt() {
				return res
			}
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "map", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		thisArg := arg(args, 1)
		var out []runtime.Value
		if e != nil {
			for i, v := range e.Values {
				res := ev.Call(cb, thisArg, []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				out = append(out, res.Value)
			}
		}
		return runtime.NormalC(ev.NewArray(out))
	})
	c.method(proto, "filter", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		thisArg := arg(args, 1)
		var out []runtime.Value
		if e != nil {
			for i, v := range e.Values {
				res := ev.Call(cb, thisArg, []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				if ops.ToBoolean(res.Value) {
					out = append(out, v)
				}
			}
		}
		return runtime.NormalC(ev.NewArray(out))
	})
	c.method(proto, "reduce", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		var vals []runtime.Value
		if e != nil {
			vals = e.Values
		}
		i := 0
		var acc runtime.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(vals) == 0 {
				return ev.ThrowCompletion(typeErr(ev, "Reduce of empty array with no initial value"))
			}
			acc = vals[0]
			i = 1
		}
		for ; i < len(vals); i++ {
			res := ev.Call(cb, runtime.Undefined, []runtime.Value{acc, vals[i], runtime.Number(float64(i)), this})
			if res.IsAbrupt() {
				return res
			}
			acc = res.Value
		}
		return runtime.NormalC(acc)
	})
	c.method(proto, "find", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		if e != nil {
			for i, v := range e.Values {
				res := ev.Call(cb, runtime.Undefined, []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				if ops.ToBoolean(res.Value) {
					return runtime.NormalC(v)
				}
			}
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "some", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		if e != nil {
			for i, v := range e.Values {
				res := ev.Call(cb, runtime.Undefined, []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				if ops.ToBoolean(res.Value) {
					return runtime.NormalC(runtime.True)
				}
			}
		}
		return runtime.NormalC(runtime.False)
	})
	c.method(proto, "every", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		cb := arg(args, 0)
		if e != nil {
			for i, v := range e.Values {
				res := ev.Call(cb, runtime.Undefined, []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				if !ops.ToBoolean(res.Value) {
					return runtime.NormalC(runtime.False)
				}
			}
		}
		return runtime.NormalC(runtime.True)
	})
	c.method(proto, "reverse", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		e := elems(this)
		if e != nil {
			for i, j := 0, len(e.Values)-1; i < j; i, j = i+1, j-1 {
				e.Values[i], e.Values[j] = e.Values[j], e.Values[i]
			}
		}
		return runtime.NormalC(this)
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		join, err := ev.GetProperty(this, "join")
		if err == nil && ev.IsCallable(join) {
			return ev.Call(join, this, nil)
		}
		return runtime.NormalC(runtime.StringFromGo("[object Array]"))
	})
	c.method(proto, runtime.SymIterator, 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(newArrayIterator(ev, this))
	})

	ctorFn := ev.NewNativeFunction("Array", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 1 && args[0].IsNumber() {
			n := int(args[0].AsNumber())
			if n < 0 || float64(n) != args[0].AsNumber() {
				return ev.ThrowCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewRangeError("Invalid array length"))})
			}
			vals := make([]runtime.Value, n)
			for i := range vals {
				vals[i] = runtime.Undefined
			}
			return runtime.NormalC(ev.NewArray(vals))
		}
		return runtime.NormalC(ev.NewArray(args))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))
	c.method(ctorObj, "isArray", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		return runtime.NormalC(runtime.Bool(elems(v) != nil))
	})
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		src := arg(args, 0)
		var mapFn runtime.Value
		if len(args) > 1 {
			mapFn = args[1]
		}
		var out []runtime.Value
		if e := elems(src); e != nil {
			out = append(out, e.Values...)
		} else if src.IsString() {
			s := src.AsString()
			for i := 0; i < s.Len(); i++ {
				out = append(out, runtime.String(s.SliceUTF16(i, i+1)))
			}
		} else if it, err := ev.GetIterator(src); err == nil {
			for {
				v, done, err := ev.IteratorStep(it)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				if done {
					break
				}
				out = append(out, v)
			}
		}
		if mapFn.IsObject() && ev.IsCallable(mapFn) {
			for i, v := range out {
				res := ev.Call(mapFn, runtime.Undefined, []runtime.Value{v, runtime.Number(float64(i))})
				if res.IsAbrupt() {
					return res
				}
				out[i] = res.Value
			}
		}
		return runtime.NormalC(ev.NewArray(out))
	})
	c.method(ctorObj, "of", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(ev.NewArray(args))
	})

	c.declareGlobal("Array", ctorFn)
}

func sliceRange(ev *evaluator.Evaluator, vals []runtime.Value, startArg, endArg runtime.Value) (int, int) {
	n := len(vals)
	start := 0
	end := n
	if !startArg.IsUndefined() {
		start = clampIndex(ev, startArg, n)
	}
	if !endArg.IsUndefined() {
		end = clampIndex(ev, endArg, n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(ev *evaluator.Evaluator, v runtime.Value, n int) int {
	num, err := ev.ToNumber(v)
	if err != nil {
		return 0
	}
	f := num.AsNumber()
	idx := int(f)
	if f < 0 {
		idx = n + idx
	}
	return clampInt(idx, 0, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func iterResult(ev *evaluator.Evaluator, value runtime.Value, done bool) runtime.Value {
	obj := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
	obj.DefineOwn("value", runtime.DataProperty(value, true, true, true))
	obj.DefineOwn("done", runtime.DataProperty(runtime.Bool(done), true, true, true))
	return runtime.Object(ev.Heap_.Allocate(obj))
}

// newArrayIterator backs Array.prototype[Symbol.iterator] and for-of over
// arrays: a stateful native .next() closing over a cursor, re-reading
// "length" on each step so concurrent mutation during iteration behaves the
// way live array_elements-backed iteration should (§4.8's iteration
// protocol).
func newArrayIterator(ev *evaluator.Evaluator, target runtime.Value) runtime.Value {
	cursor := 0
	obj := runtime.NewObject("Array Iterator", ev.Realm.ObjectPrototype)
	id := ev.Heap_.Allocate(obj)
	obj.DefineOwn("next", runtime.DataProperty(ev.NewNativeFunction("next", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		lenVal, err := ev.GetProperty(target, "length")
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		length := int(lenVal.AsNumber())
		if cursor >= length {
			return runtime.NormalC(iterResult(ev, runtime.Undefined, true))
		}
		v, err := ev.GetProperty(target, ops.NumberToString(float64(cursor)))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		cursor++
		return runtime.NormalC(iterResult(ev, v, false))
	}), true, false, true))
	obj.DefineOwn(runtime.SymIterator, runtime.DataProperty(ev.NewNativeFunction("[Symbol.iterator]", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(this)
	}), true, false, true))
	return runtime.Object(id)
}
