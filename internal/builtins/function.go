package builtins

import (
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installFunction builds %Function.prototype% (§4.9 item 2). The Function
// constructor itself (`new Function(...)` building a function from source
// text) has no counterpart in this interpreter, which only ever receives
// already-parsed ASTs, so it is installed as a stub that throws rather than
// silently misbehaving.
func (c *ctx) installFunction() {
	ev := c.ev
	proto := runtime.NewObject("Function", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.FunctionPrototype = &protoID

	c.method(proto, "call", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		thisArg := arg(args, 0)
		var rest []runtime.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return ev.Call(this, thisArg, rest)
	})
	c.method(proto, "apply", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		thisArg := arg(args, 0)
		argList := arg(args, 1)
		var rest []runtime.Value
		if argList.IsObject() {
			rest = arrayLikeToSlice(ev, argList)
		}
		return ev.Call(this, thisArg, rest)
	})
	c.method(proto, "bind", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		thisArg := arg(args, 0)
		var bound []runtime.Value
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		target := this
		fn := ev.NewNativeFunction("bound", 0, func(interp any, _ runtime.Value, callArgs []runtime.Value) runtime.Completion {
			all := append(append([]runtime.Value{}, bound...), callArgs...)
			return ev.Call(target, thisArg, all)
		})
		return runtime.NormalC(fn)
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		name := "anonymous"
		if this.IsObject() {
			if o := ev.Heap_.Get(this.AsObjectID()); o != nil && o.Callable != nil {
				name = o.Callable.Name
			}
		}
		return runtime.NormalC(runtime.StringFromGo("function " + name + "() { [native code] }"))
	})

	ctorFn := ev.NewNativeFunction("Function", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return ev.ThrowCompletion(typeErr(ev, "Function constructor is not supported; programs are supplied as parsed syntax trees"))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))
	c.declareGlobal("Function", ctorFn)
}

// arrayLikeToSlice reads "length" and numeric-indexed own properties off an
// array or arguments-like object (Function.prototype.apply's argument
// list, §4.9 item 2).
func arrayLikeToSlice(ev *evaluator.Evaluator, v runtime.Value) []runtime.Value {
	lenVal, err := ev.GetProperty(v, "length")
	if err != nil {
		return nil
	}
	n, err2 := ev.ToNumber(lenVal)
	if err2 != nil {
		return nil
	}
	length := int(n.AsNumber())
	if length < 0 {
		return nil
	}
	out := make([]runtime.Value, 0, length)
	for i := 0; i < length; i++ {
		el, err := ev.GetProperty(v, ops.NumberToString(float64(i)))
		if err != nil {
			el = runtime.Undefined
		}
		out = append(out, el)
	}
	return out
}
