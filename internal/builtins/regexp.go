package builtins

import (
	"github.com/pmatos/jsse/internal/runtime"
)

// installRegExp builds %RegExp.prototype%; RegExp instances themselves are
// created by evaluator.makeRegExp (regex literals and `new RegExp(...)`)
// against github.com/dlclark/regexp2, the pack's ECMAScript-flavored regex
// engine.
func (c *ctx) installRegExp() {
	ev := c.ev
	proto := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.RegExpPrototype = &protoID

	data := func(this runtime.Value) *runtime.RegExpData {
		if !this.IsObject() {
			return nil
		}
		obj := ev.Heap_.Get(this.AsObjectID())
		if obj == nil {
			return nil
		}
		return obj.RegExpData
	}

	c.method(proto, "test", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		d := data(this)
		if d == nil {
			return ev.ThrowCompletion(typeErr(ev, "RegExp.prototype.test called on non-RegExp"))
		}
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, merr := d.Compiled.FindStringMatch(s.Go())
		if merr != nil {
			return ev.ThrowCompletion(typeErr(ev, merr.Error()))
		}
		return runtime.NormalC(runtime.Bool(m != nil))
	})
	c.method(proto, "exec", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		d := data(this)
		if d == nil {
			return ev.ThrowCompletion(typeErr(ev, "RegExp.prototype.exec called on non-RegExp"))
		}
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, merr := d.Compiled.FindStringMatch(s.Go())
		if merr != nil {
			return ev.ThrowCompletion(typeErr(ev, merr.Error()))
		}
		if m == nil {
			return runtime.NormalC(runtime.Null)
		}
		groups := m.Groups()
		vals := make([]runtime.Value, 0, len(groups))
		for _, g := range groups {
			if len(g.Captures) == 0 {
				vals = append(vals, runtime.Undefined)
				continue
			}
			vals = append(vals, runtime.StringFromGo(g.String()))
		}
		arr := ev.NewArray(vals)
		arrObj := ev.Heap_.Get(arr.AsObjectID())
		arrObj.DefineOwn("index", runtime.DataProperty(runtime.Number(float64(m.Index)), true, true, true))
		arrObj.DefineOwn("input", runtime.DataProperty(runtime.String(s), true, true, true))
		return runtime.NormalC(arr)
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		d := data(this)
		if d == nil {
			return runtime.NormalC(runtime.StringFromGo("/(?:)/"))
		}
		return runtime.NormalC(runtime.StringFromGo("/" + d.Source + "/" + d.Flags))
	})

	ctorFn := ev.NewNativeFunction("RegExp", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		src := ""
		flags := ""
		a0 := arg(args, 0)
		if a0.IsObject() {
			if d := data(a0); d != nil {
				src, flags = d.Source, d.Flags
			}
		} else if !a0.IsUndefined() {
			s, err := ev.ToStringValue(a0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			src = s.Go()
		}
		if len(args) > 1 && !args[1].IsUndefined() {
			f, err := ev.ToStringValue(args[1])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			flags = f.Go()
		}
		v, err := ev.MakeRegExp(src, flags)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	c.declareGlobal("RegExp", ctorFn)
}
