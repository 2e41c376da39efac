package builtins

import (
	"github.com/pmatos/jsse/internal/runtime"
)

// installErrors builds %Error.prototype% and the six native error
// subtypes (§4.9 item 9), each chained to Error.prototype as a fixed
// hierarchy of named constructors sharing one message/name layout.
func (c *ctx) installErrors() {
	ev := c.ev
	proto := runtime.NewObject("Error", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.ErrorPrototype = &protoID
	proto.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo("Error"), true, false, true))
	proto.DefineOwn("message", runtime.DataProperty(runtime.StringFromGo(""), true, false, true))

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		name := "Error"
		msg := ""
		if nv, err := ev.GetProperty(this, "name"); err == nil && !nv.IsUndefined() {
			if s, err := ev.ToStringValue(nv); err == nil {
				name = s.Go()
			}
		}
		if mv, err := ev.GetProperty(this, "message"); err == nil && !mv.IsUndefined() {
			if s, err := ev.ToStringValue(mv); err == nil {
				msg = s.Go()
			}
		}
		if msg == "" {
			return runtime.NormalC(runtime.StringFromGo(name))
		}
		return runtime.NormalC(runtime.StringFromGo(name + ": " + msg))
	})

	ctorFn := c.errorConstructor(proto, protoID, "Error")
	c.declareGlobal("Error", ctorFn)

	subtypes := []struct {
		name string
		slot **runtime.ObjectID
	}{
		{"TypeError", &ev.Realm.TypeErrorPrototype},
		{"RangeError", &ev.Realm.RangeErrorPrototype},
		{"ReferenceError", &ev.Realm.ReferenceErrorPrototype},
		{"SyntaxError", &ev.Realm.SyntaxErrorPrototype},
		{"EvalError", &ev.Realm.EvalErrorPrototype},
		{"URIError", &ev.Realm.URIErrorPrototype},
	}
	for _, st := range subtypes {
		subProto := runtime.NewObject("Error", &protoID)
		subProtoID := ev.Heap_.Allocate(subProto)
		*st.slot = &subProtoID
		subProto.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(st.name), true, false, true))
		subProto.DefineOwn("message", runtime.DataProperty(runtime.StringFromGo(""), true, false, true))
		subCtor := c.errorConstructor(subProto, subProtoID, st.name)
		subCtorObj := ev.Heap_.Get(subCtor.AsObjectID())
		errCtorObj := ev.Heap_.Get(ctorFn.AsObjectID())
		subCtorObj.SetPrototype(ptrObjID(errCtorObj.ID()))
		c.declareGlobal(st.name, subCtor)
	}
}

func ptrObjID(id runtime.ObjectID) *runtime.ObjectID { return &id }

// errorConstructor builds one native Error-family constructor: it always
// allocates a fresh instance (ignoring `this`, matching how Construct calls
// native constructors with this=Undefined) so both `Error(...)` and `new
// Error(...)` behave identically, per spec's NativeError behavior.
func (c *ctx) errorConstructor(proto *runtime.Object, protoID runtime.ObjectID, name string) runtime.Value {
	ev := c.ev
	ctorFn := ev.NewNativeFunction(name, 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		msg := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			s, err := ev.ToStringValue(args[0])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			msg = s.Go()
		}
		obj := runtime.NewObject("Error", &protoID)
		obj.DefineOwn("message", runtime.DataProperty(runtime.StringFromGo(msg), true, false, true))
		obj.DefineOwn("stack", runtime.DataProperty(runtime.StringFromGo(name+": "+msg), true, false, true))
		if len(args) > 1 && args[1].IsObject() {
			if cause, err := ev.GetProperty(args[1], "cause"); err == nil {
				obj.DefineOwn("cause", runtime.DataProperty(cause, true, false, true))
			}
		}
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))
	return ctorFn
}
