package builtins

import (
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installObject builds %Object.prototype% and the Object constructor
// (§4.9 item 1, §4.10 item 1). Every other prototype installed later
// chains up to this one.
func (c *ctx) installObject() {
	ev := c.ev
	protoObj := runtime.NewObject("Object", nil)
	protoID := ev.Heap_.Allocate(protoObj)
	ev.Realm.ObjectPrototype = &protoID

	c.method(protoObj, "hasOwnProperty", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		key, err := keyArg(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if !this.IsObject() {
			return runtime.NormalC(runtime.False)
		}
		obj := ev.Heap_.Get(this.AsObjectID())
		if obj == nil {
			return runtime.NormalC(runtime.False)
		}
		if obj.ArrayElements != nil {
			if idx, ok := indexOf(key); ok && idx >= 0 && idx < len(obj.ArrayElements.Values) {
				return runtime.NormalC(runtime.True)
			}
			if key == "length" {
				return runtime.NormalC(runtime.True)
			}
		}
		_, ok := obj.GetOwn(key)
		return runtime.NormalC(runtime.Bool(ok))
	})

	c.method(protoObj, "isPrototypeOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() || !this.IsObject() {
			return runtime.NormalC(runtime.False)
		}
		target := this.AsObjectID()
		id := v.AsObjectID()
		for {
			obj := ev.Heap_.Get(id)
			if obj == nil {
				return runtime.NormalC(runtime.False)
			}
			proto := obj.Prototype()
			if proto == nil {
				return runtime.NormalC(runtime.False)
			}
			if *proto == target {
				return runtime.NormalC(runtime.True)
			}
			id = *proto
		}
	})

	c.method(protoObj, "propertyIsEnumerable", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		key, err := keyArg(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if !this.IsObject() {
			return runtime.NormalC(runtime.False)
		}
		obj := ev.Heap_.Get(this.AsObjectID())
		desc, ok := obj.GetOwn(key)
		return runtime.NormalC(runtime.Bool(ok && desc.Enumerable))
	})

	c.method(protoObj, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		tag := "Object"
		if this.IsObject() {
			if o := ev.Heap_.Get(this.AsObjectID()); o != nil {
				tag = o.ClassName()
			}
		} else if this.IsUndefined() {
			tag = "Undefined"
		} else if this.IsNull() {
			tag = "Null"
		}
		return runtime.NormalC(runtime.StringFromGo("[object " + tag + "]"))
	})

	c.method(protoObj, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(this)
	})

	ctorFn := ev.NewNativeFunction("Object", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a := arg(args, 0)
		if a.IsNullish() {
			obj := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
			return runtime.NormalC(runtime.Object(ev.Heap_.Allocate(obj)))
		}
		v, err := ev.ToObject(a)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	protoObj.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	c.method(ctorObj, "keys", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(ev.NewArray(stringsToValues(ownEnumerableStringKeys(ev, arg(args, 0)))))
	})
	c.method(ctorObj, "values", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		var vals []runtime.Value
		for _, k := range ownEnumerableStringKeys(ev, o) {
			v, _ := ev.GetProperty(o, k)
			vals = append(vals, v)
		}
		return runtime.NormalC(ev.NewArray(vals))
	})
	c.method(ctorObj, "entries", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		var vals []runtime.Value
		for _, k := range ownEnumerableStringKeys(ev, o) {
			v, _ := ev.GetProperty(o, k)
			vals = append(vals, ev.NewArray([]runtime.Value{runtime.StringFromGo(k), v}))
		}
		return runtime.NormalC(ev.NewArray(vals))
	})
	c.method(ctorObj, "assign", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 {
			return ev.ThrowCompletion(typeErr(ev, "Object.assign requires a target"))
		}
		target := args[0]
		for _, src := range args[1:] {
			if src.IsNullish() {
				continue
			}
			for _, k := range ownEnumerableStringKeys(ev, src) {
				v, err := ev.GetProperty(src, k)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				if err := ev.SetProperty(target, k, v); err != nil {
					return ev.ThrowCompletion(err)
				}
			}
		}
		return runtime.NormalC(target)
	})
	c.method(ctorObj, "freeze", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		if o.IsObject() {
			if obj := ev.Heap_.Get(o.AsObjectID()); obj != nil {
				obj.SetExtensible(false)
				for _, k := range obj.OwnKeys() {
					d, _ := obj.GetOwn(k)
					d.Writable = false
					d.Configurable = false
					obj.DefineOwn(k, d)
				}
			}
		}
		return runtime.NormalC(o)
	})
	c.method(ctorObj, "isFrozen", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		if !o.IsObject() {
			return runtime.NormalC(runtime.True)
		}
		obj := ev.Heap_.Get(o.AsObjectID())
		return runtime.NormalC(runtime.Bool(obj != nil && !obj.Extensible()))
	})
	c.method(ctorObj, "getPrototypeOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		if !o.IsObject() {
			return runtime.NormalC(runtime.Null)
		}
		obj := ev.Heap_.Get(o.AsObjectID())
		if obj == nil || obj.Prototype() == nil {
			return runtime.NormalC(runtime.Null)
		}
		return runtime.NormalC(runtime.Object(*obj.Prototype()))
	})
	c.method(ctorObj, "setPrototypeOf", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		p := arg(args, 1)
		if o.IsObject() {
			obj := ev.Heap_.Get(o.AsObjectID())
			if p.IsObject() {
				id := p.AsObjectID()
				obj.SetPrototype(&id)
			} else {
				obj.SetPrototype(nil)
			}
		}
		return runtime.NormalC(o)
	})
	c.method(ctorObj, "create", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		p := arg(args, 0)
		var proto *runtime.ObjectID
		if p.IsObject() {
			id := p.AsObjectID()
			proto = &id
		}
		obj := runtime.NewObject("Object", proto)
		return runtime.NormalC(runtime.Object(ev.Heap_.Allocate(obj)))
	})
	c.method(ctorObj, "defineProperty", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		o := arg(args, 0)
		if !o.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Object.defineProperty called on non-object"))
		}
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		descObj := arg(args, 2)
		desc, err := toPropertyDescriptor(ev, descObj)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ev.Heap_.Get(o.AsObjectID()).DefineOwn(key, desc)
		return runtime.NormalC(o)
	})

	c.declareGlobal("Object", ctorFn)
}

func keyArg(ev *evaluator.Evaluator, v runtime.Value) (string, error) {
	s, err := ev.ToStringValue(v)
	if err != nil {
		return "", err
	}
	return s.Go(), nil
}

func typeErr(ev *evaluator.Evaluator, msg string) error {
	return &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError(msg))}
}

func indexOf(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func stringsToValues(ss []string) []runtime.Value {
	out := make([]runtime.Value, len(ss))
	for i, s := range ss {
		out[i] = runtime.StringFromGo(s)
	}
	return out
}

func ownEnumerableStringKeys(ev *evaluator.Evaluator, v runtime.Value) []string {
	if !v.IsObject() {
		return nil
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil {
		return nil
	}
	var keys []string
	if obj.ArrayElements != nil {
		for i := range obj.ArrayElements.Values {
			keys = append(keys, ops.NumberToString(float64(i)))
		}
	}
	for _, k := range obj.OwnKeys() {
		desc, _ := obj.GetOwn(k)
		if desc.Enumerable {
			keys = append(keys, k)
		}
	}
	return keys
}

func toPropertyDescriptor(ev *evaluator.Evaluator, descObj runtime.Value) (runtime.PropertyDescriptor, error) {
	var desc runtime.PropertyDescriptor
	get := func(name string) (runtime.Value, bool) {
		v, err := ev.GetProperty(descObj, name)
		if err != nil || v.IsUndefined() {
			return runtime.Undefined, false
		}
		return v, true
	}
	if v, ok := get("get"); ok {
		desc.IsAccessor = true
		desc.Get = v
	}
	if v, ok := get("set"); ok {
		desc.IsAccessor = true
		desc.Set = v
	}
	if !desc.IsAccessor {
		if v, ok := get("value"); ok {
			desc.Value = v
		}
		if v, ok := get("writable"); ok {
			desc.Writable = ops.ToBoolean(v)
		}
	}
	if v, ok := get("enumerable"); ok {
		desc.Enumerable = ops.ToBoolean(v)
	}
	if v, ok := get("configurable"); ok {
		desc.Configurable = ops.ToBoolean(v)
	}
	return desc, nil
}
