package builtins

import (
	"github.com/google/uuid"

	"github.com/pmatos/jsse/internal/runtime"
)

// installProxyReflect builds Proxy and Reflect (§4.13). The actual
// get/set/has/deleteProperty trap dispatch lives in
// internal/evaluator/objects.go and expressions.go (proxyGet/proxySet/
// proxyHas/proxyDelete), reached through the ordinary [[Get]]/[[Set]]/`in`
// /delete machinery whenever an object's proxy_target slot is populated;
// this installer only wires up the constructor, Proxy.revocable, and the
// Reflect namespace object that exposes the same trapped operations as
// ordinary function calls.
func (c *ctx) installProxyReflect() {
	ev := c.ev

	proxyCtor := ev.NewNativeFunction("Proxy", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		targetV, handlerV := arg(args, 0), arg(args, 1)
		if !targetV.IsObject() || !handlerV.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Cannot create proxy with a non-object as target or handler"))
		}
		targetID := targetV.AsObjectID()
		handlerID := handlerV.AsObjectID()
		target := ev.Heap_.Get(targetID)
		obj := runtime.NewObject(target.ClassName(), target.Prototype())
		obj.ProxyTarget = &targetID
		obj.ProxyHandler = &handlerID
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	ctorObj := ev.Heap_.Get(proxyCtor.AsObjectID())
	c.method(ctorObj, "revocable", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		res := ev.Call(proxyCtor, runtime.Undefined, args)
		if res.Type == runtime.Throw {
			return res
		}
		proxyVal := res.Value
		pobj := ev.Heap_.Get(proxyVal.AsObjectID())
		pobj.RevocationID = uuid.New().String()
		result := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
		result.DefineOwn("proxy", runtime.DataProperty(proxyVal, true, true, true))
		revoke := ev.NewNativeFunction("", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			pobj := ev.Heap_.Get(proxyVal.AsObjectID())
			pobj.ProxyRevoked = true
			return runtime.NormalC(runtime.Undefined)
		})
		result.DefineOwn("revoke", runtime.DataProperty(revoke, true, true, true))
		id := ev.Heap_.Allocate(result)
		return runtime.NormalC(runtime.Object(id))
	})
	c.declareGlobal("Proxy", proxyCtor)

	reflect := runtime.NewObject("Reflect", ev.Realm.ObjectPrototype)
	reflectID := ev.Heap_.Allocate(reflect)

	c.method(reflect, "get", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v, err := ev.GetProperty(target, key)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})
	c.method(reflect, "set", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if err := ev.SetProperty(target, key, arg(args, 2)); err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.True)
	})
	c.method(reflect, "has", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.has called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		return runtime.NormalC(runtime.Bool(obj != nil && obj.HasOwn(key)))
	})
	c.method(reflect, "deleteProperty", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.deleteProperty called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		return runtime.NormalC(runtime.Bool(obj.DeleteOwn(key)))
	})
	c.method(reflect, "ownKeys", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.ownKeys called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		return runtime.NormalC(ev.NewArray(stringsToValues(obj.OwnKeys())))
	})
	c.method(reflect, "getPrototypeOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.getPrototypeOf called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		if obj.Prototype() == nil {
			return runtime.NormalC(runtime.Null)
		}
		return runtime.NormalC(runtime.Object(*obj.Prototype()))
	})
	c.method(reflect, "setPrototypeOf", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.setPrototypeOf called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		proto := arg(args, 1)
		if proto.IsNull() {
			obj.SetPrototype(nil)
		} else if proto.IsObject() {
			id := proto.AsObjectID()
			obj.SetPrototype(&id)
		}
		return runtime.NormalC(runtime.True)
	})
	c.method(reflect, "isExtensible", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.isExtensible called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		return runtime.NormalC(runtime.Bool(obj.Extensible()))
	})
	c.method(reflect, "preventExtensions", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.preventExtensions called on non-object"))
		}
		obj := ev.Heap_.Get(target.AsObjectID())
		obj.SetExtensible(false)
		return runtime.NormalC(runtime.True)
	})
	c.method(reflect, "defineProperty", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		key, err := keyArg(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if !target.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Reflect.defineProperty called on non-object"))
		}
		desc, err := toPropertyDescriptor(ev, arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ev.Heap_.Get(target.AsObjectID()).DefineOwn(key, desc)
		return runtime.NormalC(runtime.True)
	})
	c.method(reflect, "apply", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		thisArg := arg(args, 1)
		callArgs := arrayLikeToSlice(ev, arg(args, 2))
		return ev.Call(target, thisArg, callArgs)
	})
	c.method(reflect, "construct", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		target := arg(args, 0)
		callArgs := arrayLikeToSlice(ev, arg(args, 1))
		newTarget := target
		if len(args) > 2 {
			newTarget = args[2]
		}
		v, err := ev.Construct(target, callArgs, newTarget)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})

	c.declareGlobal("Reflect", runtime.Object(reflectID))
}
