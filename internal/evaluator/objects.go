package evaluator

import (
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// NewArray allocates a dense Array object backed by array_elements
// (§3.2), with a synchronized "length" data property.
func (ev *Evaluator) NewArray(values []runtime.Value) runtime.Value {
	obj := runtime.NewObject("Array", ev.Realm.ArrayPrototype)
	cp := make([]runtime.Value, len(values))
	copy(cp, values)
	obj.ArrayElements = &runtime.ArrayElementsData{Values: cp}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

// GetProperty implements [[Get]] (§3.2, §4.4): array/string fast paths for
// canonical numeric indices, then own properties (data or accessor), then
// the prototype chain.
func (ev *Evaluator) GetProperty(objVal runtime.Value, key string) (runtime.Value, error) {
	if objVal.IsString() {
		return ev.getStringProperty(objVal, key)
	}
	if !objVal.IsObject() {
		boxed, err := ev.ToObject(objVal)
		if err != nil {
			return runtime.Undefined, err
		}
		return ev.getPropertyFrom(boxed.AsObjectID(), key, objVal)
	}
	return ev.getPropertyFrom(objVal.AsObjectID(), key, objVal)
}

func (ev *Evaluator) getStringProperty(sv runtime.Value, key string) (runtime.Value, error) {
	s := sv.AsString()
	if key == "length" {
		return runtime.Number(float64(s.Len())), nil
	}
	if idx, ok := canonicalIndex(key); ok {
		if idx >= 0 && idx < s.Len() {
			return runtime.String(s.SliceUTF16(idx, idx+1)), nil
		}
		return runtime.Undefined, nil
	}
	if ev.Realm.StringPrototype != nil {
		return ev.getPropertyFrom(*ev.Realm.StringPrototype, key, sv)
	}
	return runtime.Undefined, nil
}

func canonicalIndex(key string) (int, bool) {
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
	if key[0] == '0' && len(key) > 1 {
		return 0, false
	}
	return n, true
}

func (ev *Evaluator) getPropertyFrom(id runtime.ObjectID, key string, receiver runtime.Value) (runtime.Value, error) {
	obj := ev.Heap_.Get(id)
	if obj == nil {
		return runtime.Undefined, nil
	}
	if obj.ProxyTarget != nil {
		return ev.proxyGet(obj, key, receiver)
	}
	if obj.ArrayElements != nil {
		if key == "length" {
			return runtime.Number(float64(len(obj.ArrayElements.Values))), nil
		}
		if idx, ok := canonicalIndex(key); ok {
			if idx >= 0 && idx < len(obj.ArrayElements.Values) {
				return obj.ArrayElements.Values[idx], nil
			}
			return runtime.Undefined, nil
		}
	}
	if obj.TypedArrayInfo != nil {
		if key == "length" {
			return runtime.Number(float64(obj.TypedArrayInfo.Length)), nil
		}
		if idx, ok := canonicalIndex(key); ok {
			if v, ok := readTypedArrayElement(obj.TypedArrayInfo, idx); ok {
				return v, nil
			}
			return runtime.Undefined, nil
		}
	}
	if obj.ParameterMap != nil {
		if idx, ok := canonicalIndex(key); ok {
			if entry, mapped := obj.ParameterMap.Entries[idx]; mapped {
				v, err := entry.Env.Get(entry.Name)
				if err == nil {
					return v, nil
				}
			}
		}
	}
	for cur := obj; ; {
		if desc, ok := cur.GetOwn(key); ok {
			if desc.IsAccessor {
				if ev.IsCallable(desc.Get) {
					res := ev.Call(desc.Get, receiver, nil)
					if res.Type == runtime.Throw {
						return runtime.Undefined, &ops.Thrown{Completion: res}
					}
					return res.Value, nil
				}
				return runtime.Undefined, nil
			}
			return desc.Value, nil
		}
		proto := cur.Prototype()
		if proto == nil {
			return runtime.Undefined, nil
		}
		next := ev.Heap_.Get(*proto)
		if next == nil {
			return runtime.Undefined, nil
		}
		cur = next
	}
}

// SetProperty implements [[Set]] (§4.4): array-index writes extend
// array_elements and keep "length" synchronized; otherwise an own or
// inherited accessor's setter is invoked, else an own data property is
// created or overwritten.
func (ev *Evaluator) SetProperty(objVal runtime.Value, key string, val runtime.Value) error {
	if !objVal.IsObject() {
		return nil // primitive receivers silently discard writes (sloppy mode)
	}
	obj := ev.Heap_.Get(objVal.AsObjectID())
	if obj == nil {
		return nil
	}
	if obj.ProxyTarget != nil {
		return ev.proxySet(obj, key, val, objVal)
	}
	if obj.TypedArrayInfo != nil {
		if idx, ok := canonicalIndex(key); ok {
			n, err := ops.ToNumber(ev, val)
			if err != nil {
				return err
			}
			writeTypedArrayElement(obj.TypedArrayInfo, idx, n.AsNumber())
			return nil
		}
		if key == "length" {
			return nil // TypedArray length is fixed at construction
		}
	}
	if obj.ArrayElements != nil {
		if key == "length" {
			n, err := ops.ToIntegerOrInfinity(ev, val)
			if err != nil {
				return err
			}
			newLen := int(n)
			cur := obj.ArrayElements.Values
			if newLen < len(cur) {
				obj.ArrayElements.Values = cur[:newLen]
			} else {
				for len(obj.ArrayElements.Values) < newLen {
					obj.ArrayElements.Values = append(obj.ArrayElements.Values, runtime.Undefined)
				}
			}
			return nil
		}
		if idx, ok := canonicalIndex(key); ok {
			for len(obj.ArrayElements.Values) <= idx {
				obj.ArrayElements.Values = append(obj.ArrayElements.Values, runtime.Undefined)
			}
			obj.ArrayElements.Values[idx] = val
			return nil
		}
	}
	if obj.ParameterMap != nil {
		if idx, ok := canonicalIndex(key); ok {
			if entry, mapped := obj.ParameterMap.Entries[idx]; mapped {
				entry.Env.Set(entry.Name, val)
			}
		}
	}
	// Walk the chain for an inherited accessor before falling back to an
	// own data property (§4.4's ordinary [[Set]]).
	for cur := obj; cur != nil; {
		if desc, ok := cur.GetOwn(key); ok {
			if desc.IsAccessor {
				if ev.IsCallable(desc.Set) {
					res := ev.Call(desc.Set, objVal, []runtime.Value{val})
					if res.Type == runtime.Throw {
						return &ops.Thrown{Completion: res}
					}
				}
				return nil
			}
			if cur == obj {
				if !desc.Writable {
					return nil
				}
				desc.Value = val
				obj.DefineOwn(key, desc)
				return nil
			}
			break
		}
		proto := cur.Prototype()
		if proto == nil {
			break
		}
		cur = ev.Heap_.Get(*proto)
	}
	obj.DefineOwn(key, runtime.DataProperty(val, true, true, true))
	return nil
}

// proxyTrap looks up handler[name] and reports whether it is callable
// (§4.13's "absent or undefined trap falls back to the target").
func (ev *Evaluator) proxyTrap(obj *runtime.Object, name string) (runtime.Value, bool) {
	if obj.ProxyHandler == nil {
		return runtime.Undefined, false
	}
	trap, err := ev.GetProperty(runtime.Object(*obj.ProxyHandler), name)
	if err != nil || !ev.IsCallable(trap) {
		return runtime.Undefined, false
	}
	return trap, true
}

func (ev *Evaluator) proxyRevokedError(op string) error {
	return &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Cannot perform '" + op + "' on a proxy that has been revoked"))}
}

// proxyGet implements the [[Get]] trap dispatch of §4.13: the handler's
// "get" trap if present, else a straight forward to the target.
func (ev *Evaluator) proxyGet(obj *runtime.Object, key string, receiver runtime.Value) (runtime.Value, error) {
	if obj.ProxyRevoked {
		return runtime.Undefined, ev.proxyRevokedError("get")
	}
	targetVal := runtime.Object(*obj.ProxyTarget)
	if trap, ok := ev.proxyTrap(obj, "get"); ok {
		res := ev.Call(trap, runtime.Object(*obj.ProxyHandler), []runtime.Value{targetVal, runtime.StringFromGo(key), receiver})
		if res.Type == runtime.Throw {
			return runtime.Undefined, &ops.Thrown{Completion: res}
		}
		return res.Value, nil
	}
	return ev.GetProperty(targetVal, key)
}

// proxySet implements the [[Set]] trap dispatch of §4.13.
func (ev *Evaluator) proxySet(obj *runtime.Object, key string, val, receiver runtime.Value) error {
	if obj.ProxyRevoked {
		return ev.proxyRevokedError("set")
	}
	targetVal := runtime.Object(*obj.ProxyTarget)
	if trap, ok := ev.proxyTrap(obj, "set"); ok {
		res := ev.Call(trap, runtime.Object(*obj.ProxyHandler), []runtime.Value{targetVal, runtime.StringFromGo(key), val, receiver})
		if res.Type == runtime.Throw {
			return &ops.Thrown{Completion: res}
		}
		return nil
	}
	return ev.SetProperty(targetVal, key, val)
}

// proxyHas implements the [[HasProperty]] trap dispatch of §4.13, used by
// hasPropertyChain (the `in` operator).
func (ev *Evaluator) proxyHas(obj *runtime.Object, key string) bool {
	if obj.ProxyRevoked {
		return false
	}
	targetVal := runtime.Object(*obj.ProxyTarget)
	if trap, ok := ev.proxyTrap(obj, "has"); ok {
		res := ev.Call(trap, runtime.Object(*obj.ProxyHandler), []runtime.Value{targetVal, runtime.StringFromGo(key)})
		if res.Type == runtime.Throw {
			return false
		}
		return ops.ToBoolean(res.Value)
	}
	return ev.hasPropertyChain(targetVal, key)
}

// proxyDelete implements the [[Delete]] trap dispatch of §4.13, used by
// evalDelete.
func (ev *Evaluator) proxyDelete(obj *runtime.Object, key string) bool {
	if obj.ProxyRevoked {
		return false
	}
	targetVal := runtime.Object(*obj.ProxyTarget)
	if trap, ok := ev.proxyTrap(obj, "deleteProperty"); ok {
		res := ev.Call(trap, runtime.Object(*obj.ProxyHandler), []runtime.Value{targetVal, runtime.StringFromGo(key)})
		if res.Type == runtime.Throw {
			return false
		}
		return ops.ToBoolean(res.Value)
	}
	target := ev.Heap_.Get(*obj.ProxyTarget)
	if target == nil {
		return true
	}
	return target.DeleteOwn(key)
}

// enumerableKeysOf returns the for-in enumeration order (§4.4): own
// enumerable string keys of objVal and its prototype chain, each name
// visited only once even if shadowed.
func (ev *Evaluator) enumerableKeysOf(objVal runtime.Value) []string {
	if !objVal.IsObject() {
		return nil
	}
	seen := map[string]bool{}
	var keys []string
	id := objVal.AsObjectID()
	for {
		obj := ev.Heap_.Get(id)
		if obj == nil {
			break
		}
		if obj.ArrayElements != nil {
			for i := range obj.ArrayElements.Values {
				k := indexKey(i)
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
		if obj.TypedArrayInfo != nil {
			for i := 0; i < obj.TypedArrayInfo.Length; i++ {
				k := indexKey(i)
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
		for _, k := range obj.OwnKeys() {
			if seen[k] {
				continue
			}
			desc, _ := obj.GetOwn(k)
			if desc.Enumerable {
				seen[k] = true
				keys = append(keys, k)
			} else {
				seen[k] = true
			}
		}
		proto := obj.Prototype()
		if proto == nil {
			break
		}
		id = *proto
	}
	return keys
}
