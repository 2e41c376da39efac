package builtins

import (
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// installCollections builds Map, Set, WeakMap, and WeakSet. Grounded on
// runtime.MapSetData's own doc comment describing it as an
// insertion-ordered tombstone vector scanned under SameValueZero;
// everything here is the thinnest possible wrapper around that data
// structure's Find/Entries, in the same one-method-per-closure style as
// the other installers.
func (c *ctx) installCollections() {
	c.installMap()
	c.installSet()
	c.installWeakMap()
	c.installWeakSet()
}

func (c *ctx) installMap() {
	ev := c.ev
	proto := runtime.NewObject("Map", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.getter(proto, "size", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(liveCount(m))))
	})
	c.method(proto, "get", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			return runtime.NormalC(m.Entries[i].Value)
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "set", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		key, val := arg(args, 0), arg(args, 1)
		if i := m.Find(key); i >= 0 {
			m.Entries[i].Value = val
		} else {
			m.Entries = append(m.Entries, runtime.MapSetEntry{Key: key, Value: val})
		}
		return runtime.NormalC(this)
	})
	c.method(proto, "has", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(m.Find(arg(args, 0)) >= 0))
	})
	c.method(proto, "delete", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			m.Entries[i].Deleted = true
			return runtime.NormalC(runtime.True)
		}
		return runtime.NormalC(runtime.False)
	})
	c.method(proto, "clear", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m.Entries = nil
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "forEach", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		cb := arg(args, 0)
		for _, e := range append([]runtime.MapSetEntry(nil), m.Entries...) {
			if e.Deleted {
				continue
			}
			res := ev.Call(cb, arg(args, 1), []runtime.Value{e.Value, e.Key, this})
			if res.Type == runtime.Throw {
				return res
			}
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "keys", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(newMapSetIterator(ev, this, mapKeys))
	})
	c.method(proto, "values", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(newMapSetIterator(ev, this, mapValues))
	})
	c.method(proto, "entries", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(newMapSetIterator(ev, this, mapEntries))
	})
	if desc, ok := proto.GetOwn("entries"); ok {
		proto.DefineOwn(runtime.SymIterator, desc)
	}

	ctor := ev.NewNativeFunction("Map", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		obj := runtime.NewObject("Map", &protoID)
		obj.MapData = runtime.NewMapSetData()
		id := ev.Heap_.Allocate(obj)
		result := runtime.Object(id)
		if len(args) > 0 && !args[0].IsNullish() {
			c := iterateInitEntries(ev, args[0], func(k, v runtime.Value) runtime.Completion {
				obj.MapData.Entries = append(obj.MapData.Entries, runtime.MapSetEntry{Key: k, Value: v})
				return runtime.NormalC(runtime.Undefined)
			})
			if c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalC(result)
	})
	setCtorProto(ev, ctor, proto, protoID)
	c.declareGlobal("Map", ctor)
}

func (c *ctx) installSet() {
	ev := c.ev
	proto := runtime.NewObject("Set", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.getter(proto, "size", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(liveCount(m))))
	})
	c.method(proto, "add", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v := arg(args, 0)
		if m.Find(v) < 0 {
			m.Entries = append(m.Entries, runtime.MapSetEntry{Key: v})
		}
		return runtime.NormalC(this)
	})
	c.method(proto, "has", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(m.Find(arg(args, 0)) >= 0))
	})
	c.method(proto, "delete", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			m.Entries[i].Deleted = true
			return runtime.NormalC(runtime.True)
		}
		return runtime.NormalC(runtime.False)
	})
	c.method(proto, "clear", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m.Entries = nil
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "forEach", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		cb := arg(args, 0)
		for _, e := range append([]runtime.MapSetEntry(nil), m.Entries...) {
			if e.Deleted {
				continue
			}
			res := ev.Call(cb, arg(args, 1), []runtime.Value{e.Key, e.Key, this})
			if res.Type == runtime.Throw {
				return res
			}
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "values", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(newMapSetIterator(ev, this, mapKeys))
	})
	if desc, ok := proto.GetOwn("values"); ok {
		proto.DefineOwn("keys", desc)
		proto.DefineOwn(runtime.SymIterator, desc)
	}

	ctor := ev.NewNativeFunction("Set", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		obj := runtime.NewObject("Set", &protoID)
		obj.SetData = runtime.NewMapSetData()
		id := ev.Heap_.Allocate(obj)
		result := runtime.Object(id)
		if len(args) > 0 && !args[0].IsNullish() {
			c := iterateValues(ev, args[0], func(v runtime.Value) runtime.Completion {
				if obj.SetData.Find(v) < 0 {
					obj.SetData.Entries = append(obj.SetData.Entries, runtime.MapSetEntry{Key: v})
				}
				return runtime.NormalC(runtime.Undefined)
			})
			if c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalC(result)
	})
	setCtorProto(ev, ctor, proto, protoID)
	c.declareGlobal("Set", ctor)
}

// installWeakMap/installWeakSet reuse the same MapSetData backing store:
// a tree-walking conformance interpreter has no weak-reference GC
// integration to speak of, so "weak" here means only "not iterable, no
// size" (the WeakMap/WeakSet surface described in §4.9).
func (c *ctx) installWeakMap() {
	ev := c.ev
	proto := runtime.NewObject("WeakMap", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.method(proto, "get", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			return runtime.NormalC(m.Entries[i].Value)
		}
		return runtime.NormalC(runtime.Undefined)
	})
	c.method(proto, "set", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		key := arg(args, 0)
		if !key.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Invalid value used as weak map key"))
		}
		val := arg(args, 1)
		if i := m.Find(key); i >= 0 {
			m.Entries[i].Value = val
		} else {
			m.Entries = append(m.Entries, runtime.MapSetEntry{Key: key, Value: val})
		}
		return runtime.NormalC(this)
	})
	c.method(proto, "has", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(m.Find(arg(args, 0)) >= 0))
	})
	c.method(proto, "delete", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := mapData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			m.Entries[i].Deleted = true
			return runtime.NormalC(runtime.True)
		}
		return runtime.NormalC(runtime.False)
	})

	ctor := ev.NewNativeFunction("WeakMap", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		obj := runtime.NewObject("WeakMap", &protoID)
		obj.MapData = runtime.NewMapSetData()
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	setCtorProto(ev, ctor, proto, protoID)
	c.declareGlobal("WeakMap", ctor)
}

func (c *ctx) installWeakSet() {
	ev := c.ev
	proto := runtime.NewObject("WeakSet", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.method(proto, "add", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v := arg(args, 0)
		if !v.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Invalid value used in weak set"))
		}
		if m.Find(v) < 0 {
			m.Entries = append(m.Entries, runtime.MapSetEntry{Key: v})
		}
		return runtime.NormalC(this)
	})
	c.method(proto, "has", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(m.Find(arg(args, 0)) >= 0))
	})
	c.method(proto, "delete", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := setData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if i := m.Find(arg(args, 0)); i >= 0 {
			m.Entries[i].Deleted = true
			return runtime.NormalC(runtime.True)
		}
		return runtime.NormalC(runtime.False)
	})

	ctor := ev.NewNativeFunction("WeakSet", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		obj := runtime.NewObject("WeakSet", &protoID)
		obj.SetData = runtime.NewMapSetData()
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	setCtorProto(ev, ctor, proto, protoID)
	c.declareGlobal("WeakSet", ctor)
}

func setCtorProto(ev *evaluator.Evaluator, ctor runtime.Value, proto *runtime.Object, protoID runtime.ObjectID) {
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctor, true, false, true))
}

func mapData(ev *evaluator.Evaluator, this runtime.Value) (*runtime.MapSetData, error) {
	if !this.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(this.AsObjectID())
	if obj == nil || obj.MapData == nil {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.MapData, nil
}

func setData(ev *evaluator.Evaluator, this runtime.Value) (*runtime.MapSetData, error) {
	if !this.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(this.AsObjectID())
	if obj == nil || obj.SetData == nil {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.SetData, nil
}

func liveCount(m *runtime.MapSetData) int {
	n := 0
	for _, e := range m.Entries {
		if !e.Deleted {
			n++
		}
	}
	return n
}

type mapSetIterKind int

const (
	mapKeys mapSetIterKind = iota
	mapValues
	mapEntries
)

// newMapSetIterator builds a stateful Symbol.iterator object over a
// Map/Set's MapData/SetData, in the same self-contained-closure style as
// array.go's newArrayIterator (the evaluator's own fast iterator is
// unexported).
func newMapSetIterator(ev *evaluator.Evaluator, target runtime.Value, kind mapSetIterKind) runtime.Value {
	obj := runtime.NewObject("Map Iterator", ev.Realm.ObjectPrototype)
	id := ev.Heap_.Allocate(obj)
	cursor := 0
	next := ev.NewNativeFunction("next", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		tobj := ev.Heap_.Get(target.AsObjectID())
		var entries []runtime.MapSetEntry
		if tobj.MapData != nil {
			entries = tobj.MapData.Entries
		} else if tobj.SetData != nil {
			entries = tobj.SetData.Entries
		}
		for cursor < len(entries) {
			e := entries[cursor]
			cursor++
			if e.Deleted {
				continue
			}
			switch kind {
			case mapKeys:
				return runtime.NormalC(iterResult(ev, e.Key, false))
			case mapValues:
				return runtime.NormalC(iterResult(ev, e.Value, false))
			default:
				return runtime.NormalC(iterResult(ev, ev.NewArray([]runtime.Value{e.Key, e.Value}), false))
			}
		}
		return runtime.NormalC(iterResult(ev, runtime.Undefined, true))
	})
	obj.DefineOwn("next", runtime.DataProperty(next, true, false, true))
	selfIter := ev.NewNativeFunction(string(runtime.SymIterator), 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(this)
	})
	obj.DefineOwn(runtime.SymIterator, runtime.DataProperty(selfIter, true, false, true))
	return runtime.Object(id)
}

// iterateValues calls fn for each value of source, for constructors like
// `new Set(iterable)`: an Array's dense elements in order, otherwise the
// values of source's own enumerable string keys. It does not use the
// iterator protocol, so strings, Maps, Sets and generators yield no values.
func iterateValues(ev *evaluator.Evaluator, source runtime.Value, fn func(v runtime.Value) runtime.Completion) runtime.Completion {
	keys := ownEnumerableStringKeys(ev, source)
	obj := ev.Heap_.Get(source.AsObjectID())
	if obj != nil && obj.ArrayElements != nil {
		for _, v := range obj.ArrayElements.Values {
			if c := fn(v); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalC(runtime.Undefined)
	}
	for _, k := range keys {
		v, err := ev.GetProperty(source, k)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if c := fn(v); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}

// iterateInitEntries drives a source of [key, value] pairs (an array of
// 2-element arrays, as `new Map(entries)` expects) through fn.
func iterateInitEntries(ev *evaluator.Evaluator, source runtime.Value, fn func(k, v runtime.Value) runtime.Completion) runtime.Completion {
	return iterateValues(ev, source, func(pair runtime.Value) runtime.Completion {
		k, err := ev.GetProperty(pair, "0")
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v, err := ev.GetProperty(pair, "1")
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return fn(k, v)
	})
}
