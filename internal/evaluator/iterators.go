package evaluator

import (
	"unicode/utf16"

	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// jsIterator is the evaluator-side handle returned by GetIterator: either a
// user iterator object (driven through its .next() method) or one of the
// built-in fast paths (array/string) the evaluator can walk directly
// without waiting for internal/builtins to install Symbol.iterator methods.
type jsIterator struct {
	fast    *fastIterState
	wrapped runtime.Value // the iterator object, when not a fast path
}

type fastIterKind uint8

const (
	fastArray fastIterKind = iota
	fastString
)

type fastIterState struct {
	kind   fastIterKind
	values []runtime.Value
	units  []uint16
	cursor int
}

// GetIterator implements GetIterator (§4.8's iteration protocol, §7.4 of
// the wider ECMAScript spec): consults Symbol.iterator first so a
// user-authored iterable always wins, falling back to array/string fast
// paths when no such method is installed yet.
func (ev *Evaluator) GetIterator(v runtime.Value) (*jsIterator, error) {
	if v.IsObject() {
		obj := ev.Heap_.Get(v.AsObjectID())
		if obj != nil {
			if method, ok := ev.lookupIteratorMethod(v); ok {
				res := ev.Call(method, v, nil)
				if res.Type == runtime.Throw {
					return nil, &ops.Thrown{Completion: res}
				}
				return &jsIterator{wrapped: res.Value}, nil
			}
			if obj.ArrayElements != nil {
				return &jsIterator{fast: &fastIterState{kind: fastArray, values: obj.ArrayElements.Values}}, nil
			}
		}
	}
	if v.IsString() {
		return &jsIterator{fast: &fastIterState{kind: fastString, units: v.AsString().Units()}}, nil
	}
	return nil, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("value is not iterable"))}
}

func (ev *Evaluator) lookupIteratorMethod(v runtime.Value) (runtime.Value, bool) {
	val, err := ev.GetProperty(v, runtime.SymIterator)
	if err != nil || !ev.IsCallable(val) {
		return runtime.Undefined, false
	}
	return val, true
}

// IteratorStep advances it, returning (value, done, error). A done result
// carries Undefined.
func (ev *Evaluator) IteratorStep(it *jsIterator) (runtime.Value, bool, error) {
	if it.fast != nil {
		return it.fast.step()
	}
	nextFn, err := ev.GetProperty(it.wrapped, "next")
	if err != nil {
		return runtime.Undefined, false, err
	}
	if !ev.IsCallable(nextFn) {
		return runtime.Undefined, false, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("iterator.next is not a function"))}
	}
	res := ev.Call(nextFn, it.wrapped, nil)
	if res.Type == runtime.Throw {
		return runtime.Undefined, false, &ops.Thrown{Completion: res}
	}
	if !res.Value.IsObject() {
		return runtime.Undefined, false, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("iterator result is not an object"))}
	}
	done, err := ev.GetProperty(res.Value, "done")
	if err != nil {
		return runtime.Undefined, false, err
	}
	value, err := ev.GetProperty(res.Value, "value")
	if err != nil {
		return runtime.Undefined, false, err
	}
	return value, ops.ToBoolean(done), nil
}

func (f *fastIterState) step() (runtime.Value, bool, error) {
	switch f.kind {
	case fastArray:
		if f.cursor >= len(f.values) {
			return runtime.Undefined, true, nil
		}
		v := f.values[f.cursor]
		f.cursor++
		return v, false, nil
	case fastString:
		if f.cursor >= len(f.units) {
			return runtime.Undefined, true, nil
		}
		u := f.units[f.cursor]
		if utf16.IsSurrogate(rune(u)) && f.cursor+1 < len(f.units) {
			pair := []uint16{u, f.units[f.cursor+1]}
			f.cursor += 2
			return runtime.String(runtime.NewJsString(pair)), false, nil
		}
		f.cursor++
		return runtime.String(runtime.NewJsString([]uint16{u})), false, nil
	}
	return runtime.Undefined, true, nil
}

// IteratorClose runs the optional .return() cleanup method (§ iteration
// protocol's IteratorClose); errors are swallowed since this only ever
// runs while another completion (break/throw) is already propagating.
func (ev *Evaluator) IteratorClose(it *jsIterator) {
	if it == nil || it.fast != nil || !it.wrapped.IsObject() {
		return
	}
	retFn, err := ev.GetProperty(it.wrapped, "return")
	if err != nil || !ev.IsCallable(retFn) {
		return
	}
	ev.Call(retFn, it.wrapped, nil)
}
