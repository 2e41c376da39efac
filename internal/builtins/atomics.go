package builtins

import (
	"encoding/binary"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// installAtomics builds the Atomics namespace (§4.10 item 2): the
// read-modify-write opcode set operating directly on a TypedArray's
// backing ArrayBufferData, the same byte-slice/ElementKind machinery
// installTypedArrayKind's property get/set trap and DataView already
// share in typedarray.go. Atomics here is restricted to the integer
// kinds (Int8/Uint8/Int16/Uint16/Int32/Uint32): this interpreter has no
// BigInt-backed typed array element codec (decodeElementExported has no
// BigInt64/BigUint64 case), so wiring Atomics.add et al. to those two
// kinds would silently truncate every 64-bit operand; narrowing the
// surface is preferable to a codec that lies.
func (c *ctx) installAtomics() {
	ev := c.ev
	atomics := runtime.NewObject("Atomics", ev.Realm.ObjectPrototype)
	atomicsID := ev.Heap_.Allocate(atomics)

	rmw := func(name string, combine func(old, operand int64) int64) {
		c.method(atomics, name, 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			operand, err := ev.ToNumber(arg(args, 2))
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			old := decodeElementExported(info.Kind, buf, binary.LittleEndian)
			next := combine(int64(old.AsNumber()), int64(operand.AsNumber()))
			encodeElementExported(info.Kind, buf, float64(next), binary.LittleEndian)
			return runtime.NormalC(old)
		})
	}
	rmw("add", func(old, operand int64) int64 { return old + operand })
	rmw("sub", func(old, operand int64) int64 { return old - operand })
	rmw("and", func(old, operand int64) int64 { return old & operand })
	rmw("or", func(old, operand int64) int64 { return old | operand })
	rmw("xor", func(old, operand int64) int64 { return old ^ operand })
	rmw("exchange", func(old, operand int64) int64 { return operand })

	c.method(atomics, "compareExchange", 4, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		expected, err := ev.ToNumber(arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		replacement, err := ev.ToNumber(arg(args, 3))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		old := decodeElementExported(info.Kind, buf, binary.LittleEndian)
		if old.AsNumber() == expected.AsNumber() {
			encodeElementExported(info.Kind, buf, replacement.AsNumber(), binary.LittleEndian)
		}
		return runtime.NormalC(old)
	})
	c.method(atomics, "load", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(decodeElementExported(info.Kind, buf, binary.LittleEndian))
	})
	c.method(atomics, "store", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v, err := ev.ToNumber(arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		encodeElementExported(info.Kind, buf, v.AsNumber(), binary.LittleEndian)
		return runtime.NormalC(v)
	})
	c.method(atomics, "isLockFree", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		n, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		switch int(n.AsNumber()) {
		case 1, 2, 4, 8:
			return runtime.NormalC(runtime.True)
		}
		return runtime.NormalC(runtime.False)
	})

	// wait/notify/waitAsync describe cross-agent blocking in the standard;
	// this evaluator runs a single goroutine per Realm with no second agent
	// that could ever call notify, so wait/waitAsync report the fixed
	// "not-equal"/immediate outcomes the spec allows for a lone agent and
	// notify always wakes zero waiters.
	c.method(atomics, "wait", 4, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		expected, err := ev.ToNumber(arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		current := decodeElementExported(info.Kind, buf, binary.LittleEndian)
		if current.AsNumber() != expected.AsNumber() {
			return runtime.NormalC(runtime.StringFromGo("not-equal"))
		}
		return runtime.NormalC(runtime.StringFromGo("timed-out"))
	})
	c.method(atomics, "notify", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if _, _, err := atomicsTarget(ev, arg(args, 0), arg(args, 1)); err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(0))
	})
	c.method(atomics, "waitAsync", 4, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, buf, err := atomicsTarget(ev, arg(args, 0), arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		expected, err := ev.ToNumber(arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		current := decodeElementExported(info.Kind, buf, binary.LittleEndian)
		result := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
		result.DefineOwn("async", runtime.DataProperty(runtime.False, true, true, true))
		if current.AsNumber() != expected.AsNumber() {
			result.DefineOwn("value", runtime.DataProperty(runtime.StringFromGo("not-equal"), true, true, true))
		} else {
			result.DefineOwn("value", runtime.DataProperty(runtime.StringFromGo("timed-out"), true, true, true))
		}
		id := ev.Heap_.Allocate(result)
		return runtime.NormalC(runtime.Object(id))
	})

	c.declareGlobal("Atomics", runtime.Object(atomicsID))
}

// atomicsTarget resolves a (typedArray, index) pair to its element's byte
// slice, rejecting the float/clamped kinds and any index out of bounds.
func atomicsTarget(ev *evaluator.Evaluator, target, indexArg runtime.Value) (*runtime.TypedArrayInfo, []byte, error) {
	info, err := typedArrayData(ev, target)
	if err != nil {
		return nil, nil, err
	}
	switch info.Kind {
	case runtime.ElemInt8, runtime.ElemUint8, runtime.ElemInt16, runtime.ElemUint16, runtime.ElemInt32, runtime.ElemUint32:
	default:
		return nil, nil, typeErr(ev, "Atomics operation not supported on this TypedArray kind")
	}
	n, err := ev.ToNumber(indexArg)
	if err != nil {
		return nil, nil, err
	}
	idx := int(n.AsNumber())
	if info.IsDetached() || idx < 0 || idx >= info.Length {
		return nil, nil, rangeErr(ev, "index out of range")
	}
	size := info.Kind.ElementSize()
	off := info.ByteOffset + idx*size
	return info, info.Buffer.Data[off : off+size], nil
}
