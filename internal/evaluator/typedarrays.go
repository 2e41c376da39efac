package evaluator

import (
	"encoding/binary"
	"math"

	"github.com/pmatos/jsse/internal/runtime"
)

// readTypedArrayElement and writeTypedArrayElement implement the
// IntegerIndexedElementGet/Set abstract operations (§4.11): every view
// reads/writes its backing ArrayBufferData in little-endian order
// regardless of host byte order, the fixed %TypedArray% storage layout.
// DataView, whose byte order defaults to big-endian, uses its own codec in
// internal/builtins.
func readTypedArrayElement(info *runtime.TypedArrayInfo, idx int) (runtime.Value, bool) {
	if info.IsDetached() || idx < 0 || idx >= info.Length {
		return runtime.Undefined, false
	}
	size := info.Kind.ElementSize()
	off := info.ByteOffset + idx*size
	buf := info.Buffer.Data[off : off+size]
	return decodeElement(info.Kind, buf), true
}

func writeTypedArrayElement(info *runtime.TypedArrayInfo, idx int, v float64) bool {
	if info.IsDetached() || idx < 0 || idx >= info.Length {
		return false
	}
	size := info.Kind.ElementSize()
	off := info.ByteOffset + idx*size
	buf := info.Buffer.Data[off : off+size]
	encodeElement(info.Kind, buf, v)
	return true
}

func decodeElement(kind runtime.ElementKind, buf []byte) runtime.Value {
	switch kind {
	case runtime.ElemInt8:
		return runtime.Number(float64(int8(buf[0])))
	case runtime.ElemUint8, runtime.ElemUint8Clamped:
		return runtime.Number(float64(buf[0]))
	case runtime.ElemInt16:
		return runtime.Number(float64(int16(binary.LittleEndian.Uint16(buf))))
	case runtime.ElemUint16:
		return runtime.Number(float64(binary.LittleEndian.Uint16(buf)))
	case runtime.ElemInt32:
		return runtime.Number(float64(int32(binary.LittleEndian.Uint32(buf))))
	case runtime.ElemUint32:
		return runtime.Number(float64(binary.LittleEndian.Uint32(buf)))
	case runtime.ElemFloat32:
		return runtime.Number(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))))
	case runtime.ElemFloat64:
		return runtime.Number(math.Float64frombits(binary.LittleEndian.Uint64(buf)))
	}
	return runtime.Number(0)
}

func encodeElement(kind runtime.ElementKind, buf []byte, v float64) {
	switch kind {
	case runtime.ElemInt8:
		buf[0] = byte(int8(clampToInt(v, -128, 127)))
	case runtime.ElemUint8:
		buf[0] = byte(uint8(clampToInt(v, 0, 255)))
	case runtime.ElemUint8Clamped:
		if math.IsNaN(v) {
			v = 0
		}
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		buf[0] = byte(math.RoundToEven(v))
	case runtime.ElemInt16:
		binary.LittleEndian.PutUint16(buf, uint16(int16(clampToInt(v, -32768, 32767))))
	case runtime.ElemUint16:
		binary.LittleEndian.PutUint16(buf, uint16(clampToInt(v, 0, 65535)))
	case runtime.ElemInt32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(int64(v))))
	case runtime.ElemUint32:
		binary.LittleEndian.PutUint32(buf, uint32(int64(v)))
	case runtime.ElemFloat32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case runtime.ElemFloat64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
}

func clampToInt(v float64, lo, hi int64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	n := int64(v)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
