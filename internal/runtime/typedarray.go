package runtime

// ElementKind enumerates the eleven fixed TypedArray element types (§3.2,
// §4.11).
type ElementKind uint8

const (
	ElemInt8 ElementKind = iota
	ElemUint8
	ElemUint8Clamped
	ElemInt16
	ElemUint16
	ElemInt32
	ElemUint32
	ElemFloat32
	ElemFloat64
	ElemBigInt64
	ElemBigUint64
)

// ElementSize returns the byte width of one element of the given kind.
func (k ElementKind) ElementSize() int {
	switch k {
	case ElemInt8, ElemUint8, ElemUint8Clamped:
		return 1
	case ElemInt16, ElemUint16:
		return 2
	case ElemInt32, ElemUint32, ElemFloat32:
		return 4
	case ElemFloat64, ElemBigInt64, ElemBigUint64:
		return 8
	}
	return 1
}

func (k ElementKind) IsBigInt() bool { return k == ElemBigInt64 || k == ElemBigUint64 }

func (k ElementKind) String() string {
	switch k {
	case ElemInt8:
		return "Int8"
	case ElemUint8:
		return "Uint8"
	case ElemUint8Clamped:
		return "Uint8Clamped"
	case ElemInt16:
		return "Int16"
	case ElemUint16:
		return "Uint16"
	case ElemInt32:
		return "Int32"
	case ElemUint32:
		return "Uint32"
	case ElemFloat32:
		return "Float32"
	case ElemFloat64:
		return "Float64"
	case ElemBigInt64:
		return "BigInt64"
	case ElemBigUint64:
		return "BigUint64"
	}
	return "Unknown"
}

// ArrayBufferData is the backing byte vector shared (by reference) between
// every view over it (§3.2, §4.11). Detach zeroes Data and sets Detached;
// per §5 "existing borrows to the old vector must have already released" —
// views hold a pointer to this struct, not a copy of Data, so detachment is
// visible to every view without further coordination.
type ArrayBufferData struct {
	Data     []byte
	Detached bool
	MaxByteLength int // -1 if not resizable
}

func (b *ArrayBufferData) Detach() {
	b.Data = nil
	b.Detached = true
}

func (b *ArrayBufferData) ByteLength() int {
	if b.Detached {
		return 0
	}
	return len(b.Data)
}

// TypedArrayInfo is the typed_array_info internal slot (§3.2).
type TypedArrayInfo struct {
	Kind       ElementKind
	Buffer     *ArrayBufferData
	ByteOffset int
	ByteLength int
	Length     int // element count
}

func (t *TypedArrayInfo) IsDetached() bool { return t.Buffer == nil || t.Buffer.Detached }

// DataViewInfo is the data_view_info internal slot (§3.2).
type DataViewInfo struct {
	Buffer     *ArrayBufferData
	ByteOffset int
	ByteLength int
}

func (d *DataViewInfo) IsDetached() bool { return d.Buffer == nil || d.Buffer.Detached }
