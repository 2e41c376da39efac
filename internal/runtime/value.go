// Package runtime implements the value & object model (spec §3, §4.1-§4.6):
// the tagged Value, JsString, the object store and its mark-sweep
// collector, Object, Environment, and Completion.
package runtime

import "math/big"

// Kind discriminates a Value's active variant (§3.1).
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is the tagged scalar described by §3.1: exactly one of its payload
// fields is meaningful, selected by Kind. It is a plain struct so it is
// cheap to copy and pass by value, as the spec requires.
type Value struct {
	kind Kind
	b    bool
	n    float64
	big  *big.Int
	str  *JsString
	sym  *Symbol
	obj  ObjectID
}

// ObjectID is a slot index into the heap (§3.1's "64-bit slot index").
type ObjectID uint64

var (
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, b: true}
	False     = Value{kind: KindBoolean, b: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func BigIntValue(b *big.Int) Value { return Value{kind: KindBigInt, big: b} }

func String(s *JsString) Value { return Value{kind: KindString, str: s} }

func StringFromGo(s string) Value { return Value{kind: KindString, str: NewJsStringFromUTF8(s)} }

func SymbolValue(s *Symbol) Value { return Value{kind: KindSymbol, sym: s} }

func Object(id ObjectID) Value { return Value{kind: KindObject, obj: id} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsBigInt() bool    { return v.kind == KindBigInt }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }
func (v Value) IsObject() bool    { return v.kind == KindObject }

func (v Value) AsBool() bool        { return v.b }
func (v Value) AsNumber() float64   { return v.n }
func (v Value) AsBigInt() *big.Int  { return v.big }
func (v Value) AsString() *JsString { return v.str }
func (v Value) AsSymbol() *Symbol   { return v.sym }
func (v Value) AsObjectID() ObjectID { return v.obj }

// Symbol is the payload of a Symbol-kinded Value: a unique id plus an
// optional description (§3.1).
type Symbol struct {
	ID          uint64
	Description string
	WellKnown   string // "" unless this is a well-known symbol (iterator, ...)
}

// WellKnownSymbolKinds enumerates the protocol symbols used by the
// evaluator and built-ins (§3.1 "well-known symbols share an enumeration").
const (
	SymIterator      = "Symbol.iterator"
	SymAsyncIterator = "Symbol.asyncIterator"
	SymToStringTag   = "Symbol.toStringTag"
	SymToPrimitive   = "Symbol.toPrimitive"
	SymSpecies       = "Symbol.species"
	SymHasInstance   = "Symbol.hasInstance"
	SymUnscopables   = "Symbol.unscopables"
)
