package runtime

import (
	"github.com/dlclark/regexp2"

	"github.com/pmatos/jsse/internal/ast"
)

// RegExpData backs the RegExp exotic object's internal slots (§4.10 item
// 11): Compiled is built once at construction time from Source/Flags by
// regexp2, the pack's ECMAScript-flavored engine (Go's stdlib regexp is
// RE2-based and can't express backreferences or lookaround).
type RegExpData struct {
	Source   string
	Flags    string
	Compiled *regexp2.Regexp
}

// NativeFunc is the signature of a host-backed function (§4.8.4, "Native
// functions receive (interpreter, this, args) and return a Completion
// directly"). The interpreter is passed as `any` to avoid an import cycle
// between runtime and the evaluator.
type NativeFunc func(interp any, this Value, args []Value) Completion

// CallableData is the callable internal slot (§3.2): either a User function
// (parameters, body, captured environment, strict/arrow/generator flags) or
// a Native function (name, arity, host pointer). Exactly one of Body/Native
// is set.
type CallableData struct {
	Name      string
	Params    []ast.Param
	Body      ast.Node // *ast.BlockStatement, or an Expression for arrow concise bodies
	Closure   *Environment
	Strict    bool
	Arrow     bool
	Generator bool
	Async     bool

	Native NativeFunc
	Arity  int

	// HomeObject supports `super` resolution for methods (§4.9).
	HomeObject *ObjectID
	// ConstructorKind distinguishes base/derived class constructors for
	// `super(...)` dispatch; empty for ordinary functions.
	ConstructorKind string
	// FieldInitializers runs instance field initializers during
	// [[Construct]] for class instances (§4.8's class semantics).
	FieldInitializers []ast.FieldDefinition
	// GeneratorProto is the per-function generator prototype object
	// (Generator == true only) that each generator instance this function
	// produces links to, installed as the function's own "prototype".
	GeneratorProto *ObjectID
}

func (c *CallableData) IsNative() bool { return c.Native != nil }

// ArrayElementsData backs the dense-vector optimization for true Arrays
// (§3.2); Values[i] and the "length" property are kept in sync by the
// evaluator's array-mutation helpers.
type ArrayElementsData struct {
	Values []Value
}

// ParameterMapEntry links one mapped-arguments index back to the parameter
// binding it mirrors (§4.4 Get/Set, mapped arguments).
type ParameterMapEntry struct {
	Env  *Environment
	Name string
}

// ParameterMap backs non-strict simple-parameter `arguments` objects
// (§3.2, §4.8.4 step 3).
type ParameterMap struct {
	Entries map[int]ParameterMapEntry
}

// PrivateFieldKind distinguishes private class members (§3.2).
type PrivateFieldKind uint8

const (
	PrivateField_Field PrivateFieldKind = iota
	PrivateField_Method
	PrivateField_Accessor
)

type PrivateField struct {
	Kind  PrivateFieldKind
	Value Value
	Get   Value
	Set   Value
}

// MapSetEntry is one slot of a Map/Set backing store; Deleted marks a
// tombstone left by a deletion so live iterators stay valid (§4.4's
// "map_data/set_data: insertion-ordered vectors ... with tombstones").
type MapSetEntry struct {
	Key     Value
	Value   Value // unused for Set
	Deleted bool
}

// MapSetData is scanned linearly under SameValueZero for lookups; Map/Set
// instances in a tree-walking conformance interpreter are small enough that
// this trades a hash index for the simplicity of the tombstone-vector model
// the spec describes directly.
type MapSetData struct {
	Entries []MapSetEntry
}

func NewMapSetData() *MapSetData { return &MapSetData{} }

// Find returns the live entry index matching key under SameValueZero, or -1.
func (m *MapSetData) Find(key Value) int {
	for i, e := range m.Entries {
		if !e.Deleted && SameValueZero(e.Key, key) {
			return i
		}
	}
	return -1
}

// IteratorKind distinguishes the family of objects holding iterator_state
// (§3.2).
type IteratorKind uint8

const (
	IterArray IteratorKind = iota
	IterString
	IterMap
	IterSet
	IterGenerator
)

// IterResultKind selects key/value/entries for collection iterators.
type IterResultKind uint8

const (
	IterKeys IterResultKind = iota
	IterValues
	IterEntries
)

type IteratorState struct {
	Kind      IteratorKind
	Target    Value // the array/string/map/set being iterated
	ResultKey IterResultKind
	Cursor    int
	Done      bool

	Generator *GeneratorContext
}

// GeneratorContext is the re-execute-from-top generator state of §4.8.5:
// every call to .next()/.throw() replays Callable's body from statement
// one, fast-forwarding through the first TargetYield YieldExpressions by
// resolving them to their recorded History entry instead of evaluating
// them live. ThrowAtIndex/ThrowValue inject a .throw() at the yield point
// being resumed; -1 means no pending injected throw.
type GeneratorContext struct {
	Callable    *CallableData
	Args        []Value
	This        Value
	NewTarget   Value
	TargetYield int
	History     []Value
	ThrowAtIndex int
	ThrowValue   Value
	Done         bool
	DebugID      string // opaque id for diagnostics, distinguishing concurrently live generator contexts
}
