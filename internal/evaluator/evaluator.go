// Package evaluator implements the tree-walking evaluator of §4.8: the
// statement executor, expression evaluator, function/this/arguments
// machinery, and generator re-execution model. It is the Host the
// internal/ops abstract operations call back into.
package evaluator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// Realm holds the intrinsic objects every built-in and the evaluator itself
// need to reach: well-known prototypes and constructors, installed once by
// internal/builtins.Install (§4.9, §4.10). Fields are nil until installed;
// the evaluator degrades to prototype-less error objects until then, which
// is only ever true mid-bootstrap.
type Realm struct {
	ObjectPrototype   *runtime.ObjectID
	FunctionPrototype *runtime.ObjectID
	ArrayPrototype    *runtime.ObjectID
	StringPrototype   *runtime.ObjectID
	NumberPrototype   *runtime.ObjectID
	BooleanPrototype  *runtime.ObjectID
	SymbolPrototype   *runtime.ObjectID
	BigIntPrototype   *runtime.ObjectID
	RegExpPrototype   *runtime.ObjectID

	ErrorPrototype          *runtime.ObjectID
	TypeErrorPrototype      *runtime.ObjectID
	RangeErrorPrototype     *runtime.ObjectID
	ReferenceErrorPrototype *runtime.ObjectID
	SyntaxErrorPrototype    *runtime.ObjectID
	EvalErrorPrototype      *runtime.ObjectID
	URIErrorPrototype       *runtime.ObjectID

	GeneratorPrototype *runtime.ObjectID

	Global    *runtime.Environment
	GlobalObj runtime.ObjectID
}

// Evaluator is the root of the tree-walking interpreter (§4.8). One
// Evaluator owns one Heap and one Realm; it is not safe for concurrent use.
type Evaluator struct {
	Heap_ *runtime.Heap
	Realm *Realm
	log   *logrus.Entry

	// callStack backs GCRoots(): every live CallFrame's locals must survive
	// a collection triggered mid-call.
	callStack []*CallFrame

	// genReplay is the stack of currently-replaying generator bodies
	// (§4.8.5); yieldValue consults its top entry to decide whether a
	// YieldExpression is fast-forwarding through history or running live.
	genReplay []*genReplay
}

// CallFrame is one activation record (§4.8.4): the running function's
// environment chain root, its this-binding and new.target, and the
// function being run. Generator replay state lives in genReplay, not here.
type CallFrame struct {
	Env       *runtime.Environment
	This      runtime.Value
	NewTarget runtime.Value
	Function  *runtime.CallableData
	Label     string // diagnostic only
}

func New(log *logrus.Entry) *Evaluator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	heap := runtime.NewHeap(runtime.DefaultGCThreshold, log.WithField("component", "heap"))
	ev := &Evaluator{Heap_: heap, log: log}
	global := runtime.NewGlobalEnvironment(false)
	globalObjID := heap.Allocate(runtime.NewObject("global", nil))
	ev.Realm = &Realm{Global: global, GlobalObj: globalObjID}
	return ev
}

func (ev *Evaluator) Heap() *runtime.Heap { return ev.Heap_ }

// Log exposes the component-tagged logger: console.log and friends write
// through it at info level rather than writing to stdout directly.
func (ev *Evaluator) Log() *logrus.Entry { return ev.log }

// GCRoots implements runtime.RootProvider: the global environment, every
// live call frame's environment chain, and every prototype/constructor the
// realm has installed so far (§4.3).
func (ev *Evaluator) GCRoots() []runtime.Value {
	var roots []runtime.Value
	roots = append(roots, runtime.Object(ev.Realm.GlobalObj))
	envs := []*runtime.Environment{ev.Realm.Global}
	for _, frame := range ev.callStack {
		roots = append(roots, frame.This, frame.NewTarget)
		envs = append(envs, frame.Env)
	}
	for _, env := range envs {
		for e := env; e != nil; e = e.Parent() {
			for _, name := range e.OwnNames() {
				v, _ := e.Get(name) // an uninitialized binding yields Undefined
				roots = append(roots, v)
			}
		}
	}
	r := ev.Realm
	for _, p := range []*runtime.ObjectID{r.ObjectPrototype, r.FunctionPrototype, r.ArrayPrototype, r.StringPrototype, r.NumberPrototype, r.BooleanPrototype, r.SymbolPrototype, r.BigIntPrototype, r.RegExpPrototype, r.ErrorPrototype, r.TypeErrorPrototype, r.RangeErrorPrototype, r.ReferenceErrorPrototype, r.SyntaxErrorPrototype, r.EvalErrorPrototype, r.URIErrorPrototype, r.GeneratorPrototype} {
		if p != nil {
			roots = append(roots, runtime.Object(*p))
		}
	}
	return roots
}

func (ev *Evaluator) maybeCollect() {
	if ev.Heap_.ShouldCollect() {
		ev.Heap_.CollectGarbage(ev)
	}
}

// NewError allocates a plain Error-like object with the given prototype
// slot (may be nil pre-bootstrap), a message data property, and className
// "Error"; used by NewTypeError/NewRangeError and by throwing built-ins.
func (ev *Evaluator) NewError(proto *runtime.ObjectID, name, msg string) runtime.Value {
	obj := runtime.NewObject("Error", proto)
	obj.DefineOwn("message", runtime.DataProperty(runtime.StringFromGo(msg), true, false, true))
	obj.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(name), true, false, true))
	obj.DefineOwn("stack", runtime.DataProperty(runtime.StringFromGo(fmt.Sprintf("%s: %s", name, msg)), true, false, true))
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func (ev *Evaluator) NewTypeError(msg string) runtime.Value {
	return ev.NewError(ev.Realm.TypeErrorPrototype, "TypeError", msg)
}

func (ev *Evaluator) NewRangeError(msg string) runtime.Value {
	return ev.NewError(ev.Realm.RangeErrorPrototype, "RangeError", msg)
}

func (ev *Evaluator) NewReferenceError(msg string) runtime.Value {
	return ev.NewError(ev.Realm.ReferenceErrorPrototype, "ReferenceError", msg)
}

func (ev *Evaluator) NewSyntaxError(msg string) runtime.Value {
	return ev.NewError(ev.Realm.SyntaxErrorPrototype, "SyntaxError", msg)
}

// IsCallable implements ops.Host: true for any object whose callable_data
// internal slot is populated (§4.7, §4.9).
func (ev *Evaluator) IsCallable(v runtime.Value) bool {
	if !v.IsObject() {
		return false
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	return obj != nil && obj.Callable != nil
}

// IsConstructor reports whether v can be used as the callee of `new`
// (§4.9): every callable except an arrow function qualifies. Natives carry
// no constructor flag, so built-in methods and factory functions such as
// Symbol and BigInt are accepted by `new` as well.
func (ev *Evaluator) IsConstructor(v runtime.Value) bool {
	if !v.IsObject() {
		return false
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.Callable == nil {
		return false
	}
	if obj.Callable.Arrow {
		return false
	}
	return true
}

// boxPrimitive adapts ops.ToObject's BoxPrimitive hook to the evaluator's
// own boxed-wrapper constructors (internal/builtins wires the concrete
// prototypes in; until then this boxes with a nil prototype).
func (ev *Evaluator) boxPrimitive(h ops.Host, v runtime.Value) (runtime.Value, error) {
	var proto *runtime.ObjectID
	var class string
	switch v.Kind() {
	case runtime.KindBoolean:
		proto, class = ev.Realm.BooleanPrototype, "Boolean"
	case runtime.KindNumber:
		proto, class = ev.Realm.NumberPrototype, "Number"
	case runtime.KindString:
		proto, class = ev.Realm.StringPrototype, "String"
	case runtime.KindSymbol:
		proto, class = ev.Realm.SymbolPrototype, "Symbol"
	case runtime.KindBigInt:
		proto, class = ev.Realm.BigIntPrototype, "BigInt"
	}
	obj := runtime.NewObject(class, proto)
	obj.PrimitiveValue = &v
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id), nil
}

func (ev *Evaluator) ToObject(v runtime.Value) (runtime.Value, error) {
	return ops.ToObject(ev, v, ev.boxPrimitive)
}

func (ev *Evaluator) ToNumber(v runtime.Value) (runtime.Value, error)  { return ops.ToNumber(ev, v) }
func (ev *Evaluator) ToPrimitive(v runtime.Value, hint ops.Hint) (runtime.Value, error) {
	return ops.ToPrimitive(ev, v, hint)
}
func (ev *Evaluator) ToStringValue(v runtime.Value) (*runtime.JsString, error) {
	return ops.ToStringValue(ev, v)
}

// throwCompletion builds a Throw Completion from a Go error produced by an
// ops function: *ops.Thrown carries the exact Value to rethrow; anything
// else (a programmer error) is wrapped as an internal TypeError.
func (ev *Evaluator) throwCompletion(err error) runtime.Completion {
	if th, ok := err.(*ops.Thrown); ok {
		return th.Completion
	}
	return runtime.ThrowC(ev.NewTypeError(err.Error()))
}

// ThrowCompletion is the exported form of throwCompletion, used by
// internal/builtins (and any other package outside the evaluator) to turn
// an ops/Host error back into the Throw Completion it represents.
func (ev *Evaluator) ThrowCompletion(err error) runtime.Completion {
	return ev.throwCompletion(err)
}

// RunProgram executes a whole Program in the global environment (§4.8.1's
// Program entry point): top-level hoisting followed by each statement in
// order. Returns the completion of the last ExpressionStatement evaluated,
// mirroring a REPL's result value.
func (ev *Evaluator) RunProgram(prog *ast.Program) runtime.Completion {
	env := ev.Realm.Global
	hoistBlockScoped(env, prog.Body)
	hoistVarScoped(ev, env, prog.Body)
	var last runtime.Completion
	for _, stmt := range prog.Body {
		c := ev.ExecuteStatement(stmt, env)
		ev.maybeCollect()
		if c.IsAbrupt() {
			return c
		}
		if stmt != nil {
			if _, ok := stmt.(*ast.ExpressionStatement); ok {
				last = c
			}
		}
	}
	return last
}
