package evaluator

import (
	"github.com/google/uuid"

	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// genReplay is the evaluator-global state driving the active generator's
// re-execution (§4.8.5: "generators run by re-executing their body from
// the top on every resume, fast-forwarding through already-yielded
// points"). Only one generator body can be actively replaying at a time in
// this single-threaded evaluator, so a stack mirrors nested generator
// delegation (`yield*` into another generator).
type genReplay struct {
	ctx   *runtime.GeneratorContext
	index int // number of YieldExpressions evaluated so far this replay
}

// newGeneratorObject implements GeneratorFunction's [[Call]] (§4.8.5): it
// does not run the body at all; it only builds the iterator object a
// subsequent .next() call drives.
func (ev *Evaluator) newGeneratorObject(c *runtime.CallableData, this runtime.Value, args []runtime.Value, newTarget runtime.Value) runtime.Value {
	ctx := &runtime.GeneratorContext{Callable: c, Args: args, This: this, NewTarget: newTarget, ThrowAtIndex: -1, DebugID: uuid.New().String()}
	proto := c.GeneratorProto
	if proto == nil {
		proto = ev.Realm.GeneratorPrototype
	}
	obj := runtime.NewObject("Generator", proto)
	obj.IteratorState = &runtime.IteratorState{Kind: runtime.IterGenerator, Generator: ctx}
	id := ev.Heap_.Allocate(obj)
	genVal := runtime.Object(id)
	obj.DefineOwn("next", runtime.DataProperty(ev.NewNativeFunction("next", 1, genNextNative), true, false, true))
	obj.DefineOwn("return", runtime.DataProperty(ev.NewNativeFunction("return", 1, genReturnNative), true, false, true))
	obj.DefineOwn("throw", runtime.DataProperty(ev.NewNativeFunction("throw", 1, genThrowNative), true, false, true))
	obj.DefineOwn(runtime.SymIterator, runtime.DataProperty(ev.NewNativeFunction("[Symbol.iterator]", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(this)
	}), true, false, true))
	return genVal
}

func (ev *Evaluator) makeIterResult(value runtime.Value, done bool) runtime.Value {
	obj := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
	obj.DefineOwn("value", runtime.DataProperty(value, true, true, true))
	obj.DefineOwn("done", runtime.DataProperty(runtime.Bool(done), true, true, true))
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func genNextNative(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
	ev := interp.(*Evaluator)
	g, err := generatorOf(ev, this)
	if err != nil {
		return ev.throwCompletion(err)
	}
	var sent runtime.Value = runtime.Undefined
	if len(args) > 0 {
		sent = args[0]
	}
	return ev.resumeGenerator(g, sent, resumeNext)
}

func genReturnNative(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
	ev := interp.(*Evaluator)
	g, err := generatorOf(ev, this)
	if err != nil {
		return ev.throwCompletion(err)
	}
	var val runtime.Value = runtime.Undefined
	if len(args) > 0 {
		val = args[0]
	}
	g.Done = true
	return runtime.NormalC(ev.makeIterResult(val, true))
}

func genThrowNative(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
	ev := interp.(*Evaluator)
	g, err := generatorOf(ev, this)
	if err != nil {
		return ev.throwCompletion(err)
	}
	var val runtime.Value = runtime.Undefined
	if len(args) > 0 {
		val = args[0]
	}
	if g.Done {
		return runtime.ThrowC(val)
	}
	if g.TargetYield == 0 {
		// Thrown before the generator ever yielded: propagate directly,
		// per %GeneratorPrototype%.throw's "not yet started" case.
		g.Done = true
		return runtime.ThrowC(val)
	}
	return ev.resumeGenerator(g, val, resumeThrow)
}

func generatorOf(ev *Evaluator, this runtime.Value) (*runtime.GeneratorContext, error) {
	if !this.IsObject() {
		return nil, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("not a generator"))}
	}
	obj := ev.Heap_.Get(this.AsObjectID())
	if obj == nil || obj.IteratorState == nil || obj.IteratorState.Generator == nil {
		return nil, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("not a generator"))}
	}
	return obj.IteratorState.Generator, nil
}

type resumeMode uint8

const (
	resumeNext resumeMode = iota
	resumeThrow
)

// resumeGenerator drives one re-execution pass of g's body, recording the
// just-sent value as the resume value for the yield g was last paused at,
// then running from the top until either a new (live) yield pauses
// execution again, the body returns, or it throws.
func (ev *Evaluator) resumeGenerator(g *runtime.GeneratorContext, sent runtime.Value, mode resumeMode) runtime.Completion {
	if g.Done {
		return runtime.NormalC(ev.makeIterResult(runtime.Undefined, true))
	}
	if g.TargetYield > 0 {
		if mode == resumeThrow {
			g.ThrowAtIndex = g.TargetYield - 1
			g.ThrowValue = sent
		} else {
			g.History = append(g.History, sent)
		}
	}

	c := g.Callable
	callEnv := c.Closure.NewChildEnvironment()
	ev.bindArguments(callEnv, c, g.Args, g.This)
	if err := ev.bindParameters(callEnv, c.Params, g.Args); err != nil {
		g.Done = true
		return ev.throwCompletion(err)
	}
	frame := &CallFrame{Env: callEnv, This: g.This, NewTarget: g.NewTarget, Function: c, Label: c.Name}
	ev.callStack = append(ev.callStack, frame)
	prevReplay := ev.genReplay
	ev.genReplay = append(ev.genReplay, &genReplay{ctx: g})
	defer func() {
		ev.callStack = ev.callStack[:len(ev.callStack)-1]
		ev.genReplay = prevReplay
	}()

	block, _ := c.Body.(*ast.BlockStatement)
	if block == nil {
		g.Done = true
		return runtime.NormalC(ev.makeIterResult(runtime.Undefined, true))
	}
	hoistBlockScoped(callEnv, block.Body)
	hoistVarScoped(ev, callEnv, block.Body)
	for _, stmt := range block.Body {
		sc := ev.execStmt(stmt, callEnv, nil)
		ev.maybeCollect()
		switch sc.Type {
		case runtime.Yield:
			g.TargetYield++
			return runtime.NormalC(ev.makeIterResult(sc.Value, false))
		case runtime.Return:
			g.Done = true
			return runtime.NormalC(ev.makeIterResult(sc.Value, true))
		case runtime.Throw:
			g.Done = true
			return sc
		}
	}
	g.Done = true
	return runtime.NormalC(ev.makeIterResult(runtime.Undefined, true))
}

// yieldValue implements a YieldExpression's evaluation inside the active
// replay: indices already past (< TargetYield) resolve to their recorded
// resume value (or re-raise the recorded thrown value, for .throw()) and
// execution continues; the current index pauses the whole call stack by
// returning an abrupt Yield completion that unwinds to resumeGenerator.
func (ev *Evaluator) yieldValue(arg runtime.Value) (runtime.Value, runtime.Completion) {
	if len(ev.genReplay) == 0 {
		return runtime.Undefined, runtime.ThrowC(ev.NewSyntaxError("yield is only valid inside a generator"))
	}
	top := ev.genReplay[len(ev.genReplay)-1]
	g := top.ctx
	idx := top.index
	top.index++
	if idx == g.ThrowAtIndex {
		tv := g.ThrowValue
		g.ThrowAtIndex = -1
		return runtime.Undefined, runtime.ThrowC(tv)
	}
	if idx < g.TargetYield {
		if idx < len(g.History) {
			return g.History[idx], runtime.NormalC(runtime.Undefined)
		}
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	}
	return arg, runtime.YieldC(arg)
}
