package evaluator

import (
	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// makeFunction allocates a user-function object (§4.8.4, §4.9): its
// callable_data slot closes over env, and its own "prototype"/"name"/
// "length" properties are installed the way FunctionDeclaration/
// FunctionExpression/method definitions require.
func (ev *Evaluator) makeFunction(name string, params []ast.Param, body *ast.BlockStatement, env *runtime.Environment, generator, async, isMethod bool) runtime.Value {
	callable := &runtime.CallableData{
		Name:      name,
		Params:    params,
		Body:      body,
		Closure:   env,
		Arrow:     false,
		Generator: generator,
		Async:     async,
	}
	obj := runtime.NewObject("Function", ev.Realm.FunctionPrototype)
	obj.Callable = callable
	id := ev.Heap_.Allocate(obj)
	obj.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(name), false, false, true))
	obj.DefineOwn("length", runtime.DataProperty(runtime.Number(float64(requiredParamCount(params))), false, false, true))
	if !isMethod && !generator {
		protoObj := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
		protoObj.DefineOwn("constructor", runtime.DataProperty(runtime.Object(id), true, false, true))
		protoID := ev.Heap_.Allocate(protoObj)
		obj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), true, false, false))
	} else if generator {
		protoObj := runtime.NewObject("Generator", ev.Realm.GeneratorPrototype)
		protoID := ev.Heap_.Allocate(protoObj)
		obj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), true, false, false))
		callable.GeneratorProto = &protoID
	}
	return runtime.Object(id)
}

// NewNativeFunction allocates a host-backed function object (§4.8.4): used
// both by internal/builtins and by the evaluator itself for the small
// per-instance methods (generator .next/.return/.throw) that don't warrant
// a shared prototype yet.
func (ev *Evaluator) NewNativeFunction(name string, arity int, fn runtime.NativeFunc) runtime.Value {
	callable := &runtime.CallableData{Name: name, Native: fn, Arity: arity}
	obj := runtime.NewObject("Function", ev.Realm.FunctionPrototype)
	obj.Callable = callable
	id := ev.Heap_.Allocate(obj)
	obj.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(name), false, false, true))
	obj.DefineOwn("length", runtime.DataProperty(runtime.Number(float64(arity)), false, false, true))
	return runtime.Object(id)
}

func requiredParamCount(params []ast.Param) int {
	n := 0
	for _, p := range params {
		if p.Rest || p.Default != nil {
			break
		}
		n++
	}
	return n
}

// makeArrowFunction allocates an arrow function: no own this/arguments/
// new.target/super, and a single-expression Body is wrapped in an implicit
// return at call time (§4.8.4).
func (ev *Evaluator) makeArrowFunction(e *ast.ArrowFunction, env *runtime.Environment) runtime.Value {
	callable := &runtime.CallableData{
		Params:  e.Params,
		Body:    e.Body,
		Closure: env,
		Arrow:   true,
		Async:   e.Async,
	}
	obj := runtime.NewObject("Function", ev.Realm.FunctionPrototype)
	obj.Callable = callable
	id := ev.Heap_.Allocate(obj)
	obj.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(""), false, false, true))
	obj.DefineOwn("length", runtime.DataProperty(runtime.Number(float64(requiredParamCount(e.Params))), false, false, true))
	return runtime.Object(id)
}

func (ev *Evaluator) setHomeObject(fn runtime.Value, homeID runtime.ObjectID) {
	obj := ev.Heap_.Get(fn.AsObjectID())
	if obj == nil || obj.Callable == nil {
		return
	}
	id := homeID
	obj.Callable.HomeObject = &id
}

// currentThis/currentNewTarget/currentHomeObject read the innermost live
// call frame (§4.8.4); at top level (no frame) `this` is the global object.
func (ev *Evaluator) currentThis() runtime.Value {
	if len(ev.callStack) == 0 {
		return runtime.Object(ev.Realm.GlobalObj)
	}
	return ev.callStack[len(ev.callStack)-1].This
}

func (ev *Evaluator) currentNewTarget() runtime.Value {
	if len(ev.callStack) == 0 {
		return runtime.Undefined
	}
	return ev.callStack[len(ev.callStack)-1].NewTarget
}

func (ev *Evaluator) currentHomeObject() *runtime.ObjectID {
	if len(ev.callStack) == 0 {
		return nil
	}
	fn := ev.callStack[len(ev.callStack)-1].Function
	if fn == nil {
		return nil
	}
	return fn.HomeObject
}

// Call implements ops.Host.Call and the general [[Call]] internal method
// (§4.8.4): native functions run their Go closure directly; user functions
// get a fresh environment, parameter binding, an arguments object (for
// non-arrow, non-strict-simple-param functions), and their body executed.
// Generators instead construct a generator object without running the body.
func (ev *Evaluator) Call(fn runtime.Value, this runtime.Value, args []runtime.Value) runtime.Completion {
	return ev.callInternal(fn, this, args, runtime.Undefined)
}

func (ev *Evaluator) callInternal(fn runtime.Value, this runtime.Value, args []runtime.Value, newTarget runtime.Value) runtime.Completion {
	if !fn.IsObject() {
		return runtime.ThrowC(ev.NewTypeError("value is not a function"))
	}
	obj := ev.Heap_.Get(fn.AsObjectID())
	if obj == nil || obj.Callable == nil {
		return runtime.ThrowC(ev.NewTypeError("value is not a function"))
	}
	c := obj.Callable
	if c.IsNative() {
		return c.Native(ev, this, args)
	}
	if c.Generator {
		return runtime.NormalC(ev.newGeneratorObject(c, this, args, newTarget))
	}
	callEnv := c.Closure.NewChildEnvironment()
	effectiveThis := this
	if c.Arrow {
		effectiveThis = ev.currentThis()
		newTarget = ev.currentNewTarget()
	} else if !c.Strict && (this.IsNullish()) {
		effectiveThis = runtime.Object(ev.Realm.GlobalObj)
	} else if !c.Strict && !this.IsObject() {
		boxed, err := ev.ToObject(this)
		if err == nil {
			effectiveThis = boxed
		}
	}
	if !c.Arrow {
		ev.bindArguments(callEnv, c, args, effectiveThis)
	}
	if err := ev.bindParameters(callEnv, c.Params, args); err != nil {
		return ev.throwCompletion(err)
	}
	frame := &CallFrame{Env: callEnv, This: effectiveThis, NewTarget: newTarget, Function: c, Label: c.Name}
	ev.callStack = append(ev.callStack, frame)
	defer func() { ev.callStack = ev.callStack[:len(ev.callStack)-1] }()

	if block, ok := c.Body.(*ast.BlockStatement); ok {
		hoistBlockScoped(callEnv, block.Body)
		hoistVarScoped(ev, callEnv, block.Body)
		result := runtime.NormalC(runtime.Undefined)
		for _, stmt := range block.Body {
			sc := ev.execStmt(stmt, callEnv, nil)
			ev.maybeCollect()
			if sc.Type == runtime.Return {
				return runtime.NormalC(sc.Value)
			}
			if sc.Type == runtime.Throw {
				return sc
			}
			result = sc
		}
		_ = result
		return runtime.NormalC(runtime.Undefined)
	}
	// Arrow concise body: a single Expression evaluated and implicitly
	// returned.
	if expr, ok := c.Body.(ast.Expression); ok {
		v, sc := ev.EvaluateExpression(expr, callEnv)
		if sc.IsAbrupt() {
			return sc
		}
		return runtime.NormalC(v)
	}
	return runtime.NormalC(runtime.Undefined)
}

// bindParameters implements §4.8.4's parameter-binding algorithm: each
// param is destructured against the matching argument (Undefined past the
// end), applying its default if the argument is Undefined, with the final
// rest parameter collecting any remainder.
func (ev *Evaluator) bindParameters(env *runtime.Environment, params []ast.Param, args []runtime.Value) error {
	for i, p := range params {
		if p.Rest {
			var rest []runtime.Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			arr := ev.NewArray(rest)
			if c := ev.bindPattern(p.Target, arr, env, ast.VarKindLet); c.IsAbrupt() {
				return &ops.Thrown{Completion: c}
			}
			continue
		}
		var val runtime.Value = runtime.Undefined
		if i < len(args) {
			val = args[i]
		}
		if val.IsUndefined() && p.Default != nil {
			v, c := ev.EvaluateExpression(p.Default, env)
			if c.IsAbrupt() {
				return &ops.Thrown{Completion: c}
			}
			val = v
		}
		declarePatternNames(env, p.Target, runtime.BindLet)
		if c := ev.bindPattern(p.Target, val, env, ast.VarKindLet); c.IsAbrupt() {
			return &ops.Thrown{Completion: c}
		}
	}
	return nil
}

// bindArguments builds the `arguments` object (§3.2, §4.8.4 step 3): a
// mapped arguments object for non-strict functions whose parameter list is
// entirely simple identifiers, an unmapped one otherwise.
func (ev *Evaluator) bindArguments(env *runtime.Environment, c *runtime.CallableData, args []runtime.Value, this runtime.Value) {
	if c.Arrow {
		return
	}
	argsObj := runtime.NewObject("Arguments", ev.Realm.ObjectPrototype)
	elems := make([]runtime.Value, len(args))
	copy(elems, args)
	for i, v := range elems {
		argsObj.DefineOwn(indexKey(i), runtime.DataProperty(v, true, true, true))
	}
	argsObj.DefineOwn("length", runtime.DataProperty(runtime.Number(float64(len(args))), true, false, true))
	if simpleParams(c.Params) && !c.Strict {
		pm := &runtime.ParameterMap{Entries: map[int]runtime.ParameterMapEntry{}}
		for i, p := range c.Params {
			if i >= len(args) {
				break
			}
			if ident, ok := p.Target.(*ast.Identifier); ok {
				pm.Entries[i] = runtime.ParameterMapEntry{Env: env, Name: ident.Name}
			}
		}
		argsObj.ParameterMap = pm
	}
	id := ev.Heap_.Allocate(argsObj)
	env.Declare("arguments", runtime.BindVar, true, runtime.Object(id))
}

func simpleParams(params []ast.Param) bool {
	for _, p := range params {
		if p.Rest || p.Default != nil {
			return false
		}
		if _, ok := p.Target.(*ast.Identifier); !ok {
			return false
		}
	}
	return true
}

func indexKey(i int) string { return ops.NumberToString(float64(i)) }

// evalCallee evaluates a call's callee expression, returning the function
// value together with the `this` value a following Call should use
// (§4.8.3: a member-expression callee supplies its object as `this`).
func (ev *Evaluator) evalCallee(callee ast.Expression, env *runtime.Environment) (runtime.Value, runtime.Value, runtime.Completion) {
	if m, ok := callee.(*ast.MemberExpression); ok {
		fn, thisVal, c := ev.evalMember(m, env)
		return fn, thisVal, c
	}
	fn, c := ev.EvaluateExpression(callee, env)
	return fn, runtime.Undefined, c
}

func (ev *Evaluator) evalCall(e *ast.CallExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	if _, ok := e.Callee.(*ast.SuperExpression); ok {
		return ev.evalSuperCall(e, env)
	}
	fn, thisVal, c := ev.evalCallee(e.Callee, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if opt, ok := e.Callee.(*ast.MemberExpression); ok && opt.Optional && fn.IsNullish() {
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	}
	if e.Optional && fn.IsNullish() {
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	}
	args, c2 := ev.evalArguments(e.Args, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	if !ev.IsCallable(fn) {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("value is not a function"))})
	}
	result := ev.Call(fn, thisVal, args)
	if result.Type == runtime.Throw {
		return runtime.Undefined, result
	}
	return result.Value, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalArguments(argList []ast.Argument, env *runtime.Environment) ([]runtime.Value, runtime.Completion) {
	var args []runtime.Value
	for _, a := range argList {
		if a.Spread {
			items, c := ev.iterableToSlice(func() (runtime.Value, runtime.Completion) {
				return ev.EvaluateExpression(a.Value, env)
			})
			if c.IsAbrupt() {
				return nil, c
			}
			args = append(args, items...)
			continue
		}
		v, c := ev.EvaluateExpression(a.Value, env)
		if c.IsAbrupt() {
			return nil, c
		}
		args = append(args, v)
	}
	return args, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalNew(e *ast.NewExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	ctor, c := ev.EvaluateExpression(e.Callee, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	args, c2 := ev.evalArguments(e.Args, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	v, err := ev.Construct(ctor, args, ctor)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	return v, runtime.NormalC(runtime.Undefined)
}

// Construct implements [[Construct]] (§4.9): a fresh ordinary object is
// allocated with .prototype as its prototype, bound as `this`, and run
// through [[Call]] with new.target set; a function that explicitly returns
// an object overrides the implicit instance.
func (ev *Evaluator) Construct(ctor runtime.Value, args []runtime.Value, newTarget runtime.Value) (runtime.Value, error) {
	if !ev.IsConstructor(ctor) {
		return runtime.Undefined, &ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("value is not a constructor"))}
	}
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	if ctorObj.Callable.IsNative() {
		result := ctorObj.Callable.Native(ev, runtime.Undefined, args)
		if result.Type == runtime.Throw {
			return runtime.Undefined, &ops.Thrown{Completion: result}
		}
		return result.Value, nil
	}
	var proto *runtime.ObjectID
	if protoDesc, ok := ctorObj.GetOwn("prototype"); ok && protoDesc.Value.IsObject() {
		id := protoDesc.Value.AsObjectID()
		proto = &id
	} else {
		proto = ev.Realm.ObjectPrototype
	}
	instObj := runtime.NewObject("Object", proto)
	instID := ev.Heap_.Allocate(instObj)
	instVal := runtime.Object(instID)
	if err := ev.runFieldInitializers(ctorObj.Callable, instVal); err != nil {
		return runtime.Undefined, err
	}
	result := ev.callInternal(ctor, instVal, args, newTarget)
	if result.Type == runtime.Throw {
		return runtime.Undefined, &ops.Thrown{Completion: result}
	}
	if result.Value.IsObject() {
		return result.Value, nil
	}
	return instVal, nil
}

func (ev *Evaluator) runFieldInitializers(c *runtime.CallableData, instVal runtime.Value) error {
	if c == nil || len(c.FieldInitializers) == 0 {
		return nil
	}
	instObj := ev.Heap_.Get(instVal.AsObjectID())
	for _, fd := range c.FieldInitializers {
		key, cc := ev.propKey(ast.PropertyDef{Key: fd.Key, Computed: false}, c.Closure)
		if cc.IsAbrupt() {
			return &ops.Thrown{Completion: cc}
		}
		var val runtime.Value = runtime.Undefined
		if fd.Value != nil {
			frame := &CallFrame{Env: c.Closure, This: instVal, Function: c}
			ev.callStack = append(ev.callStack, frame)
			v, vc := ev.EvaluateExpression(fd.Value, c.Closure)
			ev.callStack = ev.callStack[:len(ev.callStack)-1]
			if vc.IsAbrupt() {
				return &ops.Thrown{Completion: vc}
			}
			val = v
		}
		if fd.Private {
			if instObj.PrivateFields == nil {
				instObj.PrivateFields = map[string]*runtime.PrivateField{}
			}
			instObj.PrivateFields[key] = &runtime.PrivateField{Kind: runtime.PrivateField_Field, Value: val}
		} else {
			instObj.DefineOwn(key, runtime.DataProperty(val, true, true, true))
		}
	}
	return nil
}

func (ev *Evaluator) evalSuperCall(e *ast.CallExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	home := ev.currentHomeObject()
	if home == nil {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewSyntaxError("'super' keyword is only valid inside a derived class constructor"))})
	}
	homeObj := ev.Heap_.Get(*home)
	if homeObj == nil || homeObj.Prototype() == nil {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewSyntaxError("'super' keyword is only valid inside a derived class constructor"))})
	}
	parentProto := ev.Heap_.Get(*homeObj.Prototype())
	if parentProto == nil {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("no super constructor"))})
	}
	ctorDesc, ok := parentProto.GetOwn("constructor")
	if !ok {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("no super constructor"))})
	}
	args, c := ev.evalArguments(e.Args, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	this := ev.currentThis()
	result := ev.callInternal(ctorDesc.Value, this, args, ctorDesc.Value)
	if result.Type == runtime.Throw {
		return runtime.Undefined, result
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}
