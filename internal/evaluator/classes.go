package evaluator

import (
	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/runtime"
)

// evaluateClass implements ClassDefinitionEvaluation (§4.8 class
// semantics): builds the prototype object, links it (and the constructor
// function) to the superclass, installs methods/accessors, and records
// field initializers for [[Construct]] to run. A named class declares its
// own name inside the class body's scope for self-reference (e.g. static
// methods recursing via the class name).
func (ev *Evaluator) evaluateClass(name string, superExpr ast.Expression, body *ast.ClassBody, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	classEnv := env.NewChildEnvironment()

	var superCtor runtime.Value
	var superProto *runtime.ObjectID
	hasSuper := superExpr != nil
	if hasSuper {
		v, c := ev.EvaluateExpression(superExpr, classEnv)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		superCtor = v
		if v.IsObject() {
			superObj := ev.Heap_.Get(v.AsObjectID())
			if protoDesc, ok := superObj.GetOwn("prototype"); ok && protoDesc.Value.IsObject() {
				id := protoDesc.Value.AsObjectID()
				superProto = &id
			}
		}
	}

	protoParent := ev.Realm.ObjectPrototype
	if hasSuper {
		protoParent = superProto
	}
	protoObj := runtime.NewObject("Object", protoParent)
	protoID := ev.Heap_.Allocate(protoObj)

	var ctorParams []ast.Param
	var ctorBody *ast.BlockStatement
	var fieldInits []ast.FieldDefinition
	var staticFieldInits []ast.FieldDefinition

	for _, m := range body.Methods {
		if m.Kind == ast.MethodKindConstructor {
			ctorParams = m.Function.Params
			ctorBody = m.Function.Body
		}
	}
	if ctorBody == nil {
		// Default constructor (§4.8): a derived class forwards all
		// arguments to its superclass; a base class does nothing.
		if hasSuper {
			ctorBody = &ast.BlockStatement{Body: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.CallExpression{
					Callee: &ast.SuperExpression{},
					Args:   []ast.Argument{{Value: &ast.Identifier{Name: "arguments"}, Spread: true}},
				}},
			}}
		} else {
			ctorBody = &ast.BlockStatement{}
		}
	}

	ctorFn := ev.makeFunction(name, ctorParams, ctorBody, classEnv, false, false, true)
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	ctorObj.Callable.HomeObject = &protoID
	if hasSuper {
		ctorObj.Callable.ConstructorKind = "derived"
		if superCtor.IsObject() {
			sid := superCtor.AsObjectID()
			ctorObj.SetPrototype(&sid)
		}
	} else {
		ctorObj.Callable.ConstructorKind = "base"
	}
	protoObj.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	if name != "" {
		classEnv.Declare(name, runtime.BindConst, true, ctorFn)
	}

	for _, m := range body.Methods {
		if m.Kind == ast.MethodKindConstructor {
			continue
		}
		key, c := ev.propKey(ast.PropertyDef{Key: m.Key, Computed: false}, classEnv)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		fn := ev.makeFunction(key, m.Function.Params, m.Function.Body, classEnv, m.Function.Generator, m.Function.Async, true)
		targetID := protoID
		if m.Static {
			targetID = ctorFn.AsObjectID()
		}
		ev.setHomeObject(fn, targetID)
		target := ev.Heap_.Get(targetID)
		if m.Private {
			pkey := "#" + key
			if target.PrivateFields == nil {
				target.PrivateFields = map[string]*runtime.PrivateField{}
			}
			switch m.Kind {
			case ast.MethodKindGet:
				existing := target.PrivateFields[pkey]
				if existing == nil {
					existing = &runtime.PrivateField{Kind: runtime.PrivateField_Accessor}
				}
				existing.Get = fn
				target.PrivateFields[pkey] = existing
			case ast.MethodKindSet:
				existing := target.PrivateFields[pkey]
				if existing == nil {
					existing = &runtime.PrivateField{Kind: runtime.PrivateField_Accessor}
				}
				existing.Set = fn
				target.PrivateFields[pkey] = existing
			default:
				target.PrivateFields[pkey] = &runtime.PrivateField{Kind: runtime.PrivateField_Method, Value: fn}
			}
			continue
		}
		switch m.Kind {
		case ast.MethodKindGet:
			existing, _ := target.GetOwn(key)
			desc := runtime.PropertyDescriptor{IsAccessor: true, Enumerable: false, Configurable: true, Get: fn, Set: existing.Set}
			target.DefineOwn(key, desc)
		case ast.MethodKindSet:
			existing, _ := target.GetOwn(key)
			desc := runtime.PropertyDescriptor{IsAccessor: true, Enumerable: false, Configurable: true, Get: existing.Get, Set: fn}
			target.DefineOwn(key, desc)
		default:
			target.DefineOwn(key, runtime.DataProperty(fn, true, false, true))
		}
	}

	for _, f := range body.Fields {
		if f.Static {
			staticFieldInits = append(staticFieldInits, f)
		} else {
			fieldInits = append(fieldInits, f)
		}
	}
	ctorObj.Callable.FieldInitializers = fieldInits

	for _, f := range staticFieldInits {
		key, c := ev.propKey(ast.PropertyDef{Key: f.Key, Computed: false}, classEnv)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		var val runtime.Value = runtime.Undefined
		if f.Value != nil {
			frame := &CallFrame{Env: classEnv, This: ctorFn}
			ev.callStack = append(ev.callStack, frame)
			v, vc := ev.EvaluateExpression(f.Value, classEnv)
			ev.callStack = ev.callStack[:len(ev.callStack)-1]
			if vc.IsAbrupt() {
				return runtime.Undefined, vc
			}
			val = v
		}
		if f.Private {
			if ctorObj.PrivateFields == nil {
				ctorObj.PrivateFields = map[string]*runtime.PrivateField{}
			}
			ctorObj.PrivateFields[key] = &runtime.PrivateField{Kind: runtime.PrivateField_Field, Value: val}
		} else {
			ctorObj.DefineOwn(key, runtime.DataProperty(val, true, true, true))
		}
	}

	return ctorFn, runtime.NormalC(runtime.Undefined)
}
