package evaluator

import (
	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/runtime"
)

// bindPattern implements BindingInitialization (§4.8.3/§4.8.4): pat may be
// a plain Identifier or a destructuring Array/Object pattern, recursively
// bound against val. kind selects var-assignment (into an
// already-hoisted binding) versus let/const initialization (into a TDZ
// binding created by hoistBlockScoped).
func (ev *Evaluator) bindPattern(pat ast.Pattern, val runtime.Value, env *runtime.Environment, kind ast.VarKind) runtime.Completion {
	switch p := pat.(type) {
	case *ast.Identifier:
		return ev.initBinding(p.Name, val, env, kind)
	case *ast.AssignPattern:
		if val.IsUndefined() {
			v, c := ev.EvaluateExpression(p.Default, env)
			if c.IsAbrupt() {
				return c
			}
			if ident, ok := p.Target.(*ast.Identifier); ok && isAnonymousFunctionLike(p.Default) {
				nameAnonymousFunction(ev, v, ident.Name)
			}
			val = v
		}
		return ev.bindPattern(p.Target, val, env, kind)
	case *ast.RestPattern:
		return ev.bindPattern(p.Target, val, env, kind)
	case *ast.ArrayPattern:
		return ev.bindArrayPattern(p, val, env, kind)
	case *ast.ObjectPattern:
		return ev.bindObjectPattern(p, val, env, kind)
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) initBinding(name string, val runtime.Value, env *runtime.Environment, kind ast.VarKind) runtime.Completion {
	if kind == ast.VarKindVar {
		if err := env.Set(name, val); err != nil {
			env.DeclareGlobalImplicit(name, val)
		}
		return runtime.NormalC(runtime.Undefined)
	}
	env.Initialize(name, val)
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) bindArrayPattern(p *ast.ArrayPattern, val runtime.Value, env *runtime.Environment, kind ast.VarKind) runtime.Completion {
	iter, err := ev.GetIterator(val)
	if err != nil {
		return ev.throwCompletion(err)
	}
	for _, el := range p.Elements {
		if el.Rest {
			var rest []runtime.Value
			for {
				v, done, err := ev.IteratorStep(iter)
				if err != nil {
					return ev.throwCompletion(err)
				}
				if done {
					break
				}
				rest = append(rest, v)
			}
			arr := ev.NewArray(rest)
			if el.Target != nil {
				if c := ev.bindPattern(el.Target, arr, env, kind); c.IsAbrupt() {
					return c
				}
			}
			continue
		}
		v, done, err := ev.IteratorStep(iter)
		if err != nil {
			return ev.throwCompletion(err)
		}
		if done {
			v = runtime.Undefined
		}
		if el.Hole || el.Target == nil {
			continue
		}
		target := el.Target
		if el.Default != nil {
			target = &ast.AssignPattern{Target: el.Target, Default: el.Default}
		}
		if c := ev.bindPattern(target, v, env, kind); c.IsAbrupt() {
			ev.IteratorClose(iter)
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) bindObjectPattern(p *ast.ObjectPattern, val runtime.Value, env *runtime.Environment, kind ast.VarKind) runtime.Completion {
	if val.IsNullish() {
		return runtime.ThrowC(ev.NewTypeError("Cannot destructure null or undefined"))
	}
	usedKeys := map[string]bool{}
	for _, prop := range p.Properties {
		if prop.Rest {
			restVal := ev.restObjectExcluding(val, usedKeys)
			if c := ev.bindPattern(prop.Value, restVal, env, kind); c.IsAbrupt() {
				return c
			}
			continue
		}
		var key string
		if prop.Computed {
			kv, c := ev.EvaluateExpression(prop.Key, env)
			if c.IsAbrupt() {
				return c
			}
			s, err := ev.ToStringValue(kv)
			if err != nil {
				return ev.throwCompletion(err)
			}
			key = s.Go()
		} else if ident, ok := prop.Key.(*ast.Identifier); ok {
			key = ident.Name
		} else if lit, ok := prop.Key.(*ast.Literal); ok {
			key = lit.StringValue
		}
		usedKeys[key] = true
		pv, err := ev.GetProperty(val, key)
		if err != nil {
			return ev.throwCompletion(err)
		}
		target := prop.Value
		if prop.Default != nil {
			target = &ast.AssignPattern{Target: prop.Value, Default: prop.Default}
		}
		if c := ev.bindPattern(target, pv, env, kind); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) restObjectExcluding(val runtime.Value, used map[string]bool) runtime.Value {
	objID := ev.Heap_.Allocate(runtime.NewObject("Object", ev.Realm.ObjectPrototype))
	if val.IsObject() {
		src := ev.Heap_.Get(val.AsObjectID())
		if src != nil {
			for _, k := range src.OwnKeys() {
				if used[k] {
					continue
				}
				desc, _ := src.GetOwn(k)
				if !desc.Enumerable {
					continue
				}
				v, err := ev.GetProperty(val, k)
				if err != nil {
					continue
				}
				ev.Heap_.Get(objID).DefineOwn(k, runtime.DataProperty(v, true, true, true))
			}
		}
	}
	return runtime.Object(objID)
}

// destructureArrayAssign / destructureObjectAssign handle `[a, b] = x` and
// `({a, b} = x)` assignment-expression destructuring (§4.8.3), reusing the
// expression grammar the parser produced for the left-hand side.
func (ev *Evaluator) destructureArrayAssign(arr *ast.ArrayExpression, val runtime.Value, env *runtime.Environment) runtime.Completion {
	iter, err := ev.GetIterator(val)
	if err != nil {
		return ev.throwCompletion(err)
	}
	for _, el := range arr.Elements {
		if el.Spread {
			var rest []runtime.Value
			for {
				v, done, err := ev.IteratorStep(iter)
				if err != nil {
					return ev.throwCompletion(err)
				}
				if done {
					break
				}
				rest = append(rest, v)
			}
			if c := ev.assignToPatternExpr(el.Value, ev.NewArray(rest), env); c.IsAbrupt() {
				return c
			}
			continue
		}
		v, done, err := ev.IteratorStep(iter)
		if err != nil {
			return ev.throwCompletion(err)
		}
		if done {
			v = runtime.Undefined
		}
		if el.Hole || el.Value == nil {
			continue
		}
		if c := ev.assignToPatternExpr(el.Value, v, env); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) destructureObjectAssign(obj *ast.ObjectExpression, val runtime.Value, env *runtime.Environment) runtime.Completion {
	used := map[string]bool{}
	for _, prop := range obj.Properties {
		if prop.Spread {
			restVal := ev.restObjectExcluding(val, used)
			if c := ev.assignToPatternExpr(prop.Value, restVal, env); c.IsAbrupt() {
				return c
			}
			continue
		}
		key, c := ev.propKey(prop, env)
		if c.IsAbrupt() {
			return c
		}
		used[key] = true
		pv, err := ev.GetProperty(val, key)
		if err != nil {
			return ev.throwCompletion(err)
		}
		if c := ev.assignToPatternExpr(prop.Value, pv, env); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}
