package evaluator

import (
	"math"
	"math/big"

	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// EvaluateExpression dispatches a single expression (§4.8.3). The returned
// Completion is Normal unless evaluation threw; Break/Continue/Return never
// escape from an expression.
func (ev *Evaluator) EvaluateExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	switch e := expr.(type) {
	case nil:
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	case *ast.Literal:
		return ev.evalLiteral(e)
	case *ast.Identifier:
		v, err := env.Get(e.Name)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(referenceErrorFor(ev, err))
		}
		return v, runtime.NormalC(runtime.Undefined)
	case *ast.ThisExpression:
		return ev.currentThis(), runtime.NormalC(runtime.Undefined)
	case *ast.NewTargetExpression:
		return ev.currentNewTarget(), runtime.NormalC(runtime.Undefined)
	case *ast.SuperExpression:
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	case *ast.UnaryExpression:
		return ev.evalUnary(e, env)
	case *ast.BinaryExpression:
		return ev.evalBinary(e, env)
	case *ast.LogicalExpression:
		return ev.evalLogical(e, env)
	case *ast.UpdateExpression:
		return ev.evalUpdate(e, env)
	case *ast.AssignExpression:
		return ev.evalAssign(e, env)
	case *ast.ConditionalExpression:
		test, c := ev.EvaluateExpression(e.Test, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		if ops.ToBoolean(test) {
			return ev.EvaluateExpression(e.Consequent, env)
		}
		return ev.EvaluateExpression(e.Alternate, env)
	case *ast.CallExpression:
		return ev.evalCall(e, env)
	case *ast.NewExpression:
		return ev.evalNew(e, env)
	case *ast.MemberExpression:
		v, _, c := ev.evalMember(e, env)
		return v, c
	case *ast.OptionalChainExpression:
		return ev.EvaluateExpression(e.Expr, env)
	case *ast.ArrayExpression:
		return ev.evalArrayLiteral(e, env)
	case *ast.ObjectExpression:
		return ev.evalObjectLiteral(e, env)
	case *ast.TemplateLiteral:
		return ev.evalTemplateLiteral(e, env)
	case *ast.TaggedTemplateExpression:
		return ev.evalTaggedTemplate(e, env)
	case *ast.SequenceExpression:
		var last runtime.Value = runtime.Undefined
		for _, sub := range e.Expressions {
			v, c := ev.EvaluateExpression(sub, env)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			last = v
		}
		return last, runtime.NormalC(runtime.Undefined)
	case *ast.FunctionExpression:
		fnEnv := env
		if e.Name != "" {
			fnEnv = env.NewChildEnvironment()
		}
		fn := ev.makeFunction(e.Name, e.Params, e.Body, fnEnv, e.Generator, e.Async, false)
		if e.Name != "" {
			fnEnv.Declare(e.Name, runtime.BindConst, true, fn)
		}
		return fn, runtime.NormalC(runtime.Undefined)
	case *ast.ArrowFunction:
		return ev.makeArrowFunction(e, env), runtime.NormalC(runtime.Undefined)
	case *ast.ClassExpression:
		return ev.evaluateClass(e.Name, e.SuperClass, e.Body, env)
	case *ast.YieldExpression:
		return ev.evalYield(e, env)
	case *ast.AwaitExpression:
		// Async functions are not executed on an event loop (§ non-goal);
		// await simply unwraps its operand's value synchronously.
		return ev.EvaluateExpression(e.Argument, env)
	case *ast.ImportExpression:
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Dynamic import is not supported"))})
	case *ast.PrivateIdentifier:
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func referenceErrorFor(ev *Evaluator, err error) error {
	if _, ok := err.(*runtime.TDZError); ok {
		return &ops.Thrown{Completion: runtime.ThrowC(ev.NewReferenceError(err.Error()))}
	}
	if _, ok := err.(*runtime.Unresolvable); ok {
		return &ops.Thrown{Completion: runtime.ThrowC(ev.NewReferenceError(err.Error()))}
	}
	return &ops.Thrown{Completion: runtime.ThrowC(ev.NewReferenceError(err.Error()))}
}

func (ev *Evaluator) evalLiteral(lit *ast.Literal) (runtime.Value, runtime.Completion) {
	switch lit.Kind {
	case ast.LitNull:
		return runtime.Null, runtime.NormalC(runtime.Undefined)
	case ast.LitBoolean:
		return runtime.Bool(lit.BooleanValue), runtime.NormalC(runtime.Undefined)
	case ast.LitNumber:
		return runtime.Number(lit.NumberValue), runtime.NormalC(runtime.Undefined)
	case ast.LitString:
		return runtime.StringFromGo(lit.StringValue), runtime.NormalC(runtime.Undefined)
	case ast.LitBigInt:
		bi, ok := new(big.Int).SetString(lit.Raw, 10)
		if !ok {
			bi = big.NewInt(0)
		}
		return runtime.BigIntValue(bi), runtime.NormalC(runtime.Undefined)
	case ast.LitRegExp:
		v, err := ev.makeRegExp(lit.Raw, lit.RegExpFlags)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return v, runtime.NormalC(runtime.Undefined)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	if e.Operator == "typeof" {
		if ident, ok := e.Argument.(*ast.Identifier); ok {
			if !env.Has(ident.Name) {
				return runtime.StringFromGo("undefined"), runtime.NormalC(runtime.Undefined)
			}
		}
		v, c := ev.EvaluateExpression(e.Argument, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.StringFromGo(ev.typeOf(v)), runtime.NormalC(runtime.Undefined)
	}
	if e.Operator == "delete" {
		return ev.evalDelete(e.Argument, env)
	}
	if e.Operator == "void" {
		if _, c := ev.EvaluateExpression(e.Argument, env); c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Undefined, runtime.NormalC(runtime.Undefined)
	}
	v, c := ev.EvaluateExpression(e.Argument, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	switch e.Operator {
	case "!":
		return runtime.Bool(!ops.ToBoolean(v)), runtime.NormalC(runtime.Undefined)
	case "-":
		if v.IsBigInt() {
			return runtime.BigIntValue(new(big.Int).Neg(v.AsBigInt())), runtime.NormalC(runtime.Undefined)
		}
		n, err := ev.ToNumber(v)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.Number(-n.AsNumber()), runtime.NormalC(runtime.Undefined)
	case "+":
		n, err := ev.ToNumber(v)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return n, runtime.NormalC(runtime.Undefined)
	case "~":
		if v.IsBigInt() {
			return runtime.BigIntValue(new(big.Int).Not(v.AsBigInt())), runtime.NormalC(runtime.Undefined)
		}
		i32, err := ops.ToInt32(ev, v)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.Number(float64(^i32)), runtime.NormalC(runtime.Undefined)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) typeOf(v runtime.Value) string {
	switch v.Kind() {
	case runtime.KindUndefined:
		return "undefined"
	case runtime.KindNull:
		return "object"
	case runtime.KindBoolean:
		return "boolean"
	case runtime.KindNumber:
		return "number"
	case runtime.KindBigInt:
		return "bigint"
	case runtime.KindString:
		return "string"
	case runtime.KindSymbol:
		return "symbol"
	case runtime.KindObject:
		if ev.IsCallable(v) {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

func (ev *Evaluator) evalDelete(target ast.Expression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	m, ok := target.(*ast.MemberExpression)
	if !ok {
		return runtime.True, runtime.NormalC(runtime.Undefined)
	}
	objVal, c := ev.EvaluateExpression(m.Object, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	key, c2 := ev.memberKey(m, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	if !objVal.IsObject() {
		return runtime.True, runtime.NormalC(runtime.Undefined)
	}
	obj := ev.Heap_.Get(objVal.AsObjectID())
	if obj == nil {
		return runtime.True, runtime.NormalC(runtime.Undefined)
	}
	if obj.ProxyTarget != nil {
		return runtime.Bool(ev.proxyDelete(obj, key)), runtime.NormalC(runtime.Undefined)
	}
	return runtime.Bool(obj.DeleteOwn(key)), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	if e.Operator == "in" {
		return ev.evalIn(e, env)
	}
	if e.Operator == "instanceof" {
		return ev.evalInstanceof(e, env)
	}
	left, c := ev.EvaluateExpression(e.Left, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	right, c2 := ev.EvaluateExpression(e.Right, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	return ev.applyBinary(e.Operator, left, right)
}

func (ev *Evaluator) applyBinary(op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	switch op {
	case "+":
		return ev.evalAdd(left, right)
	case "-", "*", "/", "%", "**":
		return ev.evalArith(op, left, right)
	case "&", "|", "^", "<<", ">>", ">>>":
		return ev.evalBitwise(op, left, right)
	case "==":
		b, err := ops.AbstractEquals(ev, left, right)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.Bool(b), runtime.NormalC(runtime.Undefined)
	case "!=":
		b, err := ops.AbstractEquals(ev, left, right)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.Bool(!b), runtime.NormalC(runtime.Undefined)
	case "===":
		return runtime.Bool(ops.StrictEquals(left, right)), runtime.NormalC(runtime.Undefined)
	case "!==":
		return runtime.Bool(!ops.StrictEquals(left, right)), runtime.NormalC(runtime.Undefined)
	case "<", ">", "<=", ">=":
		return ev.evalRelational(op, left, right)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalAdd(left, right runtime.Value) (runtime.Value, runtime.Completion) {
	pl, err := ev.ToPrimitive(left, ops.HintDefault)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	pr, err := ev.ToPrimitive(right, ops.HintDefault)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	if pl.IsString() || pr.IsString() {
		ls, err := ev.ToStringValue(pl)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		rs, err := ev.ToStringValue(pr)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.String(ls.Concat(rs)), runtime.NormalC(runtime.Undefined)
	}
	if pl.IsBigInt() && pr.IsBigInt() {
		return runtime.BigIntValue(new(big.Int).Add(pl.AsBigInt(), pr.AsBigInt())), runtime.NormalC(runtime.Undefined)
	}
	if pl.IsBigInt() || pr.IsBigInt() {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Cannot mix BigInt and other types"))})
	}
	ln, err := ev.ToNumber(pl)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	rn, err := ev.ToNumber(pr)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	return runtime.Number(ln.AsNumber() + rn.AsNumber()), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalArith(op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	if left.IsBigInt() || right.IsBigInt() {
		if !left.IsBigInt() || !right.IsBigInt() {
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Cannot mix BigInt and other types"))})
		}
		return ev.bigIntArith(op, left.AsBigInt(), right.AsBigInt())
	}
	ln, err := ev.ToNumber(left)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	rn, err := ev.ToNumber(right)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	a, b := ln.AsNumber(), rn.AsNumber()
	switch op {
	case "-":
		return runtime.Number(a - b), runtime.NormalC(runtime.Undefined)
	case "*":
		return runtime.Number(a * b), runtime.NormalC(runtime.Undefined)
	case "/":
		return runtime.Number(a / b), runtime.NormalC(runtime.Undefined)
	case "%":
		return runtime.Number(math.Mod(a, b)), runtime.NormalC(runtime.Undefined)
	case "**":
		return runtime.Number(math.Pow(a, b)), runtime.NormalC(runtime.Undefined)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) bigIntArith(op string, a, b *big.Int) (runtime.Value, runtime.Completion) {
	r := new(big.Int)
	switch op {
	case "-":
		r.Sub(a, b)
	case "*":
		r.Mul(a, b)
	case "/":
		if b.Sign() == 0 {
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewRangeError("Division by zero"))})
		}
		r.Quo(a, b)
	case "%":
		if b.Sign() == 0 {
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewRangeError("Division by zero"))})
		}
		r.Rem(a, b)
	case "**":
		if b.Sign() < 0 {
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewRangeError("Exponent must be non-negative"))})
		}
		r.Exp(a, b, nil)
	}
	return runtime.BigIntValue(r), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalBitwise(op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	if left.IsBigInt() || right.IsBigInt() {
		if !left.IsBigInt() || !right.IsBigInt() {
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Cannot mix BigInt and other types"))})
		}
		r := new(big.Int)
		a, b := left.AsBigInt(), right.AsBigInt()
		switch op {
		case "&":
			r.And(a, b)
		case "|":
			r.Or(a, b)
		case "^":
			r.Xor(a, b)
		case "<<":
			r.Lsh(a, uint(b.Int64()))
		case ">>":
			r.Rsh(a, uint(b.Int64()))
		default:
			return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("BigInts have no unsigned right shift"))})
		}
		return runtime.BigIntValue(r), runtime.NormalC(runtime.Undefined)
	}
	if op == ">>>" {
		lu, err := ops.ToUint32(ev, left)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		ru, err := ops.ToUint32(ev, right)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		return runtime.Number(float64(lu >> (ru & 31))), runtime.NormalC(runtime.Undefined)
	}
	li, err := ops.ToInt32(ev, left)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	ri, err := ops.ToInt32(ev, right)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	switch op {
	case "&":
		return runtime.Number(float64(li & ri)), runtime.NormalC(runtime.Undefined)
	case "|":
		return runtime.Number(float64(li | ri)), runtime.NormalC(runtime.Undefined)
	case "^":
		return runtime.Number(float64(li ^ ri)), runtime.NormalC(runtime.Undefined)
	case "<<":
		return runtime.Number(float64(li << (uint32(ri) & 31))), runtime.NormalC(runtime.Undefined)
	case ">>":
		return runtime.Number(float64(li >> (uint32(ri) & 31))), runtime.NormalC(runtime.Undefined)
	}
	return runtime.Undefined, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalRelational(op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	var res ops.LessThanResult
	var err error
	switch op {
	case "<":
		res, err = ops.AbstractRelationalComparison(ev, left, right, true)
	case ">":
		res, err = ops.AbstractRelationalComparison(ev, right, left, false)
	case "<=":
		res, err = ops.AbstractRelationalComparison(ev, right, left, false)
		if err == nil {
			if res == ops.LessThanUndefined {
				return runtime.False, runtime.NormalC(runtime.Undefined)
			}
			return runtime.Bool(res == ops.LessThanFalse), runtime.NormalC(runtime.Undefined)
		}
	case ">=":
		res, err = ops.AbstractRelationalComparison(ev, left, right, true)
		if err == nil {
			if res == ops.LessThanUndefined {
				return runtime.False, runtime.NormalC(runtime.Undefined)
			}
			return runtime.Bool(res == ops.LessThanFalse), runtime.NormalC(runtime.Undefined)
		}
	}
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	return runtime.Bool(res == ops.LessThanTrue), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalIn(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	left, c := ev.EvaluateExpression(e.Left, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	right, c2 := ev.EvaluateExpression(e.Right, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	if !right.IsObject() {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Cannot use 'in' operator to search for a property in a non-object"))})
	}
	key, err := ev.ToStringValue(left)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	return runtime.Bool(ev.hasPropertyChain(right, key.Go())), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) hasPropertyChain(objVal runtime.Value, key string) bool {
	id := objVal.AsObjectID()
	for {
		obj := ev.Heap_.Get(id)
		if obj == nil {
			return false
		}
		if obj.ProxyTarget != nil {
			return ev.proxyHas(obj, key)
		}
		if obj.HasOwn(key) {
			return true
		}
		proto := obj.Prototype()
		if proto == nil {
			return false
		}
		id = *proto
	}
}

func (ev *Evaluator) evalInstanceof(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	left, c := ev.EvaluateExpression(e.Left, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	right, c2 := ev.EvaluateExpression(e.Right, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	if !right.IsObject() || !ev.IsCallable(right) {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Right-hand side of 'instanceof' is not callable"))})
	}
	if !left.IsObject() {
		return runtime.False, runtime.NormalC(runtime.Undefined)
	}
	ctorObj := ev.Heap_.Get(right.AsObjectID())
	protoDesc, ok := ctorObj.GetOwn("prototype")
	if !ok {
		return runtime.False, runtime.NormalC(runtime.Undefined)
	}
	if !protoDesc.Value.IsObject() {
		return runtime.Undefined, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewTypeError("Function has non-object prototype"))})
	}
	target := protoDesc.Value.AsObjectID()
	obj := ev.Heap_.Get(left.AsObjectID())
	proto := obj.Prototype()
	for proto != nil {
		if *proto == target {
			return runtime.True, runtime.NormalC(runtime.Undefined)
		}
		next := ev.Heap_.Get(*proto)
		if next == nil {
			break
		}
		proto = next.Prototype()
	}
	return runtime.False, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalLogical(e *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	left, c := ev.EvaluateExpression(e.Left, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	switch e.Operator {
	case "&&":
		if !ops.ToBoolean(left) {
			return left, runtime.NormalC(runtime.Undefined)
		}
	case "||":
		if ops.ToBoolean(left) {
			return left, runtime.NormalC(runtime.Undefined)
		}
	case "??":
		if !left.IsNullish() {
			return left, runtime.NormalC(runtime.Undefined)
		}
	}
	return ev.EvaluateExpression(e.Right, env)
}

func (ev *Evaluator) evalUpdate(e *ast.UpdateExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	old, c := ev.EvaluateExpression(e.Argument, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	var newVal runtime.Value
	if old.IsBigInt() {
		delta := big.NewInt(1)
		if e.Operator == "--" {
			delta = big.NewInt(-1)
		}
		newVal = runtime.BigIntValue(new(big.Int).Add(old.AsBigInt(), delta))
	} else {
		n, err := ev.ToNumber(old)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		old = n
		delta := 1.0
		if e.Operator == "--" {
			delta = -1
		}
		newVal = runtime.Number(n.AsNumber() + delta)
	}
	if ac := ev.assignToTarget(e.Argument, newVal, env); ac.IsAbrupt() {
		return runtime.Undefined, ac
	}
	if e.Prefix {
		return newVal, runtime.NormalC(runtime.Undefined)
	}
	return old, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalAssign(e *ast.AssignExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	if e.Operator == "=" {
		val, c := ev.EvaluateExpression(e.Right, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		if ident, ok := e.Left.(*ast.Identifier); ok && isAnonymousFunctionLike(e.Right) {
			nameAnonymousFunction(ev, val, ident.Name)
		}
		if ac := ev.assignToPatternExpr(e.Left, val, env); ac.IsAbrupt() {
			return runtime.Undefined, ac
		}
		return val, runtime.NormalC(runtime.Undefined)
	}
	baseOp := e.Operator[:len(e.Operator)-1]
	if baseOp == "&&" || baseOp == "||" || baseOp == "??" {
		cur, c := ev.EvaluateExpression(e.Left, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		switch baseOp {
		case "&&":
			if !ops.ToBoolean(cur) {
				return cur, runtime.NormalC(runtime.Undefined)
			}
		case "||":
			if ops.ToBoolean(cur) {
				return cur, runtime.NormalC(runtime.Undefined)
			}
		case "??":
			if !cur.IsNullish() {
				return cur, runtime.NormalC(runtime.Undefined)
			}
		}
		val, c := ev.EvaluateExpression(e.Right, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		if ac := ev.assignToTarget(e.Left, val, env); ac.IsAbrupt() {
			return runtime.Undefined, ac
		}
		return val, runtime.NormalC(runtime.Undefined)
	}
	cur, c := ev.EvaluateExpression(e.Left, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rhs, c2 := ev.EvaluateExpression(e.Right, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, c2
	}
	result, c3 := ev.applyBinary(baseOp, cur, rhs)
	if c3.IsAbrupt() {
		return runtime.Undefined, c3
	}
	if ac := ev.assignToTarget(e.Left, result, env); ac.IsAbrupt() {
		return runtime.Undefined, ac
	}
	return result, runtime.NormalC(runtime.Undefined)
}

// assignToTarget assigns val to a simple (non-destructuring) expression
// target: an Identifier or a Member expression.
func (ev *Evaluator) assignToTarget(target ast.Expression, val runtime.Value, env *runtime.Environment) runtime.Completion {
	switch t := target.(type) {
	case *ast.Identifier:
		if err := env.Set(t.Name, val); err != nil {
			if _, ok := err.(*runtime.Unresolvable); ok {
				env.DeclareGlobalImplicit(t.Name, val)
				return runtime.NormalC(runtime.Undefined)
			}
			return ev.throwCompletion(referenceErrorFor(ev, err))
		}
		return runtime.NormalC(runtime.Undefined)
	case *ast.MemberExpression:
		return ev.assignMember(t, val, env)
	}
	return ev.assignToPatternExpr(target, val, env)
}

// assignToPatternExpr handles `=` destructuring into array/object literal
// syntax, which the parser represents as Array/ObjectExpression on the
// left of `=` (§4.8.3 "assignment patterns reuse expression grammar").
func (ev *Evaluator) assignToPatternExpr(target ast.Expression, val runtime.Value, env *runtime.Environment) runtime.Completion {
	switch t := target.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return ev.assignToTarget(t, val, env)
	case *ast.ArrayExpression:
		return ev.destructureArrayAssign(t, val, env)
	case *ast.ObjectExpression:
		return ev.destructureObjectAssign(t, val, env)
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) memberKey(m *ast.MemberExpression, env *runtime.Environment) (string, runtime.Completion) {
	if !m.Computed {
		switch p := m.Property.(type) {
		case *ast.Identifier:
			return p.Name, runtime.NormalC(runtime.Undefined)
		case *ast.PrivateIdentifier:
			return "#" + p.Name, runtime.NormalC(runtime.Undefined)
		}
		return "", runtime.NormalC(runtime.Undefined)
	}
	propExpr, ok := m.Property.(ast.Expression)
	if !ok {
		return "", runtime.NormalC(runtime.Undefined)
	}
	v, c := ev.EvaluateExpression(propExpr, env)
	if c.IsAbrupt() {
		return "", c
	}
	s, err := ev.ToStringValue(v)
	if err != nil {
		return "", ev.throwCompletion(err)
	}
	return s.Go(), runtime.NormalC(runtime.Undefined)
}

// evalMember evaluates a MemberExpression, returning (value, objectValue,
// completion); objectValue is exposed so evalCall can recover `this` for a
// method call.
func (ev *Evaluator) evalMember(m *ast.MemberExpression, env *runtime.Environment) (runtime.Value, runtime.Value, runtime.Completion) {
	if _, ok := m.Object.(*ast.SuperExpression); ok {
		return ev.evalSuperMember(m, env)
	}
	objVal, c := ev.EvaluateExpression(m.Object, env)
	if c.IsAbrupt() {
		return runtime.Undefined, runtime.Undefined, c
	}
	if m.Optional && objVal.IsNullish() {
		return runtime.Undefined, objVal, runtime.Completion{Type: runtime.Normal, Value: runtime.Undefined}
	}
	key, c2 := ev.memberKey(m, env)
	if c2.IsAbrupt() {
		return runtime.Undefined, objVal, c2
	}
	v, err := ev.GetProperty(objVal, key)
	if err != nil {
		return runtime.Undefined, objVal, ev.throwCompletion(err)
	}
	return v, objVal, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalSuperMember(m *ast.MemberExpression, env *runtime.Environment) (runtime.Value, runtime.Value, runtime.Completion) {
	this := ev.currentThis()
	home := ev.currentHomeObject()
	if home == nil {
		return runtime.Undefined, this, ev.throwCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewSyntaxError("'super' keyword is only valid inside a method"))})
	}
	homeObj := ev.Heap_.Get(*home)
	if homeObj == nil || homeObj.Prototype() == nil {
		return runtime.Undefined, this, runtime.NormalC(runtime.Undefined)
	}
	key, c := ev.memberKey(m, env)
	if c.IsAbrupt() {
		return runtime.Undefined, this, c
	}
	v, err := ev.getPropertyFrom(*homeObj.Prototype(), key, this)
	if err != nil {
		return runtime.Undefined, this, ev.throwCompletion(err)
	}
	return v, this, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) assignMember(m *ast.MemberExpression, val runtime.Value, env *runtime.Environment) runtime.Completion {
	objVal, c := ev.EvaluateExpression(m.Object, env)
	if c.IsAbrupt() {
		return c
	}
	key, c2 := ev.memberKey(m, env)
	if c2.IsAbrupt() {
		return c2
	}
	if err := ev.SetProperty(objVal, key, val); err != nil {
		return ev.throwCompletion(err)
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalArrayLiteral(e *ast.ArrayExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	var values []runtime.Value
	for _, el := range e.Elements {
		if el.Hole {
			values = append(values, runtime.Undefined)
			continue
		}
		if el.Spread {
			items, err := ev.iterableToSlice(func() (runtime.Value, runtime.Completion) {
				return ev.EvaluateExpression(el.Value, env)
			})
			if err.IsAbrupt() {
				return runtime.Undefined, err
			}
			values = append(values, items...)
			continue
		}
		v, c := ev.EvaluateExpression(el.Value, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		values = append(values, v)
	}
	return ev.NewArray(values), runtime.NormalC(runtime.Undefined)
}

// iterableToSlice evaluates srcExpr (via the closure, which has already
// captured its AST node) and drains its iterator into a Go slice, backing
// array-literal and call-argument spread (§4.8.3).
func (ev *Evaluator) iterableToSlice(evalSrc func() (runtime.Value, runtime.Completion)) ([]runtime.Value, runtime.Completion) {
	src, c := evalSrc()
	if c.IsAbrupt() {
		return nil, c
	}
	iter, err := ev.GetIterator(src)
	if err != nil {
		return nil, ev.throwCompletion(err)
	}
	var out []runtime.Value
	for {
		v, done, err := ev.IteratorStep(iter)
		if err != nil {
			return nil, ev.throwCompletion(err)
		}
		if done {
			return out, runtime.NormalC(runtime.Undefined)
		}
		out = append(out, v)
	}
}

func (ev *Evaluator) evalObjectLiteral(e *ast.ObjectExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	objID := ev.Heap_.Allocate(runtime.NewObject("Object", ev.Realm.ObjectPrototype))
	objVal := runtime.Object(objID)
	for _, prop := range e.Properties {
		if prop.Spread {
			srcVal, c := ev.EvaluateExpression(prop.Value, env)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			if srcVal.IsNullish() {
				continue
			}
			srcObjVal, err := ev.ToObject(srcVal)
			if err != nil {
				return runtime.Undefined, ev.throwCompletion(err)
			}
			srcObj := ev.Heap_.Get(srcObjVal.AsObjectID())
			for _, k := range srcObj.OwnKeys() {
				desc, _ := srcObj.GetOwn(k)
				if !desc.Enumerable {
					continue
				}
				v, err := ev.GetProperty(srcVal, k)
				if err != nil {
					return runtime.Undefined, ev.throwCompletion(err)
				}
				obj := ev.Heap_.Get(objID)
				obj.DefineOwn(k, runtime.DataProperty(v, true, true, true))
			}
			continue
		}
		key, c := ev.propKey(prop, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		obj := ev.Heap_.Get(objID)
		switch prop.Kind {
		case ast.MethodKindGet, ast.MethodKindSet:
			fnExpr, ok := prop.Value.(*ast.FunctionExpression)
			if !ok {
				continue
			}
			fn := ev.makeFunction(key, fnExpr.Params, fnExpr.Body, env, false, false, false)
			ev.setHomeObject(fn, objID)
			existing, _ := obj.GetOwn(key)
			desc := runtime.PropertyDescriptor{IsAccessor: true, Enumerable: true, Configurable: true, Get: existing.Get, Set: existing.Set}
			if prop.Kind == ast.MethodKindGet {
				desc.Get = fn
			} else {
				desc.Set = fn
			}
			obj.DefineOwn(key, desc)
		case ast.MethodKindMethod:
			fnExpr, ok := prop.Value.(*ast.FunctionExpression)
			if !ok {
				continue
			}
			fn := ev.makeFunction(key, fnExpr.Params, fnExpr.Body, env, fnExpr.Generator, fnExpr.Async, false)
			ev.setHomeObject(fn, objID)
			obj.DefineOwn(key, runtime.DataProperty(fn, true, true, true))
		default:
			v, c := ev.EvaluateExpression(prop.Value, env)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			if isAnonymousFunctionLike(prop.Value) {
				nameAnonymousFunction(ev, v, key)
			}
			obj.DefineOwn(key, runtime.DataProperty(v, true, true, true))
		}
	}
	return objVal, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) propKey(prop ast.PropertyDef, env *runtime.Environment) (string, runtime.Completion) {
	if !prop.Computed {
		switch k := prop.Key.(type) {
		case *ast.Identifier:
			return k.Name, runtime.NormalC(runtime.Undefined)
		case *ast.Literal:
			if k.Kind == ast.LitString {
				return k.StringValue, runtime.NormalC(runtime.Undefined)
			}
			if k.Kind == ast.LitNumber {
				return ops.NumberToString(k.NumberValue), runtime.NormalC(runtime.Undefined)
			}
		}
	}
	v, c := ev.EvaluateExpression(prop.Key, env)
	if c.IsAbrupt() {
		return "", c
	}
	s, err := ev.ToStringValue(v)
	if err != nil {
		return "", ev.throwCompletion(err)
	}
	return s.Go(), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalTemplateLiteral(e *ast.TemplateLiteral, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	result := runtime.NewJsStringFromUTF8(e.Quasis[0])
	for i, expr := range e.Expressions {
		v, c := ev.EvaluateExpression(expr, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		s, err := ev.ToStringValue(v)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		result = result.Concat(s)
		result = result.Concat(runtime.NewJsStringFromUTF8(e.Quasis[i+1]))
	}
	return runtime.String(result), runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) evalTaggedTemplate(e *ast.TaggedTemplateExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	tagFn, thisVal, c := ev.evalCallee(e.Tag, env)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	strings := make([]runtime.Value, len(e.Quasi.Quasis))
	for i, q := range e.Quasi.Quasis {
		strings[i] = runtime.StringFromGo(q)
	}
	stringsArr := ev.NewArray(strings)
	rawArr := ev.NewArray(strings)
	arrObj := ev.Heap_.Get(stringsArr.AsObjectID())
	arrObj.DefineOwn("raw", runtime.DataProperty(rawArr, false, false, false))
	args := []runtime.Value{stringsArr}
	for _, expr := range e.Quasi.Expressions {
		v, c := ev.EvaluateExpression(expr, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		args = append(args, v)
	}
	res := ev.Call(tagFn, thisVal, args)
	return res.Value, res
}

func (ev *Evaluator) evalYield(e *ast.YieldExpression, env *runtime.Environment) (runtime.Value, runtime.Completion) {
	var arg runtime.Value = runtime.Undefined
	if e.Argument != nil {
		v, c := ev.EvaluateExpression(e.Argument, env)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		arg = v
	}
	if e.Delegate {
		return ev.evalYieldDelegate(arg)
	}
	return ev.yieldValue(arg)
}

// evalYieldDelegate implements `yield* iterable` (§4.8.5) by draining the
// inner iterable and forwarding each value through a plain yield; it does
// not forward .throw()/.return() into the inner iterator, a simplification
// acceptable for a conformance interpreter's re-execution generator model.
func (ev *Evaluator) evalYieldDelegate(iterable runtime.Value) (runtime.Value, runtime.Completion) {
	it, err := ev.GetIterator(iterable)
	if err != nil {
		return runtime.Undefined, ev.throwCompletion(err)
	}
	for {
		v, done, err := ev.IteratorStep(it)
		if err != nil {
			return runtime.Undefined, ev.throwCompletion(err)
		}
		if done {
			return v, runtime.NormalC(runtime.Undefined)
		}
		_, c := ev.yieldValue(v)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
	}
}
