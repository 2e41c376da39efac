package evaluator

import (
	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// ExecuteStatement dispatches a single statement (§4.8.1). labels carries
// the set of label names immediately attached to stmt via enclosing
// LabeledStatements, consulted by loop/switch completions to decide
// whether an unlabeled or same-labeled Break/Continue belongs to them.
func (ev *Evaluator) ExecuteStatement(stmt ast.Statement, env *runtime.Environment) runtime.Completion {
	return ev.execStmt(stmt, env, nil)
}

func labelMatches(label string, labels []string) bool {
	if label == "" {
		return true
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func (ev *Evaluator) execStmt(stmt ast.Statement, env *runtime.Environment, labels []string) runtime.Completion {
	switch s := stmt.(type) {
	case nil:
		return runtime.NormalC(runtime.Undefined)
	case *ast.EmptyStatement:
		return runtime.NormalC(runtime.Undefined)
	case *ast.DebuggerStatement:
		return runtime.NormalC(runtime.Undefined)
	case *ast.ExpressionStatement:
		v, c := ev.EvaluateExpression(s.Expr, env)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalC(v)
	case *ast.BlockStatement:
		return ev.execBlock(s.Body, env)
	case *ast.VariableStatement:
		return ev.execVariableStatement(s, env)
	case *ast.FunctionDeclaration:
		// Already bound by hoistVarScoped; re-evaluating here is a no-op.
		return runtime.NormalC(runtime.Undefined)
	case *ast.ClassDeclaration:
		return ev.execClassDeclaration(s, env)
	case *ast.IfStatement:
		return ev.execIfStatement(s, env)
	case *ast.WhileStatement:
		return ev.execWhileStatement(s, env, labels)
	case *ast.DoWhileStatement:
		return ev.execDoWhileStatement(s, env, labels)
	case *ast.ForStatement:
		return ev.execForStatement(s, env, labels)
	case *ast.ForInStatement:
		return ev.execForInStatement(s, env, labels)
	case *ast.ForOfStatement:
		return ev.execForOfStatement(s, env, labels)
	case *ast.ReturnStatement:
		if s.Argument == nil {
			return runtime.ReturnC(runtime.Undefined)
		}
		v, c := ev.EvaluateExpression(s.Argument, env)
		if c.IsAbrupt() {
			return c
		}
		return runtime.ReturnC(v)
	case *ast.BreakStatement:
		return runtime.BreakC(s.Label)
	case *ast.ContinueStatement:
		return runtime.ContinueC(s.Label)
	case *ast.ThrowStatement:
		v, c := ev.EvaluateExpression(s.Argument, env)
		if c.IsAbrupt() {
			return c
		}
		return runtime.ThrowC(v)
	case *ast.TryStatement:
		return ev.execTryStatement(s, env)
	case *ast.SwitchStatement:
		return ev.execSwitchStatement(s, env, labels)
	case *ast.LabeledStatement:
		inner := append(append([]string{}, labels...), s.Label)
		c := ev.execStmt(s.Body, env, inner)
		if c.Type == runtime.Break && c.Label == s.Label {
			return runtime.NormalC(runtime.Undefined)
		}
		return c
	case *ast.WithStatement:
		return ev.execWithStatement(s, env)
	}
	return runtime.NormalC(runtime.Undefined)
}

// execBlock implements BlockStatement evaluation (§4.8.1): a fresh lexical
// environment hoists this block's let/const/class/function declarations,
// then each statement runs in order, propagating the first abrupt
// completion.
func (ev *Evaluator) execBlock(body []ast.Statement, env *runtime.Environment) runtime.Completion {
	blockEnv := env.NewChildEnvironment()
	hoistBlockScoped(blockEnv, body)
	for _, stmt := range body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok && fd.Name != "" {
			fn := ev.makeFunction(fd.Name, fd.Params, fd.Body, blockEnv, fd.Generator, fd.Async, false)
			blockEnv.Initialize(fd.Name, fn)
		}
	}
	var result runtime.Completion = runtime.NormalC(runtime.Undefined)
	for _, stmt := range body {
		c := ev.execStmt(stmt, blockEnv, nil)
		ev.maybeCollect()
		if c.Type != runtime.Normal {
			return c
		}
		result = c
	}
	return result
}

func (ev *Evaluator) execVariableStatement(s *ast.VariableStatement, env *runtime.Environment) runtime.Completion {
	for _, d := range s.Declarations {
		var val runtime.Value = runtime.Undefined
		if d.Init != nil {
			v, c := ev.EvaluateExpression(d.Init, env)
			if c.IsAbrupt() {
				return c
			}
			val = v
			if ident, ok := d.ID.(*ast.Identifier); ok && isAnonymousFunctionLike(d.Init) {
				nameAnonymousFunction(ev, val, ident.Name)
			}
		}
		if c := ev.bindDeclarator(s.Kind, d.ID, val, env); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalC(runtime.Undefined)
}

// isAnonymousFunctionLike reports whether expr is a function/arrow/class
// expression that would receive an inferred name (§4.8.3's "anonymous
// function/class expressions assigned via `=` inherit the binding name").
func isAnonymousFunctionLike(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.FunctionExpression:
		return e.Name == ""
	case *ast.ArrowFunction:
		return true
	case *ast.ClassExpression:
		return e.Name == ""
	}
	return false
}

func nameAnonymousFunction(ev *Evaluator, v runtime.Value, name string) {
	if !v.IsObject() {
		return
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.Callable == nil {
		return
	}
	if obj.Callable.Name == "" {
		obj.Callable.Name = name
		obj.DefineOwn("name", runtime.DataProperty(runtime.StringFromGo(name), false, false, true))
	}
}

// bindDeclarator initializes the binding(s) introduced by d.ID, which may
// itself be a destructuring pattern (§4.8.3's destructuring assignment).
func (ev *Evaluator) bindDeclarator(kind ast.VarKind, pat ast.Pattern, val runtime.Value, env *runtime.Environment) runtime.Completion {
	return ev.bindPattern(pat, val, env, kind)
}

func (ev *Evaluator) execClassDeclaration(s *ast.ClassDeclaration, env *runtime.Environment) runtime.Completion {
	cls, c := ev.evaluateClass(s.Name, s.SuperClass, s.Body, env)
	if c.IsAbrupt() {
		return c
	}
	if s.Name != "" {
		env.Initialize(s.Name, cls)
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) execIfStatement(s *ast.IfStatement, env *runtime.Environment) runtime.Completion {
	test, c := ev.EvaluateExpression(s.Test, env)
	if c.IsAbrupt() {
		return c
	}
	if ops.ToBoolean(test) {
		return ev.execStmt(s.Consequent, env, nil)
	}
	if s.Alternate != nil {
		return ev.execStmt(s.Alternate, env, nil)
	}
	return runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) execWhileStatement(s *ast.WhileStatement, env *runtime.Environment, labels []string) runtime.Completion {
	result := runtime.NormalC(runtime.Undefined)
	for {
		test, c := ev.EvaluateExpression(s.Test, env)
		if c.IsAbrupt() {
			return c
		}
		if !ops.ToBoolean(test) {
			return result
		}
		bc := ev.execStmt(s.Body, env, nil)
		ev.maybeCollect()
		switch {
		case bc.Type == runtime.Break && labelMatches(bc.Label, labels):
			return result
		case bc.Type == runtime.Continue && labelMatches(bc.Label, labels):
			continue
		case bc.IsAbrupt():
			return bc
		default:
			result = bc
		}
	}
}

func (ev *Evaluator) execDoWhileStatement(s *ast.DoWhileStatement, env *runtime.Environment, labels []string) runtime.Completion {
	result := runtime.NormalC(runtime.Undefined)
	for {
		bc := ev.execStmt(s.Body, env, nil)
		ev.maybeCollect()
		switch {
		case bc.Type == runtime.Break && labelMatches(bc.Label, labels):
			return result
		case bc.Type == runtime.Continue && labelMatches(bc.Label, labels):
			// fall through to re-test condition
		case bc.IsAbrupt():
			return bc
		default:
			result = bc
		}
		test, c := ev.EvaluateExpression(s.Test, env)
		if c.IsAbrupt() {
			return c
		}
		if !ops.ToBoolean(test) {
			return result
		}
	}
}

func (ev *Evaluator) execForStatement(s *ast.ForStatement, env *runtime.Environment, labels []string) runtime.Completion {
	loopEnv := env.NewChildEnvironment()
	isLexical := false
	if vs, ok := s.Init.(*ast.VariableStatement); ok {
		if vs.Kind != ast.VarKindVar {
			isLexical = true
			hoistBlockScoped(loopEnv, []ast.Statement{vs})
		}
		if c := ev.execVariableStatement(vs, loopEnv); c.IsAbrupt() {
			return c
		}
	} else if expr, ok := s.Init.(ast.Expression); ok && expr != nil {
		if _, c := ev.EvaluateExpression(expr, loopEnv); c.IsAbrupt() {
			return c
		}
	}
	result := runtime.NormalC(runtime.Undefined)
	for {
		iterEnv := loopEnv
		if isLexical {
			// Each iteration gets a fresh copy of the lexical loop bindings
			// (§4.8.1's per-iteration environment for `for (let ...)`).
			iterEnv = env.NewChildEnvironment()
			copyBindingsInto(loopEnv, iterEnv)
		}
		if s.Test != nil {
			test, c := ev.EvaluateExpression(s.Test, iterEnv)
			if c.IsAbrupt() {
				return c
			}
			if !ops.ToBoolean(test) {
				return result
			}
		}
		bc := ev.execStmt(s.Body, iterEnv, nil)
		ev.maybeCollect()
		switch {
		case bc.Type == runtime.Break && labelMatches(bc.Label, labels):
			return result
		case bc.Type == runtime.Continue && labelMatches(bc.Label, labels):
			// fall through to update
		case bc.IsAbrupt():
			return bc
		default:
			result = bc
		}
		if isLexical {
			copyBindingsInto(iterEnv, loopEnv)
		}
		if s.Update != nil {
			if _, c := ev.EvaluateExpression(s.Update, loopEnv); c.IsAbrupt() {
				return c
			}
		}
	}
}

// copyBindingsInto copies every own binding's current value from src to
// dst, backing the for-let per-iteration environment semantics without
// exposing Environment internals beyond Get/Declare.
func copyBindingsInto(src, dst *runtime.Environment) {
	for _, name := range src.OwnNames() {
		v, err := src.Get(name)
		if err != nil {
			dst.Declare(name, runtime.BindLet, false, runtime.Undefined)
			continue
		}
		dst.Declare(name, runtime.BindLet, true, v)
	}
}

func (ev *Evaluator) execForInStatement(s *ast.ForInStatement, env *runtime.Environment, labels []string) runtime.Completion {
	rightVal, c := ev.EvaluateExpression(s.Right, env)
	if c.IsAbrupt() {
		return c
	}
	if rightVal.IsNullish() {
		return runtime.NormalC(runtime.Undefined)
	}
	objVal, err := ev.ToObject(rightVal)
	if err != nil {
		return ev.throwCompletion(err)
	}
	keys := ev.enumerableKeysOf(objVal)
	result := runtime.NormalC(runtime.Undefined)
	for _, key := range keys {
		iterEnv, bindErr := ev.bindForTarget(s.Left, runtime.StringFromGo(key), env)
		if bindErr.IsAbrupt() {
			return bindErr
		}
		bc := ev.execStmt(s.Body, iterEnv, nil)
		ev.maybeCollect()
		switch {
		case bc.Type == runtime.Break && labelMatches(bc.Label, labels):
			return result
		case bc.Type == runtime.Continue && labelMatches(bc.Label, labels):
			continue
		case bc.IsAbrupt():
			return bc
		default:
			result = bc
		}
	}
	return result
}

func (ev *Evaluator) execForOfStatement(s *ast.ForOfStatement, env *runtime.Environment, labels []string) runtime.Completion {
	rightVal, c := ev.EvaluateExpression(s.Right, env)
	if c.IsAbrupt() {
		return c
	}
	iter, err := ev.GetIterator(rightVal)
	if err != nil {
		return ev.throwCompletion(err)
	}
	result := runtime.NormalC(runtime.Undefined)
	for {
		val, done, err := ev.IteratorStep(iter)
		if err != nil {
			return ev.throwCompletion(err)
		}
		if done {
			return result
		}
		iterEnv, bindErr := ev.bindForTarget(s.Left, val, env)
		if bindErr.IsAbrupt() {
			ev.IteratorClose(iter)
			return bindErr
		}
		bc := ev.execStmt(s.Body, iterEnv, nil)
		ev.maybeCollect()
		switch {
		case bc.Type == runtime.Break && labelMatches(bc.Label, labels):
			ev.IteratorClose(iter)
			return result
		case bc.Type == runtime.Continue && labelMatches(bc.Label, labels):
			continue
		case bc.IsAbrupt():
			ev.IteratorClose(iter)
			return bc
		default:
			result = bc
		}
	}
}

// bindForTarget binds val to a for-in/for-of head, which is either a fresh
// declarator (`for (let x ...`) or an assignment to an existing reference
// (`for (x ...`), returning the environment the loop body should run in.
func (ev *Evaluator) bindForTarget(left ast.Node, val runtime.Value, env *runtime.Environment) (*runtime.Environment, runtime.Completion) {
	if vs, ok := left.(*ast.VariableStatement); ok && len(vs.Declarations) == 1 {
		iterEnv := env.NewChildEnvironment()
		if vs.Kind != ast.VarKindVar {
			hoistBlockScoped(iterEnv, []ast.Statement{vs})
		}
		c := ev.bindDeclarator(vs.Kind, vs.Declarations[0].ID, val, iterEnv)
		return iterEnv, c
	}
	if expr, ok := left.(ast.Expression); ok {
		c := ev.assignToTarget(expr, val, env)
		return env, c
	}
	return env, runtime.NormalC(runtime.Undefined)
}

func (ev *Evaluator) execTryStatement(s *ast.TryStatement, env *runtime.Environment) runtime.Completion {
	result := ev.execBlock(s.Block.Body, env)
	if result.Type == runtime.Throw && s.Handler != nil {
		catchEnv := env.NewChildEnvironment()
		if s.Handler.Param != nil {
			declarePatternNames(catchEnv, s.Handler.Param, runtime.BindLet)
			if c := ev.bindPattern(s.Handler.Param, result.Value, catchEnv, ast.VarKindLet); c.IsAbrupt() {
				result = c
				goto finally
			}
		}
		result = ev.execBlock(s.Handler.Body.Body, catchEnv)
	}
finally:
	if s.Finalizer != nil {
		fc := ev.execBlock(s.Finalizer.Body, env)
		if fc.IsAbrupt() {
			return fc
		}
	}
	return result
}

func (ev *Evaluator) execSwitchStatement(s *ast.SwitchStatement, env *runtime.Environment, labels []string) runtime.Completion {
	disc, c := ev.EvaluateExpression(s.Discriminant, env)
	if c.IsAbrupt() {
		return c
	}
	switchEnv := env.NewChildEnvironment()
	for _, sc := range s.Cases {
		hoistBlockScoped(switchEnv, sc.Consequent)
	}
	matchIdx := -1
	for i, sc := range s.Cases {
		if sc.Test == nil {
			continue
		}
		tv, tc := ev.EvaluateExpression(sc.Test, switchEnv)
		if tc.IsAbrupt() {
			return tc
		}
		if ops.StrictEquals(disc, tv) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		for i, sc := range s.Cases {
			if sc.Test == nil {
				matchIdx = i
				break
			}
		}
	}
	if matchIdx == -1 {
		return runtime.NormalC(runtime.Undefined)
	}
	result := runtime.NormalC(runtime.Undefined)
	for i := matchIdx; i < len(s.Cases); i++ {
		for _, stmt := range s.Cases[i].Consequent {
			bc := ev.execStmt(stmt, switchEnv, nil)
			ev.maybeCollect()
			if bc.Type == runtime.Break && labelMatches(bc.Label, labels) {
				return result
			}
			if bc.IsAbrupt() {
				return bc
			}
			result = bc
		}
	}
	return result
}

func (ev *Evaluator) execWithStatement(s *ast.WithStatement, env *runtime.Environment) runtime.Completion {
	// `with` is not implemented as a dynamic scope object lookup: it is a
	// deliberately narrow rendition that evaluates its object for side
	// effects and then runs its body in an ordinary child scope. Full
	// with-object property fallback is out of scope for a conformance
	// interpreter that otherwise never runs in sloppy dynamic-scope mode.
	if _, c := ev.EvaluateExpression(s.Object, env); c.IsAbrupt() {
		return c
	}
	return ev.execStmt(s.Body, env.NewChildEnvironment(), nil)
}
