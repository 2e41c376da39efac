package evaluator

import (
	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/runtime"
)

// hoistBlockScoped implements the lexical-declaration half of §4.8.2: every
// let/const/class name appearing directly in this block's own statement
// list (not descending into nested blocks or function bodies) is declared
// in env as a TDZ binding before any statement runs. Block-scoped function
// declarations initialize immediately rather than sitting in the TDZ,
// matching function hoisting's "available before its own statement runs"
// behavior.
func hoistBlockScoped(env *runtime.Environment, body []ast.Statement) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableStatement:
			if s.Kind == ast.VarKindVar {
				continue
			}
			kind := runtime.BindLet
			if s.Kind == ast.VarKindConst {
				kind = runtime.BindConst
			}
			for _, d := range s.Declarations {
				declarePatternNames(env, d.ID, kind)
			}
		case *ast.ClassDeclaration:
			if s.Name != "" {
				env.Declare(s.Name, runtime.BindLet, false, runtime.Undefined)
			}
		}
	}
}

// declarePatternNames walks a (possibly destructuring) binding pattern,
// declaring every bound name as a TDZ let/const binding.
func declarePatternNames(env *runtime.Environment, pat ast.Pattern, kind runtime.BindingKind) {
	switch p := pat.(type) {
	case *ast.Identifier:
		env.Declare(p.Name, kind, false, runtime.Undefined)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el.Target != nil {
				declarePatternNames(env, el.Target, kind)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			declarePatternNames(env, prop.Value, kind)
		}
	case *ast.AssignPattern:
		declarePatternNames(env, p.Target, kind)
	case *ast.RestPattern:
		declarePatternNames(env, p.Target, kind)
	}
}

// hoistVarScoped implements the var/function declaration half of §4.8.2:
// every `var` name and every function-declared name reachable from body
// without crossing a nested function boundary is declared in the nearest
// function (or global) environment env, functions initialized immediately
// to their closure value, plain vars initialized to Undefined.
func hoistVarScoped(ev *Evaluator, env *runtime.Environment, body []ast.Statement) {
	collectVarNames(env, body)
	for _, stmt := range body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok && fd.Name != "" {
			fn := ev.makeFunction(fd.Name, fd.Params, fd.Body, env, fd.Generator, fd.Async, false)
			env.Declare(fd.Name, runtime.BindVar, true, fn)
		}
	}
}

// collectVarNames recursively declares every `var` binding name (and
// top-level function declaration name, provisionally Undefined — functions
// are re-declared with their closure value by hoistVarScoped's second
// pass) found under body, without descending into nested function/arrow
// bodies or class bodies.
func collectVarNames(env *runtime.Environment, body []ast.Statement) {
	for _, stmt := range body {
		collectVarNamesStmt(env, stmt)
	}
}

func collectVarNamesStmt(env *runtime.Environment, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		if s.Kind != ast.VarKindVar {
			return
		}
		for _, d := range s.Declarations {
			declareVarNames(env, d.ID)
		}
	case *ast.FunctionDeclaration:
		if s.Name != "" && !env.HasOwn(s.Name) {
			env.Declare(s.Name, runtime.BindVar, true, runtime.Undefined)
		}
	case *ast.BlockStatement:
		collectVarNames(env, s.Body)
	case *ast.IfStatement:
		collectVarNamesStmt(env, s.Consequent)
		if s.Alternate != nil {
			collectVarNamesStmt(env, s.Alternate)
		}
	case *ast.WhileStatement:
		collectVarNamesStmt(env, s.Body)
	case *ast.DoWhileStatement:
		collectVarNamesStmt(env, s.Body)
	case *ast.ForStatement:
		if vs, ok := s.Init.(*ast.VariableStatement); ok && vs.Kind == ast.VarKindVar {
			for _, d := range vs.Declarations {
				declareVarNames(env, d.ID)
			}
		}
		collectVarNamesStmt(env, s.Body)
	case *ast.ForInStatement:
		if vs, ok := s.Left.(*ast.VariableStatement); ok && vs.Kind == ast.VarKindVar {
			for _, d := range vs.Declarations {
				declareVarNames(env, d.ID)
			}
		}
		collectVarNamesStmt(env, s.Body)
	case *ast.ForOfStatement:
		if vs, ok := s.Left.(*ast.VariableStatement); ok && vs.Kind == ast.VarKindVar {
			for _, d := range vs.Declarations {
				declareVarNames(env, d.ID)
			}
		}
		collectVarNamesStmt(env, s.Body)
	case *ast.TryStatement:
		if s.Block != nil {
			collectVarNames(env, s.Block.Body)
		}
		if s.Handler != nil && s.Handler.Body != nil {
			collectVarNames(env, s.Handler.Body.Body)
		}
		if s.Finalizer != nil {
			collectVarNames(env, s.Finalizer.Body)
		}
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			collectVarNames(env, c.Consequent)
		}
	case *ast.LabeledStatement:
		collectVarNamesStmt(env, s.Body)
	case *ast.WithStatement:
		collectVarNamesStmt(env, s.Body)
	}
}

func declareVarNames(env *runtime.Environment, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.Identifier:
		if !env.HasOwn(p.Name) {
			env.Declare(p.Name, runtime.BindVar, true, runtime.Undefined)
		}
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el.Target != nil {
				declareVarNames(env, el.Target)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			declareVarNames(env, prop.Value)
		}
	case *ast.AssignPattern:
		declareVarNames(env, p.Target)
	case *ast.RestPattern:
		declareVarNames(env, p.Target)
	}
}
