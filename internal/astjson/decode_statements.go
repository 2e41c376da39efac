package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/pmatos/jsse/internal/ast"
)

var statementKinds = map[string]bool{
	"EmptyStatement": true, "ExpressionStatement": true, "BlockStatement": true,
	"VariableStatement": true, "IfStatement": true, "WhileStatement": true,
	"DoWhileStatement": true, "ForStatement": true, "ForInStatement": true,
	"ForOfStatement": true, "ReturnStatement": true, "BreakStatement": true,
	"ContinueStatement": true, "ThrowStatement": true, "TryStatement": true,
	"SwitchStatement": true, "LabeledStatement": true, "WithStatement": true,
	"DebuggerStatement": true, "FunctionDeclaration": true, "ClassDeclaration": true,
}

func isStatementKind(kind string) bool { return statementKinds[kind] }

// DecodeStatement decodes one Statement-family node.
func DecodeStatement(data json.RawMessage) (ast.Statement, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "EmptyStatement":
		var n struct{ Span }
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.EmptyStatement{Span: sp(n.Span)}, nil
	case "ExpressionStatement":
		var n struct {
			Span
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		expr, err := DecodeExpression(n.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Span: sp(n.Span), Expr: expr}, nil
	case "BlockStatement":
		return decodeBlock(data)
	case "VariableStatement":
		var n struct {
			Span
			Kind         ast.VarKind `json:"kind"`
			Declarations []struct {
				Span
				ID   json.RawMessage `json:"id"`
				Init json.RawMessage `json:"init"`
			} `json:"declarations"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		decls := make([]ast.Declarator, 0, len(n.Declarations))
		for _, d := range n.Declarations {
			id, err := DecodePattern(d.ID)
			if err != nil {
				return nil, err
			}
			init, err := decodeOptExpr(d.Init)
			if err != nil {
				return nil, err
			}
			decls = append(decls, ast.Declarator{Span: sp(d.Span), ID: id, Init: init})
		}
		return &ast.VariableStatement{Span: sp(n.Span), Kind: n.Kind, Declarations: decls}, nil
	case "IfStatement":
		var n struct {
			Span
			Test       json.RawMessage `json:"test"`
			Consequent json.RawMessage `json:"consequent"`
			Alternate  json.RawMessage `json:"alternate"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(n.Test)
		if err != nil {
			return nil, err
		}
		cons, err := DecodeStatement(n.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := decodeOptStmt(n.Alternate)
		if err != nil {
			return nil, err
		}
		return &ast.IfStatement{Span: sp(n.Span), Test: test, Consequent: cons, Alternate: alt}, nil
	case "WhileStatement":
		var n struct {
			Span
			Test json.RawMessage `json:"test"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(n.Test)
		if err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStatement{Span: sp(n.Span), Test: test, Body: body}, nil
	case "DoWhileStatement":
		var n struct {
			Span
			Test json.RawMessage `json:"test"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(n.Test)
		if err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.DoWhileStatement{Span: sp(n.Span), Test: test, Body: body}, nil
	case "ForStatement":
		var n struct {
			Span
			Init   json.RawMessage `json:"init"`
			Test   json.RawMessage `json:"test"`
			Update json.RawMessage `json:"update"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		init, err := decodeForInit(n.Init)
		if err != nil {
			return nil, err
		}
		test, err := decodeOptExpr(n.Test)
		if err != nil {
			return nil, err
		}
		update, err := decodeOptExpr(n.Update)
		if err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStatement{Span: sp(n.Span), Init: init, Test: test, Update: update, Body: body}, nil
	case "ForInStatement", "ForOfStatement":
		var n struct {
			Span
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Body  json.RawMessage `json:"body"`
			Await bool            `json:"await"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		left, err := decodeForInit(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpression(n.Right)
		if err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		if kind == "ForInStatement" {
			return &ast.ForInStatement{Span: sp(n.Span), Left: left, Right: right, Body: body}, nil
		}
		return &ast.ForOfStatement{Span: sp(n.Span), Left: left, Right: right, Body: body, Await: n.Await}, nil
	case "ReturnStatement":
		var n struct {
			Span
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		arg, err := decodeOptExpr(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Span: sp(n.Span), Argument: arg}, nil
	case "BreakStatement":
		var n struct {
			Span
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Span: sp(n.Span), Label: n.Label}, nil
	case "ContinueStatement":
		var n struct {
			Span
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Span: sp(n.Span), Label: n.Label}, nil
	case "ThrowStatement":
		var n struct {
			Span
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		arg, err := DecodeExpression(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStatement{Span: sp(n.Span), Argument: arg}, nil
	case "TryStatement":
		var n struct {
			Span
			Block   json.RawMessage `json:"block"`
			Handler *struct {
				Span
				Param json.RawMessage `json:"param"`
				Body  json.RawMessage `json:"body"`
			} `json:"handler"`
			Finalizer json.RawMessage `json:"finalizer"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		blockStmt, err := decodeBlock(n.Block)
		if err != nil {
			return nil, err
		}
		var handler *ast.CatchClause
		if n.Handler != nil {
			var param ast.Pattern
			if len(n.Handler.Param) > 0 && string(n.Handler.Param) != "null" {
				param, err = DecodePattern(n.Handler.Param)
				if err != nil {
					return nil, err
				}
			}
			hbody, err := decodeBlock(n.Handler.Body)
			if err != nil {
				return nil, err
			}
			handler = &ast.CatchClause{Span: sp(n.Handler.Span), Param: param, Body: hbody}
		}
		var finalizer *ast.BlockStatement
		if len(n.Finalizer) > 0 && string(n.Finalizer) != "null" {
			finalizer, err = decodeBlock(n.Finalizer)
			if err != nil {
				return nil, err
			}
		}
		return &ast.TryStatement{Span: sp(n.Span), Block: blockStmt, Handler: handler, Finalizer: finalizer}, nil
	case "SwitchStatement":
		var n struct {
			Span
			Discriminant json.RawMessage `json:"discriminant"`
			Cases        []struct {
				Span
				Test       json.RawMessage   `json:"test"`
				Consequent []json.RawMessage `json:"consequent"`
			} `json:"cases"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		disc, err := DecodeExpression(n.Discriminant)
		if err != nil {
			return nil, err
		}
		cases := make([]ast.SwitchCase, 0, len(n.Cases))
		for _, c := range n.Cases {
			test, err := decodeOptExpr(c.Test)
			if err != nil {
				return nil, err
			}
			cons := make([]ast.Statement, 0, len(c.Consequent))
			for _, rm := range c.Consequent {
				st, err := DecodeStatement(rm)
				if err != nil {
					return nil, err
				}
				cons = append(cons, st)
			}
			cases = append(cases, ast.SwitchCase{Span: sp(c.Span), Test: test, Consequent: cons})
		}
		return &ast.SwitchStatement{Span: sp(n.Span), Discriminant: disc, Cases: cases}, nil
	case "LabeledStatement":
		var n struct {
			Span
			Label string          `json:"label"`
			Body  json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.LabeledStatement{Span: sp(n.Span), Label: n.Label, Body: body}, nil
	case "WithStatement":
		var n struct {
			Span
			Object json.RawMessage `json:"object"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		obj, err := DecodeExpression(n.Object)
		if err != nil {
			return nil, err
		}
		body, err := DecodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WithStatement{Span: sp(n.Span), Object: obj, Body: body}, nil
	case "DebuggerStatement":
		var n struct{ Span }
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.DebuggerStatement{Span: sp(n.Span)}, nil
	case "FunctionDeclaration":
		return decodeFunctionDeclaration(data)
	case "ClassDeclaration":
		return decodeClassDeclaration(data)
	}
	return nil, fmt.Errorf("unknown statement kind %q", kind)
}

func decodeBlock(data json.RawMessage) (*ast.BlockStatement, error) {
	var n struct {
		Span
		Body []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0, len(n.Body))
	for _, rm := range n.Body {
		st, err := DecodeStatement(rm)
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
	return &ast.BlockStatement{Span: sp(n.Span), Body: body}, nil
}

func decodeOptStmt(data json.RawMessage) (ast.Statement, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return DecodeStatement(data)
}

// decodeForInit decodes a for-header's init/left slot, which is either a
// VariableStatement or a plain Expression.
func decodeForInit(data json.RawMessage) (ast.Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	if kind == "VariableStatement" {
		return DecodeStatement(data)
	}
	return DecodeExpression(data)
}

func sp(s Span) ast.Span { return ast.Span{Start: s.Start, Stop: s.Stop} }
