package astjson

import (
	"encoding/json"

	"github.com/pmatos/jsse/internal/ast"
)

func decodeParams(raw []json.RawMessage) ([]ast.Param, error) {
	params := make([]ast.Param, 0, len(raw))
	for _, rm := range raw {
		var p struct {
			Span
			Target  json.RawMessage `json:"target"`
			Default json.RawMessage `json:"default"`
			Rest    bool            `json:"rest"`
		}
		if err := json.Unmarshal(rm, &p); err != nil {
			return nil, err
		}
		target, err := DecodePattern(p.Target)
		if err != nil {
			return nil, err
		}
		def, err := decodeOptExpr(p.Default)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Span: sp(p.Span), Target: target, Default: def, Rest: p.Rest})
	}
	return params, nil
}

func decodeFunctionDeclaration(data json.RawMessage) (*ast.FunctionDeclaration, error) {
	var n struct {
		Span
		Name      string            `json:"name"`
		Params    []json.RawMessage `json:"params"`
		Body      json.RawMessage   `json:"body"`
		Generator bool              `json:"generator"`
		Async     bool              `json:"async"`
		Strict    bool              `json:"strict"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	params, err := decodeParams(n.Params)
	if err != nil {
		return nil, err
	}
	body, err := decodeBlock(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Span: sp(n.Span), Name: n.Name, Params: params, Body: body,
		Generator: n.Generator, Async: n.Async, Strict: n.Strict,
	}, nil
}

func decodeFunctionExpression(data json.RawMessage) (*ast.FunctionExpression, error) {
	var n struct {
		Span
		Name      string            `json:"name"`
		Params    []json.RawMessage `json:"params"`
		Body      json.RawMessage   `json:"body"`
		Generator bool              `json:"generator"`
		Async     bool              `json:"async"`
		Strict    bool              `json:"strict"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	params, err := decodeParams(n.Params)
	if err != nil {
		return nil, err
	}
	body, err := decodeBlock(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{
		Span: sp(n.Span), Name: n.Name, Params: params, Body: body,
		Generator: n.Generator, Async: n.Async, Strict: n.Strict,
	}, nil
}

func decodeArrowFunction(data json.RawMessage) (*ast.ArrowFunction, error) {
	var n struct {
		Span
		Params []json.RawMessage `json:"params"`
		Body   json.RawMessage   `json:"body"`
		Async  bool              `json:"async"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	params, err := decodeParams(n.Params)
	if err != nil {
		return nil, err
	}
	kind, err := kindOf(n.Body)
	if err != nil {
		return nil, err
	}
	var body ast.Node
	if isStatementKind(kind) {
		body, err = DecodeStatement(n.Body)
	} else {
		body, err = DecodeExpression(n.Body)
	}
	if err != nil {
		return nil, err
	}
	return &ast.ArrowFunction{Span: sp(n.Span), Params: params, Body: body, Async: n.Async}, nil
}

func decodeClassBody(data json.RawMessage) (*ast.ClassBody, error) {
	var n struct {
		Span
		Methods []struct {
			Span
			Key      json.RawMessage    `json:"key"`
			Private  bool               `json:"private"`
			Kind     ast.MethodKind     `json:"kind"`
			Static   bool               `json:"static"`
			Function json.RawMessage    `json:"function"`
		} `json:"methods"`
		Fields []struct {
			Span
			Key     json.RawMessage `json:"key"`
			Private bool            `json:"private"`
			Static  bool            `json:"static"`
			Value   json.RawMessage `json:"value"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	methods := make([]ast.MethodDefinition, 0, len(n.Methods))
	for _, m := range n.Methods {
		key, err := DecodeExpression(m.Key)
		if err != nil {
			return nil, err
		}
		fn, err := decodeFunctionExpression(m.Function)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ast.MethodDefinition{
			Span: sp(m.Span), Key: key, Private: m.Private, Kind: m.Kind, Static: m.Static, Function: fn,
		})
	}
	fields := make([]ast.FieldDefinition, 0, len(n.Fields))
	for _, f := range n.Fields {
		key, err := DecodeExpression(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodeOptExpr(f.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDefinition{Span: sp(f.Span), Key: key, Private: f.Private, Static: f.Static, Value: val})
	}
	return &ast.ClassBody{Span: sp(n.Span), Methods: methods, Fields: fields}, nil
}

func decodeClassDeclaration(data json.RawMessage) (*ast.ClassDeclaration, error) {
	var n struct {
		Span
		Name       string          `json:"name"`
		SuperClass json.RawMessage `json:"superClass"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	super, err := decodeOptExpr(n.SuperClass)
	if err != nil {
		return nil, err
	}
	body, err := decodeClassBody(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.ClassDeclaration{Span: sp(n.Span), Name: n.Name, SuperClass: super, Body: body}, nil
}

func decodeClassExpression(data json.RawMessage) (*ast.ClassExpression, error) {
	var n struct {
		Span
		Name       string          `json:"name"`
		SuperClass json.RawMessage `json:"superClass"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	super, err := decodeOptExpr(n.SuperClass)
	if err != nil {
		return nil, err
	}
	body, err := decodeClassBody(n.Body)
	if err != nil {
		return nil, err
	}
	return &ast.ClassExpression{Span: sp(n.Span), Name: n.Name, SuperClass: super, Body: body}, nil
}
