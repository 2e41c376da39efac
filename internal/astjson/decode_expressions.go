package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/pmatos/jsse/internal/ast"
)

func decodeOptExpr(data json.RawMessage) (ast.Expression, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return DecodeExpression(data)
}

func decodeArgs(raw []json.RawMessage) ([]ast.Argument, error) {
	args := make([]ast.Argument, 0, len(raw))
	for _, rm := range raw {
		var a struct {
			Span
			Value  json.RawMessage `json:"value"`
			Spread bool            `json:"spread"`
		}
		if err := json.Unmarshal(rm, &a); err != nil {
			return nil, err
		}
		val, err := DecodeExpression(a.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Argument{Span: sp(a.Span), Value: val, Spread: a.Spread})
	}
	return args, nil
}

// DecodeExpression decodes one Expression-family node.
func DecodeExpression(data json.RawMessage) (ast.Expression, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Literal":
		var n struct {
			Span
			Kind         ast.LiteralKind `json:"kind"`
			BooleanValue bool            `json:"booleanValue"`
			NumberValue  float64         `json:"numberValue"`
			StringValue  string          `json:"stringValue"`
			Raw          string          `json:"raw"`
			RegExpFlags  string          `json:"regexpFlags"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.Literal{
			Span: sp(n.Span), Kind: n.Kind, BooleanValue: n.BooleanValue,
			NumberValue: n.NumberValue, StringValue: n.StringValue,
			Raw: n.Raw, RegExpFlags: n.RegExpFlags,
		}, nil
	case "Identifier":
		var n struct {
			Span
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.Identifier{Span: sp(n.Span), Name: n.Name}, nil
	case "PrivateIdentifier":
		var n struct {
			Span
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.PrivateIdentifier{Span: sp(n.Span), Name: n.Name}, nil
	case "ThisExpression":
		var n struct{ Span }
		json.Unmarshal(data, &n)
		return &ast.ThisExpression{Span: sp(n.Span)}, nil
	case "NewTargetExpression":
		var n struct{ Span }
		json.Unmarshal(data, &n)
		return &ast.NewTargetExpression{Span: sp(n.Span)}, nil
	case "SuperExpression":
		var n struct{ Span }
		json.Unmarshal(data, &n)
		return &ast.SuperExpression{Span: sp(n.Span)}, nil
	case "UnaryExpression":
		var n struct {
			Span
			Operator string          `json:"operator"`
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		arg, err := DecodeExpression(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Span: sp(n.Span), Operator: n.Operator, Argument: arg}, nil
	case "BinaryExpression", "LogicalExpression":
		var n struct {
			Span
			Operator string          `json:"operator"`
			Left     json.RawMessage `json:"left"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		left, err := DecodeExpression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpression(n.Right)
		if err != nil {
			return nil, err
		}
		if kind == "BinaryExpression" {
			return &ast.BinaryExpression{Span: sp(n.Span), Operator: n.Operator, Left: left, Right: right}, nil
		}
		return &ast.LogicalExpression{Span: sp(n.Span), Operator: n.Operator, Left: left, Right: right}, nil
	case "UpdateExpression":
		var n struct {
			Span
			Operator string          `json:"operator"`
			Argument json.RawMessage `json:"argument"`
			Prefix   bool            `json:"prefix"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		arg, err := DecodeExpression(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Span: sp(n.Span), Operator: n.Operator, Argument: arg, Prefix: n.Prefix}, nil
	case "AssignExpression":
		var n struct {
			Span
			Operator string          `json:"operator"`
			Left     json.RawMessage `json:"left"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		left, err := DecodeExpression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpression(n.Right)
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpression{Span: sp(n.Span), Operator: n.Operator, Left: left, Right: right}, nil
	case "ConditionalExpression":
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
		cons, err := DecodeExpression(n.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := DecodeExpression(n.Alternate)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpression{Span: sp(n.Span), Test: test, Consequent: cons, Alternate: alt}, nil
	case "CallExpression":
		var n struct {
			Span
			Callee   json.RawMessage   `json:"callee"`
			Args     []json.RawMessage `json:"arguments"`
			Optional bool              `json:"optional"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		callee, err := DecodeExpression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpression{Span: sp(n.Span), Callee: callee, Args: args, Optional: n.Optional}, nil
	case "NewExpression":
		var n struct {
			Span
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		callee, err := DecodeExpression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return &ast.NewExpression{Span: sp(n.Span), Callee: callee, Args: args}, nil
	case "MemberExpression":
		var n struct {
			Span
			Object   json.RawMessage `json:"object"`
			Property json.RawMessage `json:"property"`
			Computed bool            `json:"computed"`
			Optional bool            `json:"optional"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		obj, err := DecodeExpression(n.Object)
		if err != nil {
			return nil, err
		}
		var prop ast.Node
		if n.Computed {
			prop, err = DecodeExpression(n.Property)
		} else {
			prop, err = DecodeNode(n.Property)
		}
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpression{Span: sp(n.Span), Object: obj, Property: prop, Computed: n.Computed, Optional: n.Optional}, nil
	case "OptionalChainExpression":
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
		return &ast.OptionalChainExpression{Span: sp(n.Span), Expr: expr}, nil
	case "ArrayExpression":
		var n struct {
			Span
			Elements []struct {
				Span
				Value  json.RawMessage `json:"value"`
				Spread bool            `json:"spread"`
				Hole   bool            `json:"hole"`
			} `json:"elements"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		elems := make([]ast.ArrayElement, 0, len(n.Elements))
		for _, e := range n.Elements {
			val, err := decodeOptExpr(e.Value)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ast.ArrayElement{Span: sp(e.Span), Value: val, Spread: e.Spread, Hole: e.Hole})
		}
		return &ast.ArrayExpression{Span: sp(n.Span), Elements: elems}, nil
	case "ObjectExpression":
		var n struct {
			Span
			Properties []struct {
				Span
				Key       json.RawMessage `json:"key"`
				Value     json.RawMessage `json:"value"`
				Computed  bool            `json:"computed"`
				Shorthand bool            `json:"shorthand"`
				Spread    bool            `json:"spread"`
				Kind      ast.MethodKind  `json:"kind"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		props := make([]ast.PropertyDef, 0, len(n.Properties))
		for _, p := range n.Properties {
			key, err := decodeOptExpr(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := decodeOptExpr(p.Value)
			if err != nil {
				return nil, err
			}
			props = append(props, ast.PropertyDef{
				Span: sp(p.Span), Key: key, Value: val, Computed: p.Computed,
				Shorthand: p.Shorthand, Spread: p.Spread, Kind: p.Kind,
			})
		}
		return &ast.ObjectExpression{Span: sp(n.Span), Properties: props}, nil
	case "TemplateLiteral":
		var n struct {
			Span
			Quasis      []string          `json:"quasis"`
			Expressions []json.RawMessage `json:"expressions"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		exprs := make([]ast.Expression, 0, len(n.Expressions))
		for _, rm := range n.Expressions {
			e, err := DecodeExpression(rm)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return &ast.TemplateLiteral{Span: sp(n.Span), Quasis: n.Quasis, Expressions: exprs}, nil
	case "TaggedTemplateExpression":
		var n struct {
			Span
			Tag   json.RawMessage `json:"tag"`
			Quasi json.RawMessage `json:"quasi"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		tag, err := DecodeExpression(n.Tag)
		if err != nil {
			return nil, err
		}
		quasi, err := DecodeExpression(n.Quasi)
		if err != nil {
			return nil, err
		}
		tpl, ok := quasi.(*ast.TemplateLiteral)
		if !ok {
			return nil, fmt.Errorf("TaggedTemplateExpression.quasi must be a TemplateLiteral")
		}
		return &ast.TaggedTemplateExpression{Span: sp(n.Span), Tag: tag, Quasi: tpl}, nil
	case "SequenceExpression":
		var n struct {
			Span
			Expressions []json.RawMessage `json:"expressions"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		exprs := make([]ast.Expression, 0, len(n.Expressions))
		for _, rm := range n.Expressions {
			e, err := DecodeExpression(rm)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return &ast.SequenceExpression{Span: sp(n.Span), Expressions: exprs}, nil
	case "SpreadElement":
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
		return &ast.SpreadElement{Span: sp(n.Span), Argument: arg}, nil
	case "YieldExpression":
		var n struct {
			Span
			Argument json.RawMessage `json:"argument"`
			Delegate bool            `json:"delegate"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		arg, err := decodeOptExpr(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.YieldExpression{Span: sp(n.Span), Argument: arg, Delegate: n.Delegate}, nil
	case "AwaitExpression":
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
		return &ast.AwaitExpression{Span: sp(n.Span), Argument: arg}, nil
	case "ImportExpression":
		var n struct {
			Span
			Source json.RawMessage `json:"source"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(n.Source)
		if err != nil {
			return nil, err
		}
		return &ast.ImportExpression{Span: sp(n.Span), Source: src}, nil
	case "FunctionExpression":
		return decodeFunctionExpression(data)
	case "ArrowFunction":
		return decodeArrowFunction(data)
	case "ClassExpression":
		return decodeClassExpression(data)
	}
	return nil, fmt.Errorf("unknown expression kind %q", kind)
}
