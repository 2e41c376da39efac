package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/pmatos/jsse/internal/ast"
)

var patternKinds = map[string]bool{
	"ArrayPattern": true, "ObjectPattern": true, "AssignPattern": true, "RestPattern": true,
}

func isPatternKind(kind string) bool { return patternKinds[kind] }

// DecodePattern decodes one Pattern-family node. Identifier also satisfies
// Pattern and is handled by delegating to DecodeExpression.
func DecodePattern(data json.RawMessage) (ast.Pattern, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Identifier":
		expr, err := DecodeExpression(data)
		if err != nil {
			return nil, err
		}
		return expr.(*ast.Identifier), nil
	case "ArrayPattern":
		var n struct {
			Span
			Elements []struct {
				Span
				Target  json.RawMessage `json:"target"`
				Default json.RawMessage `json:"default"`
				Rest    bool            `json:"rest"`
				Hole    bool            `json:"hole"`
			} `json:"elements"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		elems := make([]ast.ArrayPatternElement, 0, len(n.Elements))
		for _, e := range n.Elements {
			target, err := DecodePattern(e.Target)
			if err != nil {
				return nil, err
			}
			def, err := decodeOptExpr(e.Default)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ast.ArrayPatternElement{Span: sp(e.Span), Target: target, Default: def, Rest: e.Rest, Hole: e.Hole})
		}
		return &ast.ArrayPattern{Span: sp(n.Span), Elements: elems}, nil
	case "ObjectPattern":
		var n struct {
			Span
			Properties []struct {
				Span
				Key       json.RawMessage `json:"key"`
				Computed  bool            `json:"computed"`
				Value     json.RawMessage `json:"value"`
				Default   json.RawMessage `json:"default"`
				Shorthand bool            `json:"shorthand"`
				Rest      bool            `json:"rest"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		props := make([]ast.ObjectPatternProperty, 0, len(n.Properties))
		for _, p := range n.Properties {
			key, err := DecodeExpression(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := DecodePattern(p.Value)
			if err != nil {
				return nil, err
			}
			def, err := decodeOptExpr(p.Default)
			if err != nil {
				return nil, err
			}
			props = append(props, ast.ObjectPatternProperty{
				Span: sp(p.Span), Key: key, Computed: p.Computed, Value: val,
				Default: def, Shorthand: p.Shorthand, Rest: p.Rest,
			})
		}
		return &ast.ObjectPattern{Span: sp(n.Span), Properties: props}, nil
	case "AssignPattern":
		var n struct {
			Span
			Target  json.RawMessage `json:"target"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		target, err := DecodePattern(n.Target)
		if err != nil {
			return nil, err
		}
		def, err := DecodeExpression(n.Default)
		if err != nil {
			return nil, err
		}
		return &ast.AssignPattern{Span: sp(n.Span), Target: target, Default: def}, nil
	case "RestPattern":
		var n struct {
			Span
			Target json.RawMessage `json:"target"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		target, err := DecodePattern(n.Target)
		if err != nil {
			return nil, err
		}
		return &ast.RestPattern{Span: sp(n.Span), Target: target}, nil
	}
	return nil, fmt.Errorf("unknown pattern kind %q", kind)
}
