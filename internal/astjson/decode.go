// Package astjson decodes the JSON encoding of the AST contract (§6.3) into
// internal/ast node values. A real lexer/parser would hand the evaluator an
// in-memory AST directly; since that stage is an external collaborator
// (spec.md §1), jsse's CLI instead accepts the AST pre-serialized as JSON,
// one object per node tagged with a "type" discriminator, and this package
// is the decode step that stands in for it.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/pmatos/jsse/internal/ast"
)

// envelope peeks at a node's "type" tag before committing to a concrete Go
// type, dispatching over a closed, enumerated node set.
type envelope struct {
	Type string `json:"type"`
}

// DecodeProgram parses a full JSON AST document into a *ast.Program.
func DecodeProgram(data []byte) (*ast.Program, error) {
	var raw struct {
		Span
		Body []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	body := make([]ast.Statement, 0, len(raw.Body))
	for i, rm := range raw.Body {
		st, err := DecodeStatement(rm)
		if err != nil {
			return nil, fmt.Errorf("decode program body[%d]: %w", i, err)
		}
		body = append(body, st)
	}
	return &ast.Program{Span: ast.Span{Start: raw.Start, Stop: raw.Stop}, Body: body}, nil
}

// Span mirrors ast.Span's JSON shape for the raw-decode helpers above.
type Span struct {
	Start int `json:"start"`
	Stop  int `json:"end"`
}

func kindOf(data []byte) (string, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return "", err
	}
	if e.Type == "" {
		return "", fmt.Errorf("node missing \"type\" field")
	}
	return e.Type, nil
}

func decodeOpt[T any](data json.RawMessage, decode func(json.RawMessage) (T, error)) (T, error) {
	var zero T
	if len(data) == 0 || string(data) == "null" {
		return zero, nil
	}
	return decode(data)
}

// DecodeNode decodes any node (statement, expression, or pattern) by type
// tag, returning it as the ast.Node interface; callers that know the
// expected family should prefer DecodeStatement/DecodeExpression/DecodePattern.
func DecodeNode(data json.RawMessage) (ast.Node, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	if isStatementKind(kind) {
		return DecodeStatement(data)
	}
	if isPatternKind(kind) {
		return DecodePattern(data)
	}
	return DecodeExpression(data)
}
