// Package ast defines the node families the evaluator consumes.
//
// The grammar producing these nodes (lexer + parser) is an external
// collaborator, not part of this package. ast only fixes the shape a
// conforming parser must emit: Program, Statement, Expression, Pattern,
// Literal, mirroring the families enumerated in the language contract.
package ast

// Node is satisfied by every AST node. Pos/End give a half-open code-unit
// range for diagnostics; a parser that can't track positions may zero them.
type Node interface {
	node()
	Pos() int
	End() int
}

// Span is embedded by every concrete node and carries its source range.
type Span struct {
	Start int `json:"start"`
	Stop  int `json:"end"`
}

func (s Span) Pos() int { return s.Start }
func (s Span) End() int { return s.Stop }

// Statement is satisfied by every statement-family node (§6.3).
type Statement interface {
	Node
	stmt()
}

// Expression is satisfied by every expression-family node (§6.3).
type Expression interface {
	Node
	expr()
}

// Pattern is satisfied by every binding-pattern node used in destructuring
// and parameter lists.
type Pattern interface {
	Node
	pattern()
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Span
	Body []Statement `json:"body"`
}

func (*Program) node() {}
