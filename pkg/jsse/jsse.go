// Package jsse is the embeddable public API: an ECMAScript evaluator that
// consumes a pre-parsed AST (handed in as JSON, §6.3's wire contract) and
// runs it to a completion value. New constructs an engine,
// Parse (or its alias Compile) decodes a JSON-AST document into a
// *Program through internal/astjson.DecodeProgram, and Eval/Run
// execute it, an AST-in rather than a text-in front end since this module
// has no lexer/parser of its own.
package jsse

import (
	"github.com/sirupsen/logrus"

	"github.com/pmatos/jsse/internal/ast"
	"github.com/pmatos/jsse/internal/astjson"
	"github.com/pmatos/jsse/internal/builtins"
	"github.com/pmatos/jsse/internal/errors"
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// Option configures a new Interpreter via the usual functional-option
// pattern.
type Option func(*config)

type config struct {
	log *logrus.Entry
}

// WithLogger supplies the component-tagged logrus.Entry the evaluator and
// console.log write through; a default is used when omitted.
func WithLogger(log *logrus.Entry) Option {
	return func(c *config) { c.log = log }
}

// Interpreter owns one evaluator.Evaluator and its installed realm. It is
// not safe for concurrent use, matching the evaluator it wraps.
type Interpreter struct {
	ev *evaluator.Evaluator
}

// New builds an Interpreter with a fresh realm: every intrinsic
// object/prototype/constructor from internal/builtins.Install is already
// in place, so Run can execute a program immediately.
func New(opts ...Option) (*Interpreter, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	ev := evaluator.New(cfg.log)
	builtins.Install(ev)
	return &Interpreter{ev: ev}, nil
}

// Program is a decoded AST ready to run; this front end has no separate
// symbol table to expose, so Program only carries the tree.
type Program struct {
	tree *ast.Program
}

// AST returns the decoded program tree.
func (p *Program) AST() *ast.Program { return p.tree }

// Parse decodes a JSON-AST document into a runnable Program: "parsing"
// here means JSON decode plus node-shape validation rather than lexing
// text, since the AST itself is this front end's input format (§1, §6.3).
func (in *Interpreter) Parse(jsonAST []byte) (*Program, error) {
	tree, err := astjson.DecodeProgram(jsonAST)
	if err != nil {
		return nil, errors.New(errors.MsgDecodeFailed, err.Error())
	}
	return &Program{tree: tree}, nil
}

// Compile is an alias for Parse: with no separate semantic-analysis pass
// in this front end, compiling and parsing a JSON-AST document are the
// same operation.
func (in *Interpreter) Compile(jsonAST []byte) (*Program, error) {
	return in.Parse(jsonAST)
}

// Result wraps a program's completion value with an evaluator handle so
// callers can stringify/inspect it (String) without reaching into
// internal/runtime themselves.
type Result struct {
	Value runtime.Value
	ev    *evaluator.Evaluator
}

// String renders the result the way console.log would, via ToString.
func (r *Result) String() string {
	s, err := r.ev.ToStringValue(r.Value)
	if err != nil {
		return "<unprintable>"
	}
	return s.Go()
}

// RuntimeError is returned by Run/Eval when the program completes by
// throwing: it carries both the thrown runtime.Value (for callers that
// want to inspect it further, e.g. to read a TypeError's "message"
// property) and a flattened display string for ordinary error handling.
type RuntimeError struct {
	Thrown  runtime.Value
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Run executes an already-decoded Program in the interpreter's global
// environment. Top-level `let`/`const`/function declarations from a
// prior Run remain visible to the next one, since both share the same
// global environment.
func (in *Interpreter) Run(p *Program) (*Result, error) {
	c := in.ev.RunProgram(p.tree)
	if c.Type == runtime.Throw {
		msg := "uncaught exception"
		if s, err := in.ev.ToStringValue(c.Value); err == nil {
			msg = s.Go()
		}
		return nil, &RuntimeError{Thrown: c.Value, Message: msg}
	}
	return &Result{Value: c.Value, ev: in.ev}, nil
}

// Eval decodes and runs a JSON-AST document in one step: the combined
// equivalent of Compile followed by Run.
func (in *Interpreter) Eval(jsonAST []byte) (*Result, error) {
	p, err := in.Parse(jsonAST)
	if err != nil {
		return nil, err
	}
	return in.Run(p)
}

// Evaluator exposes the underlying evaluator for callers that need direct
// access to the realm (e.g. to register additional host functions before
// running a program). Most embedders should not need this.
func (in *Interpreter) Evaluator() *evaluator.Evaluator { return in.ev }
