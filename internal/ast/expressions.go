package ast

// Identifier is a name reference; also doubles as a binding Pattern.
type Identifier struct {
	Span
	Name string `json:"name"`
}

func (*Identifier) node()    {}
func (*Identifier) expr()    {}
func (*Identifier) pattern() {}

// PrivateIdentifier names a private class field/method (`#x`), legal only
// as the right-hand side of a Member or `in` expression.
type PrivateIdentifier struct {
	Span
	Name string `json:"name"`
}

func (*PrivateIdentifier) node() {}
func (*PrivateIdentifier) expr() {}

type ThisExpression struct{ Span }

func (*ThisExpression) node() {}
func (*ThisExpression) expr() {}

type NewTargetExpression struct{ Span }

func (*NewTargetExpression) node() {}
func (*NewTargetExpression) expr() {}

type SuperExpression struct{ Span }

func (*SuperExpression) node() {}
func (*SuperExpression) expr() {}

// UnaryExpression covers typeof/void/delete/-/+/!/~ (§6.3 lists Typeof,
// Void, Delete as their own families; they are unary operators here,
// distinguished by Operator).
type UnaryExpression struct {
	Span
	Operator string     `json:"operator"`
	Argument Expression `json:"argument"`
}

func (*UnaryExpression) node() {}
func (*UnaryExpression) expr() {}

type BinaryExpression struct {
	Span
	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func (*BinaryExpression) node() {}
func (*BinaryExpression) expr() {}

// LogicalExpression covers &&, ||, ?? (short-circuiting, unlike Binary).
type LogicalExpression struct {
	Span
	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func (*LogicalExpression) node() {}
func (*LogicalExpression) expr() {}

type UpdateExpression struct {
	Span
	Operator string     `json:"operator"` // "++" | "--"
	Argument Expression `json:"argument"`
	Prefix   bool       `json:"prefix"`
}

func (*UpdateExpression) node() {}
func (*UpdateExpression) expr() {}

type AssignExpression struct {
	Span
	Operator string     `json:"operator"` // "=", "+=", "&&=", ...
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func (*AssignExpression) node() {}
func (*AssignExpression) expr() {}

type ConditionalExpression struct {
	Span
	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func (*ConditionalExpression) node() {}
func (*ConditionalExpression) expr() {}

// Argument wraps a call/new argument, marking spread elements.
type Argument struct {
	Span
	Value  Expression `json:"value"`
	Spread bool       `json:"spread,omitempty"`
}

type CallExpression struct {
	Span
	Callee   Expression `json:"callee"`
	Args     []Argument `json:"arguments"`
	Optional bool       `json:"optional,omitempty"`
}

func (*CallExpression) node() {}
func (*CallExpression) expr() {}

type NewExpression struct {
	Span
	Callee Expression `json:"callee"`
	Args   []Argument `json:"arguments"`
}

func (*NewExpression) node() {}
func (*NewExpression) expr() {}

// MemberExpression covers both `.` (Computed=false, Property is an
// Identifier or PrivateIdentifier) and `[]` (Computed=true, Property an
// Expression). Optional marks `?.`.
type MemberExpression struct {
	Span
	Object   Expression `json:"object"`
	Property Node       `json:"property"`
	Computed bool       `json:"computed"`
	Optional bool       `json:"optional,omitempty"`
}

func (*MemberExpression) node() {}
func (*MemberExpression) expr() {}

// OptionalChainExpression wraps a chain rooted at a `?.` so evaluation can
// short-circuit the whole chain to Undefined in one step (§4.8.3).
type OptionalChainExpression struct {
	Span
	Expr Expression `json:"expression"`
}

func (*OptionalChainExpression) node() {}
func (*OptionalChainExpression) expr() {}

// ArrayElement is nil Value for an elided hole (`[1, , 3]`).
type ArrayElement struct {
	Span
	Value  Expression `json:"value,omitempty"`
	Spread bool       `json:"spread,omitempty"`
	Hole   bool       `json:"hole,omitempty"`
}

type ArrayExpression struct {
	Span
	Elements []ArrayElement `json:"elements"`
}

func (*ArrayExpression) node() {}
func (*ArrayExpression) expr() {}

// PropertyDef is one ObjectExpression entry: a plain key-value, a
// shorthand, a spread (Spread=true, only Value set), or an accessor.
type PropertyDef struct {
	Span
	Key       Expression `json:"key,omitempty"`
	Value     Expression `json:"value,omitempty"`
	Computed  bool       `json:"computed,omitempty"`
	Shorthand bool       `json:"shorthand,omitempty"`
	Spread    bool       `json:"spread,omitempty"`
	Kind      MethodKind `json:"kind,omitempty"` // "", get, set, method
}

type ObjectExpression struct {
	Span
	Properties []PropertyDef `json:"properties"`
}

func (*ObjectExpression) node() {}
func (*ObjectExpression) expr() {}

// TemplateLiteral's Quasis has len(Expressions)+1 entries.
type TemplateLiteral struct {
	Span
	Quasis      []string     `json:"quasis"`
	Expressions []Expression `json:"expressions"`
}

func (*TemplateLiteral) node() {}
func (*TemplateLiteral) expr() {}

type TaggedTemplateExpression struct {
	Span
	Tag   Expression       `json:"tag"`
	Quasi *TemplateLiteral `json:"quasi"`
}

func (*TaggedTemplateExpression) node() {}
func (*TaggedTemplateExpression) expr() {}

type SequenceExpression struct {
	Span
	Expressions []Expression `json:"expressions"`
}

func (*SequenceExpression) node() {}
func (*SequenceExpression) expr() {}

// SpreadElement appears inside ArrayExpression/CallExpression argument
// lists via ArrayElement.Spread/Argument.Spread; this standalone form is
// used for object-spread's source expression and assignment-pattern rest.
type SpreadElement struct {
	Span
	Argument Expression `json:"argument"`
}

func (*SpreadElement) node() {}
func (*SpreadElement) expr() {}

type YieldExpression struct {
	Span
	Argument Expression `json:"argument,omitempty"`
	Delegate bool       `json:"delegate,omitempty"` // yield*
}

func (*YieldExpression) node() {}
func (*YieldExpression) expr() {}

type AwaitExpression struct {
	Span
	Argument Expression `json:"argument"`
}

func (*AwaitExpression) node() {}
func (*AwaitExpression) expr() {}

// ImportExpression models dynamic `import(...)`; per spec.md Non-goals
// (modules out of scope) it always evaluates to a rejected/throwing
// completion — kept so a conforming parser may still emit the node.
type ImportExpression struct {
	Span
	Source Expression `json:"source"`
}

func (*ImportExpression) node() {}
func (*ImportExpression) expr() {}
