package jsse

import "testing"

// Exercises the spec's seed scenario: a Proxy get trap intercepting
// property access rather than forwarding to the target.
func TestEval_ProxyGetTrap(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	handler := objectLit(objProp{
		key:   "get",
		value: fn([]string{"target", "prop"}, numberLiteral(42)),
	})
	body := stmts(
		varStmt("target", objectLit(objProp{key: "foo", value: numberLiteral(1)})),
		varStmt("p", newExpr(ident("Proxy"), ident("target"), handler)),
		exprStmt(member(ident("p"), "foo")),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 42 {
		t.Errorf("p.foo through get trap = %v, want 42", got)
	}
}

func TestEval_ProxyWithoutTrapForwardsToTarget(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("target", objectLit(objProp{key: "foo", value: numberLiteral(9)})),
		varStmt("p", newExpr(ident("Proxy"), ident("target"), objectLit())),
		exprStmt(member(ident("p"), "foo")),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 9 {
		t.Errorf("p.foo through empty handler = %v, want 9 (forwarded)", got)
	}
}

func TestEval_ReflectGet(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("o", objectLit(objProp{key: "bar", value: numberLiteral(5)})),
		exprStmt(call(member(ident("Reflect"), "get"), ident("o"), stringLiteral("bar"))),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 5 {
		t.Errorf("Reflect.get(o, \"bar\") = %v, want 5", got)
	}
}
