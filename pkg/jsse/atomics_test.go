package jsse

import "testing"

func TestEval_AtomicsAddReturnsOldValue(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ta := newExpr(ident("Int32Array"), numberLiteral(4))
	body := stmts(
		varStmt("ta", ta),
		exprStmt(call(member(ident("ta"), "set"), arrayLit(numberLiteral(10), numberLiteral(20), numberLiteral(30), numberLiteral(40)))),
		exprStmt(call(member(ident("Atomics"), "add"), ident("ta"), numberLiteral(1), numberLiteral(5))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 20 {
		t.Errorf("Atomics.add old value = %v, want 20", got)
	}
}

func TestEval_AtomicsCompareExchange(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ta := newExpr(ident("Int32Array"), numberLiteral(1))
	body := stmts(
		varStmt("ta", ta),
		exprStmt(call(member(ident("Atomics"), "store"), ident("ta"), numberLiteral(0), numberLiteral(7))),
		exprStmt(call(member(ident("Atomics"), "compareExchange"), ident("ta"), numberLiteral(0), numberLiteral(7), numberLiteral(99))),
		exprStmt(call(member(ident("Atomics"), "load"), ident("ta"), numberLiteral(0))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 99 {
		t.Errorf("Atomics.load after compareExchange = %v, want 99", got)
	}
}

func TestEval_AtomicsIsLockFree(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := program(exprStmt(call(member(ident("Atomics"), "isLockFree"), numberLiteral(4))))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !result.Value.AsBool() {
		t.Errorf("Atomics.isLockFree(4) = false, want true")
	}
}
