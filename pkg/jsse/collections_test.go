package jsse

import "testing"

func TestEval_MapSetChain(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// (new Map()).set(1,2).get(1)
	mapCtor := newExpr(ident("Map"))
	setCall := call(member(mapCtor, "set"), numberLiteral(1), numberLiteral(2))
	getCall := call(member(setCall, "get"), numberLiteral(1))

	doc := program(exprStmt(getCall))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 2 {
		t.Errorf("map.set(1,2).get(1) = %v, want 2", got)
	}
}

func TestEval_MapSize(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mapCtor := newExpr(ident("Map"))
	setOnce := call(member(mapCtor, "set"), numberLiteral(1), numberLiteral(1))
	setTwice := call(member(setOnce, "set"), numberLiteral(1), numberLiteral(99))
	sizeExpr := member(setTwice, "size")

	doc := program(exprStmt(sizeExpr))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 1 {
		t.Errorf("size after re-setting same key = %v, want 1", got)
	}
}

func TestEval_SetDedupesValues(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	setCtor := newExpr(ident("Set"), arrayLit(numberLiteral(1), numberLiteral(2), numberLiteral(2)))
	sizeExpr := member(setCtor, "size")

	doc := program(exprStmt(sizeExpr))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 2 {
		t.Errorf("new Set([1,2,2]).size = %v, want 2", got)
	}
}

func TestEval_WeakMapGetAfterSet(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("k", objectLit()),
		varStmt("wm", newExpr(ident("WeakMap"))),
		exprStmt(call(member(ident("wm"), "set"), ident("k"), numberLiteral(7))),
		exprStmt(call(member(ident("wm"), "get"), ident("k"))),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 7 {
		t.Errorf("weakmap.get(k) = %v, want 7", got)
	}
}
