package jsse

import "testing"

// Writes an Int32Array through set() and reads one element back by index.
func TestEval_Int32ArraySetThenIndexedRead(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("a", newExpr(ident("Int32Array"), numberLiteral(3))),
		exprStmt(call(member(ident("a"), "set"), arrayLit(numberLiteral(10), numberLiteral(20), numberLiteral(30)))),
		exprStmt(index(ident("a"), numberLiteral(1))),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 20 {
		t.Errorf("a[1] after set([10,20,30]) = %v, want 20", got)
	}
}

func TestEval_TypedArrayLength(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("a", newExpr(ident("Uint8Array"), numberLiteral(5))),
		exprStmt(member(ident("a"), "length")),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 5 {
		t.Errorf("new Uint8Array(5).length = %v, want 5", got)
	}
}

// DataView defaults to big-endian, matching the real DataView contract;
// an explicit littleEndian argument flips that. This test writes with
// littleEndian=true and reads the first byte back, so it exercises the
// little-endian path only.
func TestEval_DataViewEndianness(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("buf", newExpr(ident("ArrayBuffer"), numberLiteral(4))),
		varStmt("dv", newExpr(ident("DataView"), ident("buf"))),
		exprStmt(call(member(ident("dv"), "setUint32"), numberLiteral(0), numberLiteral(1), boolLiteral(true))),
		exprStmt(call(member(ident("dv"), "getUint8"), numberLiteral(0))),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 1 {
		t.Errorf("low byte of little-endian-written 1 = %v, want 1", got)
	}
}

func TestEval_ArrayBufferByteLength(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := stmts(
		varStmt("buf", newExpr(ident("ArrayBuffer"), numberLiteral(16))),
		exprStmt(member(ident("buf"), "byteLength")),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 16 {
		t.Errorf("new ArrayBuffer(16).byteLength = %v, want 16", got)
	}
}
