package jsse

import "testing"

func TestEval_Uint8ArrayBase64RoundTrip(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u := newExpr(ident("Uint8Array"), arrayLit(numberLiteral(72), numberLiteral(105)))
	body := stmts(
		varStmt("u", u),
		varStmt("s", call(member(ident("u"), "toBase64"))),
		varStmt("v", call(member(ident("Uint8Array"), "fromBase64"), ident("s"))),
		exprStmt(index(ident("v"), numberLiteral(0))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 72 {
		t.Errorf("fromBase64(toBase64(u))[0] = %v, want 72", got)
	}
}

func TestEval_Uint8ArrayHexRoundTrip(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u := newExpr(ident("Uint8Array"), arrayLit(numberLiteral(255), numberLiteral(0), numberLiteral(16)))
	body := stmts(
		varStmt("u", u),
		exprStmt(call(member(ident("u"), "toHex"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "ff0010"; got != want {
		t.Errorf("toHex() = %q, want %q", got, want)
	}
}

func TestEval_Uint8ArrayFromHexRejectsOddLength(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := program(exprStmt(call(member(ident("Uint8Array"), "fromHex"), stringLiteral("abc"))))
	_, err = in.Eval(doc)
	if err == nil {
		t.Fatal("Uint8Array.fromHex(\"abc\") expected a SyntaxError, got none")
	}
}
