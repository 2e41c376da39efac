package jsse

import "testing"

func TestEval_DateUTCRoundTrip(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	utc := call(member(ident("Date"), "UTC"),
		numberLiteral(2024), numberLiteral(1), numberLiteral(29),
		numberLiteral(12), numberLiteral(0), numberLiteral(0))
	d := newExpr(ident("Date"), utc)
	toISO := call(member(d, "toISOString"))

	doc := program(exprStmt(toISO))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "2024-02-29T12:00:00.000Z"; got != want {
		t.Errorf("toISOString() = %q, want %q", got, want)
	}
}

func TestEval_DateFieldGetters(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d := newExpr(ident("Date"), numberLiteral(2024), numberLiteral(5), numberLiteral(15))
	body := stmts(
		varStmt("d", d),
		exprStmt(call(member(ident("d"), "getUTCFullYear"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 2024 {
		t.Errorf("getUTCFullYear() = %v, want 2024", got)
	}
}

func TestEval_DateSetFullYearUpdatesTime(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	utc := call(member(ident("Date"), "UTC"), numberLiteral(2020), numberLiteral(0), numberLiteral(1))
	body := stmts(
		varStmt("d", newExpr(ident("Date"), utc)),
		exprStmt(call(member(ident("d"), "setUTCFullYear"), numberLiteral(1999))),
		exprStmt(call(member(ident("d"), "getUTCFullYear"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 1999 {
		t.Errorf("getUTCFullYear() after setUTCFullYear(1999) = %v, want 1999", got)
	}
}

func TestEval_DateParseISOString(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d := newExpr(ident("Date"), stringLiteral("2030-06-15T00:00:00.000Z"))
	toISO := call(member(d, "toISOString"))
	doc := program(exprStmt(toISO))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "2030-06-15T00:00:00.000Z"; got != want {
		t.Errorf("new Date(iso).toISOString() = %q, want %q", got, want)
	}
}
