package jsse

import "testing"

func TestEval_IntlDateTimeFormatNumeric(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	utc := call(member(ident("Date"), "UTC"), numberLiteral(2024), numberLiteral(2), numberLiteral(15))
	d := newExpr(ident("Date"), utc)
	dtf := newExpr(member(ident("Intl"), "DateTimeFormat"), stringLiteral("en-US"))
	body := stmts(
		varStmt("d", d),
		varStmt("f", dtf),
		exprStmt(call(member(ident("f"), "format"), ident("d"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "3/15/2024"; got != want {
		t.Errorf("Intl.DateTimeFormat(...).format(d) = %q, want %q", got, want)
	}
}

func TestEval_IntlDateTimeFormatLongMonthFrench(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	utc := call(member(ident("Date"), "UTC"), numberLiteral(2024), numberLiteral(0), numberLiteral(1))
	d := newExpr(ident("Date"), utc)
	opts := objectLit(objProp{key: "month", value: stringLiteral("long")})
	dtf := newExpr(member(ident("Intl"), "DateTimeFormat"), stringLiteral("fr"), opts)
	body := stmts(
		varStmt("d", d),
		varStmt("f", dtf),
		exprStmt(call(member(ident("f"), "format"), ident("d"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "janvier"; got != want {
		t.Errorf("Intl.DateTimeFormat(fr, {month:'long'}).format(d) = %q, want %q", got, want)
	}
}

func TestEval_IntlDateTimeFormatResolvedOptionsLocale(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dtf := newExpr(member(ident("Intl"), "DateTimeFormat"), stringLiteral("de-DE"))
	doc := program(stmts(
		varStmt("f", dtf),
		varStmt("opts", call(member(ident("f"), "resolvedOptions"))),
		exprStmt(member(ident("opts"), "locale")),
	))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got, want := result.String(), "de"; got != want {
		t.Errorf("resolvedOptions().locale = %q, want %q", got, want)
	}
}
