package jsse

import "testing"

// The spec's literal seed scenario: adding a year to a leap-day
// constrains the result to the nearest valid day in the target month.
func TestEval_TemporalPlainDateAddConstrains(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	temporalPlainDate := member(ident("Temporal"), "PlainDate")
	from := call(member(temporalPlainDate, "from"), stringLiteral("2024-02-29"))
	added := call(member(from, "add"), objectLit(objProp{key: "years", value: numberLiteral(1)}))
	toStr := call(member(added, "toString"))

	doc := program(exprStmt(toStr))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.String(); got != "2025-02-28" {
		t.Errorf("PlainDate.from(2024-02-29).add({years:1}).toString() = %q, want %q", got, "2025-02-28")
	}
}

func TestEval_TemporalPlainDateFields(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	temporalPlainDate := member(ident("Temporal"), "PlainDate")
	from := call(member(temporalPlainDate, "from"), stringLiteral("2024-02-29"))

	body := stmts(
		varStmt("d", from),
		exprStmt(member(ident("d"), "month")),
	)

	doc := program(body)
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 2 {
		t.Errorf("PlainDate.from(2024-02-29).month = %v, want 2", got)
	}
}

func TestEval_TemporalDurationToString(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	durCtor := member(ident("Temporal"), "Duration")
	from := call(member(durCtor, "from"), objectLit(
		objProp{key: "hours", value: numberLiteral(1)},
		objProp{key: "minutes", value: numberLiteral(30)},
	))
	toStr := call(member(from, "toString"))

	doc := program(exprStmt(toStr))
	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := result.String(); got != "PT1H30M" {
		t.Errorf("Duration.from({hours:1,minutes:30}).toString() = %q, want %q", got, "PT1H30M")
	}
}
