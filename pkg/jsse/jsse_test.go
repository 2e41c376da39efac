package jsse

import "testing"

// program builds a minimal JSON-AST document for `<expr>;`, using the wire
// shapes internal/astjson/decode_expressions.go expects for a binary
// numeric Literal expression.
func program(jsonBody string) []byte {
	return []byte(`{"start":0,"end":0,"body":[` + jsonBody + `]}`)
}

func numberLiteral(n float64) string {
	return `{"type":"Literal","kind":"number","numberValue":` + itoa(n) + `}`
}

func itoa(n float64) string {
	if n == float64(int(n)) {
		return intToStr(int(n))
	}
	return "0"
}

func intToStr(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func TestRun_SimpleArithmetic(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := `{"type":"ExpressionStatement","expression":{"type":"BinaryExpression","operator":"+","left":` +
		numberLiteral(1) + `,"right":` + numberLiteral(2) + `}}`

	doc := program(body)

	result, err := in.Eval(doc)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result == nil {
		t.Fatal("Eval returned nil result")
	}
	if got := result.Value.AsNumber(); got != 3 {
		t.Errorf("1 + 2 = %v, want 3", got)
	}
	if got := result.String(); got != "3" {
		t.Errorf("Result.String() = %q, want %q", got, "3")
	}
}

func TestParse_BadJSON(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := in.Parse([]byte("not json")); err == nil {
		t.Error("Parse of malformed JSON should fail")
	}
}

func TestParse_UnknownNodeType(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc := program(`{"type":"NotARealNode"}`)
	if _, err := in.Parse(doc); err == nil {
		t.Error("Parse of an unknown node type should fail")
	}
}

func TestRun_ThrowSurfacesAsRuntimeError(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	body := `{"type":"ThrowStatement","argument":` + numberLiteral(42) + `}`
	doc := program(body)

	p, err := in.Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, err = in.Run(p)
	if err == nil {
		t.Fatal("Run of a throwing program should return an error")
	}
	rtErr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("error type = %T, want *RuntimeError", err)
	}
	if rtErr.Thrown.AsNumber() != 42 {
		t.Errorf("thrown value = %v, want 42", rtErr.Thrown.AsNumber())
	}
}

func TestRun_GlobalStatePersistsAcrossRuns(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := program(`{"type":"VariableStatement","kind":"var","declarations":[{"id":{"type":"Identifier","name":"x"},"init":` + numberLiteral(10) + `}]}`)
	p1, err := in.Parse(first)
	if err != nil {
		t.Fatalf("Parse(first) failed: %v", err)
	}
	if _, err := in.Run(p1); err != nil {
		t.Fatalf("Run(first) failed: %v", err)
	}

	second := program(`{"type":"ExpressionStatement","expression":{"type":"Identifier","name":"x"}}`)
	p2, err := in.Parse(second)
	if err != nil {
		t.Fatalf("Parse(second) failed: %v", err)
	}
	result, err := in.Run(p2)
	if err != nil {
		t.Fatalf("Run(second) failed: %v", err)
	}
	if got := result.Value.AsNumber(); got != 10 {
		t.Errorf("x = %v, want 10", got)
	}
}
