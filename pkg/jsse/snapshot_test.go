package jsse

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestEval_Snapshots runs a small battery of representative programs and
// snapshots their stringified result, the same snaps.MatchSnapshot(t,
// name, value) call the interpreter's fixture-driven test suite uses to
// pin down output across a named set of scripts.
func TestEval_Snapshots(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"arithmetic", call(member(ident("Math"), "max"), numberLiteral(3), numberLiteral(7), numberLiteral(2))},
		{"temporal_duration", call(member(
			call(member(member(ident("Temporal"), "Duration"), "from"), objectLit(objProp{key: "hours", value: numberLiteral(2)})),
			"toString"))},
		{"base64_roundtrip", call(member(newExpr(ident("Uint8Array"), arrayLit(numberLiteral(1), numberLiteral(2))), "toBase64"))},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in, err := New()
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			doc := program(exprStmt(tc.expr))
			result, err := in.Eval(doc)
			if err != nil {
				t.Fatalf("Eval failed: %v", err)
			}
			snaps.MatchSnapshot(t, tc.name+"_result", result.String())
		})
	}
}
