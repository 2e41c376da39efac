package jsse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEval_ProxyHasTrap exercises the Proxy has trap via testify's
// require/assert pair, the same New/Run/Eval shape the other builtin
// test files drive but asserted the way the rest of the pack does.
func TestEval_ProxyHasTrap(t *testing.T) {
	in, err := New()
	require.NoError(t, err)

	handler := objectLit(objProp{key: "has", value: fn([]string{"target", "key"}, boolLiteral(true))})
	target := objectLit()
	proxy := newExpr(ident("Proxy"), target, handler)

	inExpr := `{"type":"BinaryExpression","operator":"in","left":` + stringLiteral("anything") + `,"right":` + ident("p") + `}`
	body := stmts(
		varStmt("p", proxy),
		exprStmt(inExpr),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	require.NoError(t, err)
	assert.True(t, result.Value.AsBool())
}

func TestEval_MapSizeAndHas(t *testing.T) {
	in, err := New()
	require.NoError(t, err)

	mp := newExpr(ident("Map"))
	body := stmts(
		varStmt("m", mp),
		exprStmt(call(member(ident("m"), "set"), stringLiteral("a"), numberLiteral(1))),
		exprStmt(call(member(ident("m"), "has"), stringLiteral("a"))),
	)
	doc := program(body)
	result, err := in.Eval(doc)
	require.NoError(t, err)
	assert.True(t, result.Value.AsBool())
}

func TestEval_InvalidJSONThrowsDecodeError(t *testing.T) {
	in, err := New()
	require.NoError(t, err)

	_, err = in.Eval([]byte(`not json`))
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
}
