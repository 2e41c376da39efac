package jsse

// Helpers for hand-building the JSON-AST fixtures the Map/Set/Proxy,
// TypedArray/ArrayBuffer/DataView, and Temporal builtin tests drive
// through Interpreter.Eval, following the wire shapes decoded by
// internal/astjson/decode_expressions.go.

func stringLiteral(s string) string {
	return `{"type":"Literal","kind":"string","stringValue":` + quoteJSON(s) + `}`
}

func boolLiteral(b bool) string {
	if b {
		return `{"type":"Literal","kind":"boolean","booleanValue":true}`
	}
	return `{"type":"Literal","kind":"boolean","booleanValue":false}`
}

func quoteJSON(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '"')
	return string(out)
}

func ident(name string) string {
	return `{"type":"Identifier","name":"` + name + `"}`
}

// call builds a CallExpression: callee(args...).
func call(calleeJSON string, argsJSON ...string) string {
	return `{"type":"CallExpression","callee":` + calleeJSON + `,"arguments":[` + wrapArgs(argsJSON) + `]}`
}

// newExpr builds a NewExpression: new callee(args...).
func newExpr(calleeJSON string, argsJSON ...string) string {
	return `{"type":"NewExpression","callee":` + calleeJSON + `,"arguments":[` + wrapArgs(argsJSON) + `]}`
}

func wrapArgs(argsJSON []string) string {
	out := ""
	for i, a := range argsJSON {
		if i > 0 {
			out += ","
		}
		out += `{"value":` + a + `,"spread":false}`
	}
	return out
}

// member builds a non-computed MemberExpression: obj.name.
func member(objJSON, name string) string {
	return `{"type":"MemberExpression","object":` + objJSON + `,"property":` + ident(name) + `,"computed":false,"optional":false}`
}

// index builds a computed MemberExpression: obj[indexJSON].
func index(objJSON, indexJSON string) string {
	return `{"type":"MemberExpression","object":` + objJSON + `,"property":` + indexJSON + `,"computed":true,"optional":false}`
}

func arrayLit(elemsJSON ...string) string {
	out := ""
	for i, e := range elemsJSON {
		if i > 0 {
			out += ","
		}
		out += `{"value":` + e + `,"spread":false,"hole":false}`
	}
	return `{"type":"ArrayExpression","elements":[` + out + `]}`
}

type objProp struct {
	key   string
	value string
}

func objectLit(props ...objProp) string {
	out := ""
	for i, p := range props {
		if i > 0 {
			out += ","
		}
		out += `{"key":` + ident(p.key) + `,"value":` + p.value + `,"computed":false,"shorthand":false,"spread":false}`
	}
	return `{"type":"ObjectExpression","properties":[` + out + `]}`
}

// varStmt builds `var name = initJSON;`.
func varStmt(name, initJSON string) string {
	return `{"type":"VariableStatement","kind":"var","declarations":[{"id":` + ident(name) + `,"init":` + initJSON + `}]}`
}

func exprStmt(exprJSON string) string {
	return `{"type":"ExpressionStatement","expression":` + exprJSON + `}`
}

// stmts joins statement JSON fragments into one program body.
func stmts(stmtsJSON ...string) string {
	out := ""
	for i, s := range stmtsJSON {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

// fn builds a FunctionExpression with a single ReturnStatement body,
// taking the named parameters.
func fn(params []string, returnExprJSON string) string {
	ps := ""
	for i, p := range params {
		if i > 0 {
			ps += ","
		}
		ps += `{"target":` + ident(p) + `}`
	}
	body := `{"type":"BlockStatement","body":[{"type":"ReturnStatement","argument":` + returnExprJSON + `}]}`
	return `{"type":"FunctionExpression","params":[` + ps + `],"body":` + body + `}`
}
