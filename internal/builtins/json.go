package builtins

import (
	"encoding/json"
	"math"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installJSON builds the JSON global object (§4.10 item 3). JSON.parse
// decodes through encoding/json into a Go any-tree and rebuilds JS values
// from it (grounded on internal/jsonvalue/value.go's own JSON-to-Variant
// bridge); JSON.stringify walks the JS value graph directly, the mirror
// direction of the same bridge.
func (c *ctx) installJSON() {
	ev := c.ev
	obj := runtime.NewObject("JSON", ev.Realm.ObjectPrototype)
	id := ev.Heap_.Allocate(obj)

	c.method(obj, "parse", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		var decoded any
		if jerr := json.Unmarshal([]byte(s.Go()), &decoded); jerr != nil {
			return ev.ThrowCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewSyntaxError("Unexpected token in JSON: " + jerr.Error()))})
		}
		return runtime.NormalC(fromJSONValue(ev, decoded))
	})
	c.method(obj, "stringify", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		indent := ""
		if len(args) > 2 {
			if args[2].IsNumber() {
				n := int(args[2].AsNumber())
				if n > 10 {
					n = 10
				}
				for i := 0; i < n; i++ {
					indent += " "
				}
			} else if args[2].IsString() {
				indent = args[2].AsString().Go()
			}
		}
		out, undef, err := toJSONText(ev, v, indent, "")
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if undef {
			return runtime.NormalC(runtime.Undefined)
		}
		return runtime.NormalC(runtime.StringFromGo(out))
	})

	c.declareGlobal("JSON", runtime.Object(id))
}

func fromJSONValue(ev *evaluator.Evaluator, v any) runtime.Value {
	switch t := v.(type) {
	case nil:
		return runtime.Null
	case bool:
		return runtime.Bool(t)
	case float64:
		return runtime.Number(t)
	case string:
		return runtime.StringFromGo(t)
	case []any:
		vals := make([]runtime.Value, len(t))
		for i, el := range t {
			vals[i] = fromJSONValue(ev, el)
		}
		return ev.NewArray(vals)
	case map[string]any:
		obj := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
		id := ev.Heap_.Allocate(obj)
		for k, el := range t {
			obj.DefineOwn(k, runtime.DataProperty(fromJSONValue(ev, el), true, true, true))
		}
		return runtime.Object(id)
	}
	return runtime.Undefined
}

// toJSONText implements a working subset of the Quote/SerializeJSONProperty
// abstract operations: objects/arrays recurse, functions and undefined
// serialize as "no value" (signaled by the bool return), everything else
// reduces to its JSON text form.
func toJSONText(ev *evaluator.Evaluator, v runtime.Value, indent, cur string) (string, bool, error) {
	switch {
	case v.IsUndefined():
		return "", true, nil
	case v.IsNull():
		return "null", false, nil
	case v.IsBoolean():
		if v.AsBool() {
			return "true", false, nil
		}
		return "false", false, nil
	case v.IsNumber():
		n := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "null", false, nil
		}
		b, _ := json.Marshal(n)
		return string(b), false, nil
	case v.IsString():
		b, _ := json.Marshal(v.AsString().Go())
		return string(b), false, nil
	case v.IsObject():
		obj := ev.Heap_.Get(v.AsObjectID())
		if obj == nil {
			return "null", false, nil
		}
		if ev.IsCallable(v) {
			return "", true, nil
		}
		if toJSON, err := ev.GetProperty(v, "toJSON"); err == nil && ev.IsCallable(toJSON) {
			res := ev.Call(toJSON, v, nil)
			if res.IsAbrupt() {
				return "", false, &ops.Thrown{Completion: res}
			}
			return toJSONText(ev, res.Value, indent, cur)
		}
		nextCur := cur + indent
		nl, sp := "", ""
		if indent != "" {
			nl, sp = "\n", " "
		}
		if obj.ArrayElements != nil {
			if len(obj.ArrayElements.Values) == 0 {
				return "[]", false, nil
			}
			out := "[" + nl
			for i, el := range obj.ArrayElements.Values {
				if i > 0 {
					out += "," + nl
				}
				out += nextCur
				txt, undef, err := toJSONText(ev, el, indent, nextCur)
				if err != nil {
					return "", false, err
				}
				if undef {
					txt = "null"
				}
				out += txt
			}
			out += nl + cur + "]"
			return out, false, nil
		}
		keys := ownEnumerableStringKeys(ev, v)
		var entries []string
		for _, k := range keys {
			el, err := ev.GetProperty(v, k)
			if err != nil {
				return "", false, err
			}
			txt, undef, err := toJSONText(ev, el, indent, nextCur)
			if err != nil {
				return "", false, err
			}
			if undef {
				continue
			}
			kb, _ := json.Marshal(k)
			entries = append(entries, string(kb)+":"+sp+txt)
		}
		if len(entries) == 0 {
			return "{}", false, nil
		}
		out := "{" + nl
		for i, e := range entries {
			if i > 0 {
				out += "," + nl
			}
			out += nextCur + e
		}
		out += nl + cur + "}"
		return out, false, nil
	}
	return "", true, nil
}
