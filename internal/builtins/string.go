package builtins

import (
	"math"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installString builds %String.prototype% and the String constructor
// (§4.9 item 4), operating on the UTF-16 code-unit JsString (§4.2) so
// .length and slicing match JS semantics rather than Go's UTF-8 string.
func (c *ctx) installString() {
	ev := c.ev
	proto := runtime.NewObject("String", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	proto.PrimitiveValue = valuePtr(runtime.StringFromGo(""))
	ev.Realm.StringPrototype = &protoID

	str := func(this runtime.Value) (*runtime.JsString, error) {
		if this.IsString() {
			return this.AsString(), nil
		}
		if this.IsObject() {
			if o := ev.Heap_.Get(this.AsObjectID()); o != nil && o.PrimitiveValue != nil && o.PrimitiveValue.IsString() {
				return o.PrimitiveValue.AsString(), nil
			}
		}
		return nil, typeErr(ev, "String.prototype method called on non-string")
	}

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.String(s))
	})
	c.method(proto, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.String(s))
	})
	c.method(proto, "charAt", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		idx := intArg(ev, args, 0)
		if idx < 0 || idx >= s.Len() {
			return runtime.NormalC(runtime.StringFromGo(""))
		}
		return runtime.NormalC(runtime.String(s.SliceUTF16(idx, idx+1)))
	})
	c.method(proto, "charCodeAt", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		idx := intArg(ev, args, 0)
		if idx < 0 || idx >= s.Len() {
			return runtime.NormalC(runtime.Number(math.NaN()))
		}
		return runtime.NormalC(runtime.Number(float64(s.Units()[idx])))
	})
	c.method(proto, "codePointAt", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		idx := intArg(ev, args, 0)
		units := s.Units()
		if idx < 0 || idx >= len(units) {
			return runtime.NormalC(runtime.Undefined)
		}
		first := rune(units[idx])
		if first >= 0xD800 && first <= 0xDBFF && idx+1 < len(units) {
			second := rune(units[idx+1])
			if second >= 0xDC00 && second <= 0xDFFF {
				cp := (first-0xD800)*0x400 + (second - 0xDC00) + 0x10000
				return runtime.NormalC(runtime.Number(float64(cp)))
			}
		}
		return runtime.NormalC(runtime.Number(float64(first)))
	})
	c.method(proto, "indexOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		search, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		from := 0
		if len(args) > 1 {
			from = intArg(ev, args, 1)
		}
		return runtime.NormalC(runtime.Number(float64(s.IndexOf(search, from))))
	})
	c.method(proto, "lastIndexOf", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		search, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(s.LastIndexOf(search, s.Len()))))
	})
	c.method(proto, "includes", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		search, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(s.IndexOf(search, 0) >= 0))
	})
	c.method(proto, "startsWith", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		search, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(s.IndexOf(search, 0) == 0))
	})
	c.method(proto, "endsWith", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		search, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		end := s.Len()
		idx := s.LastIndexOf(search, end)
		return runtime.NormalC(runtime.Bool(idx >= 0 && idx+search.Len() == end))
	})
	c.method(proto, "slice", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		start, end := stringSliceRange(s.Len(), ev, arg(args, 0), arg(args, 1))
		return runtime.NormalC(runtime.String(s.SliceUTF16(start, end)))
	})
	c.method(proto, "substring", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		n := s.Len()
		start := clampInt(intArg(ev, args, 0), 0, n)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = clampInt(intArg(ev, args, 1), 0, n)
		}
		if start > end {
			start, end = end, start
		}
		return runtime.NormalC(runtime.String(s.SliceUTF16(start, end)))
	})
	c.method(proto, "toUpperCase", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(strings.ToUpper(s.Go())))
	})
	c.method(proto, "toLowerCase", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(strings.ToLower(s.Go())))
	})
	c.method(proto, "trim", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(strings.TrimSpace(s.Go())))
	})
	c.method(proto, "split", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		sepArg := arg(args, 0)
		if sepArg.IsUndefined() {
			return runtime.NormalC(ev.NewArray([]runtime.Value{runtime.String(s)}))
		}
		sep, err := ev.ToStringValue(sepArg)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		parts := strings.Split(s.Go(), sep.Go())
		out := make([]runtime.Value, len(parts))
		for i, p := range parts {
			out[i] = runtime.StringFromGo(p)
		}
		return runtime.NormalC(ev.NewArray(out))
	})
	c.method(proto, "concat", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		result := s
		for _, a := range args {
			other, err := ev.ToStringValue(a)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			result = result.Concat(other)
		}
		return runtime.NormalC(runtime.String(result))
	})
	c.method(proto, "repeat", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		n := intArg(ev, args, 0)
		if n < 0 {
			return ev.ThrowCompletion(&ops.Thrown{Completion: runtime.ThrowC(ev.NewRangeError("Invalid count value"))})
		}
		return runtime.NormalC(runtime.StringFromGo(strings.Repeat(s.Go(), n)))
	})
	c.method(proto, "padStart", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v, err := padString(ev, this, args, true)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})
	c.method(proto, "padEnd", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v, err := padString(ev, this, args, false)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(v)
	})
	c.method(proto, runtime.SymIterator, 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newArrayIterator(ev, runtime.String(s)))
	})
	c.method(proto, "normalize", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		form := runtime.NFC
		if len(args) > 0 && !args[0].IsUndefined() {
			a, err := ev.ToStringValue(args[0])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			switch a.Go() {
			case "NFD":
				form = runtime.NFD
			case "NFKC":
				form = runtime.NFKC
			case "NFKD":
				form = runtime.NFKD
			case "NFC":
				form = runtime.NFC
			default:
				return ev.ThrowCompletion(rangeErr(ev, "The normalization form should be one of NFC, NFD, NFKC, NFKD."))
			}
		}
		return runtime.NormalC(runtime.String(s.Normalize(form)))
	})
	c.method(proto, "localeCompare", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := str(this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		other, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		tag := language.English
		if len(args) > 1 && !args[1].IsUndefined() {
			loc, err := ev.ToStringValue(args[1])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			if parsed, perr := language.Parse(loc.Go()); perr == nil {
				tag = parsed
			}
		}
		col := collate.New(tag)
		return runtime.NormalC(runtime.Number(float64(sign(col.CompareString(s.Go(), other.Go())))))
	})

	ctorFn := ev.NewNativeFunction("String", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 {
			return runtime.NormalC(runtime.StringFromGo(""))
		}
		if args[0].IsSymbol() {
			sym := args[0].AsSymbol()
			return runtime.NormalC(runtime.StringFromGo("Symbol(" + sym.Description + ")"))
		}
		s, err := ev.ToStringValue(args[0])
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.String(s))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))
	c.method(ctorObj, "fromCharCode", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		units := make([]uint16, len(args))
		for i, a := range args {
			n, err := ev.ToNumber(a)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			units[i] = uint16(int64(n.AsNumber()))
		}
		return runtime.NormalC(runtime.String(runtime.NewJsString(units)))
	})

	c.declareGlobal("String", ctorFn)
}

func valuePtr(v runtime.Value) *runtime.Value { return &v }

func intArg(ev *evaluator.Evaluator, args []runtime.Value, i int) int {
	n, err := ev.ToNumber(arg(args, i))
	if err != nil {
		return 0
	}
	return int(n.AsNumber())
}

func stringSliceRange(length int, ev *evaluator.Evaluator, startArg, endArg runtime.Value) (int, int) {
	start := 0
	end := length
	if !startArg.IsUndefined() {
		start = clampIndex(ev, startArg, length)
	}
	if !endArg.IsUndefined() {
		end = clampIndex(ev, endArg, length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func padString(ev *evaluator.Evaluator, this runtime.Value, args []runtime.Value, atStart bool) (runtime.Value, error) {
	var s *runtime.JsString
	if this.IsString() {
		s = this.AsString()
	} else {
		v, err := ev.ToStringValue(this)
		if err != nil {
			return runtime.Undefined, err
		}
		s = v
	}
	targetLen := intArg(ev, args, 0)
	if targetLen <= s.Len() {
		return runtime.String(s), nil
	}
	fill := runtime.NewJsStringFromUTF8(" ")
	if len(args) > 1 && !args[1].IsUndefined() {
		f, err := ev.ToStringValue(args[1])
		if err != nil {
			return runtime.Undefined, err
		}
		fill = f
	}
	if fill.Len() == 0 {
		return runtime.String(s), nil
	}
	need := targetLen - s.Len()
	padUnits := make([]uint16, 0, need)
	for len(padUnits) < need {
		padUnits = append(padUnits, fill.Units()...)
	}
	pad := runtime.NewJsString(padUnits[:need])
	if atStart {
		return runtime.String(pad.Concat(s)), nil
	}
	return runtime.String(s.Concat(pad)), nil
}
