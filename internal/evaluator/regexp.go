package evaluator

import (
	"github.com/dlclark/regexp2"

	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// makeRegExp implements RegExpCreate (§4.10 item 11): compiles source under
// regexp2 (the pack's ECMAScript-flavored engine; Go's stdlib regexp is
// RE2-based and cannot express backreferences or lookaround) with the
// option set the JS flag letters select, then allocates the RegExp object
// carrying the mandated source/flags/lastIndex properties.
func (ev *Evaluator) makeRegExp(source, flags string) (runtime.Value, error) {
	opts := regexp2.ECMAScript
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		}
	}
	compiled, err := regexp2.Compile(source, opts)
	if err != nil {
		return runtime.Undefined, &ops.Thrown{Completion: runtime.ThrowC(ev.NewSyntaxError("Invalid regular expression: " + err.Error()))}
	}

	obj := runtime.NewObject("RegExp", ev.Realm.RegExpPrototype)
	obj.RegExpData = &runtime.RegExpData{Source: source, Flags: flags, Compiled: compiled}
	id := ev.Heap_.Allocate(obj)
	obj.DefineOwn("lastIndex", runtime.DataProperty(runtime.Number(0), true, false, false))
	obj.DefineOwn("source", runtime.DataProperty(runtime.StringFromGo(source), false, false, false))
	obj.DefineOwn("flags", runtime.DataProperty(runtime.StringFromGo(flags), false, false, false))
	obj.DefineOwn("global", runtime.DataProperty(runtime.Bool(containsRune(flags, 'g')), false, false, false))
	obj.DefineOwn("ignoreCase", runtime.DataProperty(runtime.Bool(containsRune(flags, 'i')), false, false, false))
	obj.DefineOwn("multiline", runtime.DataProperty(runtime.Bool(containsRune(flags, 'm')), false, false, false))
	obj.DefineOwn("dotAll", runtime.DataProperty(runtime.Bool(containsRune(flags, 's')), false, false, false))
	obj.DefineOwn("unicode", runtime.DataProperty(runtime.Bool(containsRune(flags, 'u')), false, false, false))
	obj.DefineOwn("sticky", runtime.DataProperty(runtime.Bool(containsRune(flags, 'y')), false, false, false))
	return runtime.Object(id), nil
}

// MakeRegExp is the exported form of makeRegExp, used by internal/builtins
// to implement `new RegExp(...)`.
func (ev *Evaluator) MakeRegExp(source, flags string) (runtime.Value, error) {
	return ev.makeRegExp(source, flags)
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
