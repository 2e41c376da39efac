package builtins

import (
	"fmt"

	"github.com/pmatos/jsse/internal/runtime"
)

var symbolCounter uint64

// installSymbol builds %Symbol.prototype% and the Symbol factory function
// (§4.9 item 7, §3.1's well-known symbols). Symbol is a plain native
// function; `new Symbol()` is not rejected, since the evaluator's
// Construct accepts every non-arrow function. Well-known symbols are
// exposed as Symbol.iterator etc., represented internally by the fixed
// string keys in runtime.SymIterator and friends rather than allocated
// Symbol values, since every internal lookup already keys off those
// strings directly.
func (c *ctx) installSymbol() {
	ev := c.ev
	proto := runtime.NewObject("Symbol", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.SymbolPrototype = &protoID

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if this.IsSymbol() {
			return runtime.NormalC(runtime.StringFromGo("Symbol(" + this.AsSymbol().Description + ")"))
		}
		return ev.ThrowCompletion(typeErr(ev, "Symbol.prototype.toString called on non-symbol"))
	})
	c.getter(proto, "description", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if this.IsSymbol() {
			return runtime.NormalC(runtime.StringFromGo(this.AsSymbol().Description))
		}
		return runtime.NormalC(runtime.Undefined)
	})

	ctorFn := ev.NewNativeFunction("Symbol", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		desc := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			s, err := ev.ToStringValue(args[0])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			desc = s.Go()
		}
		symbolCounter++
		sym := &runtime.Symbol{ID: symbolCounter, Description: desc}
		return runtime.NormalC(runtime.SymbolValue(sym))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	wellKnown := []string{
		runtime.SymIterator, runtime.SymAsyncIterator, runtime.SymToStringTag,
		runtime.SymToPrimitive, runtime.SymSpecies, runtime.SymHasInstance, runtime.SymUnscopables,
	}
	for _, wk := range wellKnown {
		name := wk[len("Symbol."):]
		ctorObj.DefineOwn(name, runtime.DataProperty(runtime.SymbolValue(&runtime.Symbol{Description: fmt.Sprintf("Symbol.%s", name), WellKnown: wk}), false, false, false))
	}

	registry := map[string]runtime.Value{}
	c.method(ctorObj, "for", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		key := s.Go()
		if v, ok := registry[key]; ok {
			return runtime.NormalC(v)
		}
		symbolCounter++
		sym := runtime.SymbolValue(&runtime.Symbol{ID: symbolCounter, Description: key})
		registry[key] = sym
		return runtime.NormalC(sym)
	})

	c.declareGlobal("Symbol", ctorFn)
}
