package builtins

import (
	"math/big"

	"github.com/pmatos/jsse/internal/runtime"
)

// installBigInt builds %BigInt.prototype% and the BigInt factory function
// (§4.9 item 8). Like Symbol it is a plain native function: `new BigInt()`
// is not rejected, and returns the same BigInt value a call would.
func (c *ctx) installBigInt() {
	ev := c.ev
	proto := runtime.NewObject("BigInt", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.BigIntPrototype = &protoID

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		if this.IsBigInt() {
			return runtime.NormalC(runtime.StringFromGo(this.AsBigInt().String()))
		}
		return ev.ThrowCompletion(typeErr(ev, "BigInt.prototype.toString called on non-BigInt"))
	})
	c.method(proto, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(this)
	})

	ctorFn := ev.NewNativeFunction("BigInt", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		switch {
		case v.IsBigInt():
			return runtime.NormalC(v)
		case v.IsNumber():
			n := v.AsNumber()
			if n != float64(int64(n)) {
				return ev.ThrowCompletion(typeErr(ev, "cannot convert non-integer number to BigInt"))
			}
			return runtime.NormalC(runtime.BigIntValue(big.NewInt(int64(n))))
		case v.IsString():
			s := v.AsString().Go()
			bi, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return ev.ThrowCompletion(typeErr(ev, "Cannot convert "+s+" to a BigInt"))
			}
			return runtime.NormalC(runtime.BigIntValue(bi))
		case v.IsBoolean():
			if v.AsBool() {
				return runtime.NormalC(runtime.BigIntValue(big.NewInt(1)))
			}
			return runtime.NormalC(runtime.BigIntValue(big.NewInt(0)))
		}
		return ev.ThrowCompletion(typeErr(ev, "cannot convert value to a BigInt"))
	})
	ctorObj := ev.Heap_.Get(ctorFn.AsObjectID())
	ctorObj.DefineOwn("prototype", runtime.DataProperty(runtime.Object(protoID), false, false, false))
	proto.DefineOwn("constructor", runtime.DataProperty(ctorFn, true, false, true))

	c.declareGlobal("BigInt", ctorFn)
}
