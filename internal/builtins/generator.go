package builtins

import "github.com/pmatos/jsse/internal/runtime"

// installGenerator builds the fallback %GeneratorPrototype% used by
// generator functions created before their own per-function prototype
// object has %GeneratorPrototype% as its own [[Prototype]] (§4.8.5);
// per-instance next/return/throw/Symbol.iterator are installed directly on
// each generator object by evaluator.newGeneratorObject, so this prototype
// only needs to exist as a prototype-chain anchor.
func (c *ctx) installGenerator() {
	ev := c.ev
	proto := runtime.NewObject("Generator", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	ev.Realm.GeneratorPrototype = &protoID
}
