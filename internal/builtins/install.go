// Package builtins installs the ECMAScript intrinsics (§4.9, §4.10) into
// an evaluator.Realm: the well-known prototypes, their constructors, and
// the global object's own properties.
package builtins

import (
	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// ctx threads the evaluator and the handful of objects every installer
// function needs to reach.
type ctx struct {
	ev *evaluator.Evaluator
}

// Install populates ev.Realm's prototypes/constructors and the global
// environment/object (§4.9's well-known intrinsics, §4.10's global
// object). Must run once, immediately after evaluator.New, before any
// program executes.
func Install(ev *evaluator.Evaluator) {
	c := &ctx{ev: ev}
	c.installObject()
	c.installFunction()
	c.installArray()
	c.installString()
	c.installNumber()
	c.installBoolean()
	c.installSymbol()
	c.installBigInt()
	c.installRegExp()
	c.installErrors()
	c.installGenerator()
	c.installMath()
	c.installJSON()
	c.installCollections()
	c.installProxyReflect()
	c.installTypedArrays()
	c.installAtomics()
	c.installTemporal()
	c.installDate()
	c.installIntl()
	c.installGlobals()
}

func (c *ctx) method(proto *runtime.Object, name string, arity int, fn runtime.NativeFunc) {
	proto.DefineOwn(name, runtime.DataProperty(c.ev.NewNativeFunction(name, arity, fn), true, false, true))
}

func (c *ctx) getter(proto *runtime.Object, name string, fn runtime.NativeFunc) {
	get := c.ev.NewNativeFunction("get "+name, 0, fn)
	proto.DefineOwn(name, runtime.AccessorProperty(get, runtime.Undefined, false, true))
}

func arg(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}

func (c *ctx) declareGlobal(name string, v runtime.Value) {
	c.ev.Realm.Global.Declare(name, runtime.BindVar, true, v)
	c.ev.Heap_.Get(c.ev.Realm.GlobalObj).DefineOwn(name, runtime.DataProperty(v, true, false, true))
}
