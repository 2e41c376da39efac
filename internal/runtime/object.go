package runtime

// PropertyDescriptor is one of the two shapes from §3.2: a data descriptor
// (Value/Writable) or an accessor descriptor (Get/Set), sharing
// {Enumerable, Configurable}. IsAccessor distinguishes them; invariant 2
// of §3.2 requires exactly one shape be populated.
type PropertyDescriptor struct {
	Value        Value
	Writable     bool
	Get          Value // Undefined if absent
	Set          Value // Undefined if absent
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

func DataProperty(v Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable}
}

func AccessorProperty(get, set Value, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{Get: get, Set: set, Enumerable: enumerable, Configurable: configurable, IsAccessor: true}
}

// orderedProps is an insertion-order-preserving string-keyed map (§3.2,
// invariant 3: "Testable Properties" insertion-order law).
type orderedProps struct {
	keys  []string
	index map[string]int
	vals  []PropertyDescriptor
}

func newOrderedProps() *orderedProps {
	return &orderedProps{index: make(map[string]int)}
}

func (p *orderedProps) get(key string) (PropertyDescriptor, bool) {
	i, ok := p.index[key]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return p.vals[i], true
}

func (p *orderedProps) set(key string, desc PropertyDescriptor) {
	if i, ok := p.index[key]; ok {
		p.vals[i] = desc
		return
	}
	p.index[key] = len(p.keys)
	p.keys = append(p.keys, key)
	p.vals = append(p.vals, desc)
}

func (p *orderedProps) delete(key string) {
	i, ok := p.index[key]
	if !ok {
		return
	}
	delete(p.index, key)
	p.keys = append(p.keys[:i], p.keys[i+1:]...)
	p.vals = append(p.vals[:i], p.vals[i+1:]...)
	for k, idx := range p.index {
		if idx > i {
			p.index[k] = idx - 1
		}
	}
}

func (p *orderedProps) has(key string) bool {
	_, ok := p.index[key]
	return ok
}

// orderedKeys returns keys in §7.3.25 integer-index-then-insertion order:
// canonical numeric-index keys ascending, then the rest in insertion order.
func (p *orderedProps) orderedKeys() []string {
	var numeric []string
	var rest []string
	for _, k := range p.keys {
		if isArrayIndexKey(k) {
			numeric = append(numeric, k)
		} else {
			rest = append(rest, k)
		}
	}
	sortArrayIndexKeys(numeric)
	return append(numeric, rest...)
}

// Object is the runtime object representation of §3.2: ordered properties,
// an optional prototype, extensibility, a diagnostic class name, and at
// most one populated internal slot per the enumerated closed set (§9
// Design Notes: explicit tagged variants, not polymorphism).
type Object struct {
	id         ObjectID
	properties *orderedProps
	prototype  *ObjectID // nil == no prototype
	extensible bool
	className  string

	Callable        *CallableData
	ArrayElements   *ArrayElementsData
	TypedArrayInfo  *TypedArrayInfo
	DataViewInfo    *DataViewInfo
	ArrayBufferData *ArrayBufferData
	IteratorState   *IteratorState
	MapData         *MapSetData
	SetData         *MapSetData
	ParameterMap    *ParameterMap
	PrivateFields   map[string]*PrivateField
	ProxyTarget     *ObjectID
	ProxyHandler    *ObjectID
	ProxyRevoked    bool
	RevocationID    string // debug id stamped on proxies created via Proxy.revocable
	PrimitiveValue  *Value
	TemporalData    *TemporalData
	RegExpData      *RegExpData
	DateValue       *float64          // milliseconds since the epoch, NaN for an invalid Date
	IntlLocale      string            // BCP 47 tag resolved by Intl.DateTimeFormat's constructor
	IntlOptions     map[string]string // the subset of format options it was constructed with
}

func NewObject(className string, prototype *ObjectID) *Object {
	return &Object{
		properties: newOrderedProps(),
		prototype:  prototype,
		extensible: true,
		className:  className,
	}
}

func (o *Object) ID() ObjectID       { return o.id }
func (o *Object) ClassName() string  { return o.className }
func (o *Object) SetClassName(s string) { o.className = s }
func (o *Object) Prototype() *ObjectID { return o.prototype }
func (o *Object) SetPrototype(p *ObjectID) { o.prototype = p }
func (o *Object) Extensible() bool   { return o.extensible }
func (o *Object) SetExtensible(b bool) { o.extensible = b }

// GetOwn returns this object's own property descriptor, ignoring the
// prototype chain and array_elements fast path.
func (o *Object) GetOwn(key string) (PropertyDescriptor, bool) {
	return o.properties.get(key)
}

func (o *Object) HasOwn(key string) bool { return o.properties.has(key) }

func (o *Object) DefineOwn(key string, desc PropertyDescriptor) {
	o.properties.set(key, desc)
}

func (o *Object) DeleteOwn(key string) bool {
	existing, ok := o.properties.get(key)
	if ok && !existing.Configurable {
		return false
	}
	o.properties.delete(key)
	return true
}

// OwnKeys returns this object's own property keys in §3.2/§7.3.25 order.
func (o *Object) OwnKeys() []string { return o.properties.orderedKeys() }

func (o *Object) markChildren(h *Heap, marked map[ObjectID]bool) {
	if o.prototype != nil {
		h.mark(Object(*o.prototype), marked)
	}
	for _, desc := range o.properties.vals {
		if desc.IsAccessor {
			h.mark(desc.Get, marked)
			h.mark(desc.Set, marked)
		} else {
			h.mark(desc.Value, marked)
		}
	}
	if o.Callable != nil && o.Callable.Closure != nil {
		o.Callable.Closure.markRoots(h, marked)
	}
	if o.ArrayElements != nil {
		for _, v := range o.ArrayElements.Values {
			h.mark(v, marked)
		}
	}
	if o.MapData != nil {
		for _, e := range o.MapData.Entries {
			if e.Deleted {
				continue
			}
			h.mark(e.Key, marked)
			h.mark(e.Value, marked)
		}
	}
	if o.SetData != nil {
		for _, e := range o.SetData.Entries {
			if e.Deleted {
				continue
			}
			h.mark(e.Key, marked)
		}
	}
	if o.ParameterMap != nil {
		for _, b := range o.ParameterMap.Entries {
			if b.Env != nil {
				b.Env.markRoots(h, marked)
			}
		}
	}
	if o.PrivateFields != nil {
		for _, f := range o.PrivateFields {
			h.mark(f.Value, marked)
			h.mark(f.Get, marked)
			h.mark(f.Set, marked)
		}
	}
	if o.ProxyTarget != nil {
		h.mark(Object(*o.ProxyTarget), marked)
	}
	if o.ProxyHandler != nil {
		h.mark(Object(*o.ProxyHandler), marked)
	}
	if o.PrimitiveValue != nil {
		h.mark(*o.PrimitiveValue, marked)
	}
	if o.IteratorState != nil {
		h.mark(o.IteratorState.Target, marked)
		if g := o.IteratorState.Generator; g != nil {
			if g.Callable != nil && g.Callable.Closure != nil {
				g.Callable.Closure.markRoots(h, marked)
			}
			for _, v := range g.Args {
				h.mark(v, marked)
			}
			h.mark(g.This, marked)
		}
	}
}
