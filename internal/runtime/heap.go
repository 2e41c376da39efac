package runtime

import "github.com/sirupsen/logrus"

// Heap is the object-store slot table (§4.3): a growable vector of object
// slots plus a free list, collected by a mark-sweep GC triggered on an
// allocation-count threshold.
type Heap struct {
	slots     []*Object
	free      []ObjectID
	threshold int
	sinceGC   int
	log       *logrus.Entry

	// Collections counts completed GC cycles, exposed for diagnostics/tests.
	Collections int
}

// DefaultGCThreshold is the typical value named in §4.3.
const DefaultGCThreshold = 4096

func NewHeap(threshold int, log *logrus.Entry) *Heap {
	if threshold <= 0 {
		threshold = DefaultGCThreshold
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Heap{threshold: threshold, log: log}
}

// Allocate installs obj into the first free slot (growing if necessary) and
// returns its id. obj.id is set to match the slot, preserving invariant 1
// of §3.2 ("every non-deleted object slot has a unique id equal to its
// index").
func (h *Heap) Allocate(obj *Object) ObjectID {
	var id ObjectID
	if n := len(h.free); n > 0 {
		id = h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[id] = obj
	} else {
		id = ObjectID(len(h.slots))
		h.slots = append(h.slots, obj)
	}
	obj.id = id
	h.sinceGC++
	return id
}

// Get returns the object at id, or nil if the slot has been freed.
func (h *Heap) Get(id ObjectID) *Object {
	if int(id) >= len(h.slots) {
		return nil
	}
	return h.slots[id]
}

func (h *Heap) free_(id ObjectID) {
	if int(id) < len(h.slots) {
		h.slots[id] = nil
		h.free = append(h.free, id)
	}
}

// ShouldCollect reports whether allocations since the last collection have
// crossed the threshold; callers run CollectGarbage between statements
// (§5, "GC runs between statement executions").
func (h *Heap) ShouldCollect() bool { return h.sinceGC >= h.threshold }

// RootProvider supplies every GC root (§4.3): the global environment and
// everything reachable through closures, the live evaluation-stack values,
// any active generator context, and the well-known prototypes.
type RootProvider interface {
	GCRoots() []Value
}

// CollectGarbage runs one mark-sweep cycle. It must never run while a
// property-descriptor mutation is in flight (§4.3); callers are
// responsible for only invoking it between statements.
func (h *Heap) CollectGarbage(roots RootProvider) {
	before := h.liveCount()
	marked := make(map[ObjectID]bool, len(h.slots))
	for _, v := range roots.GCRoots() {
		h.mark(v, marked)
	}
	freed := 0
	for id, obj := range h.slots {
		if obj == nil {
			continue
		}
		if !marked[ObjectID(id)] {
			h.free_(ObjectID(id))
			freed++
		}
	}
	h.sinceGC = 0
	h.Collections++
	h.log.WithFields(logrus.Fields{
		"before":     before,
		"freed":      freed,
		"after":      before - freed,
		"collection": h.Collections,
	}).Debug("gc: mark-sweep cycle complete")
}

func (h *Heap) liveCount() int {
	n := 0
	for _, obj := range h.slots {
		if obj != nil {
			n++
		}
	}
	return n
}

func (h *Heap) mark(v Value, marked map[ObjectID]bool) {
	if !v.IsObject() {
		return
	}
	id := v.AsObjectID()
	if marked[id] {
		return
	}
	marked[id] = true
	obj := h.Get(id)
	if obj == nil {
		return
	}
	obj.markChildren(h, marked)
}
