// Package ops implements the abstract operations of §4.7: ToBoolean,
// ToNumber, ToString, ToPrimitive, ToIndex, ToInt32/ToUint32, ToObject,
// strict/abstract equality, and abstract relational comparison.
//
// Several conversions must invoke a user-supplied hook (valueOf, toString,
// Symbol.toPrimitive) which means calling back into function-call
// machinery that in turn depends on these conversions. Rather than import
// the evaluator package (a cycle), ops takes a small Host interface the
// evaluator implements, breaking the cycle with a callback struct instead
// of a direct import.
package ops

import "github.com/pmatos/jsse/internal/runtime"

// Host is the minimal surface ops needs from the evaluator: invoking a
// callable Value and allocating Error objects for thrown Completions.
type Host interface {
	Call(fn runtime.Value, this runtime.Value, args []runtime.Value) runtime.Completion
	Heap() *runtime.Heap
	NewTypeError(msg string) runtime.Value
	NewRangeError(msg string) runtime.Value
	IsCallable(v runtime.Value) bool
}

// Thrown wraps an abrupt Completion (always Type==Throw) produced by an
// abstract operation, letting ops functions return a plain Go error while
// carrying the exact thrown Value for the caller to re-wrap into a
// Completion.
type Thrown struct {
	Completion runtime.Completion
}

func (t *Thrown) Error() string { return "js exception" }

func throwType(h Host, msg string) error {
	return &Thrown{Completion: runtime.ThrowC(h.NewTypeError(msg))}
}

func throwRange(h Host, msg string) error {
	return &Thrown{Completion: runtime.ThrowC(h.NewRangeError(msg))}
}
