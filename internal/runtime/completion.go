package runtime

// CompletionType is the five-plus-one-variant envelope of §3.4/§4.6.
type CompletionType uint8

const (
	Normal CompletionType = iota
	Return
	Throw
	Break
	Continue
	Yield
)

// Completion is the result of evaluating any statement or expression.
type Completion struct {
	Type  CompletionType
	Value Value
	Label string // only meaningful for Break/Continue
}

func NormalC(v Value) Completion { return Completion{Type: Normal, Value: v} }
func ReturnC(v Value) Completion { return Completion{Type: Return, Value: v} }
func ThrowC(v Value) Completion  { return Completion{Type: Throw, Value: v} }
func YieldC(v Value) Completion  { return Completion{Type: Yield, Value: v} }

func BreakC(label string) Completion    { return Completion{Type: Break, Label: label} }
func ContinueC(label string) Completion { return Completion{Type: Continue, Label: label} }

// IsAbrupt reports whether c is anything other than Normal (§3.4).
func (c Completion) IsAbrupt() bool { return c.Type != Normal }
