package builtins

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// installDate builds the Date constructor (§4.10 item 9): a single
// milliseconds-since-epoch float stored in the date_value internal slot,
// with every field getter/setter going through the host's IANA timezone
// database (time.Local, resolved from the process environment the way
// Go's time package always does) for the UTC<->local split, the same
// database Temporal's ZonedDateTime conversions use in temporal.go.
func (c *ctx) installDate() {
	ev := c.ev
	proto := runtime.NewObject("Date", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.method(proto, "getTime", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(ms))
	})
	c.method(proto, "valueOf", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(ms))
	})
	c.method(proto, "setTime", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		obj, err := dateObject(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		n, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		v := n.AsNumber()
		obj.DateValue = &v
		return runtime.NormalC(runtime.Number(v))
	})

	localGetter := func(extract func(time.Time) int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			ms, err := dateValue(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			if math.IsNaN(ms) {
				return runtime.NormalC(runtime.Number(math.NaN()))
			}
			return runtime.NormalC(runtime.Number(float64(extract(msToTime(ms).In(time.Local)))))
		}
	}
	utcGetter := func(extract func(time.Time) int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			ms, err := dateValue(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			if math.IsNaN(ms) {
				return runtime.NormalC(runtime.Number(math.NaN()))
			}
			return runtime.NormalC(runtime.Number(float64(extract(msToTime(ms).UTC()))))
		}
	}
	fullYear := func(t time.Time) int { return t.Year() }
	month := func(t time.Time) int { return int(t.Month()) - 1 }
	date := func(t time.Time) int { return t.Day() }
	day := func(t time.Time) int { return int(t.Weekday()) }
	hours := func(t time.Time) int { return t.Hour() }
	minutes := func(t time.Time) int { return t.Minute() }
	seconds := func(t time.Time) int { return t.Second() }
	millis := func(t time.Time) int { return t.Nanosecond() / 1_000_000 }

	c.method(proto, "getFullYear", 0, localGetter(fullYear))
	c.method(proto, "getMonth", 0, localGetter(month))
	c.method(proto, "getDate", 0, localGetter(date))
	c.method(proto, "getDay", 0, localGetter(day))
	c.method(proto, "getHours", 0, localGetter(hours))
	c.method(proto, "getMinutes", 0, localGetter(minutes))
	c.method(proto, "getSeconds", 0, localGetter(seconds))
	c.method(proto, "getMilliseconds", 0, localGetter(millis))

	c.method(proto, "getUTCFullYear", 0, utcGetter(fullYear))
	c.method(proto, "getUTCMonth", 0, utcGetter(month))
	c.method(proto, "getUTCDate", 0, utcGetter(date))
	c.method(proto, "getUTCDay", 0, utcGetter(day))
	c.method(proto, "getUTCHours", 0, utcGetter(hours))
	c.method(proto, "getUTCMinutes", 0, utcGetter(minutes))
	c.method(proto, "getUTCSeconds", 0, utcGetter(seconds))
	c.method(proto, "getUTCMilliseconds", 0, utcGetter(millis))

	c.method(proto, "getTimezoneOffset", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.Number(math.NaN()))
		}
		_, offsetSec := msToTime(ms).In(time.Local).Zone()
		return runtime.NormalC(runtime.Number(float64(-offsetSec / 60)))
	})

	setters := []struct {
		name    string
		offset  int
		nargs   int
		utc     bool
	}{
		{"setFullYear", 0, 3, false}, {"setMonth", 1, 2, false}, {"setDate", 2, 1, false},
		{"setHours", 3, 4, false}, {"setMinutes", 4, 3, false}, {"setSeconds", 5, 2, false}, {"setMilliseconds", 6, 1, false},
		{"setUTCFullYear", 0, 3, true}, {"setUTCMonth", 1, 2, true}, {"setUTCDate", 2, 1, true},
		{"setUTCHours", 3, 4, true}, {"setUTCMinutes", 4, 3, true}, {"setUTCSeconds", 5, 2, true}, {"setUTCMilliseconds", 6, 1, true},
	}
	for _, s := range setters {
		s := s
		c.method(proto, s.name, s.nargs, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			obj, err := dateObject(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			ms := 0.0
			if obj.DateValue != nil {
				ms = *obj.DateValue
			}
			loc := time.Local
			t := msToTime(ms)
			if s.utc {
				t = t.UTC()
				loc = time.UTC
			} else {
				t = t.In(time.Local)
			}
			parts := timeToParts(t)
			for i := 0; i < len(args) && s.offset+i < 7; i++ {
				n, err := ev.ToNumber(args[i])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				parts[s.offset+i] = int(n.AsNumber())
			}
			newMs := partsToMs(parts, loc)
			obj.DateValue = &newMs
			return runtime.NormalC(runtime.Number(newMs))
		})
	}

	c.method(proto, "toISOString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid time value"))
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).UTC().Format("2006-01-02T15:04:05.000Z")))
	})
	c.method(proto, "toJSON", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.Null)
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).UTC().Format("2006-01-02T15:04:05.000Z")))
	})
	toStr := func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.StringFromGo("Invalid Date"))
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).In(time.Local).Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")))
	}
	c.method(proto, "toString", 0, toStr)
	c.method(proto, "toDateString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.StringFromGo("Invalid Date"))
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).In(time.Local).Format("Mon Jan 02 2006")))
	})
	c.method(proto, "toTimeString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.StringFromGo("Invalid Date"))
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).In(time.Local).Format("15:04:05 GMT-0700 (MST)")))
	})
	c.method(proto, "toUTCString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		ms, err := dateValue(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		if math.IsNaN(ms) {
			return runtime.NormalC(runtime.StringFromGo("Invalid Date"))
		}
		return runtime.NormalC(runtime.StringFromGo(msToTime(ms).UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")))
	})

	ctor := ev.NewNativeFunction("Date", 7, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		var ms float64
		switch len(args) {
		case 0:
			ms = float64(time.Now().UnixMilli())
		case 1:
			v := args[0]
			if v.IsString() {
				parsed, err := ev.ToStringValue(v)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				ms = parseDateString(parsed.Go())
			} else {
				n, err := ev.ToNumber(v)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				ms = n.AsNumber()
			}
		default:
			vals := make([]float64, 7)
			vals[2] = 1 // day defaults to 1
			for i := 0; i < len(args) && i < 7; i++ {
				n, err := ev.ToNumber(args[i])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				vals[i] = n.AsNumber()
			}
			y := int(vals[0])
			if y >= 0 && y <= 99 {
				y += 1900
			}
			ms = partsToMs([7]int{y, int(vals[1]), int(vals[2]), int(vals[3]), int(vals[4]), int(vals[5]), int(vals[6])}, time.Local)
		}
		obj := runtime.NewObject("Date", &protoID)
		obj.DateValue = &ms
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "now", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalC(runtime.Number(float64(time.Now().UnixMilli())))
	})
	c.method(ctorObj, "parse", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(parseDateString(s.Go())))
	})
	c.method(ctorObj, "UTC", 7, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		vals := make([]float64, 7)
		vals[2] = 1
		for i := 0; i < len(args) && i < 7; i++ {
			n, err := ev.ToNumber(args[i])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			vals[i] = n.AsNumber()
		}
		y := int(vals[0])
		if y >= 0 && y <= 99 {
			y += 1900
		}
		ms := partsToMs([7]int{y, int(vals[1]), int(vals[2]), int(vals[3]), int(vals[4]), int(vals[5]), int(vals[6])}, time.UTC)
		return runtime.NormalC(runtime.Number(ms))
	})
	setCtorProto(ev, ctor, proto, protoID)
	c.declareGlobal("Date", ctor)
}

func dateObject(ev *evaluator.Evaluator, this runtime.Value) (*runtime.Object, error) {
	if !this.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(this.AsObjectID())
	if obj == nil || obj.DateValue == nil {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj, nil
}

func dateValue(ev *evaluator.Evaluator, this runtime.Value) (float64, error) {
	obj, err := dateObject(ev, this)
	if err != nil {
		return 0, err
	}
	return *obj.DateValue, nil
}

func msToTime(ms float64) time.Time {
	whole := math.Floor(ms)
	frac := ms - whole
	return time.UnixMilli(int64(whole)).Add(time.Duration(frac * float64(time.Millisecond)))
}

// timeToParts/partsToMs convert between a [year, month(0-based), day,
// hour, minute, second, millisecond] field array and milliseconds since
// the epoch in a given *time.Location, the array shape every date setter
// reads and writes a slice of.
func timeToParts(t time.Time) [7]int {
	return [7]int{t.Year(), int(t.Month()) - 1, t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond() / 1_000_000}
}

func partsToMs(p [7]int, loc *time.Location) float64 {
	t := time.Date(p[0], time.Month(p[1]+1), p[2], p[3], p[4], p[5], p[6]*1_000_000, loc)
	return float64(t.UnixMilli())
}

// parseDateString tolerates the ISO 8601 subset Date.parse/the one-arg
// Date constructor are required to accept, falling back to Go's RFC3339
// and the Date-derived toString layouts; unrecognized input yields NaN,
// same as Date.parse does for anything it can't interpret.
func parseDateString(s string) float64 {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01",
		"2006",
		"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
		"Mon, 02 Jan 2006 15:04:05 GMT",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli())
		}
	}
	if y, err := strconv.Atoi(s); err == nil {
		t := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		return float64(t.UnixMilli())
	}
	return math.NaN()
}
