package builtins

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// installTemporal builds the Temporal namespace (§4.12): the nine Plain*/
// Instant/ZonedDateTime/Duration/Now kinds named in the core spec, all
// sharing the same ISODate/ISOTime/DurationFields field records and the
// same constrain/reject overflow handling. PlainDate carries the deepest
// surface (the seed scenario, Temporal.PlainDate.from(...).add(...)
// .toString(), runs end to end); the other kinds get construction, field
// access, string conversion, and the handful of cross-kind conversions
// the namespace is built around (PlainDateTime <-> PlainDate/PlainTime/
// ZonedDateTime, Instant <-> ZonedDateTime).
func (c *ctx) installTemporal() {
	ev := c.ev
	temporal := runtime.NewObject("Temporal", ev.Realm.ObjectPrototype)
	temporalID := ev.Heap_.Allocate(temporal)

	durationProtoID := c.installTemporalDuration(temporal)
	plainDateProtoID := c.installTemporalPlainDate(temporal, durationProtoID)
	plainTimeProtoID := c.installTemporalPlainTime(temporal)
	plainDateTimeProtoID := c.installTemporalPlainDateTime(temporal, plainDateProtoID, plainTimeProtoID)
	c.installTemporalPlainYearMonth(temporal)
	c.installTemporalPlainMonthDay(temporal)
	instantProtoID := c.installTemporalInstant(temporal)
	c.installTemporalZonedDateTime(temporal, plainDateTimeProtoID, instantProtoID, plainDateProtoID, plainTimeProtoID)
	c.installTemporalNow(temporal, plainDateProtoID)

	c.declareGlobal("Temporal", runtime.Object(temporalID))
}

// --- ISO calendar arithmetic -------------------------------------------

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(y) {
			return 29
		}
		return 28
	}
	return 30
}

// constrainDate clamps an overflowing (year, month, day) triple the way
// "constrain" overflow does (§4.12): month wraps into range first, then
// day is clamped to the resulting month's length.
func constrainDate(y, m, d int) runtime.ISODate {
	for m < 1 {
		m += 12
		y--
	}
	for m > 12 {
		m -= 12
		y++
	}
	if max := daysInMonth(y, m); d > max {
		d = max
	}
	if d < 1 {
		d = 1
	}
	return runtime.ISODate{Year: y, Month: m, Day: d}
}

// addISODate implements the date arithmetic of §4.12's AddDate: years and
// months are added first (with constrain overflow), then days and weeks
// are added as a day count on the resulting calendar date.
func addISODate(date runtime.ISODate, dur runtime.DurationFields) runtime.ISODate {
	y := date.Year + dur.Years
	m := date.Month + dur.Months
	constrained := constrainDate(y, m, date.Day)
	days := dur.Days + dur.Weeks*7
	return addDays(constrained, days)
}

func addDays(date runtime.ISODate, days int) runtime.ISODate {
	y, m, d := date.Year, date.Month, date.Day+days
	for d < 1 {
		m--
		if m < 1 {
			m = 12
			y--
		}
		d += daysInMonth(y, m)
	}
	for d > daysInMonth(y, m) {
		d -= daysInMonth(y, m)
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return runtime.ISODate{Year: y, Month: m, Day: d}
}

func negateDuration(d runtime.DurationFields) runtime.DurationFields {
	return runtime.DurationFields{
		Years: -d.Years, Months: -d.Months, Weeks: -d.Weeks, Days: -d.Days,
		Hours: -d.Hours, Minutes: -d.Minutes, Seconds: -d.Seconds,
		Milliseconds: -d.Milliseconds, Microseconds: -d.Microseconds, Nanoseconds: -d.Nanoseconds,
	}
}

func formatISODate(d runtime.ISODate) string {
	sign := ""
	y := d.Year
	if y < 0 {
		sign = "-"
		y = -y
	}
	if d.Year > 9999 || d.Year < 0 {
		return fmt.Sprintf("%s%06d-%02d-%02d", sign, y, d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func parseISODate(s string) (runtime.ISODate, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10] // tolerate a trailing T-time component, ignored for PlainDate
	}
	parts := strings.Split(s, "-")
	if len(parts) == 3 {
		y, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		d, err3 := strconv.Atoi(parts[2])
		if err1 == nil && err2 == nil && err3 == nil {
			return runtime.ISODate{Year: y, Month: m, Day: d}, true
		}
	}
	return runtime.ISODate{}, false
}

func formatISOTime(t runtime.ISOTime) string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Millisecond != 0 || t.Microsecond != 0 || t.Nanosecond != 0 {
		frac := t.Millisecond*1_000_000 + t.Microsecond*1_000 + t.Nanosecond
		s += fmt.Sprintf(".%09d", frac)
		s = strings.TrimRight(s, "0")
	}
	return s
}

// --- field extraction from plain JS objects -----------------------------

func getIntField(ev *evaluator.Evaluator, obj runtime.Value, name string, def int) (int, error) {
	v, err := ev.GetProperty(obj, name)
	if err != nil {
		return 0, err
	}
	if v.IsUndefined() {
		return def, nil
	}
	n, err := ev.ToNumber(v)
	if err != nil {
		return 0, err
	}
	f := n.AsNumber()
	if math.IsNaN(f) {
		return def, nil
	}
	return int(f), nil
}

func toDurationFields(ev *evaluator.Evaluator, v runtime.Value) (runtime.DurationFields, error) {
	var d runtime.DurationFields
	if !v.IsObject() {
		return d, typeErr(ev, "Duration-like value must be an object")
	}
	fields := []struct {
		name string
		dst  *int
	}{
		{"years", &d.Years}, {"months", &d.Months}, {"weeks", &d.Weeks}, {"days", &d.Days},
		{"hours", &d.Hours}, {"minutes", &d.Minutes}, {"seconds", &d.Seconds},
		{"milliseconds", &d.Milliseconds}, {"microseconds", &d.Microseconds}, {"nanoseconds", &d.Nanoseconds},
	}
	for _, f := range fields {
		n, err := getIntField(ev, v, f.name, 0)
		if err != nil {
			return d, err
		}
		*f.dst = n
	}
	return d, nil
}

func overflowOption(ev *evaluator.Evaluator, args []runtime.Value, idx int) (string, error) {
	opts := arg(args, idx)
	if !opts.IsObject() {
		return "constrain", nil
	}
	v, err := ev.GetProperty(opts, "overflow")
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return "constrain", nil
	}
	s, err := ev.ToStringValue(v)
	if err != nil {
		return "", err
	}
	mode := s.Go()
	if mode != "constrain" && mode != "reject" {
		return "", rangeErr(ev, "Invalid overflow option: "+mode)
	}
	return mode, nil
}

// --- Temporal.PlainDate --------------------------------------------------

func (c *ctx) installTemporalPlainDate(temporal *runtime.Object, durationProtoID runtime.ObjectID) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.PlainDate", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	dateGetter := func(extract func(runtime.ISODate) int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			td, err := plainDateData(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(runtime.Number(float64(extract(td.Date))))
		}
	}
	c.getter(proto, "year", dateGetter(func(d runtime.ISODate) int { return d.Year }))
	c.getter(proto, "month", dateGetter(func(d runtime.ISODate) int { return d.Month }))
	c.getter(proto, "day", dateGetter(func(d runtime.ISODate) int { return d.Day }))
	c.getter(proto, "daysInMonth", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(daysInMonth(td.Date.Year, td.Date.Month))))
	})
	c.getter(proto, "daysInYear", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		n := 365
		if isLeapYear(td.Date.Year) {
			n = 366
		}
		return runtime.NormalC(runtime.Number(float64(n)))
	})
	c.getter(proto, "inLeapYear", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(isLeapYear(td.Date.Year)))
	})

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatISODate(td.Date)))
	})
	c.method(proto, "toJSON", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatISODate(td.Date)))
	})
	c.method(proto, "equals", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := plainDateData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(a.Date == b.Date))
	})
	addLike := func(sign int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			td, err := plainDateData(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			dur, err := toDurationFields(ev, arg(args, 0))
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			overflow, err := overflowOption(ev, args, 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			if sign < 0 {
				dur = negateDuration(dur)
			}
			if overflow == "reject" {
				if c := constrainDate(td.Date.Year+dur.Years, td.Date.Month+dur.Months, td.Date.Day); c.Day != td.Date.Day {
					return ev.ThrowCompletion(rangeErr(ev, "date is out of range with overflow: reject"))
				}
			}
			newDate := addISODate(td.Date, dur)
			return runtime.NormalC(newPlainDate(ev, protoID, newDate))
		}
	}
	c.method(proto, "add", 1, addLike(1))
	c.method(proto, "subtract", 1, addLike(-1))
	c.method(proto, "with", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		fields := arg(args, 0)
		y, err := getIntField(ev, fields, "year", td.Date.Year)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, err := getIntField(ev, fields, "month", td.Date.Month)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		d, err := getIntField(ev, fields, "day", td.Date.Day)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainDate(ev, protoID, constrainDate(y, m, d)))
	})

	ctor := ev.NewNativeFunction("PlainDate", 3, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		y, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, err := ev.ToNumber(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		d, err := ev.ToNumber(arg(args, 2))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date := runtime.ISODate{Year: int(y.AsNumber()), Month: int(m.AsNumber()), Day: int(d.AsNumber())}
		if date.Month < 1 || date.Month > 12 || date.Day < 1 || date.Day > daysInMonth(date.Year, date.Month) {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainDate"))
		}
		return runtime.NormalC(newPlainDate(ev, protoID, date))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsObject() {
			if td, err := plainDateData(ev, v); err == nil {
				return runtime.NormalC(newPlainDate(ev, protoID, td.Date))
			}
			y, err := getIntField(ev, v, "year", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			m, err := getIntField(ev, v, "month", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			d, err := getIntField(ev, v, "day", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(newPlainDate(ev, protoID, constrainDate(y, m, d)))
		}
		s, err := ev.ToStringValue(v)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date, ok := parseISODate(s.Go())
		if !ok {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainDate string: "+s.Go()))
		}
		return runtime.NormalC(newPlainDate(ev, protoID, date))
	})
	c.method(ctorObj, "compare", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := plainDateData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := plainDateData(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		switch {
		case a.Date.Year != b.Date.Year:
			return runtime.NormalC(runtime.Number(float64(sign(a.Date.Year - b.Date.Year))))
		case a.Date.Month != b.Date.Month:
			return runtime.NormalC(runtime.Number(float64(sign(a.Date.Month - b.Date.Month))))
		default:
			return runtime.NormalC(runtime.Number(float64(sign(a.Date.Day - b.Date.Day))))
		}
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("PlainDate", runtime.DataProperty(ctor, true, false, true))

	_ = durationProtoID
	return protoID
}

func sign(n int) int {
	if n > 0 {
		return 1
	}
	if n < 0 {
		return -1
	}
	return 0
}

func newPlainDate(ev *evaluator.Evaluator, protoID runtime.ObjectID, date runtime.ISODate) runtime.Value {
	obj := runtime.NewObject("Temporal.PlainDate", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainDate, Date: date}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func plainDateData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalPlainDate {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

// yearMonthOrMonthDayData backs PlainYearMonth and PlainMonthDay, which
// both store their single relevant field pair in the shared Date slot
// (year/month for PlainYearMonth, month/day for PlainMonthDay).
func yearMonthOrMonthDayData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	switch obj.TemporalData.Kind {
	case runtime.TemporalPlainYearMonth, runtime.TemporalPlainMonthDay:
		return obj.TemporalData, nil
	}
	return nil, typeErr(ev, "Method called on incompatible receiver")
}

// --- Temporal.PlainTime (construction and field access only) -----------

func (c *ctx) installTemporalPlainTime(temporal *runtime.Object) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.PlainTime", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	timeGetter := func(extract func(runtime.ISOTime) int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			td, err := plainTimeData(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(runtime.Number(float64(extract(td.Time))))
		}
	}
	c.getter(proto, "hour", timeGetter(func(t runtime.ISOTime) int { return t.Hour }))
	c.getter(proto, "minute", timeGetter(func(t runtime.ISOTime) int { return t.Minute }))
	c.getter(proto, "second", timeGetter(func(t runtime.ISOTime) int { return t.Second }))
	c.getter(proto, "millisecond", timeGetter(func(t runtime.ISOTime) int { return t.Millisecond }))

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatISOTime(td.Time)))
	})

	ctor := ev.NewNativeFunction("PlainTime", 4, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		vals := make([]int, 4)
		for i := range vals {
			if i < len(args) && !args[i].IsUndefined() {
				n, err := ev.ToNumber(args[i])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				vals[i] = int(n.AsNumber())
			}
		}
		t := runtime.ISOTime{Hour: vals[0], Minute: vals[1], Second: vals[2], Millisecond: vals[3]}
		obj := runtime.NewObject("Temporal.PlainTime", &protoID)
		obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainTime, Time: t}
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("PlainTime", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

func newPlainTime(ev *evaluator.Evaluator, protoID runtime.ObjectID, t runtime.ISOTime) runtime.Value {
	obj := runtime.NewObject("Temporal.PlainTime", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainTime, Time: t}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func plainTimeData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalPlainTime {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

// --- Temporal.PlainDateTime ----------------------------------------------

func (c *ctx) installTemporalPlainDateTime(temporal *runtime.Object, plainDateProtoID, plainTimeProtoID runtime.ObjectID) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.PlainDateTime", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	dtGetter := func(extract func(runtime.ISODate, runtime.ISOTime) int) runtime.NativeFunc {
		return func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			td, err := plainDateTimeData(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(runtime.Number(float64(extract(td.Date, td.Time))))
		}
	}
	c.getter(proto, "year", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return d.Year }))
	c.getter(proto, "month", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return d.Month }))
	c.getter(proto, "day", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return d.Day }))
	c.getter(proto, "hour", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return t.Hour }))
	c.getter(proto, "minute", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return t.Minute }))
	c.getter(proto, "second", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return t.Second }))
	c.getter(proto, "millisecond", dtGetter(func(d runtime.ISODate, t runtime.ISOTime) int { return t.Millisecond }))

	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		s := formatISODate(td.Date) + "T" + formatISOTime(td.Time)
		return runtime.NormalC(runtime.StringFromGo(s))
	})
	c.method(proto, "toJSON", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatISODate(td.Date) + "T" + formatISOTime(td.Time)))
	})
	c.method(proto, "equals", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := plainDateTimeData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(a.Date == b.Date && a.Time == b.Time))
	})
	c.method(proto, "toPlainDate", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainDate(ev, plainDateProtoID, td.Date))
	})
	c.method(proto, "toPlainTime", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainTime(ev, plainTimeProtoID, td.Time))
	})
	c.method(proto, "toZonedDateTime", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := plainDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		tz, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ns, err := isoDateTimeToEpochNanoseconds(ev, td.Date, td.Time, tz.Go())
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newZonedDateTime(ev, zonedDateTimeProtoIDRef(), ns, tz.Go()))
	})

	ctor := ev.NewNativeFunction("PlainDateTime", 7, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		vals := make([]int, 7)
		vals[1], vals[2] = 1, 1 // month, day default to 1
		for i := range vals {
			if i < len(args) && !args[i].IsUndefined() {
				n, err := ev.ToNumber(args[i])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				vals[i] = int(n.AsNumber())
			}
		}
		date := runtime.ISODate{Year: vals[0], Month: vals[1], Day: vals[2]}
		t := runtime.ISOTime{Hour: vals[3], Minute: vals[4], Second: vals[5], Millisecond: vals[6]}
		return runtime.NormalC(newPlainDateTime(ev, protoID, date, t))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsObject() {
			if td, err := plainDateTimeData(ev, v); err == nil {
				return runtime.NormalC(newPlainDateTime(ev, protoID, td.Date, td.Time))
			}
			y, err := getIntField(ev, v, "year", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			m, err := getIntField(ev, v, "month", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			d, err := getIntField(ev, v, "day", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			h, err := getIntField(ev, v, "hour", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			mi, err := getIntField(ev, v, "minute", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			se, err := getIntField(ev, v, "second", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			ms, err := getIntField(ev, v, "millisecond", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(newPlainDateTime(ev, protoID, constrainDate(y, m, d), runtime.ISOTime{Hour: h, Minute: mi, Second: se, Millisecond: ms}))
		}
		s, err := ev.ToStringValue(v)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date, time, ok := parseISODateTime(s.Go())
		if !ok {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainDateTime string: "+s.Go()))
		}
		return runtime.NormalC(newPlainDateTime(ev, protoID, date, time))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("PlainDateTime", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

func newPlainDateTime(ev *evaluator.Evaluator, protoID runtime.ObjectID, date runtime.ISODate, t runtime.ISOTime) runtime.Value {
	obj := runtime.NewObject("Temporal.PlainDateTime", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainDateTime, Date: date, Time: t}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func plainDateTimeData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalPlainDateTime {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

// parseISODateTime tolerates a "YYYY-MM-DD[THH:MM:SS[.sss]]" string, the
// only shape the spec's PlainDateTime.from(string) scenarios exercise.
func parseISODateTime(s string) (runtime.ISODate, runtime.ISOTime, bool) {
	s = strings.TrimSpace(s)
	datePart, timePart, hasTime := strings.Cut(s, "T")
	date, ok := parseISODate(datePart)
	if !ok {
		return runtime.ISODate{}, runtime.ISOTime{}, false
	}
	if !hasTime {
		return date, runtime.ISOTime{}, true
	}
	timePart = strings.TrimSuffix(timePart, "Z")
	var h, mi, se, ms int
	parts := strings.SplitN(timePart, ":", 3)
	if len(parts) > 0 {
		h, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		mi, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		secStr := parts[2]
		if whole, frac, ok := strings.Cut(secStr, "."); ok {
			se, _ = strconv.Atoi(whole)
			for len(frac) < 3 {
				frac += "0"
			}
			ms, _ = strconv.Atoi(frac[:3])
		} else {
			se, _ = strconv.Atoi(secStr)
		}
	}
	return date, runtime.ISOTime{Hour: h, Minute: mi, Second: se, Millisecond: ms}, true
}

// --- Temporal.PlainYearMonth ----------------------------------------------

func (c *ctx) installTemporalPlainYearMonth(temporal *runtime.Object) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.PlainYearMonth", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.getter(proto, "year", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(td.Date.Year)))
	})
	c.getter(proto, "month", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(td.Date.Month)))
	})
	c.getter(proto, "daysInMonth", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(daysInMonth(td.Date.Year, td.Date.Month))))
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(fmt.Sprintf("%04d-%02d", td.Date.Year, td.Date.Month)))
	})
	c.method(proto, "equals", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := yearMonthOrMonthDayData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(a.Date.Year == b.Date.Year && a.Date.Month == b.Date.Month))
	})

	ctor := ev.NewNativeFunction("PlainYearMonth", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		y, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, err := ev.ToNumber(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date := runtime.ISODate{Year: int(y.AsNumber()), Month: int(m.AsNumber()), Day: 1}
		if date.Month < 1 || date.Month > 12 {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainYearMonth"))
		}
		return runtime.NormalC(newYearMonth(ev, protoID, date))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsObject() {
			y, err := getIntField(ev, v, "year", 0)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			m, err := getIntField(ev, v, "month", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(newYearMonth(ev, protoID, runtime.ISODate{Year: y, Month: m, Day: 1}))
		}
		s, err := ev.ToStringValue(v)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		parts := strings.Split(strings.TrimSpace(s.Go()), "-")
		if len(parts) < 2 {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainYearMonth string: "+s.Go()))
		}
		y, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainYearMonth string: "+s.Go()))
		}
		return runtime.NormalC(newYearMonth(ev, protoID, runtime.ISODate{Year: y, Month: m, Day: 1}))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("PlainYearMonth", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

func newYearMonth(ev *evaluator.Evaluator, protoID runtime.ObjectID, date runtime.ISODate) runtime.Value {
	obj := runtime.NewObject("Temporal.PlainYearMonth", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainYearMonth, Date: date}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

// --- Temporal.PlainMonthDay ------------------------------------------------

func (c *ctx) installTemporalPlainMonthDay(temporal *runtime.Object) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.PlainMonthDay", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	c.getter(proto, "monthCode", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(fmt.Sprintf("M%02d", td.Date.Month)))
	})
	c.getter(proto, "day", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(td.Date.Day)))
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := yearMonthOrMonthDayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(fmt.Sprintf("--%02d-%02d", td.Date.Month, td.Date.Day)))
	})

	ctor := ev.NewNativeFunction("PlainMonthDay", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		m, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		d, err := ev.ToNumber(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		refYear := 1972 // reference leap year per the spec's ISO-neutral-year convention
		date := runtime.ISODate{Year: refYear, Month: int(m.AsNumber()), Day: int(d.AsNumber())}
		if date.Month < 1 || date.Month > 12 || date.Day < 1 || date.Day > daysInMonth(date.Year, date.Month) {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainMonthDay"))
		}
		return runtime.NormalC(newMonthDay(ev, protoID, date))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsObject() {
			m, err := getIntField(ev, v, "month", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			d, err := getIntField(ev, v, "day", 1)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(newMonthDay(ev, protoID, runtime.ISODate{Year: 1972, Month: m, Day: d}))
		}
		s, err := ev.ToStringValue(v)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		trimmed := strings.TrimPrefix(strings.TrimSpace(s.Go()), "--")
		parts := strings.Split(trimmed, "-")
		if len(parts) != 2 {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainMonthDay string: "+s.Go()))
		}
		m, err1 := strconv.Atoi(parts[0])
		d, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid Temporal.PlainMonthDay string: "+s.Go()))
		}
		return runtime.NormalC(newMonthDay(ev, protoID, runtime.ISODate{Year: 1972, Month: m, Day: d}))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("PlainMonthDay", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

func newMonthDay(ev *evaluator.Evaluator, protoID runtime.ObjectID, date runtime.ISODate) runtime.Value {
	obj := runtime.NewObject("Temporal.PlainMonthDay", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalPlainMonthDay, Date: date}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

// --- Temporal.Instant ------------------------------------------------------

func (c *ctx) installTemporalInstant(temporal *runtime.Object) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.Instant", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	instantProtoID = &protoID

	c.getter(proto, "epochMilliseconds", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := instantData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ms := new(big.Int).Div(td.EpochNanoseconds, big.NewInt(1_000_000))
		return runtime.NormalC(runtime.Number(float64(ms.Int64())))
	})
	c.getter(proto, "epochNanoseconds", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := instantData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.BigIntValue(new(big.Int).Set(td.EpochNanoseconds)))
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := instantData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatInstant(td.EpochNanoseconds)))
	})
	c.method(proto, "toJSON", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := instantData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatInstant(td.EpochNanoseconds)))
	})
	c.method(proto, "equals", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := instantData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := instantData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Bool(a.EpochNanoseconds.Cmp(b.EpochNanoseconds) == 0))
	})

	ctor := ev.NewNativeFunction("Instant", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ns, ok := new(big.Int).SetString(strings.TrimSpace(s.Go()), 10)
		if !ok {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid epoch nanoseconds string: "+s.Go()))
		}
		return runtime.NormalC(newInstant(ev, protoID, ns))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "fromEpochMilliseconds", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		n, err := ev.ToNumber(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ns := new(big.Int).Mul(big.NewInt(int64(n.AsNumber())), big.NewInt(1_000_000))
		return runtime.NormalC(newInstant(ev, protoID, ns))
	})
	c.method(ctorObj, "compare", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		a, err := instantData(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		b, err := instantData(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(float64(a.EpochNanoseconds.Cmp(b.EpochNanoseconds))))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("Instant", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

// instantProtoID records Instant.prototype once installTemporalInstant has
// built it. ZonedDateTime.prototype.toInstant does not read it: it takes
// the prototype as its instantProtoIDParam argument.
var instantProtoID *runtime.ObjectID

func newInstant(ev *evaluator.Evaluator, protoID runtime.ObjectID, ns *big.Int) runtime.Value {
	obj := runtime.NewObject("Temporal.Instant", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalInstant, EpochNanoseconds: ns}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func instantData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalInstant {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

func formatInstant(ns *big.Int) string {
	ms := new(big.Int).Div(ns, big.NewInt(1_000_000)).Int64()
	t := time.UnixMilli(ms).UTC()
	return t.Format("2006-01-02T15:04:05.000Z")
}

// --- Temporal.ZonedDateTime -------------------------------------------------

func (c *ctx) installTemporalZonedDateTime(temporal *runtime.Object, plainDateTimeProtoID, instantProtoIDParam, plainDateProtoID, plainTimeProtoID runtime.ObjectID) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.ZonedDateTime", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)
	zonedDateTimeProtoID = &protoID

	c.getter(proto, "timeZoneId", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(td.TimeZone))
	})
	c.getter(proto, "epochMilliseconds", func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ms := new(big.Int).Div(td.EpochNanoseconds, big.NewInt(1_000_000))
		return runtime.NormalC(runtime.Number(float64(ms.Int64())))
	})
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date, t, err := epochNanosecondsToISODateTime(ev, td.EpochNanoseconds, td.TimeZone)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatISODate(date) + "T" + formatISOTime(t) + "[" + td.TimeZone + "]"))
	})
	c.method(proto, "toInstant", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newInstant(ev, instantProtoIDParam, new(big.Int).Set(td.EpochNanoseconds)))
	})
	c.method(proto, "toPlainDate", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date, _, err := epochNanosecondsToISODateTime(ev, td.EpochNanoseconds, td.TimeZone)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainDate(ev, plainDateProtoID, date))
	})
	c.method(proto, "toPlainTime", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		_, t, err := epochNanosecondsToISODateTime(ev, td.EpochNanoseconds, td.TimeZone)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainTime(ev, plainTimeProtoID, t))
	})
	c.method(proto, "toPlainDateTime", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := zonedDateTimeData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		date, t, err := epochNanosecondsToISODateTime(ev, td.EpochNanoseconds, td.TimeZone)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newPlainDateTime(ev, plainDateTimeProtoID, date, t))
	})

	ctor := ev.NewNativeFunction("ZonedDateTime", 2, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ns, ok := new(big.Int).SetString(strings.TrimSpace(s.Go()), 10)
		if !ok {
			return ev.ThrowCompletion(rangeErr(ev, "Invalid epoch nanoseconds string: "+s.Go()))
		}
		tz, err := ev.ToStringValue(arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newZonedDateTime(ev, protoID, ns, tz.Go()))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return ev.ThrowCompletion(typeErr(ev, "Temporal.ZonedDateTime.from requires a zoned-date-time-like object"))
		}
		y, err := getIntField(ev, v, "year", 0)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		m, err := getIntField(ev, v, "month", 1)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		d, err := getIntField(ev, v, "day", 1)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		h, _ := getIntField(ev, v, "hour", 0)
		mi, _ := getIntField(ev, v, "minute", 0)
		se, _ := getIntField(ev, v, "second", 0)
		tzVal, err := ev.GetProperty(v, "timeZone")
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		tz, err := ev.ToStringValue(tzVal)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		ns, err := isoDateTimeToEpochNanoseconds(ev, runtime.ISODate{Year: y, Month: m, Day: d}, runtime.ISOTime{Hour: h, Minute: mi, Second: se}, tz.Go())
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newZonedDateTime(ev, protoID, ns, tz.Go()))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("ZonedDateTime", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

// zonedDateTimeProtoID lets PlainDateTime.prototype.toZonedDateTime (built
// before ZonedDateTime exists) reach the prototype installTemporal
// allocates a few calls later, the same forward-reference pattern
// arrayBufferProtoID uses in typedarray.go.
var zonedDateTimeProtoID *runtime.ObjectID

func zonedDateTimeProtoIDRef() runtime.ObjectID { return *zonedDateTimeProtoID }

func newZonedDateTime(ev *evaluator.Evaluator, protoID runtime.ObjectID, ns *big.Int, tz string) runtime.Value {
	obj := runtime.NewObject("Temporal.ZonedDateTime", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalZonedDateTime, EpochNanoseconds: ns, TimeZone: tz}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func zonedDateTimeData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalZonedDateTime {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

// isoDateTimeToEpochNanoseconds/epochNanosecondsToISODateTime convert
// between wall-clock ISO fields and epoch nanoseconds through the host's
// IANA timezone database (time.LoadLocation), the same UTC<->local
// conversion Date uses in date.go.
func isoDateTimeToEpochNanoseconds(ev *evaluator.Evaluator, date runtime.ISODate, t runtime.ISOTime, tz string) (*big.Int, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, rangeErr(ev, "Unknown time zone: "+tz)
	}
	gt := time.Date(date.Year, time.Month(date.Month), date.Day, t.Hour, t.Minute, t.Second, t.Millisecond*1_000_000, loc)
	sec := gt.Unix()
	nsec := int64(gt.Nanosecond())
	return new(big.Int).Add(new(big.Int).Mul(big.NewInt(sec), big.NewInt(1_000_000_000)), big.NewInt(nsec)), nil
}

func epochNanosecondsToISODateTime(ev *evaluator.Evaluator, ns *big.Int, tz string) (runtime.ISODate, runtime.ISOTime, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return runtime.ISODate{}, runtime.ISOTime{}, rangeErr(ev, "Unknown time zone: "+tz)
	}
	sec := new(big.Int).Div(ns, big.NewInt(1_000_000_000)).Int64()
	rem := new(big.Int).Mod(ns, big.NewInt(1_000_000_000)).Int64()
	gt := time.Unix(sec, rem).In(loc)
	y, m, d := gt.Date()
	return runtime.ISODate{Year: y, Month: int(m), Day: d},
		runtime.ISOTime{Hour: gt.Hour(), Minute: gt.Minute(), Second: gt.Second(), Millisecond: gt.Nanosecond() / 1_000_000}, nil
}

// --- Temporal.Duration ---------------------------------------------------

func (c *ctx) installTemporalDuration(temporal *runtime.Object) runtime.ObjectID {
	ev := c.ev
	proto := runtime.NewObject("Temporal.Duration", ev.Realm.ObjectPrototype)
	protoID := ev.Heap_.Allocate(proto)

	fieldNames := []string{"years", "months", "weeks", "days", "hours", "minutes", "seconds", "milliseconds", "microseconds", "nanoseconds"}
	extract := func(d runtime.DurationFields, name string) int {
		switch name {
		case "years":
			return d.Years
		case "months":
			return d.Months
		case "weeks":
			return d.Weeks
		case "days":
			return d.Days
		case "hours":
			return d.Hours
		case "minutes":
			return d.Minutes
		case "seconds":
			return d.Seconds
		case "milliseconds":
			return d.Milliseconds
		case "microseconds":
			return d.Microseconds
		case "nanoseconds":
			return d.Nanoseconds
		}
		return 0
	}
	for _, name := range fieldNames {
		name := name
		c.getter(proto, name, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
			td, err := durationData(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			return runtime.NormalC(runtime.Number(float64(extract(td.Duration, name))))
		})
	}
	c.method(proto, "toString", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := durationData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.StringFromGo(formatDuration(td.Duration)))
	})
	c.method(proto, "negated", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := durationData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newDuration(ev, protoID, negateDuration(td.Duration)))
	})
	c.method(proto, "total", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := durationData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		unit, err := totalUnitOption(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(runtime.Number(durationTotalNanoseconds(td.Duration) / unitNanoseconds(unit)))
	})
	c.method(proto, "round", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		td, err := durationData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		opts, err := roundDurationOptions(ev, arg(args, 0), td.Duration)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newDuration(ev, protoID, roundDuration(td.Duration, opts)))
	})

	ctor := ev.NewNativeFunction("Duration", 10, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		vals := make([]int, 10)
		for i := range vals {
			if i < len(args) && !args[i].IsUndefined() {
				n, err := ev.ToNumber(args[i])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				vals[i] = int(n.AsNumber())
			}
		}
		d := runtime.DurationFields{
			Years: vals[0], Months: vals[1], Weeks: vals[2], Days: vals[3],
			Hours: vals[4], Minutes: vals[5], Seconds: vals[6],
			Milliseconds: vals[7], Microseconds: vals[8], Nanoseconds: vals[9],
		}
		return runtime.NormalC(newDuration(ev, protoID, d))
	})
	ctorObj := ev.Heap_.Get(ctor.AsObjectID())
	c.method(ctorObj, "from", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		d, err := toDurationFields(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newDuration(ev, protoID, d))
	})
	setCtorProto(ev, ctor, proto, protoID)
	temporal.DefineOwn("Duration", runtime.DataProperty(ctor, true, false, true))
	return protoID
}

func formatDuration(d runtime.DurationFields) string {
	var b strings.Builder
	b.WriteByte('P')
	if d.Years != 0 {
		fmt.Fprintf(&b, "%dY", d.Years)
	}
	if d.Months != 0 {
		fmt.Fprintf(&b, "%dM", d.Months)
	}
	if d.Weeks != 0 {
		fmt.Fprintf(&b, "%dW", d.Weeks)
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteByte('T')
		if d.Hours != 0 {
			fmt.Fprintf(&b, "%dH", d.Hours)
		}
		if d.Minutes != 0 {
			fmt.Fprintf(&b, "%dM", d.Minutes)
		}
		if d.Seconds != 0 {
			fmt.Fprintf(&b, "%dS", d.Seconds)
		}
	}
	if b.Len() == 1 {
		return "P0D"
	}
	return b.String()
}

func newDuration(ev *evaluator.Evaluator, protoID runtime.ObjectID, d runtime.DurationFields) runtime.Value {
	obj := runtime.NewObject("Temporal.Duration", &protoID)
	obj.TemporalData = &runtime.TemporalData{Kind: runtime.TemporalDuration, Duration: d}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

func durationData(ev *evaluator.Evaluator, v runtime.Value) (*runtime.TemporalData, error) {
	if !v.IsObject() {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(v.AsObjectID())
	if obj == nil || obj.TemporalData == nil || obj.TemporalData.Kind != runtime.TemporalDuration {
		return nil, typeErr(ev, "Method called on incompatible receiver")
	}
	return obj.TemporalData, nil
}

// --- Duration rounding-mode machinery --------------------------------------
//
// Real Temporal rounding is calendar-relative (years/months are variable
// length, so rounding a multi-year duration needs a relativeTo anchor).
// This interpreter rounds against fixed average unit lengths instead
// (365.2425-day years, 30.436875-day months, the Gregorian averages),
// which keeps round/total anchor-free and mechanical at the cost of exact
// calendar precision for day-of-month edge cases.

var unitOrder = []string{
	"year", "month", "week", "day",
	"hour", "minute", "second", "millisecond", "microsecond", "nanosecond",
}

func unitNanoseconds(unit string) float64 {
	const day = 86400e9
	switch unit {
	case "year":
		return 365.2425 * day
	case "month":
		return 30.436875 * day
	case "week":
		return 7 * day
	case "day":
		return day
	case "hour":
		return 3600e9
	case "minute":
		return 60e9
	case "second":
		return 1e9
	case "millisecond":
		return 1e6
	case "microsecond":
		return 1e3
	case "nanosecond":
		return 1
	}
	return 1
}

func durationFieldByName(d runtime.DurationFields, name string) int {
	switch name {
	case "year":
		return d.Years
	case "month":
		return d.Months
	case "week":
		return d.Weeks
	case "day":
		return d.Days
	case "hour":
		return d.Hours
	case "minute":
		return d.Minutes
	case "second":
		return d.Seconds
	case "millisecond":
		return d.Milliseconds
	case "microsecond":
		return d.Microseconds
	case "nanosecond":
		return d.Nanoseconds
	}
	return 0
}

func setDurationField(d *runtime.DurationFields, name string, v int) {
	switch name {
	case "year":
		d.Years = v
	case "month":
		d.Months = v
	case "week":
		d.Weeks = v
	case "day":
		d.Days = v
	case "hour":
		d.Hours = v
	case "minute":
		d.Minutes = v
	case "second":
		d.Seconds = v
	case "millisecond":
		d.Milliseconds = v
	case "microsecond":
		d.Microseconds = v
	case "nanosecond":
		d.Nanoseconds = v
	}
}

func durationTotalNanoseconds(d runtime.DurationFields) float64 {
	total := 0.0
	for _, u := range unitOrder {
		total += float64(durationFieldByName(d, u)) * unitNanoseconds(u)
	}
	return total
}

func largestNonzeroUnit(d runtime.DurationFields) string {
	for _, u := range unitOrder {
		if durationFieldByName(d, u) != 0 {
			return u
		}
	}
	return "second"
}

// roundValue applies one of the nine §4.12 rounding modes (halfExpand,
// halfEven, ceil, floor, trunc, expand, halfTrunc, halfCeil, halfFloor) to
// a quotient, returning the rounded integer (still as a float64).
func roundValue(q float64, mode string) float64 {
	switch mode {
	case "ceil":
		return math.Ceil(q)
	case "floor":
		return math.Floor(q)
	case "trunc":
		return math.Trunc(q)
	case "expand":
		if q < 0 {
			return math.Floor(q)
		}
		return math.Ceil(q)
	}
	neg := q < 0
	a := math.Abs(q)
	f := math.Floor(a)
	frac := a - f
	var m float64
	switch {
	case frac < 0.5:
		m = f
	case frac > 0.5:
		m = f + 1
	default:
		switch mode {
		case "halfEven":
			if math.Mod(f, 2) == 0 {
				m = f
			} else {
				m = f + 1
			}
		case "halfCeil":
			if neg {
				m = f
			} else {
				m = f + 1
			}
		case "halfFloor":
			if neg {
				m = f + 1
			} else {
				m = f
			}
		case "halfTrunc":
			m = f
		default: // halfExpand
			m = f + 1
		}
	}
	if neg {
		return -m
	}
	return m
}

type durationRoundOptions struct {
	smallestUnit      string
	largestUnit       string
	roundingIncrement float64
	roundingMode      string
}

func totalUnitOption(ev *evaluator.Evaluator, v runtime.Value) (string, error) {
	if v.IsObject() {
		u, err := ev.GetProperty(v, "unit")
		if err != nil {
			return "", err
		}
		s, err := ev.ToStringValue(u)
		if err != nil {
			return "", err
		}
		return validTemporalUnit(ev, s.Go())
	}
	s, err := ev.ToStringValue(v)
	if err != nil {
		return "", err
	}
	return validTemporalUnit(ev, s.Go())
}

func validTemporalUnit(ev *evaluator.Evaluator, unit string) (string, error) {
	for _, u := range unitOrder {
		if u == unit || u+"s" == unit {
			return u, nil
		}
	}
	return "", rangeErr(ev, "Invalid Temporal unit: "+unit)
}

func roundDurationOptions(ev *evaluator.Evaluator, v runtime.Value, d runtime.DurationFields) (durationRoundOptions, error) {
	opts := durationRoundOptions{smallestUnit: "nanosecond", largestUnit: "auto", roundingIncrement: 1, roundingMode: "halfExpand"}
	if !v.IsObject() {
		s, err := ev.ToStringValue(v)
		if err != nil {
			return opts, err
		}
		unit, err := validTemporalUnit(ev, s.Go())
		if err != nil {
			return opts, err
		}
		opts.smallestUnit = unit
		return opts, nil
	}
	if su, err := ev.GetProperty(v, "smallestUnit"); err != nil {
		return opts, err
	} else if !su.IsUndefined() {
		s, err := ev.ToStringValue(su)
		if err != nil {
			return opts, err
		}
		unit, err := validTemporalUnit(ev, s.Go())
		if err != nil {
			return opts, err
		}
		opts.smallestUnit = unit
	}
	if lu, err := ev.GetProperty(v, "largestUnit"); err != nil {
		return opts, err
	} else if !lu.IsUndefined() {
		s, err := ev.ToStringValue(lu)
		if err != nil {
			return opts, err
		}
		if s.Go() != "auto" {
			unit, err := validTemporalUnit(ev, s.Go())
			if err != nil {
				return opts, err
			}
			opts.largestUnit = unit
		}
	}
	if ri, err := ev.GetProperty(v, "roundingIncrement"); err != nil {
		return opts, err
	} else if !ri.IsUndefined() {
		n, err := ev.ToNumber(ri)
		if err != nil {
			return opts, err
		}
		opts.roundingIncrement = n.AsNumber()
	}
	if rm, err := ev.GetProperty(v, "roundingMode"); err != nil {
		return opts, err
	} else if !rm.IsUndefined() {
		s, err := ev.ToStringValue(rm)
		if err != nil {
			return opts, err
		}
		opts.roundingMode = s.Go()
	}
	if opts.largestUnit == "auto" {
		opts.largestUnit = largestNonzeroUnit(d)
	}
	return opts, nil
}

// roundDuration rounds a duration to opts.smallestUnit (at
// opts.roundingIncrement granularity, under opts.roundingMode) and
// rebalances the result into fields from opts.largestUnit down to
// opts.smallestUnit, zeroing everything outside that range.
func roundDuration(d runtime.DurationFields, opts durationRoundOptions) runtime.DurationFields {
	totalNs := durationTotalNanoseconds(d)
	incrementNs := unitNanoseconds(opts.smallestUnit) * opts.roundingIncrement
	roundedNs := roundValue(totalNs/incrementNs, opts.roundingMode) * incrementNs

	var out runtime.DurationFields
	remaining := roundedNs
	started := false
	for _, u := range unitOrder {
		if !started {
			if u != opts.largestUnit {
				continue
			}
			started = true
		}
		size := unitNanoseconds(u)
		count := math.Trunc(remaining / size)
		setDurationField(&out, u, int(count))
		remaining -= count * size
		if u == opts.smallestUnit {
			break
		}
	}
	return out
}

// --- Temporal.Now ---------------------------------------------------------

func (c *ctx) installTemporalNow(temporal *runtime.Object, plainDateProtoID runtime.ObjectID) {
	ev := c.ev
	now := runtime.NewObject("Temporal.Now", ev.Realm.ObjectPrototype)
	c.method(now, "plainDateISO", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		y, m, d := time.Now().Date()
		date := runtime.ISODate{Year: y, Month: int(m), Day: d}
		return runtime.NormalC(newPlainDate(ev, plainDateProtoID, date))
	})
	nowID := ev.Heap_.Allocate(now)
	temporal.DefineOwn("Now", runtime.DataProperty(runtime.Object(nowID), true, false, true))
}
