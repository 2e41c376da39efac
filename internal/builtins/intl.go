package builtins

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/runtime"
)

// supportedLocales is the closed set Intl.DateTimeFormat picks a best match
// from; anything else falls back to "en" the way a real implementation
// falls back to its default locale when no supported tag matches closely
// enough.
var supportedLocales = []language.Tag{
	language.English,
	language.French,
	language.German,
	language.Spanish,
	language.Japanese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var monthNames = map[language.Tag][]string{
	language.English:  {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	language.French:   {"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	language.German:   {"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	language.Spanish:  {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	language.Japanese: {"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
}

var weekdayNames = map[language.Tag][]string{
	language.English:  {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	language.French:   {"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
	language.German:   {"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
	language.Spanish:  {"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
	language.Japanese: {"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"},
}

// installIntl builds a shallow Intl namespace (§4.10 item 9 Non-goal: no
// full CLDR, just DateTimeFormat's locale matching and a handful of
// hand-tabled month/weekday names). Locale negotiation goes through
// golang.org/x/text/language's Matcher rather than a raw string compare,
// so "en-GB", "en-US", and bare "en" all land on the same English table.
func (c *ctx) installIntl() {
	ev := c.ev
	intl := runtime.NewObject("Intl", ev.Realm.ObjectPrototype)
	intlID := ev.Heap_.Allocate(intl)

	dtfProto := runtime.NewObject("Intl.DateTimeFormat", ev.Realm.ObjectPrototype)
	dtfProtoID := ev.Heap_.Allocate(dtfProto)

	c.method(dtfProto, "resolvedOptions", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		tag, opts, err := dateTimeFormatState(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		result := runtime.NewObject("Object", ev.Realm.ObjectPrototype)
		result.DefineOwn("locale", runtime.DataProperty(runtime.StringFromGo(tag.String()), true, true, true))
		for k, v := range opts {
			result.DefineOwn(k, runtime.DataProperty(runtime.StringFromGo(v), true, true, true))
		}
		id := ev.Heap_.Allocate(result)
		return runtime.NormalC(runtime.Object(id))
	})
	c.method(dtfProto, "format", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		tag, opts, err := dateTimeFormatState(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		var ms float64
		if len(args) > 0 && !args[0].IsUndefined() {
			if args[0].IsObject() {
				ms, err = dateValue(ev, args[0])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
			} else {
				n, err := ev.ToNumber(args[0])
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				ms = n.AsNumber()
			}
		} else {
			ms, err = dateValue(ev, this)
			if err != nil {
				return ev.ThrowCompletion(err)
			}
		}
		t := msToTime(ms).UTC()
		return runtime.NormalC(runtime.StringFromGo(formatDateTime(tag, opts, t)))
	})

	ctor := ev.NewNativeFunction("DateTimeFormat", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		locale := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			v, err := ev.ToStringValue(args[0])
			if err != nil {
				return ev.ThrowCompletion(err)
			}
			locale = v.Go()
		}
		requested := language.English
		if locale != "" {
			if parsed, perr := language.Parse(locale); perr == nil {
				requested = parsed
			}
		}
		_, index, _ := localeMatcher.Match(requested)
		matched := supportedLocales[index]

		opts := map[string]string{}
		if len(args) > 1 && args[1].IsObject() {
			for _, key := range []string{"weekday", "year", "month", "day", "hour", "minute", "second", "dateStyle", "timeStyle"} {
				pv, getErr := ev.GetProperty(args[1], key)
				if getErr != nil {
					return ev.ThrowCompletion(getErr)
				}
				if pv.IsUndefined() {
					continue
				}
				v, err := ev.ToStringValue(pv)
				if err != nil {
					return ev.ThrowCompletion(err)
				}
				opts[key] = v.Go()
			}
		}
		if len(opts) == 0 {
			opts["year"] = "numeric"
			opts["month"] = "numeric"
			opts["day"] = "numeric"
		}

		obj := runtime.NewObject("Intl.DateTimeFormat", &dtfProtoID)
		obj.IntlLocale = matched.String()
		obj.IntlOptions = opts
		id := ev.Heap_.Allocate(obj)
		return runtime.NormalC(runtime.Object(id))
	})
	setCtorProto(ev, ctor, dtfProto, dtfProtoID)
	intl.DefineOwn("DateTimeFormat", runtime.DataProperty(ctor, true, false, true))

	c.declareGlobal("Intl", runtime.Object(intlID))
}

func dateTimeFormatState(ev *evaluator.Evaluator, this runtime.Value) (language.Tag, map[string]string, error) {
	if !this.IsObject() {
		return language.Und, nil, typeErr(ev, "Method called on incompatible receiver")
	}
	obj := ev.Heap_.Get(this.AsObjectID())
	if obj == nil || obj.IntlLocale == "" {
		return language.Und, nil, typeErr(ev, "Method called on incompatible receiver")
	}
	tag, err := language.Parse(obj.IntlLocale)
	if err != nil {
		tag = language.English
	}
	return tag, obj.IntlOptions, nil
}

// formatDateTime renders t per a shallow subset of the option/value pairs
// Intl.DateTimeFormat accepts, substituting the hand-tabled month/weekday
// name for the matched locale wherever the caller asked for one.
func formatDateTime(tag language.Tag, opts map[string]string, t time.Time) string {
	months := monthNames[tag]
	weekdays := weekdayNames[tag]
	var parts []string

	if opts["dateStyle"] != "" || opts["timeStyle"] != "" {
		if opts["dateStyle"] != "" {
			parts = append(parts, months[int(t.Month())-1]+" "+strconv.Itoa(t.Day())+", "+strconv.Itoa(t.Year()))
		}
		if opts["timeStyle"] != "" {
			parts = append(parts, t.Format("15:04:05"))
		}
		return strings.Join(parts, ", ")
	}

	if opts["weekday"] != "" {
		parts = append(parts, weekdays[int(t.Weekday())])
	}
	switch {
	case opts["month"] == "long":
		parts = append(parts, months[int(t.Month())-1])
	case opts["month"] != "":
		parts = append(parts, strconv.Itoa(int(t.Month())))
	}
	if opts["day"] != "" {
		parts = append(parts, strconv.Itoa(t.Day()))
	}
	if opts["year"] != "" {
		parts = append(parts, strconv.Itoa(t.Year()))
	}
	dateStr := strings.Join(parts, "/")

	var timeParts []string
	if opts["hour"] != "" {
		timeParts = append(timeParts, pad2(t.Hour()))
	}
	if opts["minute"] != "" {
		timeParts = append(timeParts, pad2(t.Minute()))
	}
	if opts["second"] != "" {
		timeParts = append(timeParts, pad2(t.Second()))
	}
	timeStr := strings.Join(timeParts, ":")

	switch {
	case dateStr != "" && timeStr != "":
		return dateStr + ", " + timeStr
	case dateStr != "":
		return dateStr
	default:
		return timeStr
	}
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
