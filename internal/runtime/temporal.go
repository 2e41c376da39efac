package runtime

import "math/big"

// TemporalKind discriminates the temporal_data internal slot (§3.2, §4.12).
type TemporalKind uint8

const (
	TemporalPlainDate TemporalKind = iota
	TemporalPlainTime
	TemporalPlainDateTime
	TemporalPlainYearMonth
	TemporalPlainMonthDay
	TemporalInstant
	TemporalDuration
	TemporalZonedDateTime
)

// ISODate is a proleptic-Gregorian calendar date (ISO 8601 calendar only,
// per §4.12's "ISO calendar arithmetic").
type ISODate struct {
	Year, Month, Day int
}

// ISOTime is a wall-clock time with nanosecond resolution.
type ISOTime struct {
	Hour, Minute, Second, Millisecond, Microsecond, Nanosecond int
}

// DurationFields holds the (possibly fractional-free, per spec, integer)
// components of a Temporal.Duration; Sign is +1, -1, or 0.
type DurationFields struct {
	Years, Months, Weeks, Days                                     int
	Hours, Minutes, Seconds, Milliseconds, Microseconds, Nanoseconds int
}

// TemporalData is the closed, tagged record backing every Temporal object
// (§3.2's "temporal_data: discriminated record"). Only the fields
// meaningful for Kind are populated; every Temporal value is treated as
// frozen once constructed (§4.12).
type TemporalData struct {
	Kind TemporalKind

	Date ISODate
	Time ISOTime

	// EpochNanoseconds backs Instant/ZonedDateTime (§4.12: "Epoch
	// nanoseconds are stored as arbitrary-precision BigInt").
	EpochNanoseconds *big.Int
	TimeZone         string // IANA identifier, for ZonedDateTime

	Duration DurationFields
}
