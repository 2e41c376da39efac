package ops

import (
	"math"
	"testing"

	"github.com/pmatos/jsse/internal/runtime"
)

func TestToBoolean(t *testing.T) {
	cases := []struct {
		name string
		v    runtime.Value
		want bool
	}{
		{"undefined", runtime.Undefined, false},
		{"null", runtime.Null, false},
		{"zero", runtime.Number(0), false},
		{"negZero", runtime.Number(math.Copysign(0, -1)), false},
		{"nan", runtime.Number(math.NaN()), false},
		{"one", runtime.Number(1), true},
		{"emptyString", runtime.StringFromGo(""), false},
		{"nonEmptyString", runtime.StringFromGo("a"), true},
		{"true", runtime.True, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ToBoolean(c.v); got != c.want {
				t.Errorf("ToBoolean(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestStringToNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{"  42  ", 42},
		{"-3.5", -3.5},
		{"0x1A", 26},
		{"0o17", 15},
		{"0b101", 5},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"not a number", math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got := StringToNumber(c.in)
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("StringToNumber(%q) = %v, want NaN", c.in, got)
				}
				return
			}
			if got != c.want {
				t.Errorf("StringToNumber(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestNumberToString(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{42, "42"},
		{-3.5, "-3.5"},
	}
	for _, c := range cases {
		if got := NumberToString(c.in); got != c.want {
			t.Errorf("NumberToString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNumberToInt32Uint32(t *testing.T) {
	cases := []struct {
		in        float64
		wantInt32 int32
	}{
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{4294967296, 0},  // 2^32
		{4294967295, -1}, // 2^32-1 wraps to -1 as int32
		{-1, -1},
		{3.9, 3},
	}
	for _, c := range cases {
		if got := numberToInt32(c.in); got != c.wantInt32 {
			t.Errorf("numberToInt32(%v) = %d, want %d", c.in, got, c.wantInt32)
		}
	}
}

func TestStrictEquals(t *testing.T) {
	cases := []struct {
		name string
		a, b runtime.Value
		want bool
	}{
		{"sameNumber", runtime.Number(1), runtime.Number(1), true},
		{"nanNotEqualNan", runtime.Number(math.NaN()), runtime.Number(math.NaN()), false},
		{"posZeroEqNegZero", runtime.Number(0), runtime.Number(math.Copysign(0, -1)), true},
		{"differentKinds", runtime.Number(1), runtime.StringFromGo("1"), false},
		{"sameString", runtime.StringFromGo("abc"), runtime.StringFromGo("abc"), true},
		{"undefinedUndefined", runtime.Undefined, runtime.Undefined, true},
		{"nullNull", runtime.Null, runtime.Null, true},
		{"nullUndefined", runtime.Null, runtime.Undefined, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := StrictEquals(c.a, c.b); got != c.want {
				t.Errorf("StrictEquals(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}
