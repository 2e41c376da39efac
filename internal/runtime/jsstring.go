package runtime

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// JsString is an immutable UTF-16 code-unit sequence (§4.2). Len() counts
// code units, not code points, so "🙂".length === 2 as JS requires.
type JsString struct {
	units []uint16
}

func NewJsString(units []uint16) *JsString {
	cp := make([]uint16, len(units))
	copy(cp, units)
	return &JsString{units: cp}
}

// NewJsStringFromUTF8 encodes a Go string (UTF-8) into UTF-16 code units.
func NewJsStringFromUTF8(s string) *JsString {
	return &JsString{units: utf16.Encode([]rune(s))}
}

func (s *JsString) Units() []uint16 { return s.units }

func (s *JsString) Len() int { return len(s.units) }

// Go renders the string as Go-native UTF-8, replacing lone surrogates with
// U+FFFD; used only for diagnostics (§4.2). Transcodes through a fresh
// golang.org/x/text/encoding/unicode UTF-16 decoder per call (the same
// decoder/transform.Bytes shape used to decode UTF-16 script files), so
// no decoder state leaks between unrelated strings.
func (s *JsString) Go() string {
	raw := make([]byte, len(s.units)*2)
	for i, u := range s.units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return s.goFallback()
	}
	return string(out)
}

// goFallback is the hand-rolled surrogate-pairing path used only if the
// x/text decoder itself errors on malformed input.
func (s *JsString) goFallback() string {
	var b strings.Builder
	units := s.units
	for i := 0; i < len(units); i++ {
		u := units[i]
		if utf16.IsSurrogate(rune(u)) {
			if i+1 < len(units) {
				r := utf16.DecodeRune(rune(u), rune(units[i+1]))
				if r != utf8.RuneError {
					b.WriteRune(r)
					i++
					continue
				}
			}
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(rune(u))
	}
	return b.String()
}

func (s *JsString) Equal(o *JsString) bool {
	if len(s.units) != len(o.units) {
		return false
	}
	for i := range s.units {
		if s.units[i] != o.units[i] {
			return false
		}
	}
	return true
}

// Compare gives code-unit lexicographic ordering, used by the abstract
// relational comparison (§4.7) for String<String.
func (s *JsString) Compare(o *JsString) int {
	n := len(s.units)
	if len(o.units) < n {
		n = len(o.units)
	}
	for i := 0; i < n; i++ {
		if s.units[i] != o.units[i] {
			if s.units[i] < o.units[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(s.units) < len(o.units):
		return -1
	case len(s.units) > len(o.units):
		return 1
	}
	return 0
}

func (s *JsString) Concat(o *JsString) *JsString {
	units := make([]uint16, 0, len(s.units)+len(o.units))
	units = append(units, s.units...)
	units = append(units, o.units...)
	return &JsString{units: units}
}

// SliceUTF16 clamps start/end to [0, Len()]; start>=end yields empty (§4.2).
func (s *JsString) SliceUTF16(start, end int) *JsString {
	if start < 0 {
		start = 0
	}
	if end > len(s.units) {
		end = len(s.units)
	}
	if start >= end {
		return &JsString{}
	}
	return NewJsString(s.units[start:end])
}

// IndexOf implements the spec clause 6.1.4.1 search: an empty search string
// matches at any position <= length; the result is a code-unit index, or -1.
func (s *JsString) IndexOf(search *JsString, from int) int {
	if from < 0 {
		from = 0
	}
	if len(search.units) == 0 {
		if from > len(s.units) {
			return len(s.units)
		}
		return from
	}
	for i := from; i+len(search.units) <= len(s.units); i++ {
		if unitsEqualAt(s.units, i, search.units) {
			return i
		}
	}
	return -1
}

// LastIndexOf implements 6.1.4.2.
func (s *JsString) LastIndexOf(search *JsString, from int) int {
	if len(search.units) == 0 {
		if from > len(s.units) {
			return len(s.units)
		}
		if from < 0 {
			return 0
		}
		return from
	}
	start := from
	if start > len(s.units)-len(search.units) {
		start = len(s.units) - len(search.units)
	}
	for i := start; i >= 0; i-- {
		if unitsEqualAt(s.units, i, search.units) {
			return i
		}
	}
	return -1
}

func unitsEqualAt(haystack []uint16, at int, needle []uint16) bool {
	if at < 0 || at+len(needle) > len(haystack) {
		return false
	}
	for i, u := range needle {
		if haystack[at+i] != u {
			return false
		}
	}
	return true
}

// NormForm selects a Unicode normalization form for String.prototype.normalize.
type NormForm string

const (
	NFC  NormForm = "NFC"
	NFD  NormForm = "NFD"
	NFKC NormForm = "NFKC"
	NFKD NormForm = "NFKD"
)

// Normalize applies golang.org/x/text/unicode/norm to back
// String.prototype.normalize.
func (s *JsString) Normalize(form NormForm) *JsString {
	var f norm.Form
	switch form {
	case NFD:
		f = norm.NFD
	case NFKC:
		f = norm.NFKC
	case NFKD:
		f = norm.NFKD
	default:
		f = norm.NFC
	}
	normalized := f.String(s.Go())
	return NewJsStringFromUTF8(normalized)
}
