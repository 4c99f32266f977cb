package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	text string
	t    time.Time
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Number wraps a float. NaN and ±Inf are kept as numbers; calculators drop them.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a raw string as-is, whitespace included.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Date keeps both the raw text and its parsed instant.
func Date(raw string, t time.Time) Value { return Value{kind: KindDate, text: raw, t: t} }

func (v Value) Kind() Kind { return v.kind }

// IsMissing reports null cells and empty or whitespace-only text.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindMissing:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	}
	return false
}

// Float returns the number held by a Number value.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// FiniteFloat is Float restricted to finite numbers.
func (v Value) FiniteFloat() (float64, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Time returns the parsed instant of a Date value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Raw returns the text of Text and Date values.
func (v Value) Raw() (string, bool) {
	if v.kind != KindText && v.kind != KindDate {
		return "", false
	}
	return v.text, true
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatFloat(v.num)
	case KindText, KindDate:
		return v.text
	default:
		return ""
	}
}

// Key is a kind-tagged form used for exact equality. Every missing
// representation shares the empty key.
func (v Value) Key() string {
	if v.IsMissing() {
		return ""
	}
	switch v.kind {
	case KindNumber:
		return "n:" + formatFloat(v.num)
	case KindDate:
		return "d:" + v.text
	default:
		return "t:" + v.text
	}
}

// Equal compares by Key.
func (v Value) Equal(o Value) bool { return v.Key() == o.Key() }

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
