package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ISODate is the canonical date layout produced by normalisation.
const ISODate = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339, ISODate, "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "02-Jan-2006", "Jan 2, 2006", "Jan 2 2006",
}

// ParseDate tries the supported layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a plain decimal, optionally suffixed with '%'.
// Locale-aware parsing lives in the ingestion layer.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var nullTokens = map[string]struct{}{
	"": {}, "null": {}, "none": {}, "na": {}, "n/a": {}, "nil": {}, "#n/a": {},
}

// IsNullToken reports textual spellings of a null cell.
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// FromString converts one raw text cell for a column of the given type.
// Cells that do not parse as the declared type are kept as Text so the
// mismatch stays visible to the metrics.
func FromString(raw string, typ Type) Value {
	if IsNullToken(raw) {
		return Missing()
	}
	switch typ {
	case TypeNumeric:
		if f, ok := ParseNumber(raw); ok {
			return Number(f)
		}
	case TypeDate:
		if t, ok := ParseDate(raw); ok {
			return Date(strings.TrimSpace(raw), t)
		}
	}
	return Text(raw)
}

// FromAny converts a decoded scalar (JSON, YAML, spreadsheet cell).
func FromAny(raw any, typ Type) Value {
	switch x := raw.(type) {
	case nil:
		return Missing()
	case Value:
		return x
	case string:
		return FromString(x, typ)
	case time.Time:
		if typ == TypeNumeric {
			return Text(x.Format(time.RFC3339))
		}
		return Date(x.Format(ISODate), x)
	case bool:
		return Text(cast.ToString(x))
	}
	if typ != TypeNumeric {
		return Text(cast.ToString(raw))
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return Text(cast.ToString(raw))
	}
	return Number(f)
}
