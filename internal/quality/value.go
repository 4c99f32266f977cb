package quality

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a metric result: a number, or a string for metrics such as
// Data_Freshness that have no numeric answer on some datasets.
type Value struct {
	num    float64
	text   string
	isText bool
}

// Num wraps a numeric metric result.
func Num(f float64) Value { return Value{num: f} }

// Str wraps a textual metric result.
func Str(s string) Value { return Value{text: s, isText: true} }

// Float returns the numeric result; ok is false for textual results.
func (v Value) Float() (float64, bool) {
	if v.isText {
		return 0, false
	}
	return v.num, true
}

// IsText reports whether the result is textual.
func (v Value) IsText() bool { return v.isText }

func (v Value) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isText || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = Num(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = Str(s)
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	if v.isText {
		return v.text, nil
	}
	return v.num, nil
}

// Report maps metric names to their results.
type Report map[string]Value

// Float looks up a numeric metric.
func (r Report) Float(name string) (float64, bool) {
	v, ok := r[name]
	if !ok {
		return 0, false
	}
	return v.Float()
}
