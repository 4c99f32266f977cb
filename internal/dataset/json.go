package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

// MarshalJSON writes numbers as JSON numbers, non-finite numbers as the
// strings "NaN", "Inf" and "-Inf", and missing cells as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMissing:
		return []byte("null"), nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(formatFloat(v.num))
		}
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.text)
	}
}

// MarshalYAML renders the same scalar as MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindMissing:
		return nil, nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return formatFloat(v.num), nil
		}
		return v.num, nil
	default:
		return v.text, nil
	}
}

type wireDataset struct {
	ID      string           `json:"id,omitempty"`
	Name    string           `json:"name,omitempty"`
	Columns []Column         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type wireDatasetOut struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name,omitempty"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON writes the wire form {"id","name","columns","rows"}.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rows := d.Rows
	if rows == nil {
		rows = []Row{}
	}
	cols := d.Columns
	if cols == nil {
		cols = []Column{}
	}
	return json.Marshal(wireDatasetOut{ID: d.ID, Name: d.Name, Columns: cols, Rows: rows})
}

// UnmarshalJSON reads the wire form, converting each raw scalar by the
// declared type of its column. Unknown column types and undeclared row keys
// are rejected.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var w wireDataset
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}
	types := make(map[string]Type, len(w.Columns))
	for i, c := range w.Columns {
		t, err := ParseType(string(c.Type))
		if err != nil {
			return &ValidationError{Field: fmt.Sprintf("columns[%d]", i), Reason: err.Error()}
		}
		w.Columns[i].Type = t
		types[c.Name] = t
	}
	rows := make([]Row, len(w.Rows))
	for i, raw := range w.Rows {
		r := make(Row, len(raw))
		for k, x := range raw {
			t, ok := types[k]
			if !ok {
				return &ValidationError{Field: fmt.Sprintf("rows[%d]", i), Reason: fmt.Sprintf("undeclared column %q", k)}
			}
			r[k] = FromAny(x, t)
		}
		rows[i] = r
	}
	d.ID = w.ID
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.Name = w.Name
	d.Columns = w.Columns
	d.Rows = rows
	return d.Validate()
}

// Decode reads one dataset in wire form.
func Decode(r io.Reader) (*Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var d Dataset
	if err := d.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return &d, nil
}
