// Package dataset holds the in-memory table shared by the metrics engine and
// the preprocessing operations: ordered, typed columns and sparse rows of
// tagged cell values.
package dataset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type is the declared type of a column. It is assigned at ingestion and
// never re-inferred by the engine.
type Type string

const (
	TypeNumeric Type = "numeric"
	TypeText    Type = "text"
	TypeDate    Type = "date"
)

// ParseType accepts the canonical names and a few common aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "float", "int", "integer":
		return TypeNumeric, nil
	case "text", "string", "categorical", "category":
		return TypeText, nil
	case "date", "datetime", "time", "timestamp":
		return TypeDate, nil
	}
	return "", fmt.Errorf("unknown column type %q (use numeric|text|date)", s)
}

// Column is a named, typed column.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

// Row maps column names to cells. An absent key is a missing cell.
type Row map[string]Value

// Dataset is an identified table of typed columns and rows.
type Dataset struct {
	ID      string
	Name    string
	Columns []Column
	Rows    []Row
}

// New builds a dataset with a fresh identifier.
func New(name string, columns []Column, rows []Row) *Dataset {
	return &Dataset{ID: uuid.NewString(), Name: name, Columns: columns, Rows: rows}
}

// ValidationError reports a structural problem with a dataset.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dataset: %s: %s", e.Field, e.Reason)
}

// Validate checks the structural invariants: unique non-empty column names,
// known types, and row keys drawn from the declared columns.
func (d *Dataset) Validate() error {
	if d == nil {
		return &ValidationError{Field: "dataset", Reason: "nil"}
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for i, c := range d.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("columns[%d]", i), Reason: "empty name"}
		}
		if _, dup := seen[c.Name]; dup {
			return &ValidationError{Field: fmt.Sprintf("columns[%d]", i), Reason: fmt.Sprintf("duplicate name %q", c.Name)}
		}
		switch c.Type {
		case TypeNumeric, TypeText, TypeDate:
		default:
			return &ValidationError{Field: fmt.Sprintf("columns[%d]", i), Reason: fmt.Sprintf("unknown type %q", c.Type)}
		}
		seen[c.Name] = struct{}{}
	}
	for i, r := range d.Rows {
		for k := range r {
			if _, ok := seen[k]; !ok {
				return &ValidationError{Field: fmt.Sprintf("rows[%d]", i), Reason: fmt.Sprintf("undeclared column %q", k)}
			}
		}
	}
	return nil
}

// Clone deep-copies columns and rows. Values are immutable and shared.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{ID: d.ID, Name: d.Name}
	out.Columns = append([]Column(nil), d.Columns...)
	out.Rows = make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Clone copies a single row.
func (r Row) Clone() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Len is the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// CellCount is rows × declared columns.
func (d *Dataset) CellCount() int { return len(d.Rows) * len(d.Columns) }

// Column looks up a declared column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns names in declaration order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

func (d *Dataset) columnsOf(t Type) []string {
	var out []string
	for _, c := range d.Columns {
		if c.Type == t {
			out = append(out, c.Name)
		}
	}
	return out
}

// NumericColumns lists numeric-typed columns in declaration order.
func (d *Dataset) NumericColumns() []string { return d.columnsOf(TypeNumeric) }

// CategoricalColumns lists text-typed columns in declaration order.
func (d *Dataset) CategoricalColumns() []string { return d.columnsOf(TypeText) }

// DateColumns lists date-typed columns in declaration order.
func (d *Dataset) DateColumns() []string { return d.columnsOf(TypeDate) }

// Cell returns the value at (row, column); absent keys are missing.
func (d *Dataset) Cell(row int, column string) Value {
	if row < 0 || row >= len(d.Rows) {
		return Missing()
	}
	return d.Rows[row][column]
}

// WithoutColumns returns a copy with the named columns removed from both the
// schema and every row.
func (d *Dataset) WithoutColumns(names ...string) *Dataset {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := &Dataset{ID: d.ID, Name: d.Name}
	for _, c := range d.Columns {
		if _, ok := drop[c.Name]; !ok {
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			if _, ok := drop[k]; !ok {
				cp[k] = v
			}
		}
		out.Rows[i] = cp
	}
	return out
}

// RowKey joins the row's cell keys in declared column order so that rows
// compare by full-value equality regardless of map iteration order.
func RowKey(r Row, columns []Column) string {
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(r[c.Name].Key())
	}
	return b.String()
}
