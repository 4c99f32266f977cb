package quality

import (
	"math"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/textnorm"
)

func rowCount(c *calcContext) Value    { return Num(float64(c.ds.Len())) }
func columnCount(c *calcContext) Value { return Num(float64(len(c.ds.Columns))) }

// cellCounts returns the number of missing cells and of NaN/±Inf numbers.
func cellCounts(ds *dataset.Dataset) (missing, invalid int) {
	for _, r := range ds.Rows {
		for _, col := range ds.Columns {
			v := r[col.Name]
			if v.IsMissing() {
				missing++
				continue
			}
			if f, ok := v.Float(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				invalid++
			}
		}
	}
	return missing, invalid
}

func missingValuesPct(c *calcContext) Value {
	cells := c.ds.CellCount()
	if cells == 0 {
		return Num(0)
	}
	missing, _ := cellCounts(c.ds)
	return Num(float64(missing) / float64(cells) * 100)
}

func density(c *calcContext) Value {
	cells := c.ds.CellCount()
	if cells == 0 {
		return Num(1)
	}
	missing, _ := cellCounts(c.ds)
	return Num(1 - float64(missing)/float64(cells))
}

func nullVsNaN(c *calcContext) Value {
	missing, invalid := cellCounts(c.ds)
	if missing+invalid == 0 {
		return Num(0)
	}
	return Num(float64(missing) / float64(missing+invalid))
}

func duplicateRecords(c *calcContext) Value {
	seen := make(map[string]struct{}, c.ds.Len())
	for _, r := range c.ds.Rows {
		seen[dataset.RowKey(r, c.ds.Columns)] = struct{}{}
	}
	return Num(float64(c.ds.Len() - len(seen)))
}

func outlierRate(c *calcContext) Value {
	var flagged, total int
	for _, col := range c.numeric {
		s := c.summaries[col]
		for _, x := range c.values[col] {
			if s.IsOutlier(x) {
				flagged++
			}
		}
		total += len(c.values[col])
	}
	if total == 0 {
		return Num(0)
	}
	return Num(float64(flagged) / float64(total))
}

func inconsistencyRate(c *calcContext) Value {
	var bad, total int
	for _, col := range c.text {
		sp := textnorm.NewSpellings()
		var raws []string
		for _, r := range c.ds.Rows {
			v := r[col]
			if v.IsMissing() || v.Kind() != dataset.KindText {
				continue
			}
			raw, _ := v.Raw()
			sp.Add(raw)
			raws = append(raws, raw)
		}
		for _, raw := range raws {
			if sp.Inconsistent(raw) {
				bad++
			}
		}
		total += len(raws)
	}
	for _, col := range c.dates {
		for _, r := range c.ds.Rows {
			v := r[col]
			t, ok := v.Time()
			if !ok {
				continue
			}
			total++
			if raw, _ := v.Raw(); raw != t.Format(dataset.ISODate) {
				bad++
			}
		}
	}
	if total == 0 {
		return Num(0)
	}
	return Num(float64(bad) / float64(total))
}

// conforms reports whether a non-missing value matches its declared column
// type. Every variant is acceptable in a text column.
func conforms(v dataset.Value, typ dataset.Type) bool {
	switch typ {
	case dataset.TypeNumeric:
		return v.Kind() == dataset.KindNumber
	case dataset.TypeDate:
		return v.Kind() == dataset.KindDate
	default:
		return true
	}
}

func typeMismatchRate(c *calcContext) Value {
	var bad, total int
	for _, r := range c.ds.Rows {
		for _, col := range c.ds.Columns {
			v := r[col.Name]
			if v.IsMissing() {
				continue
			}
			total++
			if !conforms(v, col.Type) {
				bad++
			}
		}
	}
	if total == 0 {
		return Num(0)
	}
	return Num(float64(bad) / float64(total))
}
