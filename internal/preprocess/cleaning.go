package preprocess

import (
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/stats"
	"github.com/KaramelBytes/dataviz-cli/internal/textnorm"
)

// unknownCategory fills non-numeric columns that have no values at all.
const unknownCategory = "Unknown"

// otherCategory replaces categories beyond the cardinality cap.
const otherCategory = "Other"

func fillMissing(ds *dataset.Dataset, _ Params) *dataset.Dataset {
	for _, col := range ds.Columns {
		var fill dataset.Value
		if col.Type == dataset.TypeNumeric {
			// Mean is 0 for an empty column.
			fill = dataset.Number(stats.Mean(stats.ExtractNumeric(ds.Rows, col.Name)))
		} else {
			fill = modeOf(ds.Rows, col.Name)
		}
		for _, r := range ds.Rows {
			if r[col.Name].IsMissing() {
				r[col.Name] = fill
			}
		}
	}
	return ds
}

// modeOf is the most frequent non-missing value, ties going to the smallest
// key, or "Unknown" when the column is empty.
func modeOf(rows []dataset.Row, column string) dataset.Value {
	counts := map[string]int{}
	byKey := map[string]dataset.Value{}
	for _, r := range rows {
		v := r[column]
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		counts[k]++
		byKey[k] = v
	}
	k, ok := stats.Mode(counts)
	if !ok {
		return dataset.Text(unknownCategory)
	}
	return byKey[k]
}

func dropDuplicates(ds *dataset.Dataset, _ Params) *dataset.Dataset {
	seen := make(map[string]struct{}, ds.Len())
	kept := ds.Rows[:0]
	for _, r := range ds.Rows {
		k := dataset.RowKey(r, ds.Columns)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	ds.Rows = kept
	return ds
}

func clearInvalid(ds *dataset.Dataset, _ Params) *dataset.Dataset {
	for _, r := range ds.Rows {
		for k, v := range r {
			if f, ok := v.Float(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				r[k] = dataset.Missing()
			}
		}
	}
	return ds
}

// coerce converts v to typ. Unparseable numbers become 0 and unparseable
// dates become missing.
func coerce(v dataset.Value, typ dataset.Type) dataset.Value {
	if v.IsMissing() {
		return v
	}
	switch typ {
	case dataset.TypeNumeric:
		if v.Kind() == dataset.KindNumber {
			return v
		}
		if f, ok := dataset.ParseNumber(v.String()); ok {
			return dataset.Number(f)
		}
		return dataset.Number(cast.ToFloat64(v.String()))
	case dataset.TypeDate:
		if v.Kind() == dataset.KindDate {
			return v
		}
		if t, ok := dataset.ParseDate(v.String()); ok {
			return dataset.Date(v.String(), t)
		}
		return dataset.Missing()
	default:
		if v.Kind() == dataset.KindText {
			return v
		}
		return dataset.Text(v.String())
	}
}

func coerceTypes(ds *dataset.Dataset, _ Params) *dataset.Dataset {
	for _, col := range ds.Columns {
		for _, r := range ds.Rows {
			if v, ok := r[col.Name]; ok {
				r[col.Name] = coerce(v, col.Type)
			}
		}
	}
	return ds
}

func normalizeText(ds *dataset.Dataset, _ Params) *dataset.Dataset {
	for _, col := range ds.CategoricalColumns() {
		sp := textnorm.NewSpellings()
		for _, r := range ds.Rows {
			if raw, ok := textCell(r[col]); ok {
				sp.Add(raw)
			}
		}
		for _, r := range ds.Rows {
			if raw, ok := textCell(r[col]); ok && sp.Inconsistent(raw) {
				r[col] = dataset.Text(sp.Canonical(raw))
			}
		}
	}
	for _, col := range ds.DateColumns() {
		for _, r := range ds.Rows {
			v := r[col]
			if v.IsMissing() {
				continue
			}
			t, ok := v.Time()
			if !ok {
				t, ok = dataset.ParseDate(v.String())
			}
			if ok {
				r[col] = dataset.Date(t.Format(dataset.ISODate), t)
			}
		}
	}
	return ds
}

func textCell(v dataset.Value) (string, bool) {
	if v.IsMissing() || v.Kind() != dataset.KindText {
		return "", false
	}
	return v.Raw()
}

func capCardinality(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	for _, col := range ds.CategoricalColumns() {
		if col == target {
			continue
		}
		counts := map[string]int{}
		for _, r := range ds.Rows {
			if v := r[col]; !v.IsMissing() {
				counts[v.Key()]++
			}
		}
		if len(counts) <= p.MaxCardinality {
			continue
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if counts[keys[i]] == counts[keys[j]] {
				return keys[i] < keys[j]
			}
			return counts[keys[i]] > counts[keys[j]]
		})
		keep := make(map[string]struct{}, p.MaxCardinality-1)
		for _, k := range keys[:p.MaxCardinality-1] {
			keep[k] = struct{}{}
		}
		for _, r := range ds.Rows {
			v := r[col]
			if v.IsMissing() {
				continue
			}
			if _, ok := keep[v.Key()]; !ok {
				r[col] = dataset.Text(otherCategory)
			}
		}
	}
	return ds
}
