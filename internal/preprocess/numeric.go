package preprocess

import (
	"math"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/stats"
)

// mapFinite rewrites every finite number in column through f.
func mapFinite(ds *dataset.Dataset, column string, f func(float64) float64) {
	for _, r := range ds.Rows {
		if x, ok := r[column].FiniteFloat(); ok {
			if y := f(x); y != x {
				r[column] = dataset.Number(y)
			}
		}
	}
}

func clip(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }

func replaceOutliers(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	for _, col := range ds.NumericColumns() {
		if col == target {
			continue
		}
		vals := stats.ExtractNumeric(ds.Rows, col)
		lo, hi, ok := stats.SigmaBounds(vals, 3)
		if !ok || lo == hi {
			continue
		}
		s := stats.Quantiles(vals)
		mean := stats.Mean(vals)
		mapFinite(ds, col, func(x float64) float64 {
			if s.IsOutlier(x) || x < lo || x > hi {
				return mean
			}
			return x
		})
	}
	return ds
}

func clipDrift(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	for _, col := range ds.NumericColumns() {
		if col == target {
			continue
		}
		vals := stats.ExtractNumeric(ds.Rows, col)
		d, ok := stats.Drift(vals)
		if !ok || d <= p.DriftThreshold {
			continue
		}
		mean := stats.Mean(vals)
		gap := math.Abs(mean - stats.Median(vals))
		mapFinite(ds, col, func(x float64) float64 { return clip(x, mean-3*gap, mean+3*gap) })
	}
	return ds
}

func clipRange(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	for _, col := range ds.NumericColumns() {
		if col == target {
			continue
		}
		vals := stats.ExtractNumeric(ds.Rows, col)
		lo, hi, ok := stats.SigmaBounds(vals, 3)
		if !ok {
			continue
		}
		var core []float64
		for _, x := range vals {
			if x >= lo && x <= hi {
				core = append(core, x)
			}
		}
		if len(core) == 0 {
			continue
		}
		s := stats.Quantiles(core)
		pad := 0.1 * (s.Max - s.Min)
		mapFinite(ds, col, func(x float64) float64 { return clip(x, s.Min-pad, s.Max+pad) })
	}
	return ds
}

func dropLowVariance(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	var drop []string
	for _, col := range ds.NumericColumns() {
		if col == target {
			continue
		}
		if stats.Variance(stats.ExtractNumeric(ds.Rows, col)) <= p.VarianceThreshold {
			drop = append(drop, col)
		}
	}
	if len(drop) == 0 {
		return ds
	}
	return ds.WithoutColumns(drop...)
}

// constantVariance is the variance at or below which a column counts as
// constant for feature-correlation.
const constantVariance = 1e-12

func dropCorrelated(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	dropped := map[string]bool{}
	var cols []string
	for _, col := range ds.NumericColumns() {
		if col != target && stats.Variance(stats.ExtractNumeric(ds.Rows, col)) <= constantVariance {
			dropped[col] = true
			continue
		}
		cols = append(cols, col)
	}
	for i := 0; i < len(cols); i++ {
		if dropped[cols[i]] {
			continue
		}
		for j := i + 1; j < len(cols); j++ {
			if dropped[cols[j]] {
				continue
			}
			r := stats.Pearson(stats.PairedValues(ds.Rows, cols[i], cols[j]))
			if math.Abs(r) <= p.CorrelationThreshold {
				continue
			}
			if cols[j] == target {
				dropped[cols[i]] = true
				break
			}
			dropped[cols[j]] = true
		}
	}
	if len(dropped) == 0 {
		return ds
	}
	drop := make([]string, 0, len(dropped))
	for _, c := range ds.ColumnNames() {
		if dropped[c] {
			drop = append(drop, c)
		}
	}
	return ds.WithoutColumns(drop...)
}
