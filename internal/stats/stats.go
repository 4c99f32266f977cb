// Package stats provides the numeric primitives shared by the metric
// calculators and the preprocessing operations. Every function returns a
// defined value on degenerate input instead of NaN or an error.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// ExtractNumeric collects the finite numbers of one column, silently
// dropping missing, text, date and non-finite cells.
func ExtractNumeric(rows []dataset.Row, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := r[column].FiniteFloat(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Mean is the arithmetic mean; 0 on empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Variance is the unbiased sample variance; 0 with fewer than two values.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	v := stat.Variance(xs, nil)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// StdDev is the sample standard deviation.
func StdDev(xs []float64) float64 { return math.Sqrt(Variance(xs)) }

// Median of the values; 0 on empty input.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return quantile(sorted(xs), 0.5)
}

// ZScores standardises values by mean and sample deviation. A zero deviation
// yields all zeros.
func ZScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	sd := StdDev(xs)
	if sd == 0 {
		return out
	}
	m := Mean(xs)
	for i, x := range xs {
		out[i] = (x - m) / sd
	}
	return out
}

// Summary is the five-number summary plus IQR.
type Summary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	IQR    float64 `json:"iqr"`
}

// Quantiles computes the summary with linear interpolation between order
// statistics. Empty input yields all zeros.
func Quantiles(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := sorted(xs)
	q1 := quantile(s, 0.25)
	q3 := quantile(s, 0.75)
	return Summary{
		Min:    s[0],
		Q1:     q1,
		Median: quantile(s, 0.5),
		Q3:     q3,
		Max:    s[len(s)-1],
		IQR:    q3 - q1,
	}
}

// Fence returns the 1.5×IQR outlier bounds.
func (s Summary) Fence() (lo, hi float64) {
	return s.Q1 - 1.5*s.IQR, s.Q3 + 1.5*s.IQR
}

// IsOutlier reports whether x falls outside the fence.
func (s Summary) IsOutlier(x float64) bool {
	lo, hi := s.Fence()
	return x < lo || x > hi
}

// Pair is one paired observation.
type Pair struct{ X, Y float64 }

// PairedValues collects rows where both columns hold finite numbers.
func PairedValues(rows []dataset.Row, a, b string) []Pair {
	var out []Pair
	for _, r := range rows {
		x, okx := r[a].FiniteFloat()
		y, oky := r[b].FiniteFloat()
		if okx && oky {
			out = append(out, Pair{X: x, Y: y})
		}
	}
	return out
}

// Pearson returns the correlation coefficient clamped to [-1,1]. Fewer than
// two pairs or a zero variance on either side yields 0.
func Pearson(pairs []Pair) float64 {
	if len(pairs) < 2 {
		return 0
	}
	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i], ys[i] = p.X, p.Y
	}
	if Variance(xs) == 0 || Variance(ys) == 0 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Mode returns the most frequent string, ties broken by the smallest value.
// ok is false when counts is empty.
func Mode(counts map[string]int) (mode string, ok bool) {
	best := -1
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, best > 0
}

func sorted(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// SigmaBounds returns mean ± k·σ. ok is false with fewer than two values.
func SigmaBounds(xs []float64, k float64) (lo, hi float64, ok bool) {
	if len(xs) < 2 {
		return 0, 0, false
	}
	m, sd := Mean(xs), StdDev(xs)
	return m - k*sd, m + k*sd, true
}

// Drift is |mean − median| / σ. ok is false when n < 2 or σ is 0.
func Drift(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	sd := StdDev(xs)
	if sd == 0 || math.IsNaN(sd) {
		return 0, false
	}
	return math.Abs(Mean(xs)-Median(xs)) / sd, true
}
