package quality

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/stats"
)

// maxClasses bounds the class-based heuristics; targets with more distinct
// values are treated as continuous.
const maxClasses = 20

func targetImbalance(c *calcContext) Value {
	labels, classes := c.labels()
	if len(classes) < 2 {
		return Num(1)
	}
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	lo, hi := math.MaxInt, 0
	for _, n := range counts {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	return Num(float64(hi) / float64(lo))
}

func dataFreshness(c *calcContext) Value {
	var latest time.Time
	found := false
	for _, col := range c.dates {
		for _, r := range c.ds.Rows {
			if t, ok := r[col].Time(); ok && (!found || t.After(latest)) {
				latest, found = t, true
			}
		}
	}
	if !found {
		return Str("N/A")
	}
	return Num(math.Floor(c.now.Sub(latest).Hours() / 24))
}

// encodedTarget returns (row index, code) pairs in row order. Numeric targets
// keep their value; other targets are coded by order of first appearance.
func (c *calcContext) encodedTarget() [][2]float64 {
	if c.target == "" {
		return nil
	}
	col, _ := c.ds.Column(c.target)
	codes := map[string]float64{}
	var out [][2]float64
	for i, r := range c.ds.Rows {
		v := r[c.target]
		if v.IsMissing() {
			continue
		}
		if col.Type == dataset.TypeNumeric {
			if f, ok := v.FiniteFloat(); ok {
				out = append(out, [2]float64{float64(i), f})
			}
			continue
		}
		k := v.Key()
		code, ok := codes[k]
		if !ok {
			code = float64(len(codes))
			codes[k] = code
		}
		out = append(out, [2]float64{float64(i), code})
	}
	return out
}

func (c *calcContext) importance(feature string, ys [][2]float64) float64 {
	pairs := make([]stats.Pair, 0, len(ys))
	for _, y := range ys {
		if x, ok := c.ds.Rows[int(y[0])][feature].FiniteFloat(); ok {
			pairs = append(pairs, stats.Pair{X: x, Y: y[1]})
		}
	}
	return math.Abs(stats.Pearson(pairs))
}

func featureImportanceConsistency(c *calcContext) Value {
	features := c.features()
	ys := c.encodedTarget()
	if len(features) == 0 || len(ys) < 4 {
		return Num(1)
	}
	half := len(ys) / 2
	var diff float64
	for _, f := range features {
		diff += math.Abs(c.importance(f, ys[:half]) - c.importance(f, ys[half:]))
	}
	return Num(clamp01(1 - diff/float64(len(features))))
}

func classOverlap(c *calcContext) Value {
	labels, classes := c.labels()
	features := c.features()
	if len(classes) < 2 || len(classes) > maxClasses || len(features) == 0 {
		return Num(0)
	}
	var sum float64
	var n int
	for _, f := range features {
		byClass := map[string][]float64{}
		for i, r := range c.ds.Rows {
			l, labelled := labels[i]
			if !labelled {
				continue
			}
			if x, ok := r[f].FiniteFloat(); ok {
				byClass[l] = append(byClass[l], x)
			}
		}
		for i := 0; i < len(classes); i++ {
			a := byClass[classes[i]]
			if len(a) == 0 {
				continue
			}
			for j := i + 1; j < len(classes); j++ {
				b := byClass[classes[j]]
				if len(b) == 0 {
					continue
				}
				sum += intervalOverlap(a, b)
				n++
			}
		}
	}
	if n == 0 {
		return Num(0)
	}
	return Num(sum / float64(n))
}

// intervalOverlap compares mean ± σ intervals as overlap / union.
func intervalOverlap(a, b []float64) float64 {
	ma, sa := stats.Mean(a), stats.StdDev(a)
	mb, sb := stats.Mean(b), stats.StdDev(b)
	loA, hiA := ma-sa, ma+sa
	loB, hiB := mb-sb, mb+sb
	union := math.Max(hiA, hiB) - math.Min(loA, loB)
	if union == 0 {
		return 1
	}
	return math.Max(0, math.Min(hiA, hiB)-math.Max(loA, loB)) / union
}

func labelNoise(c *calcContext) Value {
	labels, classes := c.labels()
	features := c.features()
	if len(classes) < 2 || len(classes) > maxClasses || len(features) == 0 {
		return Num(0)
	}
	rows := make([]int, 0, len(labels))
	for i := range c.ds.Rows {
		if _, ok := labels[i]; ok {
			rows = append(rows, i)
		}
	}
	// z-scored feature vectors; missing features sit at the mean.
	vecs := make(map[int][]float64, len(rows))
	for _, i := range rows {
		vecs[i] = make([]float64, len(features))
	}
	for k, f := range features {
		var vals []float64
		for _, i := range rows {
			if x, ok := c.ds.Rows[i][f].FiniteFloat(); ok {
				vals = append(vals, x)
			}
		}
		m, sd := stats.Mean(vals), stats.StdDev(vals)
		if sd == 0 {
			continue
		}
		for _, i := range rows {
			if x, ok := c.ds.Rows[i][f].FiniteFloat(); ok {
				vecs[i][k] = (x - m) / sd
			}
		}
	}
	centroids := map[string][]float64{}
	counts := map[string]int{}
	for _, i := range rows {
		l := labels[i]
		if centroids[l] == nil {
			centroids[l] = make([]float64, len(features))
		}
		for k, z := range vecs[i] {
			centroids[l][k] += z
		}
		counts[l]++
	}
	for l, cen := range centroids {
		for k := range cen {
			cen[k] /= float64(counts[l])
		}
	}
	noisy := 0
	for _, i := range rows {
		own := sqDist(vecs[i], centroids[labels[i]])
		for _, cl := range classes {
			if cl != labels[i] && sqDist(vecs[i], centroids[cl]) < own {
				noisy++
				break
			}
		}
	}
	return Num(float64(noisy) / float64(len(rows)))
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func anomalyCount(c *calcContext) Value {
	n := 0
	for _, col := range c.numeric {
		vals := c.values[col]
		s := c.summaries[col]
		for i, z := range stats.ZScores(vals) {
			if s.IsOutlier(vals[i]) {
				n++
			}
			if math.Abs(z) > 3 {
				n++
			}
		}
	}
	return Num(float64(n))
}

func encodingCoverage(c *calcContext) Value {
	var covered, total int
	for _, col := range c.text {
		counts := map[string]int{}
		for _, r := range c.ds.Rows {
			if v := r[col]; !v.IsMissing() {
				counts[v.Key()]++
			}
		}
		for _, n := range counts {
			total += n
			if n >= 2 {
				covered += n
			}
		}
	}
	if total == 0 {
		return Num(1)
	}
	return Num(float64(covered) / float64(total))
}

type domainRule struct {
	tokens []string
	lo, hi float64
}

var domainRules = []domainRule{
	{[]string{"percent", "percentage", "pct"}, 0, 100},
	{[]string{"ratio", "proportion", "fraction", "probability", "prob"}, 0, 1},
	{[]string{"age"}, 0, 150},
	{[]string{"count", "qty", "quantity", "price", "amount", "cost", "salary", "income", "weight", "height", "distance", "duration", "population", "total", "size", "length"}, 0, math.Inf(1)},
}

// ruleFor matches whole name tokens, so "heart_rate" or "stage" stay unruled.
func ruleFor(name string) (domainRule, bool) {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range domainRules {
		for _, w := range words {
			for _, t := range rule.tokens {
				if w == t {
					return rule, true
				}
			}
		}
	}
	return domainRule{}, false
}

func domainConstraints(c *calcContext) Value {
	var bad, total int
	for _, col := range c.numeric {
		vals := c.values[col]
		total += len(vals)
		rule, ok := ruleFor(col)
		if !ok {
			continue
		}
		for _, x := range vals {
			if x < rule.lo || x > rule.hi {
				bad++
			}
		}
	}
	if total == 0 {
		return Num(0)
	}
	return Num(float64(bad) / float64(total))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
