package quality

import (
	"math"

	"github.com/KaramelBytes/dataviz-cli/internal/stats"
)

func cardinality(c *calcContext) Value {
	if len(c.text) == 0 {
		return Num(0)
	}
	sum := 0
	for _, col := range c.text {
		distinct := map[string]struct{}{}
		for _, r := range c.ds.Rows {
			if v := r[col]; !v.IsMissing() {
				distinct[v.Key()] = struct{}{}
			}
		}
		sum += len(distinct)
	}
	return Num(float64(sum) / float64(len(c.text)))
}

func featureCorrelationMean(c *calcContext) Value {
	if len(c.numeric) < 2 {
		return Num(0)
	}
	var sum float64
	var n int
	for i := 0; i < len(c.numeric); i++ {
		for j := i + 1; j < len(c.numeric); j++ {
			r := stats.Pearson(stats.PairedValues(c.ds.Rows, c.numeric[i], c.numeric[j]))
			sum += math.Abs(r)
			n++
		}
	}
	return Num(sum / float64(n))
}

func rangeViolationRate(c *calcContext) Value {
	var bad, total int
	for _, col := range c.numeric {
		vals := c.values[col]
		lo, hi, ok := stats.SigmaBounds(vals, 3)
		if !ok {
			continue
		}
		for _, x := range vals {
			if x < lo || x > hi {
				bad++
			}
		}
		total += len(vals)
	}
	if total == 0 {
		return Num(0)
	}
	return Num(float64(bad) / float64(total))
}

func meanMedianDrift(c *calcContext) Value {
	var sum float64
	var n int
	for _, col := range c.numeric {
		if d, ok := stats.Drift(c.values[col]); ok {
			sum += d
			n++
		}
	}
	if n == 0 {
		return Num(0)
	}
	return Num(sum / float64(n))
}

func varianceThreshold(c *calcContext) Value {
	if len(c.numeric) == 0 {
		return Num(1)
	}
	pass := 0
	for _, col := range c.numeric {
		if stats.Variance(c.values[col]) > c.varThresh {
			pass++
		}
	}
	return Num(float64(pass) / float64(len(c.numeric)))
}
