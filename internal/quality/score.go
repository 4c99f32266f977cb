package quality

import "math"

type scoreWeight struct {
	metric string
	weight float64
	// badness maps the metric value onto [0,1]; r gives access to the rest
	// of the selection for normalisers that need context.
	badness func(v float64, r Report) float64
}

func rate(v float64, _ Report) float64 { return v }

var scoreWeights = []scoreWeight{
	{MissingValuesPct, 0.20, func(v float64, _ Report) float64 { return v / 100 }},
	{DuplicateRecordsCount, 0.15, func(v float64, r Report) float64 {
		if rows, ok := r.Float(RowCount); ok && rows > 0 {
			return v / rows
		}
		return v / 100
	}},
	{OutlierRate, 0.10, rate},
	{InconsistencyRate, 0.10, rate},
	{DataTypeMismatchRate, 0.10, rate},
	{FeatureCorrelationMean, 0.05, rate},
	{RangeViolationRate, 0.10, rate},
	{MeanMedianDrift, 0.10, rate},
	{CardinalityCategorical, 0.10, func(v float64, _ Report) float64 { return v / 100 }},
}

// CalculateDataQualityScore folds the selected metrics into a 0-100 score.
// Absent, textual or non-finite inputs carry no penalty.
func CalculateDataQualityScore(selected Report) float64 {
	score := 0.0
	for _, w := range scoreWeights {
		bad := 0.0
		if v, ok := selected.Float(w.metric); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			bad = clamp01(w.badness(v, selected))
			if math.IsNaN(bad) {
				bad = 0
			}
		}
		score += w.weight * (1 - bad)
	}
	return math.Max(0, math.Min(100, score*100))
}
