package quality

import "fmt"

// Issue is a metric outside its acceptable range, with the preprocessing
// operation that addresses it.
type Issue struct {
	Metric    string  `json:"metric" yaml:"metric"`
	Value     float64 `json:"value" yaml:"value"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Operation string  `json:"operation" yaml:"operation"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s = %.4g (threshold %.4g) -> %s", i.Metric, i.Value, i.Threshold, i.Operation)
}

type issueRule struct {
	metric    string
	threshold float64
	fails     func(v, threshold float64) bool
	operation string
}

func above(v, t float64) bool { return v > t }
func below(v, t float64) bool { return v < t }

// issueRules pair metrics with preprocessing keys; the keys match the
// preprocess registry.
var issueRules = []issueRule{
	{MissingValuesPct, 5, above, "missing-values"},
	{DuplicateRecordsCount, 0, above, "duplicate-records"},
	{NullVsNaNDistribution, 0, func(v, _ float64) bool { return v > 0 && v < 1 }, "invalid-data"},
	{DataTypeMismatchRate, 0, above, "data-type-mismatch"},
	{InconsistencyRate, 0.01, above, "inconsistencies"},
	{OutlierRate, 0.05, above, "outliers"},
	{CardinalityCategorical, 100, above, "cardinality"},
	{VarianceThresholdCheck, 1, below, "low-variance"},
	{FeatureCorrelationMean, 0.7, above, "feature-correlation"},
	{MeanMedianDrift, 0.2, above, "mean-median-drift"},
	{RangeViolationRate, 0.01, above, "range-violations"},
	{TargetImbalance, 1.5, above, "target-imbalance"},
}

// Issues lists failing metrics in preprocessing pipeline order.
func Issues(r Report) []Issue {
	var out []Issue
	for _, rule := range issueRules {
		v, ok := r.Float(rule.metric)
		if !ok || !rule.fails(v, rule.threshold) {
			continue
		}
		out = append(out, Issue{Metric: rule.metric, Value: v, Threshold: rule.threshold, Operation: rule.operation})
	}
	return out
}
