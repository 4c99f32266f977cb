package quality

import (
	"math"
	"testing"
)

func TestScoreWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range scoreWeights {
		sum += w.weight
	}
	if !almost(sum, 1) {
		t.Fatalf("weights sum to %v", sum)
	}
}

func TestCalculateDataQualityScore(t *testing.T) {
	cases := []struct {
		name string
		in   Report
		want float64
	}{
		{"empty", Report{}, 100},
		{"half missing", Report{MissingValuesPct: Num(50)}, 90},
		{"duplicates by rows", Report{DuplicateRecordsCount: Num(5), RowCount: Num(10)}, 92.5},
		{"duplicates without rows", Report{DuplicateRecordsCount: Num(50)}, 92.5},
		{"drift capped", Report{MeanMedianDrift: Num(7)}, 90},
		{"cardinality capped", Report{CardinalityCategorical: Num(1000)}, 90},
		{"text ignored", Report{MissingValuesPct: Str("N/A")}, 100},
		{"nan ignored", Report{OutlierRate: Num(math.NaN()), InconsistencyRate: Num(math.Inf(1))}, 100},
		{"all bad", Report{
			MissingValuesPct:       Num(100),
			DuplicateRecordsCount:  Num(1000),
			OutlierRate:            Num(1),
			InconsistencyRate:      Num(1),
			DataTypeMismatchRate:   Num(1),
			FeatureCorrelationMean: Num(1),
			RangeViolationRate:     Num(1),
			MeanMedianDrift:        Num(3),
			CardinalityCategorical: Num(500),
		}, 0},
	}
	for _, tc := range cases {
		if got := CalculateDataQualityScore(tc.in); !almost(got, tc.want) {
			t.Fatalf("%s: score = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIssues(t *testing.T) {
	r := Report{
		MissingValuesPct:       Num(12),
		DuplicateRecordsCount:  Num(0),
		VarianceThresholdCheck: Num(0.5),
		TargetImbalance:        Num(4),
		DataFreshness:          Str("N/A"),
	}
	got := Issues(r)
	want := []string{"missing-values", "low-variance", "target-imbalance"}
	if len(got) != len(want) {
		t.Fatalf("issues = %v", got)
	}
	for i, op := range want {
		if got[i].Operation != op {
			t.Fatalf("issue %d = %v, want %s", i, got[i], op)
		}
	}
}

func TestValueJSON(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		want string
	}{
		{Num(1.5), "1.5"},
		{Str("N/A"), `"N/A"`},
		{Num(math.NaN()), `"NaN"`},
	} {
		b, err := tc.v.MarshalJSON()
		if err != nil || string(b) != tc.want {
			t.Fatalf("MarshalJSON(%v) = %s, %v", tc.v, b, err)
		}
	}
	var v Value
	if err := v.UnmarshalJSON([]byte(`"N/A"`)); err != nil || !v.IsText() {
		t.Fatalf("UnmarshalJSON string: %v %v", v, err)
	}
}
