package quality

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func numCol(name string, vals ...any) (dataset.Column, []dataset.Value) {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			out[i] = dataset.Missing()
		case int:
			out[i] = dataset.Number(float64(x))
		case float64:
			out[i] = dataset.Number(x)
		case string:
			out[i] = dataset.Text(x)
		}
	}
	return dataset.Column{Name: name, Type: dataset.TypeNumeric}, out
}

func textCol(name string, vals ...string) (dataset.Column, []dataset.Value) {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = dataset.Text(v)
	}
	return dataset.Column{Name: name, Type: dataset.TypeText}, out
}

// build zips columns into rows; all value slices must have equal length.
func build(cols ...func() (dataset.Column, []dataset.Value)) *dataset.Dataset {
	var decl []dataset.Column
	var rows []dataset.Row
	for _, f := range cols {
		c, vals := f()
		decl = append(decl, c)
		for i, v := range vals {
			if i >= len(rows) {
				rows = append(rows, dataset.Row{})
			}
			rows[i][c.Name] = v
		}
	}
	return dataset.New("test", decl, rows)
}

func col(c dataset.Column, v []dataset.Value) func() (dataset.Column, []dataset.Value) {
	return func() (dataset.Column, []dataset.Value) { return c, v }
}

func metric(t *testing.T, r Report, name string) float64 {
	t.Helper()
	f, ok := r.Float(name)
	if !ok {
		t.Fatalf("%s is not numeric: %v", name, r[name])
	}
	return f
}

func noTarget() *Engine {
	return NewEngine(Options{Now: fixedNow})
}

func fixedNow() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestMissingValuesPct(t *testing.T) {
	ds := build(col(numCol("x", 1, 2, nil)))
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, MissingValuesPct); !almost(got, 100.0/3) {
		t.Fatalf("Missing_Values_Pct = %v", got)
	}
	if got := metric(t, r, DataDensityCompleteness); !almost(got, 2.0/3) {
		t.Fatalf("density = %v", got)
	}
	if got := metric(t, r, NullVsNaNDistribution); got != 1 {
		t.Fatalf("Null_vs_NaN = %v", got)
	}
}

func TestDuplicateRecords(t *testing.T) {
	ds := build(col(numCol("x", 7, 7, 7, 7)), col(textCol("c", "a", "a", "a", "a")))
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, DuplicateRecordsCount); got != 3 {
		t.Fatalf("Duplicate_Records_Count = %v", got)
	}
}

func TestOutliersAndAnomalies(t *testing.T) {
	ds := build(col(numCol("x", 1, 2, 3, 4, 100)))
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, OutlierRate); !almost(got, 0.2) {
		t.Fatalf("Outlier_Rate = %v", got)
	}
	// 100 is past the IQR fence but |z| < 3 with five points.
	if got := metric(t, r, AnomalyCount); got != 1 {
		t.Fatalf("Anomaly_Count = %v", got)
	}
	if got := metric(t, r, RangeViolationRate); got != 0 {
		t.Fatalf("Range_Violation_Rate = %v", got)
	}
	if got := metric(t, r, MeanMedianDrift); got <= 0.2 {
		t.Fatalf("Mean_Median_Drift = %v", got)
	}
}

func TestTargetImbalance(t *testing.T) {
	ds := build(col(numCol("x", 1, 2, 3, 4, 5)), col(textCol("label", "A", "A", "A", "A", "B")))
	e := NewEngine(Options{Target: "label", Now: fixedNow})
	if got := metric(t, e.CalculateAllMetrics(ds), TargetImbalance); got != 4 {
		t.Fatalf("Target_Imbalance = %v", got)
	}
	single := build(col(textCol("label", "A", "A")))
	if got := metric(t, e.CalculateAllMetrics(single), TargetImbalance); got != 1 {
		t.Fatalf("single class imbalance = %v", got)
	}
	if got := metric(t, noTarget().CalculateAllMetrics(ds), TargetImbalance); got != 1 {
		t.Fatalf("no target imbalance = %v", got)
	}
}

func TestTargetClassesAreKindTagged(t *testing.T) {
	// a text "1" in a numeric label column is a separate class from 1
	ds := build(col(numCol("x", 1, 2, 3, 4)), col(numCol("label", 1, 1, 1, "1")))
	e := NewEngine(Options{Target: "label", Now: fixedNow})
	if got := metric(t, e.CalculateAllMetrics(ds), TargetImbalance); got != 3 {
		t.Fatalf("Target_Imbalance = %v", got)
	}
}

func TestEmptyDatasetDefaults(t *testing.T) {
	for _, ds := range []*dataset.Dataset{nil, dataset.New("empty", nil, nil)} {
		r := noTarget().CalculateAllMetrics(ds)
		if len(r) != len(catalogue) {
			t.Fatalf("report has %d metrics, want %d", len(r), len(catalogue))
		}
		want := map[string]float64{
			RowCount:                0,
			MissingValuesPct:        0,
			OutlierRate:             0,
			FeatureCorrelationMean:  0,
			VarianceThresholdCheck:  1,
			DataDensityCompleteness: 1,
			EncodingCoverageRate:    1,
			TargetImbalance:         1,
		}
		for name, w := range want {
			if got := metric(t, r, name); got != w {
				t.Fatalf("%s = %v, want %v", name, got, w)
			}
		}
		if got := r[DataFreshness]; !got.IsText() || got.String() != "N/A" {
			t.Fatalf("Data_Freshness = %v", got)
		}
		if s := metric(t, r, DataQualityScore); s != 100 {
			t.Fatalf("score = %v", s)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	ds := build(
		col(numCol("a", 1, 2, 3, 4, 100, nil, 6)),
		col(numCol("b", 2, 4, 6, 8, 9, 3, 1)),
		col(textCol("target", "x", "y", "x", "x", "y", "x", "x")),
	)
	seq := NewEngine(Options{TargetFallback: true, Now: fixedNow, Workers: 1}).CalculateAllMetrics(ds)
	par := NewEngine(Options{TargetFallback: true, Now: fixedNow, Workers: 8}).CalculateAllMetrics(ds)
	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel report differs:\n%v\n%v", seq, par)
	}
}

func TestDataFreshness(t *testing.T) {
	ds := dataset.New("d", []dataset.Column{{Name: "when", Type: dataset.TypeDate}}, []dataset.Row{
		{"when": dataset.Date("2024-02-20", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))},
		{"when": dataset.Date("2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	})
	if got := metric(t, noTarget().CalculateAllMetrics(ds), DataFreshness); got != 10 {
		t.Fatalf("Data_Freshness = %v", got)
	}
}

func TestInconsistencyAndMismatch(t *testing.T) {
	ds := build(
		col(textCol("answer", "Yes", "yes", "Yes", "No")),
		col(numCol("n", 1, "abc", 3, 4)),
	)
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, InconsistencyRate); !almost(got, 0.25) {
		t.Fatalf("Inconsistency_Rate = %v", got)
	}
	if got := metric(t, r, DataTypeMismatchRate); !almost(got, 1.0/8) {
		t.Fatalf("Data_Type_Mismatch_Rate = %v", got)
	}
	if got := metric(t, r, CardinalityCategorical); got != 3 {
		t.Fatalf("Cardinality_Categorical = %v", got)
	}
	if got := metric(t, r, EncodingCoverageRate); !almost(got, 0.5) {
		t.Fatalf("Encoding_Coverage_Rate = %v", got)
	}
}

func TestInconsistentDateFormat(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	ds := dataset.New("d", []dataset.Column{{Name: "when", Type: dataset.TypeDate}}, []dataset.Row{
		{"when": dataset.Date("2024-01-05", d)},
		{"when": dataset.Date("05/01/2024", d)},
	})
	if got := metric(t, noTarget().CalculateAllMetrics(ds), InconsistencyRate); got != 0.5 {
		t.Fatalf("Inconsistency_Rate = %v", got)
	}
}

func TestNaNCells(t *testing.T) {
	ds := build(col(numCol("x", math.NaN(), math.Inf(1), nil, 1)))
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, NullVsNaNDistribution); !almost(got, 1.0/3) {
		t.Fatalf("Null_vs_NaN = %v", got)
	}
	if got := metric(t, r, OutlierRate); got != 0 {
		t.Fatalf("Outlier_Rate over one finite value = %v", got)
	}
}

func TestClassHeuristics(t *testing.T) {
	ds := build(
		col(numCol("x", 1, 2, 3, 10, 11, 12, 1.5, 11.5)),
		col(textCol("target", "a", "a", "a", "b", "b", "b", "a", "b")),
	)
	r := NewEngine(Options{TargetFallback: true, Now: fixedNow}).CalculateAllMetrics(ds)
	if got := metric(t, r, LabelNoiseRate); got != 0 {
		t.Fatalf("Label_Noise_Rate = %v", got)
	}
	if got := metric(t, r, ClassOverlapScore); got != 0 {
		t.Fatalf("Class_Overlap_Score = %v", got)
	}
	if got := metric(t, r, FeatureImportanceConsistency); got < 0.9 || got > 1 {
		t.Fatalf("Feature_Importance_Consistency = %v", got)
	}

	flipped := ds.Clone()
	flipped.Rows[0]["target"] = dataset.Text("b")
	r = NewEngine(Options{TargetFallback: true, Now: fixedNow}).CalculateAllMetrics(flipped)
	if got := metric(t, r, LabelNoiseRate); got <= 0 {
		t.Fatalf("flipped label should be noisy, got %v", got)
	}
}

func TestDomainConstraints(t *testing.T) {
	ds := build(col(numCol("age", 30, -1, 200, 40)), col(numCol("heart_rate", 70, 80, 90, 75)))
	if got := metric(t, noTarget().CalculateAllMetrics(ds), DomainConstraintViolations); !almost(got, 2.0/8) {
		t.Fatalf("Domain_Constraint_Violations = %v", got)
	}
}

func TestVarianceThresholdAndCorrelation(t *testing.T) {
	ds := build(col(numCol("a", 1, 2, 3, 4)), col(numCol("b", 2, 4, 6, 8)), col(numCol("flat", 5, 5, 5, 5)))
	r := noTarget().CalculateAllMetrics(ds)
	if got := metric(t, r, VarianceThresholdCheck); !almost(got, 2.0/3) {
		t.Fatalf("Variance_Threshold_Check = %v", got)
	}
	if got := metric(t, r, FeatureCorrelationMean); !almost(got, 1.0/3) {
		t.Fatalf("Feature_Correlation_Mean = %v", got)
	}
}

func TestResolveTarget(t *testing.T) {
	ds := build(col(numCol("a", 1)), col(numCol("Target_Class", 1)), col(numCol("z", 1)))
	if got := ResolveTarget(ds, "", true); got != "Target_Class" {
		t.Fatalf("fallback = %q", got)
	}
	if got := ResolveTarget(ds, "z", false); got != "z" {
		t.Fatalf("explicit = %q", got)
	}
	if got := ResolveTarget(ds, "nope", true); got != "" {
		t.Fatalf("unknown explicit = %q", got)
	}
	if got := ResolveTarget(ds, "", false); got != "" {
		t.Fatalf("no fallback = %q", got)
	}
	plain := build(col(numCol("a", 1)), col(numCol("b", 1)))
	if got := ResolveTarget(plain, "", true); got != "b" {
		t.Fatalf("last column fallback = %q", got)
	}
}

func TestGetAllMetricsDecorates(t *testing.T) {
	ms := GetAllMetrics(build(col(numCol("x", 1, 2))))
	if len(ms) != len(catalogue) {
		t.Fatalf("got %d metrics", len(ms))
	}
	last := ms[len(ms)-1]
	if last.Name != DataQualityScore || last.Category != CategoryQuality || last.ScoreImpact != ImpactPositive || last.Description == "" {
		t.Fatalf("unexpected score entry: %+v", last)
	}
}

func TestAnalysisMarkdown(t *testing.T) {
	ds := build(col(numCol("x", 1, 2, 3, 4, 100)), col(textCol("target", "a", "a", "a", "a", "b")))
	a := NewEngine(Options{TargetFallback: true, Now: fixedNow}).Analyze(ds)
	md := a.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[QUALITY METRICS]", "[ISSUES]", "Target: target", "Outlier_Rate", "-> outliers"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if a.Report()[RowCount].String() != "5" {
		t.Fatalf("Report() lost Row_Count")
	}
}
