package stats

import (
	"math"
	"testing"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestExtractNumericDropsInvalid(t *testing.T) {
	rows := []dataset.Row{
		{"x": dataset.Number(1)},
		{"x": dataset.Text("two")},
		{"x": dataset.Number(math.NaN())},
		{},
		{"x": dataset.Number(3)},
	}
	got := ExtractNumeric(rows, "x")
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("ExtractNumeric = %v", got)
	}
}

func TestQuantiles(t *testing.T) {
	s := Quantiles([]float64{100, 1, 3, 2, 4})
	if s.Min != 1 || s.Max != 100 || s.Median != 3 || s.Q1 != 2 || s.Q3 != 4 || s.IQR != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if !s.IsOutlier(100) || s.IsOutlier(4) {
		t.Fatalf("fence misclassified values: %+v", s)
	}
	if (Quantiles(nil) != Summary{}) {
		t.Fatalf("empty summary must be zero")
	}
}

func TestDegenerateMoments(t *testing.T) {
	if Mean(nil) != 0 || Variance([]float64{5}) != 0 || StdDev(nil) != 0 || Median(nil) != 0 {
		t.Fatalf("degenerate moments must be zero")
	}
	if !almost(Variance([]float64{1, 2, 3, 4}), 5.0/3.0) {
		t.Fatalf("sample variance = %v", Variance([]float64{1, 2, 3, 4}))
	}
	z := ZScores([]float64{7, 7, 7})
	for _, v := range z {
		if v != 0 {
			t.Fatalf("constant z-scores = %v", z)
		}
	}
}

func TestPearson(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 10}
	self := make([]Pair, len(xs))
	anti := make([]Pair, len(xs))
	for i, x := range xs {
		self[i] = Pair{x, x}
		anti[i] = Pair{x, -2 * x}
	}
	if r := Pearson(self); !almost(r, 1) {
		t.Fatalf("self correlation = %v", r)
	}
	if r := Pearson(anti); !almost(r, -1) {
		t.Fatalf("anti correlation = %v", r)
	}
	if r := Pearson([]Pair{{1, 5}, {1, 5}, {1, 5}}); r != 0 {
		t.Fatalf("constant columns = %v", r)
	}
	if r := Pearson([]Pair{{1, 2}}); r != 0 {
		t.Fatalf("single pair = %v", r)
	}
}

func TestPairedValuesSkipsIncompleteRows(t *testing.T) {
	rows := []dataset.Row{
		{"a": dataset.Number(1), "b": dataset.Number(2)},
		{"a": dataset.Number(3)},
		{"a": dataset.Text("x"), "b": dataset.Number(4)},
	}
	if got := PairedValues(rows, "a", "b"); len(got) != 1 {
		t.Fatalf("pairs = %v", got)
	}
}

func TestMode(t *testing.T) {
	m, ok := Mode(map[string]int{"b": 2, "a": 2, "c": 1})
	if !ok || m != "a" {
		t.Fatalf("mode = %q %v", m, ok)
	}
	if _, ok := Mode(nil); ok {
		t.Fatalf("empty mode must report !ok")
	}
}

func TestSigmaBoundsAndDrift(t *testing.T) {
	if _, _, ok := SigmaBounds([]float64{1}, 3); ok {
		t.Fatalf("single value should not yield bounds")
	}
	lo, hi, ok := SigmaBounds([]float64{1, 3}, 1)
	if !ok || !almost(lo, 2-math.Sqrt2) || !almost(hi, 2+math.Sqrt2) {
		t.Fatalf("bounds = %v %v %v", lo, hi, ok)
	}
	if _, ok := Drift([]float64{5, 5, 5}); ok {
		t.Fatalf("constant column has no drift")
	}
	d, ok := Drift([]float64{1, 2, 3, 4, 100})
	if !ok || d <= 0.2 {
		t.Fatalf("drift = %v %v", d, ok)
	}
}
