package quality

import (
	"sort"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/stats"
)

// ColumnProfile summarises one column.
type ColumnProfile struct {
	Name    string       `json:"name" yaml:"name"`
	Type    dataset.Type `json:"type" yaml:"type"`
	NonNull int          `json:"nonNull" yaml:"nonNull"`
	Missing int          `json:"missing" yaml:"missing"`
	Unique  int          `json:"unique" yaml:"unique"`
	// Numeric stats
	Min      float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean     float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Median   float64 `json:"median,omitempty" yaml:"median,omitempty"`
	Std      float64 `json:"std,omitempty" yaml:"std,omitempty"`
	Outliers int     `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	// Date range, YYYY-MM-DD
	Earliest string `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty" yaml:"latest,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"topValues,omitempty" yaml:"topValues,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

const topValues = 5

// Profile summarises every declared column in order.
func Profile(ds *dataset.Dataset) []ColumnProfile {
	if ds == nil {
		return nil
	}
	out := make([]ColumnProfile, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		p := ColumnProfile{Name: col.Name, Type: col.Type}
		counts := map[string]int{}
		for _, r := range ds.Rows {
			v := r[col.Name]
			if v.IsMissing() {
				p.Missing++
				continue
			}
			p.NonNull++
			counts[v.String()]++
			if t, ok := v.Time(); ok {
				d := t.Format(dataset.ISODate)
				if p.Earliest == "" || d < p.Earliest {
					p.Earliest = d
				}
				if d > p.Latest {
					p.Latest = d
				}
			}
		}
		p.Unique = len(counts)
		switch col.Type {
		case dataset.TypeNumeric:
			vals := stats.ExtractNumeric(ds.Rows, col.Name)
			s := stats.Quantiles(vals)
			p.Min, p.Max, p.Median = s.Min, s.Max, s.Median
			p.Mean, p.Std = stats.Mean(vals), stats.StdDev(vals)
			for _, x := range vals {
				if s.IsOutlier(x) {
					p.Outliers++
				}
			}
		case dataset.TypeText:
			p.TopValues = topCounts(counts, topValues)
		}
		out = append(out, p)
	}
	return out
}

func topCounts(counts map[string]int, k int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
