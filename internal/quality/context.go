package quality

import (
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/stats"
)

// calcContext is built once per dataset and only read by calculators, which
// may run concurrently.
type calcContext struct {
	ds        *dataset.Dataset
	target    string
	now       time.Time
	varThresh float64

	numeric   []string
	text      []string
	dates     []string
	values    map[string][]float64
	summaries map[string]stats.Summary
}

func newCalcContext(ds *dataset.Dataset, target string, now time.Time, varThresh float64) *calcContext {
	c := &calcContext{
		ds:        ds,
		target:    target,
		now:       now,
		varThresh: varThresh,
		numeric:   ds.NumericColumns(),
		text:      ds.CategoricalColumns(),
		dates:     ds.DateColumns(),
		values:    map[string][]float64{},
		summaries: map[string]stats.Summary{},
	}
	for _, col := range c.numeric {
		vals := stats.ExtractNumeric(ds.Rows, col)
		c.values[col] = vals
		c.summaries[col] = stats.Quantiles(vals)
	}
	return c
}

// features lists numeric columns other than the target.
func (c *calcContext) features() []string {
	out := make([]string, 0, len(c.numeric))
	for _, col := range c.numeric {
		if col != c.target {
			out = append(out, col)
		}
	}
	return out
}

// labels returns the class key of every row with a non-missing target, keyed
// by row index, and the class keys in sorted order. Keys are kind-tagged, so
// Number(1) and Text("1") are different classes.
func (c *calcContext) labels() (map[int]string, []string) {
	if c.target == "" {
		return nil, nil
	}
	out := map[int]string{}
	seen := map[string]bool{}
	var classes []string
	for i, r := range c.ds.Rows {
		v := r[c.target]
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		out[i] = k
		if !seen[k] {
			seen[k] = true
			classes = append(classes, k)
		}
	}
	sort.Strings(classes)
	return out, classes
}

// ResolveTarget picks the target column. An explicit name wins when declared.
// With fallback enabled, the first column whose name contains "target" is used,
// else the last declared column. An empty result means no target.
func ResolveTarget(ds *dataset.Dataset, explicit string, fallback bool) string {
	if ds == nil {
		return ""
	}
	if explicit != "" {
		if _, ok := ds.Column(explicit); ok {
			return explicit
		}
		return ""
	}
	if !fallback || len(ds.Columns) == 0 {
		return ""
	}
	for _, col := range ds.Columns {
		if strings.Contains(strings.ToLower(col.Name), "target") {
			return col.Name
		}
	}
	return ds.Columns[len(ds.Columns)-1].Name
}
