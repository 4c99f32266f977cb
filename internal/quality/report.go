package quality

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// Analysis bundles everything `dataviz analyze` prints for one dataset.
type Analysis struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Rows     int             `json:"rows" yaml:"rows"`
	Columns  int             `json:"columns" yaml:"columns"`
	Target   string          `json:"target,omitempty" yaml:"target,omitempty"`
	Score    float64         `json:"score" yaml:"score"`
	Metrics  []QualityMetric `json:"metrics" yaml:"metrics"`
	Profiles []ColumnProfile `json:"profiles" yaml:"profiles"`
	Issues   []Issue         `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Analyze computes metrics, profiles and issues for ds.
func (e *Engine) Analyze(ds *dataset.Dataset) *Analysis {
	if ds == nil {
		ds = &dataset.Dataset{}
	}
	report := e.CalculateAllMetrics(ds)
	score, _ := report.Float(DataQualityScore)
	return &Analysis{
		ID:       ds.ID,
		Name:     ds.Name,
		Rows:     ds.Len(),
		Columns:  len(ds.Columns),
		Target:   e.Target(ds),
		Score:    score,
		Metrics:  Decorate(report),
		Profiles: Profile(ds),
		Issues:   Issues(report),
	}
}

// Report rebuilds the flat name → value map.
func (a *Analysis) Report() Report {
	r := make(Report, len(a.Metrics))
	for _, m := range a.Metrics {
		r[m.Name] = m.Value
	}
	return r
}

var categoryOrder = []struct {
	cat   Category
	title string
}{
	{CategoryStructure, "Structure"},
	{CategoryQuality, "Quality"},
	{CategoryStatistical, "Statistical"},
	{CategoryAdvanced, "Advanced"},
}

// Markdown renders the analysis in the sectioned plain-text layout used by
// all CLI outputs.
func (a *Analysis) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if a.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", a.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", a.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", a.Columns))
	if a.Target != "" {
		b.WriteString(fmt.Sprintf("Target: %s\n", a.Target))
	}
	b.WriteString(fmt.Sprintf("Quality score: %.1f/100\n\n", a.Score))

	b.WriteString("[SCHEMA]\n")
	for _, p := range a.Profiles {
		total := p.NonNull + p.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(p.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", safeName(p.Name), p.Type, p.NonNull, missPct, p.Unique))
		switch p.Type {
		case dataset.TypeNumeric:
			if p.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", p.Min, p.Max, p.Mean, p.Median, p.Std))
			}
			if p.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d", p.Outliers))
			}
		case dataset.TypeDate:
			if p.Earliest != "" {
				b.WriteString(fmt.Sprintf(" %s .. %s", p.Earliest, p.Latest))
			}
		case dataset.TypeText:
			if len(p.TopValues) > 0 {
				b.WriteString(" top: ")
				for i, kv := range p.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[QUALITY METRICS]\n")
	for _, c := range categoryOrder {
		first := true
		for _, m := range a.Metrics {
			if m.Category != c.cat {
				continue
			}
			if first {
				b.WriteString(fmt.Sprintf("%s:\n", c.title))
				first = false
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", m.Name, formatMetric(m.Value)))
		}
	}

	if len(a.Issues) > 0 {
		b.WriteString("\n[ISSUES]\n")
		for _, is := range a.Issues {
			b.WriteString("- ")
			b.WriteString(is.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatMetric(v Value) string {
	if f, ok := v.Float(); ok {
		return fmt.Sprintf("%.4g", f)
	}
	return v.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
