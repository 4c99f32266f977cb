// Package quality computes the data-quality metric catalogue over a dataset,
// folds it into a composite score and renders analysis reports.
package quality

import (
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// Options controls metric calculation.
type Options struct {
	// Target names the label column. Empty means none unless TargetFallback.
	Target string
	// TargetFallback picks a column named like "target", else the last one.
	TargetFallback bool
	// Now is the clock used by Data_Freshness. Nil means time.Now.
	Now func() time.Time
	// VarianceThreshold is the bar for Variance_Threshold_Check.
	VarianceThreshold float64
	// Workers > 1 evaluates calculators concurrently.
	Workers int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{
		TargetFallback:    true,
		VarianceThreshold: 0.01,
		Workers:           1,
	}
}

// QualityMetric is a report entry decorated with its catalogue metadata.
type QualityMetric struct {
	Name        string   `json:"name" yaml:"name"`
	Value       Value    `json:"value" yaml:"value"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	ScoreImpact Impact   `json:"scoreImpact" yaml:"scoreImpact"`
}

// Engine evaluates the catalogue with fixed options.
type Engine struct {
	opts Options
}

// NewEngine returns an engine; zero option fields take their defaults.
func NewEngine(opts Options) *Engine {
	if opts.VarianceThreshold <= 0 {
		opts.VarianceThreshold = 0.01
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}
}

// Target returns the target column the engine would use for ds.
func (e *Engine) Target(ds *dataset.Dataset) string {
	return ResolveTarget(ds, e.opts.Target, e.opts.TargetFallback)
}

// CalculateAllMetrics evaluates every metric, then the composite score.
func (e *Engine) CalculateAllMetrics(ds *dataset.Dataset) Report {
	if ds == nil {
		ds = &dataset.Dataset{}
	}
	ctx := newCalcContext(ds, e.Target(ds), e.opts.Now(), e.opts.VarianceThreshold)
	defs := catalogue[:len(catalogue)-1]

	var results []Value
	if e.opts.Workers > 1 {
		mapper := iter.Mapper[Definition, Value]{MaxGoroutines: e.opts.Workers}
		results = mapper.Map(defs, func(d *Definition) Value { return d.calc(ctx) })
	} else {
		results = make([]Value, len(defs))
		for i := range defs {
			results[i] = defs[i].calc(ctx)
		}
	}

	report := make(Report, len(catalogue))
	for i, d := range defs {
		report[d.Name] = results[i]
	}
	report[DataQualityScore] = Num(CalculateDataQualityScore(report))
	slog.Debug("metrics calculated",
		"dataset", ds.Name,
		"rows", ds.Len(),
		"columns", len(ds.Columns),
		"target", ctx.target,
		"score", report[DataQualityScore].String())
	return report
}

// GetAllMetrics returns the report in catalogue order with metadata attached.
func (e *Engine) GetAllMetrics(ds *dataset.Dataset) []QualityMetric {
	return Decorate(e.CalculateAllMetrics(ds))
}

// Decorate attaches catalogue metadata to a report, in catalogue order.
// Names not present in the report are skipped.
func Decorate(r Report) []QualityMetric {
	out := make([]QualityMetric, 0, len(r))
	for _, d := range catalogue {
		v, ok := r[d.Name]
		if !ok {
			continue
		}
		out = append(out, QualityMetric{
			Name:        d.Name,
			Value:       v,
			Description: d.Description,
			Category:    d.Category,
			ScoreImpact: d.Impact,
		})
	}
	return out
}

// CalculateAllMetrics runs a default engine.
func CalculateAllMetrics(ds *dataset.Dataset) Report {
	return NewEngine(DefaultOptions()).CalculateAllMetrics(ds)
}

// GetAllMetrics runs a default engine.
func GetAllMetrics(ds *dataset.Dataset) []QualityMetric {
	return NewEngine(DefaultOptions()).GetAllMetrics(ds)
}
