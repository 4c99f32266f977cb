// Package preprocess holds the dataset transforms that remediate individual
// quality issues. Every operation returns a new dataset and leaves its input
// untouched.
package preprocess

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
)

var (
	// ErrUnknownOperation is returned for keys outside the registry.
	ErrUnknownOperation = errors.New("unknown preprocessing operation")
	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy  = errors.New("unknown oversampling strategy")
)

// Operation keys.
const (
	MissingValues      = "missing-values"
	DuplicateRecords   = "duplicate-records"
	InvalidData        = "invalid-data"
	DataTypeMismatch   = "data-type-mismatch"
	Inconsistencies    = "inconsistencies"
	Outliers           = "outliers"
	Cardinality        = "cardinality"
	LowVariance        = "low-variance"
	FeatureCorrelation = "feature-correlation"
	MeanMedianDrift    = "mean-median-drift"
	RangeViolations    = "range-violations"
	TargetImbalance    = "target-imbalance"
)

// Oversampling strategies for target-imbalance.
const (
	StrategyRandom = "random"
	StrategyCyclic = "cyclic"
)

// Params tunes the operations. Zero fields take DefaultParams values.
type Params struct {
	// Target is protected from column drops and drives target-imbalance.
	// When empty, the first column whose name contains "target" is used.
	Target               string
	Seed                 uint64
	Strategy             string
	CorrelationThreshold float64
	VarianceThreshold    float64
	DriftThreshold       float64
	MaxCardinality       int
}

// DefaultParams returns the thresholds used by the CLI.
func DefaultParams() Params {
	return Params{
		Seed:                 42,
		Strategy:             StrategyRandom,
		CorrelationThreshold: 0.9,
		VarianceThreshold:    0.01,
		DriftThreshold:       0.2,
		MaxCardinality:       100,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Strategy == "" {
		p.Strategy = d.Strategy
	}
	if p.CorrelationThreshold <= 0 {
		p.CorrelationThreshold = d.CorrelationThreshold
	}
	if p.VarianceThreshold <= 0 {
		p.VarianceThreshold = d.VarianceThreshold
	}
	if p.DriftThreshold <= 0 {
		p.DriftThreshold = d.DriftThreshold
	}
	if p.MaxCardinality < 2 {
		p.MaxCardinality = d.MaxCardinality
	}
	return p
}

// target resolves the protected column: explicit when declared, else the
// first column named like "target".
func (p Params) target(ds *dataset.Dataset) string {
	if p.Target != "" {
		if _, ok := ds.Column(p.Target); ok {
			return p.Target
		}
		return ""
	}
	for _, c := range ds.Columns {
		if strings.Contains(strings.ToLower(c.Name), "target") {
			return c.Name
		}
	}
	return ""
}

// Operation is one registry entry.
type Operation struct {
	Key         string `json:"key" yaml:"key"`
	Metric      string `json:"metric" yaml:"metric"`
	Description string `json:"description" yaml:"description"`

	apply func(ds *dataset.Dataset, p Params) *dataset.Dataset
}

// registry lists operations in pipeline order.
var registry = []Operation{
	{MissingValues, quality.MissingValuesPct, "Fill numeric gaps with the column mean, others with the mode", fillMissing},
	{DuplicateRecords, quality.DuplicateRecordsCount, "Remove exact duplicate rows, keeping the first", dropDuplicates},
	{InvalidData, quality.NullVsNaNDistribution, "Turn NaN and infinite numbers into missing values", clearInvalid},
	{DataTypeMismatch, quality.DataTypeMismatchRate, "Coerce values to their declared column type", coerceTypes},
	{Inconsistencies, quality.InconsistencyRate, "Normalise whitespace, case variants and date formats", normalizeText},
	{Outliers, quality.OutlierRate, "Replace IQR and 3-sigma outliers with the column mean", replaceOutliers},
	{Cardinality, quality.CardinalityCategorical, "Group rare categories into \"Other\"", capCardinality},
	{LowVariance, quality.VarianceThresholdCheck, "Drop numeric columns with variance at or below the threshold", dropLowVariance},
	{FeatureCorrelation, quality.FeatureCorrelationMean, "Drop one column of each highly correlated pair and constant columns", dropCorrelated},
	{MeanMedianDrift, quality.MeanMedianDrift, "Clip skewed columns to mean ± 3·|mean - median|", clipDrift},
	{RangeViolations, quality.RangeViolationRate, "Clip values to the padded range of the 3-sigma core", clipRange},
	{TargetImbalance, quality.TargetImbalance, "Oversample minority target classes to the majority count", oversample},
}

// Operations returns the registry in pipeline order.
func Operations() []Operation {
	out := make([]Operation, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds an operation by key.
func Lookup(key string) (Operation, bool) {
	for _, op := range registry {
		if op.Key == key {
			return op, true
		}
	}
	return Operation{}, false
}

// Keys lists the operation keys in pipeline order.
func Keys() []string {
	out := make([]string, len(registry))
	for i, op := range registry {
		out[i] = op.Key
	}
	return out
}

// ParseStrategy validates an oversampling strategy name. Empty means the
// default.
func ParseStrategy(s string) (string, error) {
	switch s {
	case "":
		return StrategyRandom, nil
	case StrategyRandom, StrategyCyclic:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q (use %s or %s)", ErrUnknownStrategy, s, StrategyRandom, StrategyCyclic)
}

// Apply runs one operation on a copy of ds. A nil ds is treated as empty; a
// malformed one is rejected with its *dataset.ValidationError.
func Apply(ds *dataset.Dataset, key string, p Params) (*dataset.Dataset, error) {
	op, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, key)
	}
	ds, err := prepare(ds)
	if err != nil {
		return nil, err
	}
	return op.run(ds, p.withDefaults()), nil
}

func prepare(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds == nil {
		return &dataset.Dataset{}, nil
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (op Operation) run(ds *dataset.Dataset, p Params) *dataset.Dataset {
	out := op.apply(ds.Clone(), p)
	slog.Debug("preprocess operation applied",
		"operation", op.Key,
		"rows_before", ds.Len(), "rows_after", out.Len(),
		"columns_before", len(ds.Columns), "columns_after", len(out.Columns))
	return out
}

// Step records one pipeline stage.
type Step struct {
	Operation     string `json:"operation" yaml:"operation"`
	RowsBefore    int    `json:"rowsBefore" yaml:"rowsBefore"`
	RowsAfter     int    `json:"rowsAfter" yaml:"rowsAfter"`
	ColumnsBefore int    `json:"columnsBefore" yaml:"columnsBefore"`
	ColumnsAfter  int    `json:"columnsAfter" yaml:"columnsAfter"`

	// CellsChanged counts rewritten cells in rows that kept their position.
	// It is 0 when rows were removed; RowsBefore/RowsAfter report those.
	CellsChanged   int      `json:"cellsChanged" yaml:"cellsChanged"`
	DroppedColumns []string `json:"droppedColumns,omitempty" yaml:"droppedColumns,omitempty"`
}

// NewStep compares a dataset before and after operation key.
func NewStep(key string, before, after *dataset.Dataset) Step {
	s := Step{
		Operation:     key,
		RowsBefore:    before.Len(),
		RowsAfter:     after.Len(),
		ColumnsBefore: len(before.Columns),
		ColumnsAfter:  len(after.Columns),
	}
	for _, c := range before.Columns {
		if _, ok := after.Column(c.Name); !ok {
			s.DroppedColumns = append(s.DroppedColumns, c.Name)
		}
	}
	if after.Len() < before.Len() {
		return s
	}
	for i, r := range before.Rows {
		for _, c := range after.Columns {
			if !r[c.Name].Equal(after.Rows[i][c.Name]) {
				s.CellsChanged++
			}
		}
	}
	return s
}

func (s Step) String() string {
	out := fmt.Sprintf("%s: rows %d -> %d, columns %d -> %d, cells changed %d",
		s.Operation, s.RowsBefore, s.RowsAfter, s.ColumnsBefore, s.ColumnsAfter, s.CellsChanged)
	if len(s.DroppedColumns) > 0 {
		out += fmt.Sprintf(", dropped %s", strings.Join(s.DroppedColumns, ", "))
	}
	return out
}

// ApplyAll runs every operation in registry order and logs each stage.
func ApplyAll(ds *dataset.Dataset, p Params) (*dataset.Dataset, []Step, error) {
	p = p.withDefaults()
	cur, err := prepare(ds)
	if err != nil {
		return nil, nil, err
	}
	steps := make([]Step, 0, len(registry))
	for _, op := range registry {
		next := op.run(cur, p)
		steps = append(steps, NewStep(op.Key, cur, next))
		cur = next
	}
	return cur, steps, nil
}
