package quality

// Metric names as they appear in reports.
const (
	RowCount                     = "Row_Count"
	ColumnCount                  = "Column_Count"
	MissingValuesPct             = "Missing_Values_Pct"
	DuplicateRecordsCount        = "Duplicate_Records_Count"
	OutlierRate                  = "Outlier_Rate"
	InconsistencyRate            = "Inconsistency_Rate"
	DataTypeMismatchRate         = "Data_Type_Mismatch_Rate"
	NullVsNaNDistribution        = "Null_vs_NaN_Distribution"
	CardinalityCategorical       = "Cardinality_Categorical"
	TargetImbalance              = "Target_Imbalance"
	FeatureCorrelationMean       = "Feature_Correlation_Mean"
	RangeViolationRate           = "Range_Violation_Rate"
	MeanMedianDrift              = "Mean_Median_Drift"
	DataFreshness                = "Data_Freshness"
	FeatureImportanceConsistency = "Feature_Importance_Consistency"
	ClassOverlapScore            = "Class_Overlap_Score"
	AnomalyCount                 = "Anomaly_Count"
	EncodingCoverageRate         = "Encoding_Coverage_Rate"
	VarianceThresholdCheck       = "Variance_Threshold_Check"
	DataDensityCompleteness      = "Data_Density_Completeness"
	LabelNoiseRate               = "Label_Noise_Rate"
	DomainConstraintViolations   = "Domain_Constraint_Violations"
	DataQualityScore             = "Data_Quality_Score"
)

// Category groups metrics in reports.
type Category string

const (
	CategoryStructure   Category = "data_structure"
	CategoryQuality     Category = "data_quality"
	CategoryStatistical Category = "statistical"
	CategoryAdvanced    Category = "advanced"
)

// Impact says whether a larger value is better (positive) or worse (negative).
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
)

// Definition describes one catalogue entry.
type Definition struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	Impact      Impact   `json:"scoreImpact" yaml:"scoreImpact"`

	calc func(*calcContext) Value
}

// catalogue is evaluated in order; Data_Quality_Score has no calculator and is
// joined from the other results.
var catalogue = []Definition{
	{RowCount, "Total number of records in the dataset", CategoryStructure, ImpactPositive, rowCount},
	{ColumnCount, "Total number of features in the dataset", CategoryStructure, ImpactPositive, columnCount},
	{MissingValuesPct, "Percentage of missing values across all cells", CategoryQuality, ImpactNegative, missingValuesPct},
	{DuplicateRecordsCount, "Number of duplicate records", CategoryQuality, ImpactNegative, duplicateRecords},
	{OutlierRate, "Share of numeric values outside the IQR fences", CategoryQuality, ImpactNegative, outlierRate},
	{InconsistencyRate, "Share of text and date values with inconsistent formatting", CategoryQuality, ImpactNegative, inconsistencyRate},
	{DataTypeMismatchRate, "Share of values that do not match the declared column type", CategoryQuality, ImpactNegative, typeMismatchRate},
	{NullVsNaNDistribution, "Ratio of null cells to all null and NaN cells", CategoryQuality, ImpactNegative, nullVsNaN},
	{CardinalityCategorical, "Average number of distinct values in categorical columns", CategoryStatistical, ImpactNegative, cardinality},
	{TargetImbalance, "Ratio of majority to minority class in the target column", CategoryAdvanced, ImpactNegative, targetImbalance},
	{FeatureCorrelationMean, "Average absolute correlation between numeric features", CategoryStatistical, ImpactNegative, featureCorrelationMean},
	{RangeViolationRate, "Share of numeric values outside mean ± 3 standard deviations", CategoryStatistical, ImpactNegative, rangeViolationRate},
	{MeanMedianDrift, "Average |mean - median| / std across numeric columns", CategoryStatistical, ImpactNegative, meanMedianDrift},
	{DataFreshness, "Days since the most recent date in the dataset", CategoryAdvanced, ImpactNegative, dataFreshness},
	{FeatureImportanceConsistency, "Stability of feature-target correlation across dataset halves", CategoryAdvanced, ImpactPositive, featureImportanceConsistency},
	{ClassOverlapScore, "Average overlap of per-class feature ranges", CategoryAdvanced, ImpactNegative, classOverlap},
	{AnomalyCount, "Number of values flagged by the IQR fence or |z| > 3", CategoryAdvanced, ImpactNegative, anomalyCount},
	{EncodingCoverageRate, "Share of categorical values whose category occurs at least twice", CategoryAdvanced, ImpactPositive, encodingCoverage},
	{VarianceThresholdCheck, "Share of numeric columns with variance above the threshold", CategoryStatistical, ImpactPositive, varianceThreshold},
	{DataDensityCompleteness, "Share of non-missing cells", CategoryAdvanced, ImpactPositive, density},
	{LabelNoiseRate, "Share of labelled rows closer to another class centroid", CategoryAdvanced, ImpactNegative, labelNoise},
	{DomainConstraintViolations, "Share of numeric values breaking domain rules implied by column names", CategoryAdvanced, ImpactNegative, domainConstraints},
	{DataQualityScore, "Overall data quality score (0-100)", CategoryQuality, ImpactPositive, nil},
}

// Catalogue returns the metric definitions in report order.
func Catalogue() []Definition {
	out := make([]Definition, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup finds a definition by metric name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalogue {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
