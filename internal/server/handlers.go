package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/sourcegraph/conc/iter"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/preprocess"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
)

// HealthResponse is returned by /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
	Uptime    string    `json:"uptime,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   s.opts.Version,
		Service:   "dataviz",
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   s.opts.Version,
		Service:   "dataviz",
	})
}

func (s *Server) catalogue(w http.ResponseWriter, r *http.Request) {
	success(w, r, "ok", quality.Catalogue())
}

func (s *Server) operations(w http.ResponseWriter, r *http.Request) {
	success(w, r, "ok", preprocess.Operations())
}

// DatasetInput carries a dataset either in wire form or as CSV text.
type DatasetInput struct {
	Name         string           `json:"name,omitempty"`
	Dataset      *dataset.Dataset `json:"dataset,omitempty"`
	CSVData      string           `json:"csvData,omitempty"`
	TargetColumn string           `json:"targetColumn,omitempty"`
}

func (in DatasetInput) load(opt ingest.Options) (*dataset.Dataset, error) {
	switch {
	case in.Dataset != nil:
		if in.Name != "" {
			in.Dataset.Name = in.Name
		}
		return in.Dataset, nil
	case strings.TrimSpace(in.CSVData) != "":
		name := in.Name
		if name == "" {
			name = "upload.csv"
		}
		return ingest.ReadCSV(strings.NewReader(in.CSVData), name, opt)
	}
	return nil, errors.New("request needs either dataset or csvData")
}

// AnalyzeRequest analyses one inline dataset, or every entry of Batch.
type AnalyzeRequest struct {
	DatasetInput
	Batch []DatasetInput `json:"batch,omitempty"`
}

// BatchResult is one entry of a batch analysis.
type BatchResult struct {
	Name     string            `json:"name"`
	Analysis *quality.Analysis `json:"analysis,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func (s *Server) engineFor(target string) *quality.Engine {
	opts := s.opts.Quality
	if target != "" {
		opts.Target = target
	}
	return quality.NewEngine(opts)
}

func (s *Server) analyzeOne(in DatasetInput) (*quality.Analysis, error) {
	ds, err := in.load(s.opts.Ingest)
	if err != nil {
		return nil, err
	}
	a := s.engineFor(in.TargetColumn).Analyze(ds)
	s.metrics.scores.Observe(a.Score)
	return a, nil
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Batch) == 0 {
		a, err := s.analyzeOne(req.DatasetInput)
		if err != nil {
			fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		success(w, r, "analysis complete", a)
		return
	}
	mapper := iter.Mapper[DatasetInput, BatchResult]{MaxGoroutines: s.opts.Workers}
	results := mapper.Map(req.Batch, func(in *DatasetInput) BatchResult {
		name := in.Name
		if name == "" && in.Dataset != nil {
			name = in.Dataset.Name
		}
		a, err := s.analyzeOne(*in)
		if err != nil {
			return BatchResult{Name: name, Error: err.Error()}
		}
		return BatchResult{Name: a.Name, Analysis: a}
	})
	success(w, r, "batch analysis complete", results)
}

// PreprocessRequest applies one operation, or the full pipeline when All is
// set, to an inline dataset.
type PreprocessRequest struct {
	DatasetInput
	Operation string `json:"operation,omitempty"`
	All       bool   `json:"all,omitempty"`
	Seed      uint64 `json:"seed,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
}

// PreprocessResponse carries the transformed dataset and its score change.
type PreprocessResponse struct {
	Dataset     *dataset.Dataset  `json:"dataset"`
	Steps       []preprocess.Step `json:"steps,omitempty"`
	ScoreBefore float64           `json:"scoreBefore"`
	ScoreAfter  float64           `json:"scoreAfter"`
}

func (s *Server) preprocess(w http.ResponseWriter, r *http.Request) {
	var req PreprocessRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if !req.All && req.Operation == "" {
		fail(w, r, http.StatusBadRequest, "request needs operation or all")
		return
	}
	ds, err := req.load(s.opts.Ingest)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p := s.opts.Preprocess
	if req.TargetColumn != "" {
		p.Target = req.TargetColumn
	}
	if req.Seed != 0 {
		p.Seed = req.Seed
	}
	if req.Strategy != "" {
		if p.Strategy, err = preprocess.ParseStrategy(req.Strategy); err != nil {
			fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := ds.Validate(); err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	engine := s.engineFor(req.TargetColumn)
	before, _ := engine.CalculateAllMetrics(ds).Float(quality.DataQualityScore)
	resp := PreprocessResponse{ScoreBefore: before}
	if req.All {
		resp.Dataset, resp.Steps, err = preprocess.ApplyAll(ds, p)
	} else {
		resp.Dataset, err = preprocess.Apply(ds, req.Operation, p)
		if err == nil {
			resp.Steps = []preprocess.Step{preprocess.NewStep(req.Operation, ds, resp.Dataset)}
		}
	}
	var verr *dataset.ValidationError
	switch {
	case errors.Is(err, preprocess.ErrUnknownOperation):
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("%v (known: %s)", err, strings.Join(preprocess.Keys(), ", ")))
		return
	case errors.As(err, &verr):
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	for _, st := range resp.Steps {
		s.metrics.operations.WithLabelValues(st.Operation).Inc()
	}
	resp.ScoreAfter, _ = engine.CalculateAllMetrics(resp.Dataset).Float(quality.DataQualityScore)
	success(w, r, "preprocessing complete", resp)
}

// ValidateRequest checks CSV text before it is preprocessed.
type ValidateRequest struct {
	CSVData string `json:"csvData"`
	Name    string `json:"name,omitempty"`
}

// CSVValidation describes how a CSV upload parses.
type CSVValidation struct {
	Valid         bool                    `json:"valid"`
	Shape         [2]int                  `json:"shape"`
	Columns       []string                `json:"columns,omitempty"`
	ColumnTypes   map[string]dataset.Type `json:"columnTypes,omitempty"`
	MissingValues int                     `json:"missingValues"`
	DuplicateRows int                     `json:"duplicateRows"`
	Sample        []dataset.Row           `json:"sample,omitempty"`
	Profile       []quality.ColumnProfile `json:"profile,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
	Error         string                  `json:"error,omitempty"`
	Suggestions   []string                `json:"suggestions,omitempty"`
}

const sampleRows = 3

var csvSuggestions = []string{
	"Ensure all rows have the same number of columns",
	"Check for unescaped quotes in text fields",
	"Remove extra commas at the end of rows",
	"Verify the delimiter matches the configured one",
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.CSVData) == "" {
		fail(w, r, http.StatusBadRequest, "request needs csvData")
		return
	}
	name := req.Name
	if name == "" {
		name = "upload.csv"
	}
	ds, err := ingest.ReadCSV(strings.NewReader(req.CSVData), name, s.opts.Ingest)
	if err != nil {
		success(w, r, "csv could not be parsed", CSVValidation{Error: err.Error(), Suggestions: csvSuggestions})
		return
	}

	v := CSVValidation{
		Valid:       true,
		Shape:       [2]int{ds.Len(), len(ds.Columns)},
		Columns:     ds.ColumnNames(),
		ColumnTypes: make(map[string]dataset.Type, len(ds.Columns)),
		Profile:     quality.Profile(ds),
	}
	for _, c := range ds.Columns {
		v.ColumnTypes[c.Name] = c.Type
	}
	for _, p := range v.Profile {
		v.MissingValues += p.Missing
	}
	dups, _ := s.engineFor("").CalculateAllMetrics(ds).Float(quality.DuplicateRecordsCount)
	v.DuplicateRows = int(dups)
	v.Sample = ds.Rows[:min(sampleRows, ds.Len())]

	ragged, _ := ingest.RaggedRows(strings.NewReader(req.CSVData), s.opts.Ingest)
	if len(ragged) > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d records have a field count different from the header (first at record %d); they were padded or truncated", len(ragged), ragged[0]))
		v.Suggestions = csvSuggestions
	}
	success(w, r, "csv is ready for preprocessing", v)
}
