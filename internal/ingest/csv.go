package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

func (csvLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads delimited text with a header row. Cells keep their
// surrounding whitespace so formatting problems stay measurable.
func ReadCSV(r io.Reader, name string, opt Options) (*dataset.Dataset, error) {
	cr := newCSVReader(r, opt)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New(name, nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	for opt.MaxRows <= 0 || len(records) < opt.MaxRows {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		records = append(records, rec)
	}
	return FromRecords(name, header, records, opt)
}

func newCSVReader(r io.Reader, opt Options) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	return cr
}

// RaggedRows returns the record numbers, counting the header as 1, of
// records whose field count differs from the header's. ReadCSV pads or truncates those records.
func RaggedRows(r io.Reader, opt Options) ([]int, error) {
	cr := newCSVReader(r, opt)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var ragged []int
	for n := 2; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ragged, nil
		}
		if err != nil {
			return ragged, fmt.Errorf("read row %d: %w", n, err)
		}
		if len(rec) != len(header) {
			ragged = append(ragged, n)
		}
	}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
