// Package ingest loads tabular files into typed datasets and writes them back.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// ErrUnsupported indicates a file format with no registered loader.
var ErrUnsupported = errors.New("unsupported data format")

// Options controls ingestion.
type Options struct {
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Types overrides inferred column types by header name.
	Types map[string]dataset.Type
	// StripUnits removes unit suffixes such as "Mass [mg/L]" from headers.
	StripUnits bool
	// Sheet selects an XLSX sheet by name; SheetIndex is 1-based and used
	// when Sheet is empty.
	Sheet      string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for ingestion.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// Loader reads one file format.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}

// Supported reports whether some loader accepts the file name.
func Supported(path string) bool {
	for _, l := range registry {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

// Load selects a loader by file name and reads the dataset. The dataset name
// defaults to the file's base name.
func Load(path string, opt Options) (*dataset.Dataset, error) {
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		ds, err := l.Load(path, opt)
		if err != nil {
			return nil, err
		}
		if ds.Name == "" {
			ds.Name = filepath.Base(path)
		}
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
