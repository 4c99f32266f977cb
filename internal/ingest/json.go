package ingest

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool { return hasExt(filename, ".json") }

// Load reads the dataset wire format. Declared types are authoritative, so
// type overrides do not apply.
func (jsonLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()
	ds, err := dataset.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if opt.MaxRows > 0 && ds.Len() > opt.MaxRows {
		ds.Rows = ds.Rows[:opt.MaxRows]
	}
	return ds, nil
}
