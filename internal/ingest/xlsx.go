package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool { return hasExt(filename, ".xlsx", ".xlsm") }

// Load reads the selected sheet; the first row is the header.
func (xlsxLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt.Sheet, opt.SheetIndex, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	name := filepath.Base(path)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return dataset.New(name, nil, nil), nil
	}
	return FromRecords(name, rows[0], rows[1:], opt)
}

// pickSheet resolves a sheet by case-insensitive name, else by 1-based index,
// else the first sheet.
func pickSheet(sheets []string, name string, index int, file string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", file)
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, file, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range for workbook '%s' (%d sheets)", index, file, len(sheets))
	}
	return sheets[index-1], nil
}
