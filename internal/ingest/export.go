package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
)

// Save writes ds in the format implied by path's extension.
func Save(path string, ds *dataset.Dataset) error {
	var buf bytes.Buffer
	var err error
	switch {
	case hasExt(path, ".csv"):
		err = WriteCSV(&buf, ds, ',')
	case hasExt(path, ".tsv"):
		err = WriteCSV(&buf, ds, '\t')
	case hasExt(path, ".json"):
		var b []byte
		b, err = utils.PrettyJSON(ds)
		buf.Write(b)
	case hasExt(path, ".xlsx"):
		err = WriteXLSX(&buf, ds)
	default:
		return fmt.Errorf("%w: cannot write %s", ErrUnsupported, path)
	}
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteCSV writes a header row and one record per row; missing cells are
// empty.
func WriteCSV(w io.Writer, ds *dataset.Dataset, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(ds.Columns))
	for _, r := range ds.Rows {
		for i, c := range ds.Columns {
			rec[i] = r[c.Name].String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes ds to the first sheet of a new workbook.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	for i, c := range ds.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c.Name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for r, row := range ds.Rows {
		for i, c := range ds.Columns {
			v := row[c.Name]
			if v.IsMissing() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			var out any = v.String()
			if x, ok := v.Float(); ok && !math.IsNaN(x) && !math.IsInf(x, 0) {
				out = x
			}
			if err := f.SetCellValue(sheet, cell, out); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
