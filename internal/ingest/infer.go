package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// inferShare is the fraction of non-missing values that must parse for a
// column to be typed numeric or date.
const inferShare = 0.8

// FromRecords types a header plus raw records into a dataset. Short records
// are padded with missing cells; extra fields are ignored.
func FromRecords(name string, header []string, records [][]string, opt Options) (*dataset.Dataset, error) {
	names := headerNames(header, opt.StripUnits)
	cols := make([]dataset.Column, len(names))
	for i, n := range names {
		typ, ok := opt.Types[n]
		if !ok {
			typ = inferType(records, i, opt)
		}
		cols[i] = dataset.Column{Name: n, Type: typ}
	}
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
	}
	rows := make([]dataset.Row, len(records))
	for r, rec := range records {
		row := make(dataset.Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c.Name] = parseCell(rec[i], c.Type, opt)
			}
		}
		rows[r] = row
	}
	ds := dataset.New(name, cols, rows)
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	return ds, nil
}

// headerNames trims headers, fills blanks and suffixes repeats so that column
// names are unique.
func headerNames(header []string, stripUnits bool) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if stripUnits {
			n, _ = splitUnits(n)
		}
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		base := n
		for seen[n] > 0 {
			seen[base]++
			n = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[n]++
		out[i] = n
	}
	return out
}

func inferType(records [][]string, col int, opt Options) dataset.Type {
	var n, num, dt int
	for _, rec := range records {
		if col >= len(rec) || dataset.IsNullToken(rec[col]) {
			continue
		}
		n++
		if _, ok := parseNumeric(rec[col], opt); ok {
			num++
		} else if _, ok := dataset.ParseDate(rec[col]); ok {
			dt++
		}
	}
	switch {
	case n == 0:
		return dataset.TypeText
	case float64(num)/float64(n) > inferShare:
		return dataset.TypeNumeric
	case float64(dt)/float64(n) > inferShare:
		return dataset.TypeDate
	default:
		return dataset.TypeText
	}
}

// parseCell keeps values that do not fit the column type as Text so that the
// mismatch stays visible to the metrics.
func parseCell(raw string, typ dataset.Type, opt Options) dataset.Value {
	if dataset.IsNullToken(raw) {
		return dataset.Missing()
	}
	switch typ {
	case dataset.TypeNumeric:
		if f, ok := parseNumeric(raw, opt); ok {
			return dataset.Number(f)
		}
	case dataset.TypeDate:
		if t, ok := dataset.ParseDate(raw); ok {
			return dataset.Date(strings.TrimSpace(raw), t)
		}
	}
	return dataset.Text(raw)
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// ParseTypes turns "col=kind" pairs into type overrides.
func ParseTypes(specs []string) (map[string]dataset.Type, error) {
	out := map[string]dataset.Type{}
	for _, s := range specs {
		name, kind, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid type override %q (want column=kind)", s)
		}
		t, err := dataset.ParseType(kind)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(name)] = t
	}
	return out, nil
}
