package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/preprocess"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
)

// ingestFlags are shared by every command that reads a data file.
type ingestFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	types      []string
	maxRows    int
	sheetName  string
	sheetIndex int
	stripUnits bool
}

func (f *ingestFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fs.StringSliceVar(&f.types, "type", nil, "column type override col=numeric|text|date (repeatable)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = config value)")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.BoolVar(&f.stripUnits, "strip-units", false, "strip unit suffixes like \"[mg/L]\" from headers")
}

func (f *ingestFlags) options() (ingest.Options, error) {
	opt := ingest.DefaultOptions()
	if m := settings().MaxRows; m > 0 {
		opt.MaxRows = m
	}
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	types, err := ingest.ParseTypes(f.types)
	if err != nil {
		return opt, err
	}
	opt.Types = types
	opt.Sheet = f.sheetName
	opt.SheetIndex = f.sheetIndex
	opt.StripUnits = f.stripUnits
	return opt, nil
}

func qualityOptions() quality.Options {
	c := settings()
	opts := quality.DefaultOptions()
	opts.Target = c.TargetColumn
	opts.TargetFallback = c.TargetFallback
	opts.VarianceThreshold = c.VarianceThreshold
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	return opts
}

func preprocessParams() preprocess.Params {
	c := settings()
	return preprocess.Params{
		Target:               c.TargetColumn,
		Seed:                 c.Seed,
		Strategy:             c.OversampleStrategy,
		CorrelationThreshold: c.CorrelationThreshold,
		VarianceThreshold:    c.VarianceThreshold,
		DriftThreshold:       c.DriftThreshold,
		MaxCardinality:       c.MaxCardinality,
	}
}

// expandInputs resolves glob patterns and literal paths into a sorted,
// de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func outputFormat(flag string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		f = settings().OutputFormat
	}
	switch f {
	case "", "markdown", "md":
		return "markdown", nil
	case "json", "yaml":
		return f, nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use markdown, json or yaml)", flag)
}

func formatExt(format string) string {
	switch format {
	case "json":
		return ".quality.json"
	case "yaml":
		return ".quality.yaml"
	}
	return ".quality.md"
}

// renderAnalysis encodes a or, with issuesOnly, just its issue list.
func renderAnalysis(a *quality.Analysis, format string, issuesOnly bool) ([]byte, error) {
	var v any = a
	if issuesOnly {
		issues := a.Issues
		if issues == nil {
			issues = []quality.Issue{}
		}
		v = issues
	}
	switch format {
	case "json":
		return utils.PrettyJSON(v)
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	if !issuesOnly {
		return []byte(a.Markdown()), nil
	}
	if len(a.Issues) == 0 {
		return []byte("No issues found\n"), nil
	}
	var b strings.Builder
	b.WriteString("[ISSUES]\n")
	for _, is := range a.Issues {
		b.WriteString("- ")
		b.WriteString(is.String())
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}
