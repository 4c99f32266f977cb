package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
)

// resetFlags clears values and Changed state that persist across Execute
// calls in one test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir so no user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeData(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const dupCSV = "id,city,amount\n1,Paris,10\n1,Paris,10\n2,Rome,12\n3,Oslo,\n"

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)

	out := runCmd(t, "analyze", p)
	for _, want := range []string{"[DATASET SUMMARY]", "File: sales.csv", "Rows: 4", "[QUALITY METRICS]", "Duplicate_Records_Count: 1", "[ISSUES]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONToFile(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)
	dst := filepath.Join(home, "out", "report.json")

	runCmd(t, "analyze", p, "--format", "json", "-o", dst)
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got struct {
		Rows    int     `json:"rows"`
		Columns int     `json:"columns"`
		Score   float64 `json:"score"`
		Metrics []struct {
			Name string `json:"name"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, b)
	}
	if got.Rows != 4 || got.Columns != 3 || len(got.Metrics) != 23 {
		t.Fatalf("report = %+v", got)
	}
	if got.Score <= 0 || got.Score >= 100 {
		t.Fatalf("score = %v", got.Score)
	}
}

func TestCLI_AnalyzeIssuesOnly(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)

	out := runCmd(t, "analyze", p, "--issues")
	if strings.Contains(out, "[SCHEMA]") {
		t.Fatalf("issues output should omit the schema:\n%s", out)
	}
	if !strings.Contains(out, "-> duplicate-records") || !strings.Contains(out, "-> missing-values") {
		t.Fatalf("issues = %s", out)
	}

	clean := writeData(t, home, "clean.csv", "a,b\n1,x\n2,y\n3,z\n")
	if out := runCmd(t, "analyze", clean, "--issues", "--format", "yaml"); strings.TrimSpace(out) != "[]" {
		t.Fatalf("clean yaml issues = %q", out)
	}
}

func TestCLI_AnalyzeRejectsBadFlags(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)
	if _, err := execute(t, "analyze", p, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := execute(t, "analyze", p, "--type", "amount"); err == nil {
		t.Fatalf("expected error for malformed type override")
	}
	if _, err := execute(t, "analyze", filepath.Join(home, "notes.txt")); err == nil {
		t.Fatalf("expected error for unsupported file")
	}
}

func TestCLI_PreprocessSingleOperation(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)
	dst := filepath.Join(home, "dedup.csv")

	out := runCmd(t, "preprocess", p, "--op", "duplicate-records", "-o", dst)
	if !strings.Contains(out, "rows 4 -> 3") || !strings.Contains(out, "Quality score:") {
		t.Fatalf("output = %s", out)
	}
	if _, err := execute(t, "preprocess", p, "--all", "--strategy", "smote"); err == nil || !strings.Contains(err.Error(), "unknown oversampling strategy") {
		t.Fatalf("bad strategy err = %v", err)
	}
	ds, err := ingest.Load(dst, ingest.DefaultOptions())
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("rows = %d", ds.Len())
	}
}

func TestCLI_PreprocessAllDefaultOutput(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)

	out := runCmd(t, "preprocess", p, "--all")
	if !strings.Contains(out, "missing-values") || !strings.Contains(out, "target-imbalance") {
		t.Fatalf("step log = %s", out)
	}
	ds, err := ingest.Load(filepath.Join(home, "sales.clean.csv"), ingest.DefaultOptions())
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	for _, r := range ds.Rows {
		for _, c := range ds.Columns {
			if r[c.Name].IsMissing() {
				t.Fatalf("missing cell survived the pipeline in %s", c.Name)
			}
		}
	}
}

func TestCLI_PreprocessErrors(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)
	if _, err := execute(t, "preprocess", p); err == nil {
		t.Fatalf("expected error without --op or --all")
	}
	if _, err := execute(t, "preprocess", p, "--op", "outliers", "--all"); err == nil {
		t.Fatalf("expected error with both --op and --all")
	}
	_, err := execute(t, "preprocess", p, "--op", "nope")
	if err == nil || !strings.Contains(err.Error(), "missing-values") {
		t.Fatalf("unknown op error should list keys, got %v", err)
	}
}

func TestCLI_Operations(t *testing.T) {
	isolate(t)
	out := runCmd(t, "operations")
	for _, key := range []string{"missing-values", "duplicate-records", "feature-correlation", "target-imbalance"} {
		if !strings.Contains(out, key) {
			t.Fatalf("operations missing %s:\n%s", key, out)
		}
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	runCmd(t, "config", "set", "seed", "7")
	runCmd(t, "config", "set", "output_format", "json")
	if _, err := os.Stat(filepath.Join(home, ".dataviz", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "seed: 7") || !strings.Contains(out, "output_format: json") {
		t.Fatalf("config show = %s", out)
	}
	if _, err := execute(t, "config", "set", "workers", "many"); err == nil {
		t.Fatalf("expected validation error")
	}

	// output_format from config drives analyze
	p := writeData(t, home, "sales.csv", dupCSV)
	out = runCmd(t, "analyze", p)
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected json output from config, got %s", out)
	}
}

func TestCLI_TargetFlagOverridesConfig(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "labels.csv", "x,label,other\n1,a,q\n2,a,q\n3,a,q\n4,b,q\n")
	out := runCmd(t, "analyze", p, "--target", "label")
	if !strings.Contains(out, "Target: label") || !strings.Contains(out, "Target_Imbalance: 3") {
		t.Fatalf("output = %s", out)
	}
}

func TestWatchableSkipsTempFiles(t *testing.T) {
	cases := map[string]bool{
		"/d/data.csv":          true,
		"/d/book.xlsx":         true,
		"/d/data.quality.md":   false,
		"/d/.data.csv.123.tmp": false,
		"/d/.hidden.csv":       false,
		"/d/~$book.xlsx":       false,
	}
	for p, want := range cases {
		if got := watchable(p); got != want {
			t.Fatalf("watchable(%s) = %v, want %v", p, got, want)
		}
	}
}

func TestWriteQualityReport(t *testing.T) {
	home := isolate(t)
	p := writeData(t, home, "sales.csv", dupCSV)
	if err := writeQualityReport(quality.NewEngine(quality.DefaultOptions()), p, ingest.DefaultOptions()); err != nil {
		t.Fatalf("report: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(home, "sales.quality.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "[QUALITY METRICS]") {
		t.Fatalf("report = %s", b)
	}
}
