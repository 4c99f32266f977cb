package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_WritesReportsWithCollisionSuffix(t *testing.T) {
	home := isolate(t)

	// Prepare two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	writeData(t, d1, "metrics.csv", csv)
	writeData(t, d2, "metrics.csv", csv)

	outDir := filepath.Join(home, "reports")
	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--output-dir", outDir, "--workers", "2")
	if !strings.Contains(out, "[1/2] metrics.csv: score") || !strings.Contains(out, "[2/2] metrics.csv: score") {
		t.Fatalf("progress = %s", out)
	}

	b1 := filepath.Join(outDir, "metrics.quality.md")
	b2 := filepath.Join(outDir, "metrics__2.quality.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing report: %v", err)
		}
		if !strings.Contains(string(body), "Rows: 3") {
			t.Fatalf("unexpected report %s:\n%s", p, body)
		}
	}

	// a second run must not overwrite earlier reports
	runCmd(t, "analyze-batch", filepath.Join(d1, "metrics.csv"), "--output-dir", outDir, "--quiet")
	if _, err := os.Stat(filepath.Join(outDir, "metrics__3.quality.md")); err != nil {
		t.Fatalf("expected third report: %v", err)
	}
}

func TestAnalyzeBatch_ReportsFailuresPerFile(t *testing.T) {
	home := isolate(t)
	good := writeData(t, home, "good.csv", "a,b\n1,x\n2,y\n")
	bad := writeData(t, home, "bad.xlsx", "not a workbook")

	out, err := execute(t, "analyze-batch", good, bad, "--format", "json", "--output-dir", filepath.Join(home, "out"))
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if !strings.Contains(out, "✗ "+bad) {
		t.Fatalf("failure not reported:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, "out", "good.quality.json")); err != nil {
		t.Fatalf("good file report missing: %v", err)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolate(t)
	if _, err := execute(t, "analyze-batch", filepath.Join(home, "*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}
