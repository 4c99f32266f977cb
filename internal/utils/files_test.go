package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.json")
	if err := SafeWriteFile(p, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != `{"ok":true}` {
		t.Fatalf("read back %q, %v", b, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestReportPath(t *testing.T) {
	if got := ReportPath(filepath.Join("data", "sales.csv"), "", ".quality.md"); got != filepath.Join("data", "sales.quality.md") {
		t.Fatalf("beside source: %s", got)
	}
	if got := ReportPath("sales.xlsx", "out", ".json"); got != filepath.Join("out", "sales.json") {
		t.Fatalf("in dir: %s", got)
	}
}
