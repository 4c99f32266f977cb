package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestJSONHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := newLogger(&buf, "json", slog.LevelInfo, false)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("metrics calculated", "rows", 3)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "metrics calculated" || rec["rows"] != float64(3) {
		t.Fatalf("record = %v", rec)
	}
}

func TestFileOutput(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dataviz.log")
	l, c, err := New(Options{Level: "debug", Format: "text", Output: p})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("written")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(p)
	if !strings.Contains(string(b), "msg=written") {
		t.Fatalf("log file = %q", b)
	}
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}
