package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.OutputFormat != "markdown" || !c.TargetFallback || c.Seed != 42 || c.CorrelationThreshold != 0.9 || c.MaxCardinality != 100 || c.ServerAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestSaveLoadRoundTripWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	c := &Global{}
	for k, v := range map[string]string{
		"output_format":   "json",
		"target_column":   "label",
		"workers":         "2",
		"drift_threshold": "0.5",
	} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := Save(c, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("DATAVIZ_WORKERS", "7")
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OutputFormat != "json" || got.TargetColumn != "label" || got.DriftThreshold != 0.5 {
		t.Fatalf("file values lost: %+v", got)
	}
	if got.Workers != 7 {
		t.Fatalf("env override ignored: workers=%d", got.Workers)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(p, []byte("workers: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	bad := map[string]string{
		"output_format":         "xml",
		"seed":                  "-1",
		"oversample_strategy":   "smote",
		"correlation_threshold": "1.5",
		"max_cardinality":       "1",
		"workers":               "many",
		"log_level":             "trace",
		"nope":                  "x",
	}
	for k, v := range bad {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%s, %s) accepted", k, v)
		}
	}
	for _, k := range Keys {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("Get(%s): %v", k, err)
		}
	}
}

func TestDefaultsIgnoreEnv(t *testing.T) {
	t.Setenv("DATAVIZ_WORKERS", "9")
	c := Defaults()
	if c.Workers != 4 || c.Seed != 42 || c.OutputFormat != "markdown" {
		t.Fatalf("defaults = %+v", c)
	}
}
