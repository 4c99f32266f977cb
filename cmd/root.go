package cmd

import (
	"fmt"
	"io"
	"os"

	cfgpkg "github.com/KaramelBytes/dataviz-cli/internal/config"
	"github.com/KaramelBytes/dataviz-cli/internal/logging"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X".
var version = "dev"

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string
	logOutput string
	targetCol string
	workers   int

	// Loaded configuration
	cfg       *cfgpkg.Global
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dataviz",
	Short: "dataviz: data-quality metrics, scoring and preprocessing for tabular data",
	Long: `dataviz loads CSV, TSV, XLSX and dataset JSON files, computes a catalogue of
data-quality metrics with a weighted 0-100 score, and applies preprocessing
operations that remediate the issues it finds.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataviz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&targetCol, "target", "", "target (label) column (overrides config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "parallel workers for metrics and batches (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("target") {
		cfg.TargetColumn = targetCol
	}
	if f.Changed("workers") && workers > 0 {
		cfg.Workers = workers
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
	closer, err := logging.Setup(logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Output:    logOutput,
		AddSource: debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging setup failed: %v\n", err)
		return
	}
	logCloser = closer
}

// settings returns the loaded configuration, or defaults when a command runs
// before initialization.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
