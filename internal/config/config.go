package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Target column handling
	TargetColumn   string `mapstructure:"target_column" yaml:"target_column"`
	TargetFallback bool   `mapstructure:"target_fallback" yaml:"target_fallback"`

	// Preprocessing
	Seed                 uint64  `mapstructure:"seed" yaml:"seed"`
	OversampleStrategy   string  `mapstructure:"oversample_strategy" yaml:"oversample_strategy"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold"`
	VarianceThreshold    float64 `mapstructure:"variance_threshold" yaml:"variance_threshold"`
	DriftThreshold       float64 `mapstructure:"drift_threshold" yaml:"drift_threshold"`
	MaxCardinality       int     `mapstructure:"max_cardinality" yaml:"max_cardinality"`

	Workers int `mapstructure:"workers" yaml:"workers"`
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"output_format", "target_column", "target_fallback", "seed", "oversample_strategy",
	"correlation_threshold", "variance_threshold", "drift_threshold", "max_cardinality",
	"workers", "max_rows", "log_level", "log_format", "server_addr",
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataviz"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataviz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_format", "markdown")
	v.SetDefault("target_column", "")
	v.SetDefault("target_fallback", true)
	v.SetDefault("seed", 42)
	v.SetDefault("oversample_strategy", "random")
	v.SetDefault("correlation_threshold", 0.9)
	v.SetDefault("variance_threshold", 0.01)
	v.SetDefault("drift_threshold", 0.2)
	v.SetDefault("max_cardinality", 100)
	v.SetDefault("workers", 4)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", ":8080")
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAVIZ")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; an explicit file that exists must parse
	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		if _, statErr := os.Stat(cfgFile); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set parses val for key and stores it.
func (c *Global) Set(key, val string) error {
	val = strings.TrimSpace(val)
	switch key {
	case "output_format":
		switch strings.ToLower(val) {
		case "markdown", "md":
			c.OutputFormat = "markdown"
		case "json", "yaml":
			c.OutputFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid output_format: %s (use markdown, json or yaml)", val)
		}
	case "target_column":
		c.TargetColumn = val
	case "target_fallback":
		b, err := cast.ToBoolE(val)
		if err != nil {
			return fmt.Errorf("invalid bool for target_fallback: %v", val)
		}
		c.TargetFallback = b
	case "seed":
		u, err := cast.ToUint64E(val)
		if err != nil {
			return fmt.Errorf("invalid uint for seed: %v", val)
		}
		c.Seed = u
	case "oversample_strategy":
		switch val {
		case "random", "cyclic":
			c.OversampleStrategy = val
		default:
			return fmt.Errorf("invalid oversample_strategy: %s (use random or cyclic)", val)
		}
	case "correlation_threshold", "variance_threshold", "drift_threshold":
		f, err := cast.ToFloat64E(val)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		switch key {
		case "correlation_threshold":
			if f > 1 {
				return fmt.Errorf("correlation_threshold must be in (0,1]: %v", val)
			}
			c.CorrelationThreshold = f
		case "variance_threshold":
			c.VarianceThreshold = f
		default:
			c.DriftThreshold = f
		}
	case "max_cardinality", "workers", "max_rows":
		i, err := cast.ToIntE(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "max_cardinality":
			if i < 2 {
				return fmt.Errorf("max_cardinality must be at least 2: %v", val)
			}
			c.MaxCardinality = i
		case "workers":
			c.Workers = i
		default:
			c.MaxRows = i
		}
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders the current value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "output_format":
		return c.OutputFormat, nil
	case "target_column":
		return c.TargetColumn, nil
	case "target_fallback":
		return cast.ToString(c.TargetFallback), nil
	case "seed":
		return cast.ToString(c.Seed), nil
	case "oversample_strategy":
		return c.OversampleStrategy, nil
	case "correlation_threshold":
		return cast.ToString(c.CorrelationThreshold), nil
	case "variance_threshold":
		return cast.ToString(c.VarianceThreshold), nil
	case "drift_threshold":
		return cast.ToString(c.DriftThreshold), nil
	case "max_cardinality":
		return cast.ToString(c.MaxCardinality), nil
	case "workers":
		return cast.ToString(c.Workers), nil
	case "max_rows":
		return cast.ToString(c.MaxRows), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "server_addr":
		return c.ServerAddr, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
