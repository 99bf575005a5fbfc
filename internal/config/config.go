package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file created by `basis init`.
const FileName = "basis.yaml"

// Config represents the top-level basis.yaml configuration.
type Config struct {
	Ledger        LedgerConfig `yaml:"ledger"`
	Import        ImportConfig `yaml:"import"`
	IgnoreSymbols []string     `yaml:"ignore_symbols,omitempty"`
	Log           LogConfig    `yaml:"log"`
}

// LedgerConfig locates the SQLite ledger.
type LedgerConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the config file
}

// ImportConfig describes the transaction spreadsheet.
type ImportConfig struct {
	DateFormat string           `yaml:"date_format"` // Go time layout
	Sheet      string           `yaml:"sheet,omitempty"`
	FeeColumns FeeColumnsConfig `yaml:"fee_columns"`
}

// FeeColumnsConfig names the two mutually exclusive fee columns.
type FeeColumnsConfig struct {
	Primary   FeeColumn `yaml:"primary"`
	Secondary FeeColumn `yaml:"secondary"`
}

// FeeColumn is one fee column header and the currency it is quoted in.
type FeeColumn struct {
	Header   string `yaml:"header"`
	Currency string `yaml:"currency"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a basis.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path: "ledger.db",
		},
		Import: ImportConfig{
			DateFormat: "2006-01-02",
			FeeColumns: FeeColumnsConfig{
				Primary:   FeeColumn{Header: "Fee CAD", Currency: "CAD"},
				Secondary: FeeColumn{Header: "Fee USD", Currency: "USD"},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Environment variables that override the file.
const (
	EnvLedger        = "BASIS_LEDGER"
	EnvLogLevel      = "BASIS_LOG_LEVEL"
	EnvIgnoreSymbols = "BASIS_IGNORE_SYMBOLS"
)

// ApplyEnv loads an optional .env file and applies the BASIS_* overrides.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load() // .env is optional

	if v, ok := os.LookupEnv(EnvLedger); ok && v != "" {
		cfg.Ledger.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvIgnoreSymbols); ok {
		cfg.IgnoreSymbols = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
