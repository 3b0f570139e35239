// Package config loads importledger settings from a YAML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/importledger/ledger"
	"github.com/robinvdvleuten/importledger/sheet"
)

// Environment variables overriding file settings.
const (
	EnvDir    = "IMPORTLEDGER_DIR"
	EnvRate   = "IMPORTLEDGER_RATE"
	EnvFormat = "IMPORTLEDGER_FORMAT"
	EnvPrefix = "IMPORTLEDGER_PREFIX"
)

// Config holds the ledger settings.
type Config struct {
	// Dir is the directory month files are stored in.
	Dir string `yaml:"dir"`

	// Prefix is the file name prefix of month files.
	Prefix string `yaml:"prefix"`

	// Format is the month file format, xlsx or csv.
	Format string `yaml:"format"`

	// Rate is the foreign-to-local conversion rate new sessions start with.
	Rate decimal.Decimal `yaml:"rate"`

	// ForeignCurrency and LocalCurrency are ISO codes used for display.
	ForeignCurrency string `yaml:"foreign_currency"`
	LocalCurrency   string `yaml:"local_currency"`

	path string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Dir:             ".",
		Prefix:          ledger.DefaultPrefix,
		Format:          "xlsx",
		Rate:            ledger.DefaultRate,
		ForeignCurrency: "USD",
		LocalCurrency:   "BRL",
	}
}

// Load reads settings from the YAML file at path, if it exists, then applies
// a .env file from the working directory and the IMPORTLEDGER_* environment
// variables. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile returns the defaults overlaid with the YAML file at path.
func readFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first run, Save will create it
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// SaveRate stores rate in the YAML file at path. Every other setting keeps
// the value the file has; .env, environment and flag overrides are not
// written.
func SaveRate(path string, rate decimal.Decimal) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	cfg.Rate = rate
	return cfg.Save()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvRate); v != "" {
		rate, err := ledger.ParseRate(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRate, err)
		}
		c.Rate = rate
	}
	return nil
}

// Validate checks that the settings can build a ledger.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Dir) == "" {
		errs = append(errs, errors.New("dir must not be empty"))
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		errs = append(errs, fmt.Errorf("prefix %q must not contain path separators", c.Prefix))
	}
	if _, err := sheet.ForName(c.Format); err != nil {
		errs = append(errs, err)
	}
	if !c.Rate.IsPositive() {
		errs = append(errs, fmt.Errorf("rate must be greater than zero, got %s", c.Rate))
	}
	return errors.Join(errs...)
}

// Path returns the YAML file the settings were loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the settings to the YAML file they were loaded from, creating
// its directory if needed.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file to save to")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.path, err)
	}
	return nil
}

// DefaultPath returns the config file location under the user config
// directory, or an empty string when it cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "importledger", "config.yaml")
}
