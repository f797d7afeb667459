package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file at the ledger root.
const FileName = "ledger.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEDGERIMPORT_"

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Import   ImportConfig   `yaml:"import"`
	Matching MatchingConfig `yaml:"matching"`
	Actors   []Actor        `yaml:"actors"`
	Git      GitConfig      `yaml:"git"`
	Log      LogConfig      `yaml:"log"`
}

// LedgerConfig identifies the ledger.
type LedgerConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// ImportConfig controls how CSV rows are read and resolved.
type ImportConfig struct {
	Format        string   `yaml:"format"`
	DefaultPayee  string   `yaml:"default_payee"  env:"DEFAULT_PAYEE"`
	BankPrefix    string   `yaml:"bank_prefix"    env:"BANK_PREFIX"`
	ExcludeMarker string   `yaml:"exclude_marker" env:"EXCLUDE_MARKER"`
	MemoWords     int      `yaml:"memo_words"`
	FoldCase      bool     `yaml:"fold_case"`
	DateLayouts   []string `yaml:"date_layouts,omitempty"`
	SourceAccount string   `yaml:"source_account,omitempty"` // account for exports without an Account column
}

// MatchingConfig tunes the memo affinity scoring.
type MatchingConfig struct {
	ExpenseMarker     string   `yaml:"expense_marker"`
	ExpenseFactor     float64  `yaml:"expense_factor"`
	KeywordBoost      float64  `yaml:"keyword_boost"`
	CreditCardMarkers []string `yaml:"credit_card_markers"`
}

// Actor is a person expenses are attributed to.
type Actor struct {
	Name          string `yaml:"name"`
	Uncategorized string `yaml:"uncategorized,omitempty"` // bucket path; Expenses:<name>:NoCategory when empty
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" env:"GIT_AUTO_COMMIT"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads a ledger.yaml file from disk over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from LEDGERIMPORT_* environment variables. Unset
// variables leave the current values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
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

// Default returns a Config with sensible defaults for a new ledger.
func Default(name, currency string, actors ...string) *Config {
	if currency == "" {
		currency = "CAD"
	}
	cfg := &Config{
		Ledger: LedgerConfig{
			Name:     name,
			Currency: currency,
		},
		Import: ImportConfig{
			Format:        "standard",
			BankPrefix:    "Bank Accounts:",
			ExcludeMarker: "_Brazil",
			MemoWords:     2,
		},
		Matching: MatchingConfig{
			ExpenseMarker:     "Expenses",
			ExpenseFactor:     1.1,
			KeywordBoost:      10.0,
			CreditCardMarkers: []string{"mastercard", ":visa"},
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "ledgerimport",
			AuthorEmail: "ledgerimport@localhost",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
	for _, a := range actors {
		cfg.Actors = append(cfg.Actors, Actor{Name: a})
	}
	return cfg
}

// ActorNames returns the actor names in configured order.
func (c *Config) ActorNames() []string {
	names := make([]string, 0, len(c.Actors))
	for _, a := range c.Actors {
		names = append(names, a.Name)
	}
	return names
}

// Buckets maps actors with an explicit uncategorized bucket to its path.
func (c *Config) Buckets() map[string]string {
	m := make(map[string]string)
	for _, a := range c.Actors {
		if a.Uncategorized != "" {
			m[a.Name] = a.Uncategorized
		}
	}
	return m
}
