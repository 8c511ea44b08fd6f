// ABOUTME: Configuration loading and parsing for memoui
// ABOUTME: Supports YAML, TOML and JSONC files with environment variable expansion and duration parsing

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// DefaultTabs are the tab names used when none are configured.
var DefaultTabs = []string{"Home", "Work", "Misc"}

// Defaults applied to missing values.
const (
	DefaultAutosaveInterval = 2 * time.Second
	DefaultEscalateAfter    = 10
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultDatabaseFile     = "memoui.db"
)

// Config represents the complete memoui configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database" json:"database"`
	Autosave AutosaveConfig `yaml:"autosave" toml:"autosave" json:"autosave"`
	Slides   SlidesConfig   `yaml:"slides" toml:"slides" json:"slides"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging" json:"logging"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path" json:"path"`
}

// AutosaveConfig holds autosave timing configuration
type AutosaveConfig struct {
	Interval time.Duration `yaml:"-" toml:"-" json:"-"`

	// EscalateAfter is the number of consecutive failed saves before the
	// user is warned. Zero keeps retrying silently.
	EscalateAfter *int `yaml:"escalate_after" toml:"escalate_after" json:"escalate_after"`

	// Raw string value for unmarshaling
	IntervalRaw string `yaml:"interval" toml:"interval" json:"interval"`
}

// SlidesConfig holds the configured tabs
type SlidesConfig struct {
	Tabs             []string `yaml:"tabs" toml:"tabs" json:"tabs"`
	RequireSelection *bool    `yaml:"require_selection" toml:"require_selection" json:"require_selection"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Default returns a configuration with every default applied and the
// database placed in dataDir.
func Default(dataDir string) *Config {
	cfg := &Config{Database: DatabaseConfig{Path: filepath.Join(dataDir, DefaultDatabaseFile)}}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// The format is chosen by extension: .yaml/.yml, .toml, or .json/.jsonc.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	cfg, err := parse(filepath.Ext(path), []byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if envPath := os.Getenv("MEMOUI_DB_PATH"); envPath != "" {
		cfg.Database.Path = envPath
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// parse decodes data according to the file extension.
func parse(ext string, data []byte) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		// Standardize JSONC (comments, trailing commas) to JSON
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONC: %w", err)
		}
		if err := json.Unmarshal(standardized, &cfg); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Autosave.IntervalRaw != "" {
		d, err := time.ParseDuration(cfg.Autosave.IntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing autosave.interval %q: %w", cfg.Autosave.IntervalRaw, err)
		}
		cfg.Autosave.Interval = d
	}
	return nil
}

// applyDefaults fills in values the file left out.
func (c *Config) applyDefaults() {
	if c.Autosave.Interval == 0 {
		c.Autosave.Interval = DefaultAutosaveInterval
	}
	if c.Autosave.EscalateAfter == nil {
		n := DefaultEscalateAfter
		c.Autosave.EscalateAfter = &n
	}
	if len(c.Slides.Tabs) == 0 {
		c.Slides.Tabs = append([]string(nil), DefaultTabs...)
	}
	if c.Slides.RequireSelection == nil {
		v := true
		c.Slides.RequireSelection = &v
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Autosave.Interval < 0 {
		return fmt.Errorf("autosave.interval must be positive, got %s", c.Autosave.Interval)
	}
	if c.Autosave.EscalateAfter != nil && *c.Autosave.EscalateAfter < 0 {
		return fmt.Errorf("autosave.escalate_after must not be negative")
	}

	seen := make(map[string]bool, len(c.Slides.Tabs))
	for i, tab := range c.Slides.Tabs {
		if strings.TrimSpace(tab) == "" {
			return fmt.Errorf("slides.tabs[%d] is empty", i)
		}
		if seen[tab] {
			return fmt.Errorf("slides.tabs contains %q twice", tab)
		}
		seen[tab] = true
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}

	return nil
}

// EscalateThreshold returns the configured autosave escalation threshold.
func (c *Config) EscalateThreshold() int {
	if c.Autosave.EscalateAfter == nil {
		return DefaultEscalateAfter
	}
	return *c.Autosave.EscalateAfter
}

// RequireSelection reports whether a tab must always be focused.
func (c *Config) RequireSelection() bool {
	return c.Slides.RequireSelection == nil || *c.Slides.RequireSelection
}

// DefaultYAML renders the default configuration file written by `memoui init`.
func DefaultYAML(dbPath string) ([]byte, error) {
	doc := struct {
		Database DatabaseConfig `yaml:"database"`
		Autosave struct {
			Interval      string `yaml:"interval"`
			EscalateAfter int    `yaml:"escalate_after"`
		} `yaml:"autosave"`
		Slides struct {
			Tabs             []string `yaml:"tabs"`
			RequireSelection bool     `yaml:"require_selection"`
		} `yaml:"slides"`
		Logging LoggingConfig `yaml:"logging"`
	}{}
	doc.Database.Path = dbPath
	doc.Autosave.Interval = DefaultAutosaveInterval.String()
	doc.Autosave.EscalateAfter = DefaultEscalateAfter
	doc.Slides.Tabs = DefaultTabs
	doc.Slides.RequireSelection = true
	doc.Logging = LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat}

	return yaml.Marshal(doc)
}
