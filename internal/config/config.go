package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/rules"
)

// CurrentVersion is the only config schema version understood.
const CurrentVersion = 1

// Dir is the per-repository state directory.
const Dir = ".namecheck"

// EnvPrefix prefixes environment overrides: NAMECHECK_LOGGING_LEVEL=debug.
const EnvPrefix = "NAMECHECK"

// Config represents the complete namecheck configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version" toml:"version"`

	// MaxLength maps symbol kinds to name length limits; 0 disables a kind.
	MaxLength map[string]int `json:"maxLength" mapstructure:"maxLength" toml:"maxLength"`

	// Rules enables or disables rules by ID. Unlisted rules are enabled.
	Rules map[string]bool `json:"rules" mapstructure:"rules" toml:"rules"`

	// Exclude lists doublestar globs matched against symbol file paths.
	Exclude []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`

	// Dictionary is the path of an optional WORDS.toml.
	Dictionary string `json:"dictionary" mapstructure:"dictionary" toml:"dictionary"`

	Facts    FactsConfig    `json:"facts" mapstructure:"facts" toml:"facts"`
	Baseline BaselineConfig `json:"baseline" mapstructure:"baseline" toml:"baseline"`
	Output   OutputConfig   `json:"output" mapstructure:"output" toml:"output"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging" toml:"logging"`
	Watch    WatchConfig    `json:"watch" mapstructure:"watch" toml:"watch"`
}

// FactsConfig says where symbol facts come from
type FactsConfig struct {
	Path   string `json:"path" mapstructure:"path" toml:"path"`
	Format string `json:"format" mapstructure:"format" toml:"format"`
	// Cache keeps decoded SCIP and C# facts in the state database, keyed by
	// a digest of the source.
	Cache bool `json:"cache" mapstructure:"cache" toml:"cache"`
}

// BaselineConfig contains baseline settings
type BaselineConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" toml:"enabled"`
}

// OutputConfig contains report settings
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	// Path is the report file; empty means stdout. A .gz or .zst suffix
	// compresses the report.
	Path string `json:"path" mapstructure:"path" toml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
	// File, when set, also receives every record at debug level as JSON.
	File string `json:"file,omitempty" mapstructure:"file" toml:"file,omitempty"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs" toml:"debounceMs"`
}

var (
	outputFormats  = []string{"human", "json", "sarif"}
	factsFormats   = []string{"auto", "json", "yaml", "scip", "csharp"}
	loggingFormats = []string{"text", "json"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	maxLength := make(map[string]int)
	for kind, limit := range rules.DefaultMaxLength() {
		maxLength[string(kind)] = limit
	}

	return &Config{
		Version:    CurrentVersion,
		MaxLength:  maxLength,
		Rules:      map[string]bool{},
		Exclude:    []string{"**/obj/**", "**/bin/**"},
		Dictionary: filepath.ToSlash(filepath.Join(Dir, "WORDS.toml")),
		Facts: FactsConfig{
			Path:   filepath.ToSlash(filepath.Join(Dir, "facts.json")),
			Format: "auto",
			Cache:  true,
		},
		Baseline: BaselineConfig{
			Enabled: false,
		},
		Output: OutputConfig{
			Format: "human",
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// LoadConfig loads configuration from .namecheck/config.{json,yaml,toml},
// applies NAMECHECK_* environment overrides and validates the result. A
// missing config file yields the defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(filepath.Join(repoRoot, Dir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, lerrors.New(lerrors.ConfigInvalid, "Failed to read configuration", err)
		}
	}

	return unmarshal(v)
}

// LoadConfigFromPath loads an explicit config file.
func LoadConfigFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, lerrors.New(lerrors.ConfigInvalid, fmt.Sprintf("Failed to read configuration from %s", path), err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env overrides only reach keys viper knows about.
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("maxLength", d.MaxLength)
	v.SetDefault("rules", d.Rules)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("dictionary", d.Dictionary)
	v.SetDefault("facts.path", d.Facts.Path)
	v.SetDefault("facts.format", d.Facts.Format)
	v.SetDefault("facts.cache", d.Facts.Cache)
	v.SetDefault("baseline.enabled", d.Baseline.Enabled)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, lerrors.New(lerrors.ConfigInvalid, "Failed to decode configuration", err)
	}

	// Viper lower-cases map keys; rule IDs are upper case.
	normalized := make(map[string]bool, len(cfg.Rules))
	for id, enabled := range cfg.Rules {
		normalized[strings.ToUpper(id)] = enabled
	}
	cfg.Rules = normalized

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the path of a file inside the state directory.
func Path(repoRoot, name string) string {
	return filepath.Join(repoRoot, Dir, name)
}

// Resolve makes p absolute against repoRoot unless it already is.
func Resolve(repoRoot, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, filepath.FromSlash(p))
}

// Save writes the configuration to .namecheck/config.json
func (c *Config) Save(repoRoot string) error {
	if err := os.MkdirAll(filepath.Join(repoRoot, Dir), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(repoRoot, "config.json"), data, 0644)
}

// WriteTOML writes the configuration to .namecheck/config.toml and returns
// the path written.
func (c *Config) WriteTOML(repoRoot string) (string, error) {
	if err := os.MkdirAll(filepath.Join(repoRoot, Dir), 0755); err != nil {
		return "", err
	}
	path := Path(repoRoot, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "# namecheck configuration"); err != nil {
		return "", err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return "", err
	}
	return path, nil
}

// Validate checks if the configuration is valid. Rule IDs and length limits
// are checked when the rule registry is built.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return invalid("version", fmt.Sprintf("unsupported config version %d", c.Version))
	}
	if !oneOf(c.Output.Format, outputFormats) {
		return invalid("output.format", fmt.Sprintf("%q is not one of %s", c.Output.Format, strings.Join(outputFormats, ", ")))
	}
	if !oneOf(strings.ToLower(c.Facts.Format), factsFormats) {
		return invalid("facts.format", fmt.Sprintf("%q is not one of %s", c.Facts.Format, strings.Join(factsFormats, ", ")))
	}
	if !oneOf(c.Logging.Format, loggingFormats) {
		return invalid("logging.format", fmt.Sprintf("%q is not one of %s", c.Logging.Format, strings.Join(loggingFormats, ", ")))
	}
	if c.Watch.DebounceMs < 0 {
		return invalid("watch.debounceMs", "must not be negative")
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return invalid("exclude", fmt.Sprintf("invalid glob %q", pattern))
		}
	}
	return nil
}

// DisabledRules returns the IDs of rules switched off, sorted.
func (c *Config) DisabledRules() []string {
	var ids []string
	for id, enabled := range c.Rules {
		if !enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func invalid(field, message string) error {
	return lerrors.New(lerrors.ConfigInvalid, "Invalid configuration", &ConfigError{Field: field, Message: message}).
		WithDetails(map[string]string{"field": field})
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
