package config

import (
	"os"
	"path/filepath"
	"testing"

	lerrors "namecheck/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.MaxLength["type"] != 40 || cfg.MaxLength["parameter"] != 20 {
		t.Errorf("MaxLength = %v, want type 40 and parameter 20", cfg.MaxLength)
	}
	if cfg.Output.Format != "human" {
		t.Errorf("Output.Format = %q, want human", cfg.Output.Format)
	}
	if cfg.Facts.Format != "auto" || !cfg.Facts.Cache {
		t.Errorf("Facts = %+v, want auto format with the cache on", cfg.Facts)
	}
	if cfg.Baseline.Enabled {
		t.Error("Baseline should be disabled by default")
	}
	if cfg.Watch.DebounceMs <= 0 {
		t.Error("Watch.DebounceMs should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 2 }, true},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"sarif output", func(c *Config) { c.Output.Format = "sarif" }, false},
		{"bad facts format", func(c *Config) { c.Facts.Format = "proto" }, true},
		{"facts format case", func(c *Config) { c.Facts.Format = "SCIP" }, false},
		{"bad logging format", func(c *Config) { c.Logging.Format = "human" }, true},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, true},
		{"bad exclude glob", func(c *Config) { c.Exclude = []string{"src/[abc"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && lerrors.CodeOf(err) != lerrors.ConfigInvalid {
				t.Errorf("CodeOf(err) = %q, want %q", lerrors.CodeOf(err), lerrors.ConfigInvalid)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported"}
	want := "config error in field 'version': unsupported"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d (default)", cfg.Version, CurrentVersion)
	}
	if cfg.MaxLength["method"] != 25 {
		t.Errorf("MaxLength[method] = %d, want 25", cfg.MaxLength["method"])
	}
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	stateDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", Dir, err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
				"version": 1,
				"maxLength": {"method": 30},
				"rules": {"NC1040": false},
				"facts": {"path": "build/index.scip", "format": "scip"},
				"output": {"format": "sarif"}
			}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `version: 1
maxLength:
  method: 30
rules:
  NC1040: false
facts:
  path: build/index.scip
  format: scip
output:
  format: sarif
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `version = 1
[maxLength]
method = 30
[rules]
NC1040 = false
[facts]
path = "build/index.scip"
format = "scip"
[output]
format = "sarif"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file, tt.content)

			cfg, err := LoadConfig(dir)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.MaxLength["method"] != 30 {
				t.Errorf("MaxLength[method] = %d, want 30", cfg.MaxLength["method"])
			}
			if cfg.MaxLength["type"] != 40 {
				t.Errorf("MaxLength[type] = %d, want default 40 kept", cfg.MaxLength["type"])
			}
			if enabled, ok := cfg.Rules["NC1040"]; !ok || enabled {
				t.Errorf("Rules = %v, want NC1040 disabled", cfg.Rules)
			}
			if cfg.Facts.Path != "build/index.scip" || cfg.Facts.Format != "scip" {
				t.Errorf("Facts = %+v", cfg.Facts)
			}
			if cfg.Output.Format != "sarif" {
				t.Errorf("Output.Format = %q, want sarif", cfg.Output.Format)
			}
			if got := cfg.DisabledRules(); len(got) != 1 || got[0] != "NC1040" {
				t.Errorf("DisabledRules() = %v, want [NC1040]", got)
			}
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.json", `{"version": 1, "output": {"format": "xml"}}`)

	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("LoadConfig() succeeded, want error")
	}
	if !lerrors.IsConfigError(err) {
		t.Errorf("IsConfigError(%v) = false, want true", err)
	}

	broken := t.TempDir()
	writeConfig(t, broken, "config.json", `{"version": `)
	if _, err := LoadConfig(broken); lerrors.CodeOf(err) != lerrors.ConfigInvalid {
		t.Errorf("LoadConfig(broken json) error = %v, want CONFIG_INVALID", err)
	}
}

func TestLoadConfig_WithEnvOverrides(t *testing.T) {
	t.Setenv("NAMECHECK_LOGGING_LEVEL", "debug")
	t.Setenv("NAMECHECK_OUTPUT_FORMAT", "json")
	t.Setenv("NAMECHECK_BASELINE_ENABLED", "true")
	t.Setenv("NAMECHECK_FACTS_CACHE", "false")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if !cfg.Baseline.Enabled {
		t.Error("Baseline.Enabled = false, want true from env")
	}
	if cfg.Facts.Cache {
		t.Error("Facts.Cache = true, want false from env")
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.MaxLength["field"] = 18
	cfg.Rules["NC1070"] = false

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(Path(dir, "config.json")); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if loaded.MaxLength["field"] != 18 {
		t.Errorf("Loaded MaxLength[field] = %d, want 18", loaded.MaxLength["field"])
	}
	if enabled, ok := loaded.Rules["NC1070"]; !ok || enabled {
		t.Errorf("Loaded Rules = %v, want NC1070 disabled", loaded.Rules)
	}
}

func TestConfig_WriteTOML(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Output.Format = "json"
	path, err := cfg.WriteTOML(dir)
	if err != nil {
		t.Fatalf("WriteTOML() error = %v", err)
	}
	if path != Path(dir, "config.toml") {
		t.Errorf("WriteTOML() path = %q", path)
	}

	loaded, err := LoadConfigFromPath(path)
	if err != nil {
		t.Fatalf("LoadConfigFromPath() error = %v", err)
	}
	if loaded.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", loaded.Output.Format)
	}
	if loaded.MaxLength["local-variable"] != 20 {
		t.Errorf("MaxLength[local-variable] = %d, want 20", loaded.MaxLength["local-variable"])
	}
}

func TestResolve(t *testing.T) {
	root := filepath.Join("repo", "root")
	if got := Resolve(root, "a/b.json"); got != filepath.Join(root, "a", "b.json") {
		t.Errorf("Resolve(relative) = %q", got)
	}
	abs, _ := filepath.Abs("x.json")
	if got := Resolve(root, abs); got != abs {
		t.Errorf("Resolve(absolute) = %q, want %q", got, abs)
	}
	if got := Resolve(root, ""); got != "" {
		t.Errorf("Resolve(empty) = %q, want empty", got)
	}
}
