package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l3aro/cprep/pkg/syntax"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for cprep
type Config struct {
	// Engine selects how functions and state entries are located ("lines" or "ast")
	Engine string `yaml:"engine" env:"CPREP_ENGINE"`

	// Companion name lists. Empty means the file next to the executable.
	FunctionsList string `yaml:"functions_list" env:"CPREP_FUNCTIONS_LIST"`
	StatesList    string `yaml:"states_list" env:"CPREP_STATES_LIST"`

	// Backup journal settings
	Backup       bool   `yaml:"backup" env:"CPREP_BACKUP"`
	JournalPath  string `yaml:"journal_path" env:"CPREP_JOURNAL_PATH"`
	JournalLimit int    `yaml:"journal_limit" env:"CPREP_JOURNAL_LIMIT"`

	// Logging
	Verbose bool `yaml:"verbose" env:"CPREP_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine:        string(syntax.EngineLines),
		FunctionsList: "",
		StatesList:    "",
		Backup:        false,
		JournalPath:   ".cprep/journal.msgpack",
		JournalLimit:  100,
		Verbose:       false,
	}
}

// GlobalConfigFilePath returns the global config file path (~/.cprep/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cprep/config.yaml"
	}
	return filepath.Join(home, ".cprep", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.cprep/config.yaml)
func ProjectConfigFilePath() string {
	return ".cprep/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.cprep/config.yaml)
// 3. Global config (~/.cprep/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CPREP_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("CPREP_FUNCTIONS_LIST"); v != "" {
		cfg.FunctionsList = v
	}
	if v := os.Getenv("CPREP_STATES_LIST"); v != "" {
		cfg.StatesList = v
	}
	if v := os.Getenv("CPREP_BACKUP"); v != "" {
		cfg.Backup = parseBool(v)
	}
	if v := os.Getenv("CPREP_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
	if v := os.Getenv("CPREP_JOURNAL_LIMIT"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.JournalLimit = i
		}
	}
	if v := os.Getenv("CPREP_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if _, err := syntax.ParseEngine(c.Engine); err != nil {
		return err
	}
	if c.JournalPath == "" {
		return fmt.Errorf("journal_path must not be empty")
	}
	if c.JournalLimit <= 0 {
		return fmt.Errorf("journal_limit must be positive")
	}
	return nil
}

// EngineValue returns the parsed engine. Call after Validate.
func (c *Config) EngineValue() syntax.Engine {
	engine, _ := syntax.ParseEngine(c.Engine)
	return engine
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
