package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the domspec configuration.
type Config struct {
	DefaultEnvironment string                    `json:"defaultEnvironment,omitempty" toml:"defaultEnvironment,omitempty"`
	Environments       map[string]map[string]any `json:"environments,omitempty" toml:"environments,omitempty"`
	Include            []string                  `json:"include,omitempty" toml:"include,omitempty"` // check file globs
	Reporters          []string                  `json:"reporters,omitempty" toml:"reporters,omitempty"`
	OutputDir          string                    `json:"outputDir,omitempty" toml:"outputDir,omitempty"`
	Parallel           *bool                     `json:"parallel,omitempty" toml:"parallel,omitempty"`
	Concurrency        int                       `json:"concurrency,omitempty" toml:"concurrency,omitempty"`
	Bail               *bool                     `json:"bail,omitempty" toml:"bail,omitempty"`
	Verbose            *bool                     `json:"verbose,omitempty" toml:"verbose,omitempty"`
	NoColor            *bool                     `json:"noColor,omitempty" toml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetParallel() bool { return getBool(c.Parallel, false) }
func (c *Config) GetBail() bool     { return getBool(c.Bail, false) }
func (c *Config) GetVerbose() bool  { return getBool(c.Verbose, false) }
func (c *Config) GetNoColor() bool  { return getBool(c.NoColor, false) }

// ConfigFilenames are searched in order.
var ConfigFilenames = []string{
	".domspec.json",
	"domspec.json",
	"domspec.toml",
	".domspec.toml",
}

// ErrUnknownFormat is returned for config files that are neither JSON nor
// TOML.
var ErrUnknownFormat = errors.New("unknown config format")

// LoadConfig loads path, or searches the working directory when path is
// empty.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig loads the first config file found in dir, or the
// defaults when there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", configPath, err)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".toml":
		err = toml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}

// Merge returns c overlaid with the fields other sets.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if len(other.Include) > 0 {
		result.Include = other.Include
	}
	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Environments) > 0 {
		envs := make(map[string]map[string]any, len(c.Environments)+len(other.Environments))
		for name, vars := range c.Environments {
			envs[name] = vars
		}
		for name, vars := range other.Environments {
			merged := make(map[string]any, len(envs[name])+len(vars))
			for k, v := range envs[name] {
				merged[k] = v
			}
			for k, v := range vars {
				merged[k] = v
			}
			envs[name] = merged
		}
		result.Environments = envs
	}

	return &result
}

// SaveConfig writes the configuration as JSON or TOML by file extension.
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(c)
		data = []byte(b.String())
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
