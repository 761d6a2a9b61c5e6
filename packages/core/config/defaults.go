package config

// DefaultInclude matches check files when neither arguments nor config
// name any.
const DefaultInclude = "**/*.domspec.yaml"

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvironment: "dev",
		Include:            []string{DefaultInclude},
		Reporters:          []string{"console"},
		Concurrency:        4,
	}
}

// IsDefault reports whether c matches the defaults.
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.DefaultEnvironment == defaults.DefaultEnvironment &&
		len(c.Environments) == 0 &&
		equalStrings(c.Include, defaults.Include) &&
		equalStrings(c.Reporters, defaults.Reporters) &&
		c.OutputDir == defaults.OutputDir &&
		c.Concurrency == defaults.Concurrency &&
		c.Parallel == nil && c.Bail == nil && c.Verbose == nil && c.NoColor == nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
