package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".slipway.yml"

// Config is the top-level slipway configuration.
type Config struct {
	// Dist is the directory build stages drop artifacts into and the
	// publisher reads from.
	Dist string `yaml:"dist"`

	// Parallelism caps how many matrix cells run concurrently.
	// Zero means NumCPU.
	Parallelism int `yaml:"parallelism"`

	Pipelines map[string]PipelineConfig `yaml:"pipelines"`

	// Policies maps names to tag/branch regex patterns so pipeline
	// `when` clauses can reference them instead of repeating regexes.
	Policies map[string]string `yaml:"policies"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	// Decode into a zero Config: yaml.v3 merges mappings into pre-populated
	// maps, which would let default pipelines outlive a user's own set.
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.fillIn()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EffectiveParallelism resolves the configured limit against NumCPU.
func (c *Config) EffectiveParallelism() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}

// fillIn applies defaults after decoding. A config declaring its own
// pipelines gets exactly those; the built-in set applies only when the file
// declares none. Policies keep the built-ins underneath user additions,
// user entries winning on name collisions.
func (c *Config) fillIn() {
	if c.Dist == "" {
		c.Dist = "dist"
	}
	if len(c.Pipelines) == 0 {
		c.Pipelines = defaults().Pipelines
	}
	policies := DefaultPolicies()
	for name, pattern := range c.Policies {
		policies[name] = pattern
	}
	c.Policies = policies
}

func defaults() *Config {
	return &Config{
		Dist: "dist",
		Pipelines: map[string]PipelineConfig{
			"lint":    DefaultLintPipeline(),
			"release": DefaultReleasePipeline(),
		},
		Policies: DefaultPolicies(),
	}
}
