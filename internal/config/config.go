// Package config loads the doxymd configuration file. Values are YAML with
// environment-variable expansion; CLI flags override file values.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/doxymd/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// InputConfig locates the Doxygen XML directory.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig controls Markdown generation.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Clean       bool   `yaml:"clean"`        // Clean output directory before generating
	VerifyLinks bool   `yaml:"verify_links"` // Check generated pages for dangling links
}

// SearchConfig controls the optional full-text index.
type SearchConfig struct {
	IndexDir string `yaml:"index_dir"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// MetricsConfig controls the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Load loads configuration from the specified file. A .env file next to the
// working directory is applied first; ${VAR} references in the YAML are
// expanded from the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is the normal case.
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, cerrors.Fatal(cerrors.CategoryConfig, "configuration file not found").
			WithContext("path", configPath)
	}

	// #nosec G304 -- the path is the user-provided config flag.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, cerrors.WrapFatal(err, cerrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, cerrors.WrapFatal(err, cerrors.CategoryConfig, "failed to unmarshal config")
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "./docs"
	}
	if c.Search.IndexDir == "" {
		c.Search.IndexDir = "./.doxymd-index"
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = 500
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks cross-field constraints that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Input.Dir != "" && c.Input.Dir == c.Output.Dir {
		return cerrors.Fatal(cerrors.CategoryConfig, "input and output directories must differ")
	}
	return nil
}

const defaultConfigTemplate = `# doxymd configuration
input:
  dir: ./doxygen/xml

output:
  dir: ./docs
  clean: true
  verify_links: true

search:
  index_dir: ./.doxymd-index

watch:
  debounce_ms: 500

metrics:
  enabled: false
  addr: :9090
  path: /metrics
`

// Init writes a starter configuration file. An existing file is only
// overwritten with force.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return cerrors.Fatal(cerrors.CategoryConfig, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath)
	}
	// #nosec G306 -- configuration scaffold contains no secrets.
	if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
		return cerrors.WrapFatal(err, cerrors.CategoryConfig, "failed to write config file").
			WithContext("path", configPath)
	}
	return nil
}
