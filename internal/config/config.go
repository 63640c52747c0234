// Package config loads the synbad configuration file.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and SYNBAD_* environment variables. Command-line flags
// are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// MockProvider needs no API key
const MockProvider = "mock"

// Config is the top-level configuration.
type Config struct {
	Provider string            `yaml:"provider"`
	BaseURL  string            `yaml:"base_url"`
	Model    string            `yaml:"model"`
	EnvVar   string            `yaml:"env_var"` // name of the variable holding the API key
	Timeout  string            `yaml:"timeout"` // duration string, e.g. "5m"
	Extra    map[string]string `yaml:"extra,omitempty"`
	Eval     EvalConfig        `yaml:"eval"`
	Logger   LoggerConfig      `yaml:"logger"`
}

// EvalConfig selects and repeats evals.
type EvalConfig struct {
	Only          string `yaml:"only"`
	Count         int    `yaml:"count"`
	SkipReasoning bool   `yaml:"skip_reasoning"`
	Stream        bool   `yaml:"stream"`
	ValidateShape bool   `yaml:"validate_shape"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stderr, stdout, or a file path
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Provider: llm.DefaultProvider,
		Timeout:  llm.DefaultTimeout.String(),
		Eval: EvalConfig{
			Count: 1,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overrides fields from SYNBAD_* environment variables.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SYNBAD_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SYNBAD_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SYNBAD_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SYNBAD_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SYNBAD_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
}

// Validate checks the configuration for values that can never work.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Eval.Count < 1 {
		errs = append(errs, fmt.Sprintf("eval.count must be at least 1, got %d", cfg.Eval.Count))
	}
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("timeout %q is not a positive duration", cfg.Timeout))
		}
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logger.format must be text or json, got %q", cfg.Logger.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ClientConfig resolves the provider settings, reading the API key from the
// environment variable named by EnvVar. The mock provider needs no key.
func (c *Config) ClientConfig() (llm.ClientConfig, error) {
	if c.Model == "" {
		return llm.ClientConfig{}, fmt.Errorf("no model given")
	}

	timeout := llm.DefaultTimeout
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return llm.ClientConfig{}, fmt.Errorf("parse timeout: %w", err)
		}
		timeout = d
	}

	cc := llm.ClientConfig{
		Provider: c.Provider,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		Timeout:  timeout,
		Extra:    c.Extra,
	}
	if strings.EqualFold(c.Provider, MockProvider) {
		return cc, nil
	}

	if c.EnvVar == "" {
		return llm.ClientConfig{}, fmt.Errorf("no API key environment variable given")
	}
	cc.APIKey = os.Getenv(c.EnvVar)
	if cc.APIKey == "" {
		return llm.ClientConfig{}, fmt.Errorf("no env var named %s exists for the current process", c.EnvVar)
	}
	return cc, nil
}
