// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all embedd service configuration.
type Config struct {
	// Model
	ModelName string `yaml:"model_name"`

	// HTTP
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`

	// Inference runtime
	InferenceURL       string `yaml:"inference_url"`
	RequestTimeoutSecs uint64 `yaml:"request_timeout_secs"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
}

// Defaults returns a Config with all defaults applied. defaultModel differs
// per service variant (Qdrant/bm25 vs colbert-ir/colbertv2.0).
func Defaults(defaultModel string) Config {
	return Config{
		ModelName:          defaultModel,
		Host:               "0.0.0.0",
		Port:               8000,
		InferenceURL:       "http://127.0.0.1:7997",
		RequestTimeoutSecs: 30,
		LogLevel:           "INFO",
	}
}

// Load reads the configuration file if one exists, applies environment
// overrides, and validates the result.
// File resolution order: EMBEDD_CONFIG env → ./embedd.config.yaml →
// ./embedd.config.yml. A missing file is not an error; the service runs on
// defaults plus environment variables.
func Load(defaultModel string) (*Config, error) {
	cfg := Defaults(defaultModel)

	path := os.Getenv("EMBEDD_CONFIG")
	if path == "" {
		candidates := []string{"embedd.config.yaml", "embedd.config.yml"}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize(defaultModel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.ModelName = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.Port = uint16(p)
		}
	}
	if v := os.Getenv("INFERENCE_URL"); v != "" {
		c.InferenceURL = v
	}
}

// normalize repairs empty or out-of-range values after parsing.
func (c *Config) normalize(defaultModel string) {
	c.ModelName = strings.TrimSpace(c.ModelName)
	if c.ModelName == "" {
		c.ModelName = defaultModel
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.RequestTimeoutSecs == 0 {
		c.RequestTimeoutSecs = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

// Validate checks for configuration errors.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("model_name must not be empty")
	}
	u, err := url.Parse(c.InferenceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("inference_url %q is not a valid URL", c.InferenceURL)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
