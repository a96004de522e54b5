package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Send      SendConfig      `yaml:"send"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int    `yaml:"max_upload_bytes"`
}

// ProviderConfig selects and configures the inference provider. The API key
// is never stored here; APIKeyEnv names the environment variable that holds
// it.
type ProviderConfig struct {
	Backend         string  `yaml:"backend"` // openai or ollama
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// SendConfig controls how user photos are re-encoded before the provider call.
type SendConfig struct {
	Format  string `yaml:"format"`  // jpg or png
	MaxDim  int    `yaml:"max_dim"` // long side in px, 0 keeps original
	Quality int    `yaml:"quality"`
}

// CatalogueConfig points at the catalogue source. An empty path selects the
// built-in catalogue.
type CatalogueConfig struct {
	Path string `yaml:"path"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
		},
		Provider: ProviderConfig{
			Backend:         "openai",
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			TimeoutSecs:     30,
			Temperature:     0.1,
			MaxOutputTokens: 100,
		},
		Send: SendConfig{
			Format:  "jpg",
			MaxDim:  1536,
			Quality: 85,
		},
		Catalogue: CatalogueConfig{},
	}
}

// LoadFromFile loads configuration from a YAML file, filling unset fields
// with defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the config at path, or returns defaults when path is empty or
// the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	switch c.Provider.Backend {
	case "openai", "ollama":
	default:
		return fmt.Errorf("provider.backend must be openai or ollama, got %q", c.Provider.Backend)
	}

	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model cannot be empty")
	}

	if c.Provider.TimeoutSecs < 1 {
		return fmt.Errorf("provider.timeout_secs must be positive")
	}

	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2")
	}

	if c.Provider.MaxOutputTokens < 1 {
		return fmt.Errorf("provider.max_output_tokens must be positive")
	}

	if c.Send.Format != "jpg" && c.Send.Format != "png" {
		return fmt.Errorf("send.format must be jpg or png, got %q", c.Send.Format)
	}

	if c.Send.Quality < 1 || c.Send.Quality > 100 {
		return fmt.Errorf("send.quality must be between 1 and 100")
	}

	if c.Send.MaxDim < 0 {
		return fmt.Errorf("send.max_dim cannot be negative")
	}

	return nil
}

// ProviderTimeout returns the provider timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSecs) * time.Second
}
