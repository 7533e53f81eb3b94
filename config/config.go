package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete report generator configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Report   ReportConfig   `yaml:"report"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig contains reporting API settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CacheDir       string `yaml:"cache_dir"`
}

// ReportConfig contains report generation settings
type ReportConfig struct {
	District      string `yaml:"district"`
	OutputDir     string `yaml:"output_dir"`
	TopPanchayats int    `yaml:"top_panchayats"`
}

// DatabaseConfig contains report run storage settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OpenAIConfig contains optional LLM narrative settings
type OpenAIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://jsmis.mp.gov.in",
			TimeoutSeconds: 30,
		},
		Report: ReportConfig{
			OutputDir:     "reports",
			TopPanchayats: 5,
		},
		Database: DatabaseConfig{
			Path: "reports/report_runs.db",
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
	}
}

// Load loads configuration from a YAML file, filling unset fields with
// defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = def.Report.OutputDir
	}
	if c.Report.TopPanchayats <= 0 {
		c.Report.TopPanchayats = def.Report.TopPanchayats
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = def.OpenAI.BaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = def.OpenAI.Model
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = def.OpenAI.TimeoutSeconds
	}
}

// ResolveAPIKey returns the LLM credential, preferring the literal value
// over the environment variable.
func (c *OpenAIConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("API: %s (timeout %ds)\n", c.API.BaseURL, c.API.TimeoutSeconds)
	if c.Report.District != "" {
		fmt.Printf("District: %s\n", c.Report.District)
	}
	fmt.Printf("Output: %s (db: %s)\n", c.Report.OutputDir, c.Database.Path)
	if c.OpenAI.Enabled {
		fmt.Printf("LLM: %s (%s)\n", c.OpenAI.Model, c.OpenAI.BaseURL)
	}
}
