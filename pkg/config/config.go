package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultAddr is the listen address of the web surface.
	DefaultAddr = "127.0.0.1:8080"
	// DefaultMarginInches is the PDF page margin used when none is configured.
	DefaultMarginInches = 0.5
	// DefaultSessionTTLMinutes is how long an idle web session is kept.
	DefaultSessionTTLMinutes = 60
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string           `json:"anthropic_api_key" yaml:"anthropic_api_key"`
	Models          ModelsConfig     `json:"models,omitempty" yaml:"models,omitempty"`
	Generation      GenerationConfig `json:"generation" yaml:"generation"`
	Export          ExportConfig     `json:"export" yaml:"export"`
	Server          ServerConfig     `json:"server" yaml:"server"`
	Log             LogConfig        `json:"log" yaml:"log"`
	Defaults        DefaultConfig    `json:"defaults" yaml:"defaults"`
}

// ModelsConfig holds model selection for generation.
type ModelsConfig struct {
	Generation string `json:"generation,omitempty" yaml:"generation,omitempty"`
}

// GenerationConfig holds summary generation settings.
type GenerationConfig struct {
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	// MarginInches is a pointer so an explicit 0 is kept.
	MarginInches *float64 `json:"margin_inches,omitempty" yaml:"margin_inches,omitempty"`
	OutputDir    string  `json:"output_dir" yaml:"output_dir"`
}

// ServerConfig holds web surface settings.
type ServerConfig struct {
	Addr              string `json:"addr" yaml:"addr"`
	SessionTTLMinutes int    `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultConfig holds the selections a new session starts with.
type DefaultConfig struct {
	Language string `json:"language" yaml:"language"`
	Template string `json:"template" yaml:"template"`
}

// GetGenerationModel returns the generation model or default if not specified.
func (c *Config) GetGenerationModel() (model string) {
	if c.Models.Generation != "" {
		model = c.Models.Generation
		return model
	}
	model = DefaultModel
	return model
}

// Margin returns the configured PDF margin in inches.
func (c *Config) Margin() (inches float64) {
	inches = DefaultMarginInches
	if c.Export.MarginInches != nil {
		inches = *c.Export.MarginInches
	}
	return inches
}

// SessionTTL returns how long an idle web session is kept.
func (c *Config) SessionTTL() (ttl time.Duration) {
	ttl = time.Duration(c.Server.SessionTTLMinutes) * time.Minute
	return ttl
}

// GenerationTimeout returns the generation timeout as a duration.
func (c *Config) GenerationTimeout() (timeout time.Duration) {
	timeout = time.Duration(c.Generation.TimeoutSeconds) * time.Second
	return timeout
}

// DefaultPath returns the default config file location.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".cv-builder", "config.json")
	return path, err
}

// Load reads configuration from file with .env and environment variable overrides.
// An explicit path must exist; a missing default file yields defaults.
func Load(configPath string) (cfg Config, err error) {
	// .env is optional
	_ = godotenv.Load()

	// Determine config file location
	path := configPath
	explicit := path != ""
	if !explicit {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = parse(path, data, &cfg)
		if err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && !explicit:
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'cv-builder init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	if addr := os.Getenv("CV_BUILDER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	// Validate and fill defaults
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func parse(path string, data []byte, cfg *Config) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
		}
		return err
	}

	err = json.Unmarshal(data, cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return err
	}

	return err
}

// Validate rejects bad values and fills in defaults for unset ones.
func (c *Config) Validate() (err error) {
	if c.Generation.TimeoutSeconds < 0 {
		err = errors.New("generation.timeout_seconds must not be negative")
		return err
	}

	if c.Server.SessionTTLMinutes < 0 {
		err = errors.New("server.session_ttl_minutes must not be negative")
		return err
	}

	if c.Export.MarginInches != nil && *c.Export.MarginInches < 0 {
		err = errors.New("export.margin_inches must not be negative")
		return err
	}

	switch c.Defaults.Language {
	case "":
		c.Defaults.Language = "ar"
	case "ar", "en":
	default:
		err = errors.Errorf("defaults.language must be 'ar' or 'en', got '%s'", c.Defaults.Language)
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "":
		c.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		err = errors.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
		return err
	}

	// Set defaults if not specified
	if c.Defaults.Template == "" {
		c.Defaults.Template = "classic"
	}

	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 60
	}

	if c.Export.MarginInches == nil {
		margin := DefaultMarginInches
		c.Export.MarginInches = &margin
	}

	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	if c.Server.SessionTTLMinutes == 0 {
		c.Server.SessionTTLMinutes = DefaultSessionTTLMinutes
	}

	return err
}

// ValidateGeneration checks that summary generation can be used.
func (c *Config) ValidateGeneration() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config, .env or ANTHROPIC_API_KEY env var)")
		return err
	}
	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	// Create default config
	defaultConfig := Config{
		Models: ModelsConfig{
			Generation: DefaultModel,
		},
	}
	err = defaultConfig.Validate()
	if err != nil {
		return err
	}

	// Write to file
	var data []byte
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(defaultConfig)
	} else {
		data, err = json.MarshalIndent(defaultConfig, "", "  ")
	}
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
