package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CV_BUILDER_ADDR", "")

	// Create a temporary config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	margin := 1.0
	testConfig := Config{
		AnthropicAPIKey: "test-key",
		Export: ExportConfig{
			MarginInches: &margin,
			OutputDir:    "./test-output",
		},
		Defaults: DefaultConfig{
			Language: "en",
			Template: "modern",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Test loading the config.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != testConfig.AnthropicAPIKey {
		t.Errorf("Expected API key %s, got %s", testConfig.AnthropicAPIKey, cfg.AnthropicAPIKey)
	}

	if cfg.Margin() != 1 {
		t.Errorf("Expected margin 1, got %v", cfg.Margin())
	}

	if cfg.Defaults.Language != "en" || cfg.Defaults.Template != "modern" {
		t.Errorf("Unexpected defaults %+v", cfg.Defaults)
	}

	// Unset values get defaults.
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Expected addr %s, got %s", DefaultAddr, cfg.Server.Addr)
	}

	if cfg.GenerationTimeout() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.GenerationTimeout())
	}

	if cfg.GetGenerationModel() != DefaultModel {
		t.Errorf("Expected default model, got %s", cfg.GetGenerationModel())
	}
}

func floatPtr(f float64) (p *float64) {
	p = &f
	return p
}

func TestLoadZeroMargin(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CV_BUILDER_ADDR", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("export:\n  margin_inches: 0\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Margin() != 0 {
		t.Errorf("Expected explicit zero margin to be kept, got %v", cfg.Margin())
	}

	// Absent margin still gets the default.
	var empty Config
	err = empty.Validate()
	if err != nil {
		t.Fatalf("Failed to validate: %v", err)
	}

	if empty.Margin() != DefaultMarginInches {
		t.Errorf("Expected default margin %v, got %v", DefaultMarginInches, empty.Margin())
	}

	if empty.SessionTTL() != 60*time.Minute {
		t.Errorf("Expected 60m session TTL, got %v", empty.SessionTTL())
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CV_BUILDER_ADDR", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `anthropic_api_key: yaml-key
models:
  generation: claude-test
generation:
  timeout_seconds: 5
server:
  addr: ":9000"
log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "yaml-key" {
		t.Errorf("Expected yaml-key, got %s", cfg.AnthropicAPIKey)
	}

	if cfg.GetGenerationModel() != "claude-test" {
		t.Errorf("Expected claude-test, got %s", cfg.GetGenerationModel())
	}

	if cfg.GenerationTimeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.GenerationTimeout())
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Expected :9000, got %s", cfg.Server.Addr)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug, got %s", cfg.Log.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("CV_BUILDER_ADDR", "0.0.0.0:1234")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte(`{"anthropic_api_key":"file-key"}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("Expected env-key, got %s", cfg.AnthropicAPIKey)
	}

	if cfg.Server.Addr != "0.0.0.0:1234" {
		t.Errorf("Expected env addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Error("Expected error loading nonexistent config, got nil")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults when default config is absent, got %v", err)
	}

	if cfg.Defaults.Language != "ar" || cfg.Defaults.Template != "classic" {
		t.Errorf("Unexpected defaults %+v", cfg.Defaults)
	}

	if cfg.ValidateGeneration() == nil {
		t.Error("Expected generation validation to fail without API key")
	}
}

func TestLoadMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte("{"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Expected error loading malformed config, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name:      "empty config gets defaults",
			config:    Config{},
			wantError: false,
		},
		{
			name: "negative margin",
			config: Config{
				Export: ExportConfig{MarginInches: floatPtr(-1)},
			},
			wantError: true,
		},
		{
			name: "negative timeout",
			config: Config{
				Generation: GenerationConfig{TimeoutSeconds: -5},
			},
			wantError: true,
		},
		{
			name: "negative session ttl",
			config: Config{
				Server: ServerConfig{SessionTTLMinutes: -1},
			},
			wantError: true,
		},
		{
			name: "unsupported language",
			config: Config{
				Defaults: DefaultConfig{Language: "fr"},
			},
			wantError: true,
		},
		{
			name: "unknown log level",
			config: Config{
				Log: LogConfig{Level: "verbose"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateGeneration(t *testing.T) {
	cfg := Config{}
	if cfg.ValidateGeneration() == nil {
		t.Error("Expected error without API key, got nil")
	}

	cfg.AnthropicAPIKey = "key"
	if err := cfg.ValidateGeneration(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	// Verify file was created.
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var cfg Config
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if cfg.Export.OutputDir == "" {
		t.Error("Default output dir was not set")
	}

	if cfg.Models.Generation == "" {
		t.Error("Default model was not set")
	}

	if cfg.Margin() != DefaultMarginInches {
		t.Errorf("Expected default margin, got %v", cfg.Margin())
	}
}

func TestInitConfigLeavesGenerationDisabled(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CV_BUILDER_ADDR", "")
	configPath := filepath.Join(t.TempDir(), "config.json")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.AnthropicAPIKey != "" {
		t.Errorf("Expected empty API key, got %q", cfg.AnthropicAPIKey)
	}

	if cfg.ValidateGeneration() == nil {
		t.Error("Expected generation to stay disabled with a fresh config")
	}
}

func TestInitConfigYAML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	configPath := filepath.Join(t.TempDir(), "nested", "config.yml")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated YAML config: %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestInitConfigAlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// Create file first.
	err := os.WriteFile(configPath, []byte("{}"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Try to init - should fail.
	err = InitConfig(configPath)
	if err == nil {
		t.Error("Expected error when config already exists, got nil")
	}
}
