package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Adapter
	Adapter        string // "ollama" (CLI subprocess) or "openai" (HTTP endpoint)
	OllamaModel    string
	AdapterTimeout int // seconds, hard cap on a single adapter call

	// OpenAI-compatible endpoint (used when Adapter is "openai")
	LLMBaseURL string
	LLMAPIKey  string

	// Permissions granted to incoming requests
	GrantedPermissions []string

	// Speech-to-text
	WhisperCLI   string
	WhisperModel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		Env:                getEnv("ENV", "development"),
		Adapter:            getEnv("ADAPTER", "ollama"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llama3.1:8b"),
		AdapterTimeout:     getEnvInt("ADAPTER_TIMEOUT", 60),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		GrantedPermissions: splitList(getEnv("GRANTED_PERMISSIONS", "file")),
		WhisperCLI:         getEnv("WHISPER_CLI", "whisper-cli"),
		WhisperModel:       getEnv("WHISPER_MODEL", "small"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Adapter != "ollama" && c.Adapter != "openai" {
		return fmt.Errorf("ADAPTER must be 'ollama' or 'openai', got %q", c.Adapter)
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("OLLAMA_MODEL is required")
	}
	if c.Adapter == "openai" && c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required when ADAPTER is 'openai'")
	}
	if c.AdapterTimeout <= 0 {
		return fmt.Errorf("ADAPTER_TIMEOUT must be positive")
	}
	// LLM API key is optional; LiteLLM-style proxies accept a dummy key
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
