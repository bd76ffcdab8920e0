// Package config provides configuration loading for the ID extraction service.
// Supports YAML files, .env files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderVertex     = "vertex"
)

// Config holds all configuration for the service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Render        RenderConfig        `yaml:"render"`
	LLM           LLMConfig           `yaml:"llm"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// RenderConfig holds first-page rasterization settings.
type RenderConfig struct {
	DPI float64 `yaml:"dpi"`
}

// LLMConfig holds model provider settings. Credentials are only ever read
// from here.
type LLMConfig struct {
	Provider    string           `yaml:"provider"` // openrouter, openai or vertex
	Model       string           `yaml:"model"`
	Timeout     time.Duration    `yaml:"timeout"`
	Temperature float64          `yaml:"temperature"`
	MaxTokens   int              `yaml:"max_tokens"`
	OpenRouter  OpenRouterConfig `yaml:"openrouter"`
	OpenAI      OpenAIConfig     `yaml:"openai"`
	Vertex      VertexConfig     `yaml:"vertex"`
}

// OpenRouterConfig holds OpenRouter settings.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Referer string `yaml:"referer"`
	Title   string `yaml:"title"`
}

// OpenAIConfig holds settings for any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VertexConfig holds Vertex AI settings. Authentication uses application
// default credentials.
type VertexConfig struct {
	ProjectID string `yaml:"project_id"`
	Region    string `yaml:"region"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     90 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			RequestTimeout:   80 * time.Second,
			MaxUploadBytes:   10 << 20,
			AllowedOrigins:   []string{"*"},
		},
		Render: RenderConfig{
			DPI: 150,
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenRouter,
			Model:       "google/gemini-2.5-flash",
			Timeout:     60 * time.Second,
			Temperature: 0,
			MaxTokens:   1024,
			OpenRouter: OpenRouterConfig{
				BaseURL: "https://openrouter.ai/api/v1",
				Referer: "https://github.com/spherical/idcard-extractor",
				Title:   "ID Card Extractor",
			},
			Vertex: VertexConfig{
				Region: "us-central1",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "idcard-extractor",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.Render.DPI < 36 || c.Render.DPI > 600 {
		return fmt.Errorf("render dpi must be between 36 and 600, got %v", c.Render.DPI)
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}

	switch c.LLM.Provider {
	case ProviderOpenRouter:
		if c.LLM.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderVertex:
		if c.LLM.Vertex.ProjectID == "" || c.LLM.Vertex.Region == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID and VERTEX_REGION are required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.Server.MaxUploadBytes = n
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv("RENDER_DPI"); v != "" {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RENDER_DPI: %w", err)
		}
		cfg.Render.DPI = dpi
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.LLM.OpenRouter.APIKey = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.OpenAI.BaseURL = v
	}

	if v := os.Getenv("VERTEX_PROJECT_ID"); v != "" {
		cfg.LLM.Vertex.ProjectID = v
	}

	if v := os.Getenv("VERTEX_REGION"); v != "" {
		cfg.LLM.Vertex.Region = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
