package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sanhariharan/ViralFlow.ai/core/cost"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/slogobs"
)

// LLM backends.
const (
	BackendHTTP = "http"
	BackendEino = "eino"
)

var (
	// ErrMissingAPIKey is returned by Validate when GROQ_API_KEY is unset.
	ErrMissingAPIKey = errors.New("config: GROQ_API_KEY is required")

	// ErrInvalid wraps every other validation failure.
	ErrInvalid = errors.New("config: invalid value")
)

// Config is the full runtime configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// LLMConfig selects and tunes the language model.
type LLMConfig struct {
	Backend     string        `yaml:"backend" envconfig:"LLM_BACKEND"`
	APIKey      string        `yaml:"api_key" envconfig:"GROQ_API_KEY"`
	BaseURL     string        `yaml:"base_url" envconfig:"GROQ_BASE_URL"`
	Model       string        `yaml:"model" envconfig:"LLM_MODEL"`
	Temperature float32       `yaml:"temperature" envconfig:"LLM_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT"`
	LogLevel    string        `yaml:"log_level" envconfig:"LLM_LOG_LEVEL"`

	// Retries for rate-limited or overloaded backends. Zero disables them.
	MaxRetries   int           `yaml:"max_retries" envconfig:"LLM_MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"LLM_RETRY_BACKOFF"`

	// Prices in USD per million tokens, used only to log the estimated
	// cost of each generation. Zero disables the estimate.
	InputCostPerMillion  float64 `yaml:"input_cost_per_million" envconfig:"LLM_INPUT_COST_PER_MILLION"`
	OutputCostPerMillion float64 `yaml:"output_cost_per_million" envconfig:"LLM_OUTPUT_COST_PER_MILLION"`
}

// Pricing returns the configured token prices.
func (c LLMConfig) Pricing() cost.ModelCost {
	return cost.ModelCost{
		InputCostPerMillion:  c.InputCostPerMillion,
		OutputCostPerMillion: c.OutputCostPerMillion,
	}
}

// SearchConfig holds the web and image search credentials. Both keys are
// optional; the dependent steps degrade when they are missing.
type SearchConfig struct {
	TavilyAPIKey string        `yaml:"tavily_api_key" envconfig:"TAVILY_API_KEY"`
	SerperAPIKey string        `yaml:"serper_api_key" envconfig:"SERPER_API_KEY"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"SEARCH_TIMEOUT"`
	MaxResults   int           `yaml:"max_results" envconfig:"SEARCH_MAX_RESULTS"`
	ImageCount   int           `yaml:"image_count" envconfig:"IMAGE_COUNT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// PipelineConfig bounds one generation run.
type PipelineConfig struct {
	Timeout        time.Duration `yaml:"timeout" envconfig:"PIPELINE_TIMEOUT"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"PIPELINE_MAX_CONCURRENCY"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Backend:     BackendHTTP,
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
			LogLevel:    "standard",

			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		Search: SearchConfig{
			Timeout:    15 * time.Second,
			MaxResults: 5,
			ImageCount: 4,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			Timeout: 3 * time.Minute,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: string(slogobs.FormatText),
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), a .env file in the working directory if present, and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}

	switch c.LLM.Backend {
	case BackendHTTP, BackendEino:
	default:
		return fmt.Errorf("%w: LLM_BACKEND must be %q or %q, got %q", ErrInvalid, BackendHTTP, BackendEino, c.LLM.Backend)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: LLM_MODEL is empty", ErrInvalid)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: LLM_TEMPERATURE must be within [0, 2], got %v", ErrInvalid, c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("%w: LLM_MAX_TOKENS must not be negative", ErrInvalid)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("%w: LLM_MAX_RETRIES must not be negative", ErrInvalid)
	}
	if err := c.LLM.Pricing().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 20 {
		return fmt.Errorf("%w: SEARCH_MAX_RESULTS must be within [1, 20], got %d", ErrInvalid, c.Search.MaxResults)
	}
	if c.Search.ImageCount < 1 {
		return fmt.Errorf("%w: IMAGE_COUNT must be positive, got %d", ErrInvalid, c.Search.ImageCount)
	}
	if c.Pipeline.MaxConcurrency < 0 {
		return fmt.Errorf("%w: PIPELINE_MAX_CONCURRENCY must not be negative", ErrInvalid)
	}
	for name, value := range map[string]time.Duration{
		"LLM_TIMEOUT":       c.LLM.Timeout,
		"LLM_RETRY_BACKOFF": c.LLM.RetryBackoff,
		"SEARCH_TIMEOUT":    c.Search.Timeout,
		"PIPELINE_TIMEOUT":  c.Pipeline.Timeout,
		"SHUTDOWN_TIMEOUT":  c.Server.ShutdownTimeout,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
		}
	}
	if _, err := slogobs.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalid, err)
	}
	return nil
}
