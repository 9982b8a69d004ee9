// Package config provides configuration types and helpers for jenkinsllm.
//
// Configuration is materialized exactly once at the entry point and
// passed by parameter to every component. No package outside cmd reads
// the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default values applied when neither config file, environment, nor
// flags provide one.
const (
	DefaultTailBudget    = 50
	DefaultRedactMarker  = "[REDACTED]"
	DefaultProvider      = "openai"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOllamaModel   = "llama3.2"
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultRetryAttempts = 1
	DefaultRetryDelay    = 20 * time.Second
	DefaultHTTPTimeout   = 30 * time.Second
)

// Config holds the application-wide configuration.
type Config struct {
	Verbose bool          `mapstructure:"verbose"`
	Jenkins JenkinsConfig `mapstructure:"jenkins"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Reduce  ReduceConfig  `mapstructure:"reduce"`
}

// JenkinsConfig identifies the Jenkins instance and the failed build to
// analyze, plus the basic-auth credentials for the console log endpoint.
type JenkinsConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	JobName     string `mapstructure:"job_name"`
	BuildNumber string `mapstructure:"build_number"`
	User        string `mapstructure:"user"`
	APIToken    string `mapstructure:"api_token"`
}

// BuildRef identifies one Jenkins build. Construct it with NewBuildRef so
// an incomplete reference is rejected before any network call.
type BuildRef struct {
	BaseURL     string
	JobName     string
	BuildNumber string
}

// NewBuildRef validates and normalizes a build reference.
// A trailing slash on the base URL is removed.
func NewBuildRef(baseURL, jobName, buildNumber string) (BuildRef, error) {
	if baseURL == "" || jobName == "" || buildNumber == "" {
		return BuildRef{}, &ConfigError{
			Reason: "jenkins parameters incomplete: base URL, job name, and build number are all required",
		}
	}
	return BuildRef{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		JobName:     jobName,
		BuildNumber: buildNumber,
	}, nil
}

// BuildRef constructs the build reference from the Jenkins section.
func (j JenkinsConfig) BuildRef() (BuildRef, error) {
	return NewBuildRef(j.BaseURL, j.JobName, j.BuildNumber)
}

// LLMConfig holds configuration for LLM providers.
type LLMConfig struct {
	// Provider selects which LLM to use: "openai", "ollama", "anthropic"
	Provider string `mapstructure:"provider"`

	// Temperature applies to all providers; 0 keeps analyses deterministic.
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	Retry RetryConfig `mapstructure:"retry"`

	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// RetryConfig bounds the rate-limit retry loop.
type RetryConfig struct {
	// Attempts is the TOTAL number of calls, not the number of extra
	// tries after the first. Attempts=1 means a single call and no
	// backoff sleep.
	Attempts int `mapstructure:"attempts"`

	// Delay is the fixed pause between rate-limited attempts.
	Delay time.Duration `mapstructure:"delay"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`  // Optional: read from OPENAI_API_KEY if empty
	Model   string `mapstructure:"model"`    // e.g., "gpt-4o-mini", "gpt-4o"
	BaseURL string `mapstructure:"base_url"` // Optional: for compatible endpoints
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`  // API endpoint
	Model string `mapstructure:"model"` // Default model name
}

// AnthropicConfig holds Anthropic/Claude-specific settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"` // Optional: read from ANTHROPIC_API_KEY if empty
	Model  string `mapstructure:"model"`   // e.g. "claude-3-5-sonnet-20241022"
}

// ReduceConfig controls the log reduction heuristic.
type ReduceConfig struct {
	// TailBudget is how many trailing lines are always kept.
	TailBudget int `mapstructure:"tail_budget"`

	// RedactMarker replaces password/token spans in selected lines.
	RedactMarker string `mapstructure:"redact_marker"`
}

// ConfigError marks a missing or invalid configuration value. The cmd
// layer reports these distinctly from transport failures and never
// retries them.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ApplyDefaults fills zero values with package defaults.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = DefaultOpenAIModel
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if c.LLM.Ollama.Model == "" {
		c.LLM.Ollama.Model = DefaultOllamaModel
	}
	if c.LLM.Ollama.Host == "" {
		c.LLM.Ollama.Host = DefaultOllamaHost
	}
	if c.LLM.Retry.Attempts <= 0 {
		c.LLM.Retry.Attempts = DefaultRetryAttempts
	}
	if c.LLM.Retry.Delay <= 0 {
		c.LLM.Retry.Delay = DefaultRetryDelay
	}
	if c.Reduce.TailBudget == 0 {
		c.Reduce.TailBudget = DefaultTailBudget
	}
	if c.Reduce.RedactMarker == "" {
		c.Reduce.RedactMarker = DefaultRedactMarker
	}
}
