// Package llm provides an abstraction layer for Large Language Model
// interactions.
//
// The package defines a Provider interface so the analysis pipeline can
// swap between providers (OpenAI, Ollama, Anthropic) without changing
// consuming code. Transport failures surface as typed errors rather
// than error-shaped strings; rendering a human-readable sentence is the
// caller's job at the outermost boundary.
//
// Example usage:
//
//	provider, err := llm.NewProvider(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	messages := []llm.Message{
//	    {Role: "system", Content: "You are a build failure analyst."},
//	    {Role: "user", Content: "Analyze this build log..."},
//	}
//
//	resp, err := provider.Chat(ctx, messages, &llm.ChatOptions{Temperature: 0})
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm/anthropic"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm/ollama"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm/openai"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	// The context can be used to cancel the request.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	// Model specifies which model to use (e.g., "gpt-4o-mini", "llama3.2")
	Model string

	// Temperature controls randomness (0.0 = deterministic).
	// Build-failure analysis uses 0 for reproducible output.
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// Response represents a complete LLM response.
type Response struct {
	// Content is the generated text
	Content string

	// Model is the name of the model that generated the response
	Model string

	// TokensPrompt is the number of tokens in the prompt
	TokensPrompt int

	// TokensTotal is the total number of tokens (prompt + completion)
	TokensTotal int
}

// Common errors returned by LLM providers.
var (
	// ErrUnavailable indicates the provider is not reachable or the
	// request failed at the transport level.
	ErrUnavailable = errors.New("llm provider is not reachable")

	// ErrRateLimited indicates the provider rejected the request with a
	// rate-limit response (HTTP 429 / "too many requests"). This is the
	// only error the retry wrapper retries.
	ErrRateLimited = errors.New("llm provider rate limit exceeded")

	// ErrInvalidResponse indicates the provider answered with a body
	// missing the expected structure.
	ErrInvalidResponse = errors.New("llm provider returned an unexpected response shape")

	// ErrRetriesExhausted indicates every attempt of the retry wrapper
	// was rate limited.
	ErrRetriesExhausted = errors.New("rate limit still exceeded after all attempts")
)

// NewProvider creates an LLM provider based on the configuration.
// Returns a ConfigError when the selected provider's credential is
// missing, so the caller reports it once and does not retry.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providerType := strings.ToLower(cfg.LLM.Provider)
	logger.Debug("creating llm provider", "type", providerType)

	switch providerType {
	case "openai":
		client, err := openai.New(openai.Config{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &openaiAdapter{client: client}, nil

	case "ollama":
		provider, err := ollama.New(ollama.Config{
			Host:  cfg.LLM.Ollama.Host,
			Model: cfg.LLM.Ollama.Model,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ollamaAdapter{provider: provider}, nil

	case "anthropic":
		client, err := anthropic.New(anthropic.Config{
			APIKey:    cfg.LLM.Anthropic.APIKey,
			Model:     cfg.LLM.Anthropic.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &anthropicAdapter{client: client}, nil

	case "":
		return nil, &config.ConfigError{Reason: "llm provider not specified"}

	default:
		return nil, &config.ConfigError{
			Reason: fmt.Sprintf("unknown llm provider: %s (supported: openai, ollama, anthropic)", providerType),
		}
	}
}
