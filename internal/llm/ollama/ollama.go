// Package ollama provides an Ollama implementation of the llm.Provider
// interface, for analyzing build logs with a locally hosted model
// instead of a paid API.
//
// Note: To avoid import cycles, this package defines its own types that
// match the llm.Provider interface. The parent llm package imports this
// package and adapts them.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Provider implements the LLM provider interface for Ollama.
type Provider struct {
	client *api.Client
	config Config
	logger *slog.Logger
}

// Config holds Ollama-specific configuration.
type Config struct {
	// Host is the Ollama API endpoint (e.g., "http://localhost:11434")
	Host string

	// Model is the default model to use (e.g., "llama3.2")
	Model string
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures chat behavior.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// Common errors
var (
	ErrUnavailable     = errors.New("ollama is not reachable")
	ErrContextCanceled = errors.New("operation was canceled")
)

// New creates a new Ollama provider.
// If cfg.Host is empty, it uses the OLLAMA_HOST environment variable or
// defaults to http://localhost:11434.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	var client *api.Client
	if cfg.Host != "" {
		parsedURL, err := url.Parse(cfg.Host)
		if err != nil {
			logger.Error("invalid ollama host URL", "host", cfg.Host, "error", err)
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}
		client = api.NewClient(parsedURL, http.DefaultClient)
		logger.Debug("created ollama client with explicit host", "host", cfg.Host)
	} else {
		envClient, err := api.ClientFromEnvironment()
		if err != nil {
			logger.Error("failed to create ollama client from environment", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		client = envClient
		logger.Debug("created ollama client from environment")
	}

	if cfg.Model == "" {
		cfg.Model = "llama3.2"
		logger.Debug("using default model", "model", cfg.Model)
	}

	return &Provider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Chat sends messages to Ollama and returns a complete response.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model := p.config.Model
	temperature := float32(0)
	maxTokens := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
	}

	p.logger.Debug("sending chat request", "model", model, "messages", len(messages), "temperature", temperature)

	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := &api.ChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Options: map[string]interface{}{
			"temperature": temperature,
		},
		Stream: new(bool), // false - we want a complete response
	}
	if maxTokens > 0 {
		req.Options["num_predict"] = maxTokens
	}

	var response api.ChatResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		p.logger.Error("chat request failed", "error", err, "model", model)
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p.logger.Debug("chat request completed",
		"model", response.Model,
		"prompt_tokens", response.PromptEvalCount,
		"total_tokens", response.EvalCount)

	return &Response{
		Content:      response.Message.Content,
		Model:        response.Model,
		TokensPrompt: response.PromptEvalCount,
		TokensTotal:  response.PromptEvalCount + response.EvalCount,
	}, nil
}
