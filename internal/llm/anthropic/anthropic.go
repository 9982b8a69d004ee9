// Package anthropic provides an Anthropic implementation of the
// llm.Provider interface via the official SDK.
//
// Note: To avoid import cycles, this package defines its own types that
// match the llm.Provider interface. The parent llm package imports this
// package and adapts them.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

// DefaultMaxTokens bounds the response when the configuration does not.
// The Messages API requires an explicit limit.
const DefaultMaxTokens = 4096

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
	ErrUnavailable     = errors.New("anthropic api is not reachable")
	ErrRateLimited     = errors.New("anthropic api rate limit exceeded")
	ErrInvalidResponse = errors.New("unexpected response shape from the anthropic api")
)

// Config holds Anthropic-specific configuration.
type Config struct {
	// APIKey authenticates the request. Required.
	APIKey string

	// Model is the default model (e.g., "claude-3-5-sonnet-20241022").
	Model string

	// MaxTokens bounds the response length; 0 uses DefaultMaxTokens.
	MaxTokens int
}

// Client wraps the official SDK client.
type Client struct {
	client *sdk.Client
	config Config
	logger *slog.Logger
}

// New creates a new Anthropic client. A missing API key is a
// configuration error: reported once by the caller, never retried.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, &config.ConfigError{
			Reason: "anthropic api key not set: set ANTHROPIC_API_KEY or llm.anthropic.api_key in config",
		}
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	client := sdk.NewClient(option.WithAPIKey(cfg.APIKey))

	logger.Debug("created anthropic client", "model", cfg.Model)

	return &Client{
		client: &client,
		config: cfg,
		logger: logger,
	}, nil
}

// Chat sends messages to the Messages API and returns the concatenated
// text blocks of the response. System-role messages become system
// blocks; the rest map to user/assistant turns.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model := c.config.Model
	var temperature float32
	maxTokens := c.config.MaxTokens
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		if opts.MaxTokens > 0 {
			maxTokens = opts.MaxTokens
		}
	}

	var system []sdk.TextBlockParam
	var turns []sdk.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, sdk.TextBlockParam{Text: msg.Content})
		case "assistant":
			turns = append(turns, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		default:
			turns = append(turns, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}

	c.logger.Debug("sending chat request", "model", model, "messages", len(messages), "temperature", temperature)

	resp, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(model),
		MaxTokens:   int64(maxTokens),
		System:      system,
		Messages:    turns,
		Temperature: sdk.Float(float64(temperature)),
	})
	if err != nil {
		var apierr *sdk.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("chat request rate limited")
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		c.logger.Error("chat request failed", "error", err, "model", model)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var content string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			content += resp.Content[i].Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("%w: no text content blocks", ErrInvalidResponse)
	}

	c.logger.Debug("chat request completed",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.InputTokens,
		"total_tokens", resp.Usage.InputTokens+resp.Usage.OutputTokens)

	return &Response{
		Content:      content,
		Model:        string(resp.Model),
		TokensPrompt: int(resp.Usage.InputTokens),
		TokensTotal:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}
