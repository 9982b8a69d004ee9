// Package openai implements a minimal client for the OpenAI
// chat-completions API.
//
// Note: To avoid import cycles, this package defines its own types that
// match the llm.Provider interface. The parent llm package imports this
// package and adapts them.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions configures chat behavior.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Response represents a complete chat completion.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// Common errors
var (
	ErrUnavailable     = errors.New("openai api is not reachable")
	ErrRateLimited     = errors.New("openai api rate limit exceeded")
	ErrInvalidResponse = errors.New("unexpected response shape from the openai api")
)

// Config holds OpenAI-specific configuration.
type Config struct {
	// APIKey authenticates the bearer request. Required.
	APIKey string

	// Model is the default model (e.g., "gpt-4o-mini").
	Model string

	// BaseURL allows pointing at OpenAI-compatible endpoints.
	// Defaults to https://api.openai.com/v1.
	BaseURL string
}

// Client is an OpenAI chat-completions client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// New creates a new OpenAI client. A missing API key is a configuration
// error: reported once by the caller, never retried.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, &config.ConfigError{
			Reason: "openai api key not set: set OPENAI_API_KEY or llm.openai.api_key in config",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = config.DefaultOpenAIModel
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.DefaultHTTPTimeout},
		config:     cfg,
		logger:     logger,
	}, nil
}

// Wire types for the chat-completions endpoint.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat sends messages to the chat-completions endpoint and returns the
// first choice's content.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model := c.config.Model
	var temperature float32
	maxTokens := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.Debug("sending chat request", "model", model, "messages", len(messages), "temperature", temperature)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("chat request failed", "error", err, "model", model)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if rateLimited(resp.StatusCode, body) {
		c.logger.Warn("chat request rate limited", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("chat request rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(body, 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: missing choices[0].message.content", ErrInvalidResponse)
	}
	// A present-but-empty content string is as unusable as a missing
	// one: callers would print a blank analysis. Classified the same.
	if parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty choices[0].message.content", ErrInvalidResponse)
	}

	c.logger.Debug("chat request completed",
		"model", parsed.Model,
		"duration", time.Since(start),
		"prompt_tokens", parsed.Usage.PromptTokens,
		"total_tokens", parsed.Usage.TotalTokens)

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}
	return &Response{
		Content:      parsed.Choices[0].Message.Content,
		Model:        respModel,
		TokensPrompt: parsed.Usage.PromptTokens,
		TokensTotal:  parsed.Usage.TotalTokens,
	}, nil
}

// rateLimited recognizes both the 429 status and proxies that rewrite
// it into a body phrase.
func rateLimited(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 400 && strings.Contains(strings.ToLower(string(body)), "too many requests")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
