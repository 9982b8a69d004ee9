package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cqNikolaus/JenkinsLLM/internal/llm/anthropic"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm/ollama"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm/openai"
)

// The provider subpackages define their own message and error types to
// avoid import cycles; these adapters translate both directions and map
// provider-local sentinel errors onto this package's taxonomy so
// callers can use errors.Is uniformly.

type openaiAdapter struct {
	client *openai.Client
}

func (a *openaiAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	oaMessages := make([]openai.Message, len(messages))
	for i, msg := range messages {
		oaMessages[i] = openai.Message{Role: msg.Role, Content: msg.Content}
	}

	var oaOpts *openai.ChatOptions
	if opts != nil {
		oaOpts = &openai.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.client.Chat(ctx, oaMessages, oaOpts)
	if err != nil {
		return nil, mapError(err,
			openai.ErrRateLimited, openai.ErrInvalidResponse, openai.ErrUnavailable)
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

type ollamaAdapter struct {
	provider *ollama.Provider
}

func (a *ollamaAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	olMessages := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		olMessages[i] = ollama.Message{Role: msg.Role, Content: msg.Content}
	}

	var olOpts *ollama.ChatOptions
	if opts != nil {
		olOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.provider.Chat(ctx, olMessages, olOpts)
	if err != nil {
		return nil, mapError(err, nil, nil, ollama.ErrUnavailable)
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

type anthropicAdapter struct {
	client *anthropic.Client
}

func (a *anthropicAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	anMessages := make([]anthropic.Message, len(messages))
	for i, msg := range messages {
		anMessages[i] = anthropic.Message{Role: msg.Role, Content: msg.Content}
	}

	var anOpts *anthropic.ChatOptions
	if opts != nil {
		anOpts = &anthropic.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.client.Chat(ctx, anMessages, anOpts)
	if err != nil {
		return nil, mapError(err,
			anthropic.ErrRateLimited, anthropic.ErrInvalidResponse, anthropic.ErrUnavailable)
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

// mapError rewraps a provider-local sentinel as the matching sentinel
// of this package. Unrecognized errors pass through unchanged (config
// errors in particular must stay detectable).
func mapError(err error, rateLimited, invalid, unavailable error) error {
	switch {
	case rateLimited != nil && errors.Is(err, rateLimited):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case invalid != nil && errors.Is(err, invalid):
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	case unavailable != nil && errors.Is(err, unavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
