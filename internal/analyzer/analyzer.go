// Package analyzer binds the prompt, the LLM provider, and the retry
// policy into the analysis client the pipeline calls with reduced log
// text.
package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm"
	"github.com/cqNikolaus/JenkinsLLM/internal/prompt"
)

// Analyzer sends reduced build logs to an LLM provider for root-cause
// analysis.
type Analyzer struct {
	provider llm.Provider
	opts     llm.ChatOptions
	retry    llm.RetryPolicy
	logger   *slog.Logger
}

// New creates an Analyzer around the given provider. ChatOptions are
// derived from the configuration once; temperature 0 keeps repeated
// analyses of the same log deterministic.
func New(provider llm.Provider, cfg *config.Config, logger *slog.Logger) (*Analyzer, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		provider: provider,
		opts: llm.ChatOptions{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
		retry: llm.RetryPolicy{
			Attempts: cfg.LLM.Retry.Attempts,
			Delay:    cfg.LLM.Retry.Delay,
			Logger:   logger,
		},
		logger: logger,
	}, nil
}

// Analyze performs a single analysis request without retrying.
func (a *Analyzer) Analyze(ctx context.Context, reducedLog string) (string, error) {
	resp, err := a.provider.Chat(ctx, prompt.Build(reducedLog), &a.opts)
	if err != nil {
		return "", err
	}
	a.logger.Debug("analysis completed", "model", resp.Model, "total_tokens", resp.TokensTotal)
	return resp.Content, nil
}

// AnalyzeWithRetry performs the analysis under the configured retry
// policy: rate-limit responses are retried with a fixed delay up to the
// attempt budget, every other outcome returns immediately.
func (a *Analyzer) AnalyzeWithRetry(ctx context.Context, reducedLog string) (string, error) {
	resp, err := llm.ChatWithRetry(ctx, a.provider, prompt.Build(reducedLog), &a.opts, a.retry)
	if err != nil {
		return "", err
	}
	a.logger.Debug("analysis completed", "model", resp.Model, "total_tokens", resp.TokensTotal)
	return resp.Content, nil
}
