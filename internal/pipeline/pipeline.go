// Package pipeline sequences the three analysis stages: fetch the
// console log, reduce it, send it for analysis.
//
// The sequence is strictly linear; no stage re-enters an earlier one.
// An empty stage result aborts the run with a user-facing sentence
// instead of an error, matching the tool's contract of exiting cleanly
// with a printed diagnostic.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
	"github.com/cqNikolaus/JenkinsLLM/internal/reduce"
)

// Abort sentences printed to stdout when a stage yields nothing.
const (
	MsgNoLog      = "Could not retrieve the build log. Aborting."
	MsgNoFindings = "No relevant errors found in the retrieved log."
)

// Fetcher retrieves the raw console text of one build.
type Fetcher interface {
	ConsoleLog(ctx context.Context, ref config.BuildRef) (string, error)
}

// Analyzer turns reduced log text into an analysis string.
type Analyzer interface {
	AnalyzeWithRetry(ctx context.Context, reducedLog string) (string, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	Fetcher  Fetcher
	Reducer  *reduce.Reducer
	Analyzer Analyzer
	Logger   *slog.Logger
}

// Result of one pipeline run. Exactly one of Analysis and Aborted is
// non-empty on success.
type Result struct {
	// Analysis is the model's answer, passed through unmodified.
	Analysis string

	// Aborted carries the abort sentence when a stage yielded nothing.
	Aborted string

	// Stats describes the reduction, for verbose diagnostics.
	Stats reduce.Stats
}

// Run fetches the referenced build's console log and analyzes it.
// Transport failures during fetch abort with MsgNoLog rather than
// propagating: a missing log is an expected condition, not a crash.
func (p *Pipeline) Run(ctx context.Context, ref config.BuildRef) (*Result, error) {
	raw, err := p.Fetcher.ConsoleLog(ctx, ref)
	if err != nil {
		p.logger().Error("failed to fetch console log", "error", err)
		return &Result{Aborted: MsgNoLog}, nil
	}
	return p.RunLocal(ctx, raw)
}

// RunLocal reduces and analyzes already-obtained console text. No
// analysis request is made when the log or its reduction is empty.
func (p *Pipeline) RunLocal(ctx context.Context, raw string) (*Result, error) {
	if raw == "" {
		return &Result{Aborted: MsgNoLog}, nil
	}

	reduced, stats := p.Reducer.ReduceWithStats(raw)
	p.logger().Debug("reduced console log",
		"lines_in", stats.LinesIn,
		"lines_kept", stats.LinesKept,
		"keyword_matches", stats.Keyword,
		"redactions", stats.Redactions)

	if reduced == "" {
		return &Result{Aborted: MsgNoFindings, Stats: stats}, nil
	}

	analysis, err := p.Analyzer.AnalyzeWithRetry(ctx, reduced)
	if err != nil {
		return nil, err
	}
	return &Result{Analysis: analysis, Stats: stats}, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
