// Package reduce shrinks a raw build log to the lines worth sending to
// a costly completion API.
//
// The selection strategy is the union of two criteria:
//
//  1. Tail set: the last N lines of the log (N = tail budget), because
//     build failures almost always surface near the end of the console
//     output.
//  2. Keyword set: every line anywhere in the log matching a
//     failure-keyword pattern (error, exception, failed, traceback).
//
// Selected lines keep their original relative order, are deduplicated,
// redacted, and whitespace-trimmed.
package reduce

import (
	"regexp"
	"sort"
	"strings"
)

// keywordPattern marks lines likely describing a failure. It is scanned
// across the entire log, not just the tail, so an early root cause
// (e.g. a compile error scrolled off by teardown noise) is retained.
var keywordPattern = regexp.MustCompile(`(?i)error|exception|failed|fail|traceback`)

// Stats describes one reduction for diagnostics.
type Stats struct {
	LinesIn    int
	LinesKept  int
	Keyword    int // lines selected by the keyword criterion
	Redactions int // credential spans replaced
}

// Reducer applies the tail-union-keyword selection with redaction.
// The zero value is not usable; construct with New.
type Reducer struct {
	tailBudget int
	redactor   *Redactor
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithTailBudget sets how many trailing lines are always kept.
// Default is 50. A non-positive budget disables the tail criterion,
// leaving only keyword-matching lines.
func WithTailBudget(n int) Option {
	return func(r *Reducer) {
		r.tailBudget = n
	}
}

// WithRedactMarker sets the replacement text for credential spans.
func WithRedactMarker(marker string) Option {
	return func(r *Reducer) {
		r.redactor = NewRedactor(marker)
	}
}

// New creates a Reducer with the given options.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		tailBudget: 50,
		redactor:   NewRedactor(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce returns the reduced, redacted log text.
func (r *Reducer) Reduce(raw string) string {
	out, _ := r.ReduceWithStats(raw)
	return out
}

// ReduceWithStats returns the reduced text together with selection and
// redaction counts.
//
// An empty input yields an empty output. For non-empty input with a
// positive tail budget the result is never empty: the tail set always
// selects at least one line even when no keyword matches.
func (r *Reducer) ReduceWithStats(raw string) (string, Stats) {
	if raw == "" {
		return "", Stats{}
	}

	lines := splitLines(raw)
	n := len(lines)
	stats := Stats{LinesIn: n}

	tailStart := n
	if r.tailBudget > 0 {
		tailStart = n - r.tailBudget
		if tailStart < 0 {
			tailStart = 0
		}
	}

	selected := make(map[int]struct{}, n-tailStart)
	for i := tailStart; i < n; i++ {
		selected[i] = struct{}{}
	}
	for i, line := range lines {
		if keywordPattern.MatchString(line) {
			stats.Keyword++
			selected[i] = struct{}{}
		}
	}

	// Sorting the union restores document order and drops duplicates
	// of lines that satisfied both criteria.
	indexes := make([]int, 0, len(selected))
	for i := range selected {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	kept := make([]string, 0, len(indexes))
	for _, i := range indexes {
		line, redacted := r.redactor.RedactAndCount(lines[i])
		stats.Redactions += redacted
		kept = append(kept, strings.TrimSpace(line))
	}
	stats.LinesKept = len(kept)

	return strings.Join(kept, "\n"), stats
}

// splitLines splits raw text into lines of unbounded length, tolerating
// CRLF endings and a missing final newline. Console logs embed megabyte
// JSON blobs and wrapped stack traces on a single line, so no per-line
// cap is applied.
func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
