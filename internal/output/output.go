// Package output renders the analysis result and its build-context
// header, with ANSI color when stdout is a terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts a string flag value to a ColorMode,
// defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode
// and TTY detection.
func shouldColorize(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
}

// Printer writes sections of the final report.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer for the given writer.
func New(w io.Writer, mode ColorMode) *Printer {
	return &Printer{w: w, color: shouldColorize(mode, w)}
}

// Header prints a bold section header.
func (p *Printer) Header(text string) {
	if p.color {
		fmt.Fprintf(p.w, "%s%s== %s ==%s\n", colorBold, colorCyan, text, colorReset)
		return
	}
	fmt.Fprintf(p.w, "== %s ==\n", text)
}

// Field prints one key/value line of the build-context header.
func (p *Printer) Field(key, value string) {
	if p.color {
		fmt.Fprintf(p.w, "%s%s:%s %s\n", colorGray, key, colorReset, value)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", key, value)
}

// Body prints text followed by a newline, uncolored; the analysis
// result passes through unmodified.
func (p *Printer) Body(text string) {
	fmt.Fprintln(p.w, text)
}
