package reduce

import "regexp"

// secretPattern matches a credential keyword together with everything
// glued to it, e.g. "token=abc123", "PASSWORD:hunter2", "tokens" in a
// shell export. Matching is case-insensitive and the whole span is
// replaced, so the secret value itself never survives reduction.
var secretPattern = regexp.MustCompile(`(?i)(?:password|token)\S*`)

// Redactor replaces credential spans with a fixed marker.
//
// Unlike correlation-preserving schemes that hash each secret into a
// distinct placeholder, reduced build logs go to a third-party API, so
// every match collapses into the same opaque marker.
type Redactor struct {
	marker string
}

// NewRedactor creates a Redactor using the given marker. An empty
// marker falls back to "[REDACTED]".
func NewRedactor(marker string) *Redactor {
	if marker == "" {
		marker = "[REDACTED]"
	}
	return &Redactor{marker: marker}
}

// Redact replaces every credential span in text with the marker.
func (r *Redactor) Redact(text string) string {
	return secretPattern.ReplaceAllString(text, r.marker)
}

// RedactAndCount redacts text and returns the number of replacements
// made. Useful for verbose diagnostics.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	count := len(secretPattern.FindAllStringIndex(text, -1))
	if count == 0 {
		return text, 0
	}
	return secretPattern.ReplaceAllString(text, r.marker), count
}

// IsSensitive reports whether text contains a credential span without
// performing the replacement.
func (r *Redactor) IsSensitive(text string) bool {
	return secretPattern.MatchString(text)
}
