// Package prompt builds the fixed message sequence sent to the LLM for
// build-failure analysis.
package prompt

import (
	"strings"

	"github.com/cqNikolaus/JenkinsLLM/internal/llm"
)

// systemPrompt frames the assistant as a build-failure analyst. It is
// identical for every request so analyses stay comparable across builds.
const systemPrompt = `You are a DevOps expert who analyzes CI build failure logs.

Guidelines:
1. Only reference information present in the provided log excerpt
2. Distinguish observations ("the log shows...") from inferences ("this suggests...")
3. Never invent or hallucinate log lines
4. Identify the earliest signal that something went wrong
5. Keep the analysis focused and actionable`

// userTemplate wraps the reduced log in the analysis instruction.
const (
	userInstruction = "Analyze the following build log excerpt. " +
		"Identify likely causes, the failing component, and suggest concrete fixes:"
	userTrailer = "The excerpt contains the failure-relevant lines of the full console log; " +
		"credentials have been redacted."
)

// Build constructs the message sequence for one analysis request: a
// system message followed by a single user message embedding the
// reduced log text.
func Build(reducedLog string) []llm.Message {
	var sb strings.Builder
	sb.WriteString(userInstruction)
	sb.WriteString("\n\n")
	sb.WriteString(reducedLog)
	sb.WriteString("\n\n")
	sb.WriteString(userTrailer)

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}
}
