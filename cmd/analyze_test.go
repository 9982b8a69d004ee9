package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm"
)

func TestRenderFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "rate limited",
			err:  fmt.Errorf("chat: %w", llm.ErrRateLimited),
			want: "The analysis service is rate limited. Aborting.",
		},
		{
			name: "retries exhausted wins over rate limited",
			err:  fmt.Errorf("%w: %w", llm.ErrRetriesExhausted, llm.ErrRateLimited),
			want: "The analysis service stayed rate limited after all retries. Aborting.",
		},
		{
			name: "unavailable",
			err:  fmt.Errorf("chat: %w", llm.ErrUnavailable),
			want: "The analysis service is unavailable. Aborting.",
		},
		{
			name: "invalid response",
			err:  fmt.Errorf("chat: %w", llm.ErrInvalidResponse),
			want: "The analysis service returned an unusable response. Aborting.",
		},
		{
			name: "unknown error is not rendered",
			err:  errors.New("something else"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderFailure(tt.err); got != tt.want {
				t.Errorf("renderFailure() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newOverrideTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "analyze"}
	cmd.Flags().String("base-url", "", "")
	cmd.Flags().String("job", "", "")
	cmd.Flags().String("build", "", "")
	cmd.Flags().Int("tail-budget", 0, "")
	cmd.Flags().String("provider", "", "")
	cmd.Flags().String("model", "", "")
	return cmd
}

func TestApplyAnalyzeOverrides(t *testing.T) {
	cmd := newOverrideTestCmd()
	if err := cmd.Flags().Parse([]string{
		"--job", "deploy-prod",
		"--build", "42",
		"--tail-budget", "100",
		"--provider", "ollama",
	}); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Jenkins.BaseURL = "https://jenkins.example.com"
	cfg.Jenkins.JobName = "from-env"
	cfg.LLM.Provider = "openai"
	cfg.ApplyDefaults()

	applyAnalyzeOverrides(cmd, cfg)

	if cfg.Jenkins.JobName != "deploy-prod" {
		t.Errorf("JobName = %q, want flag value", cfg.Jenkins.JobName)
	}
	if cfg.Jenkins.BuildNumber != "42" {
		t.Errorf("BuildNumber = %q, want flag value", cfg.Jenkins.BuildNumber)
	}
	if cfg.Reduce.TailBudget != 100 {
		t.Errorf("TailBudget = %d, want 100", cfg.Reduce.TailBudget)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", cfg.LLM.Provider)
	}
	// Unchanged flags leave existing values alone.
	if cfg.Jenkins.BaseURL != "https://jenkins.example.com" {
		t.Errorf("BaseURL = %q, want untouched value", cfg.Jenkins.BaseURL)
	}
}
