package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cqNikolaus/JenkinsLLM/internal/analyzer"
	"github.com/cqNikolaus/JenkinsLLM/internal/config"
	"github.com/cqNikolaus/JenkinsLLM/internal/jenkins"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm"
	"github.com/cqNikolaus/JenkinsLLM/internal/output"
	"github.com/cqNikolaus/JenkinsLLM/internal/pipeline"
	"github.com/cqNikolaus/JenkinsLLM/internal/reduce"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch, reduce, and analyze a failed build's console log",
	Long: `Analyze fetches the console log of the referenced build, reduces it
to the failure-relevant lines, and asks the configured LLM provider for
a root cause analysis.

With --file the log is read locally instead of fetched from Jenkins, so
the command works without Jenkins credentials.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("base-url", "", "Jenkins base URL (or JENKINS_BASE_URL)")
	analyzeCmd.Flags().String("job", "", "name of the failed job (or FAILED_JOB_NAME)")
	analyzeCmd.Flags().String("build", "", "build number of the failed job (or FAILED_BUILD_NUMBER)")
	analyzeCmd.Flags().StringP("file", "f", "", "analyze a local console log file instead of fetching from Jenkins")
	analyzeCmd.Flags().Int("tail-budget", 0, "number of trailing log lines always kept")
	analyzeCmd.Flags().String("provider", "", "LLM provider: openai, ollama, anthropic")
	analyzeCmd.Flags().String("model", "", "model override for the selected provider")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalyzeOverrides(cmd, cfg)

	logger := newLogger(cfg.Verbose)
	printer := output.New(cmd.OutOrStdout(), output.ParseColorMode(colorFlag))
	ctx := cmd.Context()

	// Build the analyzer up front: a missing API key is reported before
	// any network traffic happens.
	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return err
	}
	anlz, err := analyzer.New(provider, cfg, logger)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Reducer: reduce.New(
			reduce.WithTailBudget(cfg.Reduce.TailBudget),
			reduce.WithRedactMarker(cfg.Reduce.RedactMarker),
		),
		Analyzer: anlz,
		Logger:   logger,
	}

	var (
		res  *pipeline.Result
		info *jenkins.BuildInfo
	)
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		res, err = p.RunLocal(ctx, string(raw))
		if err != nil {
			return reportAnalysisFailure(cmd, err)
		}
	} else {
		ref, err := cfg.Jenkins.BuildRef()
		if err != nil {
			return err
		}
		client := jenkins.NewClient(cfg.Jenkins.User, cfg.Jenkins.APIToken, logger)
		p.Fetcher = client

		// Build metadata enriches the report but is not required for it.
		if bi, err := client.Info(ctx, ref); err == nil {
			info = bi
		} else {
			logger.Debug("build info unavailable", "error", err)
		}

		res, err = p.Run(ctx, ref)
		if err != nil {
			return reportAnalysisFailure(cmd, err)
		}
	}

	if res.Aborted != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Aborted)
		return nil
	}

	if info != nil {
		printer.Header("Build")
		printer.Field("Job", info.FullDisplayName)
		if info.Result != "" {
			printer.Field("Result", info.Result)
		}
		printer.Field("Duration", info.DurationTime().String())
		if info.URL != "" {
			printer.Field("URL", info.URL)
		}
	}
	printer.Header("Analysis")
	printer.Body(res.Analysis)
	return nil
}

// applyAnalyzeOverrides lets explicitly set flags win over config file
// and environment.
func applyAnalyzeOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Jenkins.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("job") {
		cfg.Jenkins.JobName, _ = flags.GetString("job")
	}
	if flags.Changed("build") {
		cfg.Jenkins.BuildNumber, _ = flags.GetString("build")
	}
	if flags.Changed("tail-budget") {
		cfg.Reduce.TailBudget, _ = flags.GetInt("tail-budget")
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		model, _ := flags.GetString("model")
		cfg.LLM.OpenAI.Model = model
		cfg.LLM.Ollama.Model = model
		cfg.LLM.Anthropic.Model = model
	}
}

// reportAnalysisFailure prints a user-facing sentence for expected
// completion-API failures and returns nil so the command exits cleanly;
// unexpected errors propagate.
func reportAnalysisFailure(cmd *cobra.Command, err error) error {
	if msg := renderFailure(err); msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}
	return err
}

// renderFailure maps completion-API error classes onto the sentences
// printed for them, or "" when the error is not one of those classes.
func renderFailure(err error) string {
	switch {
	case errors.Is(err, llm.ErrRetriesExhausted):
		return "The analysis service stayed rate limited after all retries. Aborting."
	case errors.Is(err, llm.ErrRateLimited):
		return "The analysis service is rate limited. Aborting."
	case errors.Is(err, llm.ErrInvalidResponse):
		return "The analysis service returned an unusable response. Aborting."
	case errors.Is(err, llm.ErrUnavailable):
		return "The analysis service is unavailable. Aborting."
	default:
		return ""
	}
}
