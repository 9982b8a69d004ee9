package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cqNikolaus/JenkinsLLM/internal/analyzer"
	"github.com/cqNikolaus/JenkinsLLM/internal/llm"
	"github.com/cqNikolaus/JenkinsLLM/internal/output"
	"github.com/cqNikolaus/JenkinsLLM/internal/pipeline"
	"github.com/cqNikolaus/JenkinsLLM/internal/reduce"
	"github.com/cqNikolaus/JenkinsLLM/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a local console log and re-analyze it on change",
	Long: `Watch follows a local console log file and re-runs the reduce and
analyze stages whenever the file settles after a change. Useful while a
build is still streaming its log to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after the last write before re-analyzing")
	watchCmd.Flags().Int("tail-budget", 0, "number of trailing log lines always kept")
	watchCmd.Flags().String("provider", "", "LLM provider: openai, ollama, anthropic")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("tail-budget") {
		cfg.Reduce.TailBudget, _ = flags.GetInt("tail-budget")
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider, _ = flags.GetString("provider")
	}
	debounce, _ := flags.GetDuration("debounce")

	logger := newLogger(cfg.Verbose)
	printer := output.New(cmd.OutOrStdout(), output.ParseColorMode(colorFlag))

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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.Options{
		FilePath: args[0],
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(content string) error {
			res, err := p.RunLocal(ctx, content)
			if err != nil {
				if msg := renderFailure(err); msg != "" {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
					return nil
				}
				return err
			}
			if res.Aborted != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Aborted)
				return nil
			}
			printer.Header(fmt.Sprintf("Analysis at %s", time.Now().Format(time.TimeOnly)))
			printer.Body(res.Analysis)
			return nil
		},
	})
	if err != nil {
		return err
	}

	logger.Info("watching console log", "file", args[0], "debounce", debounce)
	return w.Run(ctx)
}
