package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cqNikolaus/JenkinsLLM/internal/pipeline"
	"github.com/cqNikolaus/JenkinsLLM/internal/reduce"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [file]",
	Short: "Reduce a console log to its failure-relevant lines",
	Long: `Reduce applies the tail-and-keyword heuristic to a console log read
from the given file or from stdin, redacts credential-looking spans, and
prints the kept lines. No LLM request is made.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().Int("tail-budget", 0, "number of trailing log lines always kept")
	reduceCmd.Flags().String("marker", "", "replacement text for redacted credential spans")

	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("tail-budget") {
		cfg.Reduce.TailBudget, _ = flags.GetInt("tail-budget")
	}
	if flags.Changed("marker") {
		cfg.Reduce.RedactMarker, _ = flags.GetString("marker")
	}

	var raw []byte
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	reducer := reduce.New(
		reduce.WithTailBudget(cfg.Reduce.TailBudget),
		reduce.WithRedactMarker(cfg.Reduce.RedactMarker),
	)
	reduced, stats := reducer.ReduceWithStats(string(raw))

	logger := newLogger(cfg.Verbose)
	logger.Debug("reduced console log",
		"lines_in", stats.LinesIn,
		"lines_kept", stats.LinesKept,
		"keyword_matches", stats.Keyword,
		"redactions", stats.Redactions)

	if reduced == "" {
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.MsgNoFindings)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), reduced)
	return nil
}
