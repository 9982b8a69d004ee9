package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cqNikolaus/JenkinsLLM/internal/jenkins"
	"github.com/cqNikolaus/JenkinsLLM/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a build's console log and print it to stdout",
	Long: `Fetch retrieves the raw console log of the referenced build and
prints it unmodified, for piping into reduce or saving for later
analysis with analyze --file.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("base-url", "", "Jenkins base URL (or JENKINS_BASE_URL)")
	fetchCmd.Flags().String("job", "", "name of the failed job (or FAILED_JOB_NAME)")
	fetchCmd.Flags().String("build", "", "build number of the failed job (or FAILED_BUILD_NUMBER)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalyzeOverrides(cmd, cfg)

	ref, err := cfg.Jenkins.BuildRef()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	client := jenkins.NewClient(cfg.Jenkins.User, cfg.Jenkins.APIToken, logger)

	raw, err := client.ConsoleLog(cmd.Context(), ref)
	if err != nil {
		logger.Error("failed to fetch console log", "error", err)
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.MsgNoLog)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), raw)
	return nil
}
