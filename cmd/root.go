package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

var (
	cfgFile   string
	colorFlag string
)

var rootCmd = &cobra.Command{
	Use:   "jenkinsllm",
	Short: "AI-assisted root cause analysis for failed Jenkins builds",
	Long: `Jenkinsllm fetches the console log of a failed Jenkins build, reduces
it to the failure-relevant lines, and sends the reduced excerpt to an
LLM for root cause analysis.

Credentials and job coordinates come from flags, a config file, or the
environment variables the Jenkins pipeline jobs already export
(JENKINS_BASE_URL, FAILED_JOB_NAME, FAILED_BUILD_NUMBER, JENKINS_USER,
JENKINS_API_TOKEN, OPENAI_API_KEY).

Examples:
  jenkinsllm analyze --job deploy-prod --build 42
  jenkinsllm analyze --file build.log --provider ollama
  jenkinsllm reduce build.log --tail-budget 100
  jenkinsllm fetch --job deploy-prod --build 42 > build.log
  jenkinsllm watch /var/log/ci/console.log`,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jenkinsllm.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "colorize output (auto, always, never)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".jenkinsllm")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("JENKINSLLM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The original pipeline jobs export these names; keep them working.
	_ = viper.BindEnv("jenkins.base_url", "JENKINSLLM_JENKINS_BASE_URL", "JENKINS_BASE_URL")
	_ = viper.BindEnv("jenkins.job_name", "JENKINSLLM_JENKINS_JOB_NAME", "FAILED_JOB_NAME")
	_ = viper.BindEnv("jenkins.build_number", "JENKINSLLM_JENKINS_BUILD_NUMBER", "FAILED_BUILD_NUMBER")
	_ = viper.BindEnv("jenkins.user", "JENKINSLLM_JENKINS_USER", "JENKINS_USER")
	_ = viper.BindEnv("jenkins.api_token", "JENKINSLLM_JENKINS_API_TOKEN", "JENKINS_API_TOKEN")
	_ = viper.BindEnv("llm.openai.api_key", "JENKINSLLM_LLM_OPENAI_API_KEY", "OPENAI_API_KEY", "OPENAI_API_TOKEN")
	_ = viper.BindEnv("llm.anthropic.api_key", "JENKINSLLM_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("llm.ollama.host", "JENKINSLLM_LLM_OLLAMA_HOST", "OLLAMA_HOST")

	// Set defaults
	viper.SetDefault("llm.provider", config.DefaultProvider)
	viper.SetDefault("llm.temperature", 0)
	viper.SetDefault("llm.retry.attempts", config.DefaultRetryAttempts)
	viper.SetDefault("llm.retry.delay", config.DefaultRetryDelay)
	viper.SetDefault("reduce.tail_budget", config.DefaultTailBudget)
	viper.SetDefault("reduce.redact_marker", config.DefaultRedactMarker)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadConfig materializes the configuration once; everything downstream
// receives it by parameter.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// newLogger builds the stderr logger shared by all components.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
