package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mingqiu/gradecheck/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gradecheck",
	Short: "Gradecheck - grade AI answers to data-analysis questions",
	Long: `Gradecheck evaluates AI-generated answers against expected reference
answers and classifies each one as correct, partially correct, or wrong.

Matching is deliberately heuristic, tuned for short factual answers
(numbers, dates, lists, named entities) in an analytics Q&A setting:
containment, unordered list matching, numeric tolerance matching and
text-similarity signals feed a weighted verdict with diagnostic issue
tags explaining each decision.

It also ships a collector that drives a browser against the chat
application and records its answers into the table the evaluator reads.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Gradecheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gradecheck v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gradecheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.gradecheck")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GRADECHECK_*
	// (nested keys use underscores: GRADECHECK_THRESHOLDS_CORRECT)
	viper.SetEnvPrefix("GRADECHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setConfigDefaults()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setConfigDefaults registers every configuration key with its default so
// env variables and partial config files resolve against the full key set.
func setConfigDefaults() {
	d := model.DefaultConfig()

	viper.SetDefault("thresholds.correct", d.Thresholds.Correct)
	viper.SetDefault("thresholds.partial", d.Thresholds.Partial)
	viper.SetDefault("thresholds.list_match", d.Thresholds.ListMatch)
	viper.SetDefault("thresholds.numeric_tol_rel", d.Thresholds.NumericTolRel)
	viper.SetDefault("thresholds.numeric_tol_abs", d.Thresholds.NumericTolAbs)
	viper.SetDefault("thresholds.order_ratio_flag", d.Thresholds.OrderRatioFlag)

	viper.SetDefault("weights.seq_ratio", d.Weights.SeqRatio)
	viper.SetDefault("weights.token_jaccard", d.Weights.TokenJaccard)
	viper.SetDefault("weights.numeric", d.Weights.Numeric)
	viper.SetDefault("weights.list_jaccard", d.Weights.ListJaccard)

	viper.SetDefault("normalizer.filler_phrases", d.Normalizer.FillerPhrases)

	viper.SetDefault("concurrency.workers", runtime.NumCPU())

	viper.SetDefault("output.dir", d.Output.Dir)

	viper.SetDefault("collector.base_url", d.Collector.BaseURL)
	viper.SetDefault("collector.api_base", d.Collector.APIBase)
	viper.SetDefault("collector.username", d.Collector.Username)
	viper.SetDefault("collector.timeout", d.Collector.Timeout)
	viper.SetDefault("collector.poll_retries", d.Collector.PollRetries)
	viper.SetDefault("collector.poll_delay", d.Collector.PollDelay)
	viper.SetDefault("collector.rate_per_sec", d.Collector.RatePerSec)
	viper.SetDefault("collector.headless", d.Collector.Headless)

	viper.SetDefault("llm.provider", d.LLM.Provider)
	viper.SetDefault("llm.model", d.LLM.Model)
	viper.SetDefault("llm.base_url", d.LLM.BaseURL)
	viper.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
}

// loadConfig resolves the runtime configuration: built-in defaults overlaid
// by the config file and GRADECHECK_* environment variables. Flag overrides
// are applied afterwards by the individual commands.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}
