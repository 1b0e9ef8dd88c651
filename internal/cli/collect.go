package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mingqiu/gradecheck/internal/collect"
)

var (
	collectOut  string
	baseURL     string
	apiBase     string
	username    string
	askTimeout  time.Duration
	pollRetries int
	pollDelay   time.Duration
	ratePerSec  float64
	headful     bool
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect <questions>",
	Short: "Collect AI answers from the chat application",
	Long: `Collect drives a browser against the chat application: it logs in,
opens one chat session per source workbook, uploads the workbook, submits
each question, and polls the history endpoint until the reply appears.

Every answered question is appended to the output CSV immediately, so an
interrupted run loses at most the in-flight question. Questions without a
reply are recorded with an empty answer.

The questions file (CSV or XLSX) needs columns question, expected_answer
and file_name. The password is read from GRADECHECK_PASSWORD.

Example:
  gradecheck collect questions.csv --out chat_history_all.csv
  gradecheck collect questions.xlsx --base-url http://localhost:8002 --user admin`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectOut, "out", "chat_history_all.csv", "output CSV path")
	collectCmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8002", "chat application URL")
	collectCmd.Flags().StringVar(&apiBase, "api-base", "", "history API base URL (default: same as base-url)")
	collectCmd.Flags().StringVar(&username, "user", "", "login user name")
	collectCmd.Flags().DurationVar(&askTimeout, "timeout", 3*time.Minute, "per-question timeout")
	collectCmd.Flags().IntVar(&pollRetries, "poll-retries", 3, "history endpoint attempts per question")
	collectCmd.Flags().DurationVar(&pollDelay, "poll-delay", 5*time.Second, "delay between history attempts")
	collectCmd.Flags().Float64Var(&ratePerSec, "rate", 2, "max history requests per second")
	collectCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
}

func runCollect(cmd *cobra.Command, args []string) error {
	tasks, err := collect.LoadTasks(args[0])
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no questions in %s", args[0])
	}

	// Defaults overlaid by config file and GRADECHECK_* env; flags win last.
	full, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := full.Collector
	if cmd.Flags().Changed("base-url") || cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if cmd.Flags().Changed("api-base") {
		cfg.APIBase = apiBase
	}
	if cfg.APIBase == "" {
		cfg.APIBase = cfg.BaseURL
	}
	if cmd.Flags().Changed("user") {
		cfg.Username = username
	}
	if pw := os.Getenv("GRADECHECK_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = askTimeout
	}
	if cmd.Flags().Changed("poll-retries") {
		cfg.PollRetries = pollRetries
	}
	if cmd.Flags().Changed("poll-delay") {
		cfg.PollDelay = pollDelay
	}
	if cmd.Flags().Changed("rate") {
		cfg.RatePerSec = ratePerSec
	}
	if cmd.Flags().Changed("headful") {
		cfg.Headless = !headful
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Questions: %d\n", len(tasks))
		fmt.Fprintf(os.Stderr, "Target: %s\n", cfg.BaseURL)
		fmt.Fprintf(os.Stderr, "Output: %s\n", collectOut)
		fmt.Fprintln(os.Stderr)
	}

	collector := collect.New(cfg, verbose)
	if err := collector.Run(context.Background(), tasks, collectOut); err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}

	fmt.Printf("采集完成，结果已保存到 %s\n", collectOut)
	return nil
}
