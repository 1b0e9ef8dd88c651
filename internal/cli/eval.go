package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mingqiu/gradecheck/internal/batch"
	"github.com/mingqiu/gradecheck/internal/llm"
	"github.com/mingqiu/gradecheck/internal/report"
	"github.com/mingqiu/gradecheck/internal/table"
)

var (
	outDir      string
	outCSV      string
	outXLSX     string
	outMD       string
	concurrency int
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <table>",
	Short: "Grade a table of collected AI answers",
	Long: `Eval grades every row of an input table (CSV or XLSX with columns
id, file_name, content, expected_answer) and writes:
- a detailed per-row export (CSV, optionally XLSX)
- a narrative Markdown report with statistics, examples and issue ranking

Rows are independent; grading runs across workers.

Example:
  gradecheck eval chat_history_all.csv
  gradecheck eval answers.xlsx --out-dir ./eval_output --xlsx results.xlsx
  gradecheck eval chat_history_all.csv --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&outDir, "out-dir", "./eval_output", "output directory")
	evalCmd.Flags().StringVar(&outCSV, "csv", "detailed_results.csv", "detailed CSV file name")
	evalCmd.Flags().StringVar(&outXLSX, "xlsx", "", "detailed XLSX file name (optional)")
	evalCmd.Flags().StringVar(&outMD, "md", "evaluation_report.md", "Markdown report file name")
	evalCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of grading workers")

	evalCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM report commentary")
	evalCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	evalCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runEval(cmd *cobra.Command, args []string) error {
	path := args[0]

	// The one hard failure: a structurally unreadable input table.
	rows, err := table.Load(path)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	// Defaults overlaid by config file and GRADECHECK_* env; flags win last.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("out-dir") || cfg.Output.Dir == "" {
		cfg.Output.Dir = outDir
	}
	outDir = cfg.Output.Dir
	cfg.Output.Verbose = verbose
	if llmEnabled {
		if cmd.Flags().Changed("llm-provider") || cfg.LLM.Provider == "" {
			cfg.LLM.Provider = llmProvider
		}
		if cmd.Flags().Changed("llm-model") {
			cfg.LLM.Model = llmModel
		}
		switch cfg.LLM.Provider {
		case "openai":
			if key := os.Getenv("OPENAI_API_KEY"); key != "" {
				cfg.LLM.APIKey = key
			}
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Input table: %s (%d rows)\n", path, len(rows))
		fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Concurrency.Workers)
		fmt.Fprintln(os.Stderr)
	}

	evaluator := batch.NewEvaluator(cfg)
	results := evaluator.EvaluateAll(context.Background(), rows)
	summary := batch.Summarize(results)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Graded %d rows\n", summary.Total)
		fmt.Fprintf(os.Stderr, "✓ Accuracy: %.2f%% (%d correct, %d partial, %d wrong)\n",
			summary.Accuracy, summary.Correct, summary.Partial, summary.Wrong)
		fmt.Fprintln(os.Stderr)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renderer := report.NewRenderer()
	if outCSV != "" {
		p := filepath.Join(outDir, outCSV)
		if err := renderer.RenderCSV(results, p); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		logWrote(p)
	}
	if outXLSX != "" {
		p := filepath.Join(outDir, outXLSX)
		if err := renderer.RenderXLSX(results, p); err != nil {
			return fmt.Errorf("render XLSX: %w", err)
		}
		logWrote(p)
	}
	if outMD != "" {
		p := filepath.Join(outDir, outMD)
		if err := renderer.RenderMarkdown(results, summary, p); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		logWrote(p)
	}

	// Commentary comes last and never touches verdicts or scores.
	if llmEnabled && outMD != "" {
		commentator, err := llm.NewCommentator(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return fmt.Errorf("init LLM: %w", err)
		}
		if commentator != nil {
			commentary, err := commentator.Comment(context.Background(), summary, results)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: LLM commentary failed: %v\n", err)
			} else {
				p := filepath.Join(outDir, strings.TrimSuffix(outMD, ".md")+".llm.md")
				if err := renderer.RenderLLMMarkdown(commentary, p); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: write LLM commentary: %v\n", err)
				} else {
					logWrote(p)
				}
			}
		}
	}

	fmt.Printf("评估完成，结果已保存到 %s\n", outDir)
	return nil
}

func logWrote(path string) {
	if verbose {
		fmt.Printf("✓ Wrote %s\n", path)
	}
}
