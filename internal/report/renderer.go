// Package report renders evaluation results: a machine-readable detailed
// table (CSV and XLSX) and a localized narrative Markdown report.
package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mingqiu/gradecheck/internal/model"
)

var detailHeader = []string{
	"id", "file_name", "ai_answer", "expected_answer",
	"verdict", "combined_score", "seq_ratio", "issues",
}

// Renderer writes evaluation outputs.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// detailRecord flattens one result into the export column order.
func detailRecord(r model.EvaluationResult) []string {
	return []string{
		r.ID,
		r.FileName,
		r.AIAnswer,
		r.Expected,
		r.Verdict.String(),
		formatScore(r.CombinedScore),
		formatScore(r.SeqRatio),
		strings.Join(r.Issues, "; "),
	}
}

// RenderCSV writes the detailed per-row export. Every field is quoted so
// downstream tools never misparse embedded separators or newlines.
func (re *Renderer) RenderCSV(results []model.EvaluationResult, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	writeQuoted(w, detailHeader)
	for _, r := range results {
		writeQuoted(w, detailRecord(r))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// writeQuoted emits one CSV record with all fields quoted (QUOTE_ALL).
func writeQuoted(w *bufio.Writer, record []string) {
	for i, field := range record {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

// RenderXLSX writes the same detailed table as a workbook sheet.
func (re *Renderer) RenderXLSX(results []model.EvaluationResult, path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()

	sheet := f.GetSheetName(0)
	writeRow := func(rowIdx int, record []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		return f.SetSheetRow(sheet, cell, &row)
	}

	if err := writeRow(1, detailHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		if err := writeRow(i+2, detailRecord(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// RenderMarkdown writes the narrative report: accuracy statistics, example
// rows per verdict, the full listing, and the ranked issue breakdown.
func (re *Renderer) RenderMarkdown(results []model.EvaluationResult, summary model.Summary, path string) error {
	var b strings.Builder

	b.WriteString("## 评估报告\n\n")
	b.WriteString("### 准确率统计\n")
	fmt.Fprintf(&b, "- 总任务数: %d\n", summary.Total)
	fmt.Fprintf(&b, "- 正确任务数: %d\n", summary.Correct)
	fmt.Fprintf(&b, "- 错误任务数: %d\n", summary.Wrong)
	fmt.Fprintf(&b, "- 部分正确: %d\n", summary.Partial)
	fmt.Fprintf(&b, "- 平均分: %s\n", formatScore(summary.AvgScore))
	fmt.Fprintf(&b, "- 准确率: %s%%\n\n", formatScore(summary.Accuracy))

	writeExamples(&b, "### 代表性正确案例", results, model.VerdictCorrect, true)
	writeExamples(&b, "### 代表性错误案例", results, model.VerdictWrong, false)
	writeExamples(&b, "### 代表性部分正确案例", results, model.VerdictPartial, false)

	b.WriteString("### 全部题目结果\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s] (文件: %s)\n", r.ID, r.FileName)
		fmt.Fprintf(&b, "  - AI答案: %s\n", r.AIAnswer)
		fmt.Fprintf(&b, "  - 标准答案: %s\n", r.Expected)
		fmt.Fprintf(&b, "  - 判定: %s\n", r.Verdict)
		fmt.Fprintf(&b, "  - score=%s, seq_ratio=%s, issues=%s\n\n",
			formatScore(r.CombinedScore), formatScore(r.SeqRatio), strings.Join(r.Issues, "; "))
	}

	b.WriteString("### 错误类型总结\n")
	for _, ic := range summary.IssueCounts {
		fmt.Fprintf(&b, "- %s: %d 次\n", ic.Issue, ic.Count)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// writeExamples emits up to five example rows for one verdict category.
func writeExamples(b *strings.Builder, heading string, results []model.EvaluationResult, v model.Verdict, asVerdict bool) {
	b.WriteString(heading + "\n")
	count := 0
	for _, r := range results {
		if r.Verdict != v {
			continue
		}
		fmt.Fprintf(b, "- [%s] AI答案: \n\n%s\n", r.ID, r.AIAnswer)
		fmt.Fprintf(b, "  - 标准答案: %s\n", r.Expected)
		if asVerdict {
			fmt.Fprintf(b, "  - 说明: 判定为%s（score=%s, seq_ratio=%s)\n\n",
				r.Verdict, formatScore(r.CombinedScore), formatScore(r.SeqRatio))
		} else {
			fmt.Fprintf(b, "  - 说明: %s (score=%s, seq_ratio=%s)\n\n",
				strings.Join(r.Issues, "; "), formatScore(r.CombinedScore), formatScore(r.SeqRatio))
		}
		count++
		if count == 5 {
			break
		}
	}
	b.WriteString("\n")
}

// RenderLLMMarkdown writes the optional model-generated commentary to its
// own file so it can never be mistaken for the scored report.
func (re *Renderer) RenderLLMMarkdown(text, path string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write llm commentary: %w", err)
	}
	return nil
}

// formatScore renders a score without trailing zero noise.
func formatScore(x float64) string {
	s := fmt.Sprintf("%.4f", x)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
