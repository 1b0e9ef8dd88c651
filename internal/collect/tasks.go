package collect

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Task is one question to put to the chat agent.
type Task struct {
	Question string
	Expected string
	FileName string // workbook to run the question against
}

// LoadTasks reads the question list from a CSV or XLSX file with columns
// question, expected_answer and file_name.
func LoadTasks(path string) ([]Task, error) {
	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open tasks: %w", err)
		}
		defer func() { _ = f.Close() }()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		records, err = r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read tasks: %w", err)
		}
	case ".xlsx", ".xls":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open tasks: %w", err)
		}
		defer func() { _ = f.Close() }()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets in %s", path)
		}
		records, err = f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read tasks: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported tasks format: %s", filepath.Ext(path))
	}

	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}
	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var tasks []Task
	for _, record := range records[1:] {
		t := Task{
			Question: cell(record, "question"),
			Expected: cell(record, "expected_answer"),
			FileName: cell(record, "file_name"),
		}
		if t.Question == "" {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
