// Package table loads collected answer rows from CSV or XLSX files.
// Missing optional columns degrade to empty defaults; only a structurally
// unreadable file is an error.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mingqiu/gradecheck/internal/model"
)

// Column names recognized in the header row. Any other columns are ignored.
const (
	colID       = "id"
	colFileName = "file_name"
	colContent  = "content"
	colExpected = "expected_answer"
)

// Load reads an input table, dispatching on the file extension.
func Load(path string) ([]model.AnswerRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xls":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", filepath.Ext(path))
	}
}

// LoadCSV reads rows from a CSV file with a header row.
func LoadCSV(path string) ([]model.AnswerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; missing cells default

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(records) == 0 {
		return []model.AnswerRow{}, nil
	}
	return rowsFromRecords(records), nil
}

// LoadXLSX reads rows from the first sheet of a workbook.
func LoadXLSX(path string) ([]model.AnswerRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []model.AnswerRow{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return []model.AnswerRow{}, nil
	}
	return rowsFromRecords(records), nil
}

// rowsFromRecords maps header-addressed records onto AnswerRows.
func rowsFromRecords(records [][]string) []model.AnswerRow {
	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		index[name] = i
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]model.AnswerRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, model.AnswerRow{
			ID:       cell(record, colID),
			FileName: cell(record, colFileName),
			Content:  cell(record, colContent),
			Expected: cell(record, colExpected),
		})
	}
	return rows
}
