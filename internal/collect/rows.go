package collect

import (
	"encoding/csv"
	"fmt"
	"os"
)

var rowHeader = []string{"id", "role", "content", "timestamp", "file_name", "expected_answer"}

// Row is one collected answer in the input-table format the evaluator reads.
type Row struct {
	ID        string
	Role      string
	Content   string
	Timestamp string
	FileName  string
	Expected  string
}

// RowWriter persists collected rows. Every row is flushed to disk as soon as
// it is written, so an aborted run loses at most the in-flight question.
type RowWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewRowWriter creates (or truncates) the output file and writes the header.
func NewRowWriter(path string) (*RowWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(rowHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flush header: %w", err)
	}
	return &RowWriter{file: f, writer: w}, nil
}

// Write appends one row and flushes it to disk immediately.
func (rw *RowWriter) Write(row Row) error {
	record := []string{row.ID, row.Role, row.Content, row.Timestamp, row.FileName, row.Expected}
	if err := rw.writer.Write(record); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	rw.writer.Flush()
	if err := rw.writer.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return rw.file.Sync()
}

// Close closes the underlying file.
func (rw *RowWriter) Close() error {
	rw.writer.Flush()
	if err := rw.writer.Error(); err != nil {
		_ = rw.file.Close()
		return err
	}
	return rw.file.Close()
}
