package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mingqiu/gradecheck/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "id,role,content,timestamp,file_name,expected_answer\n"+
		"q1,assistant,销售额为1000元,2025-06-27,data.xlsx,销售额为1000元\n"+
		"q2,assistant,\"含,逗号\",2025-06-27,data.xlsx,参考\n")

	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	want := model.AnswerRow{ID: "q1", FileName: "data.xlsx", Content: "销售额为1000元", Expected: "销售额为1000元"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
	if rows[1].Content != "含,逗号" {
		t.Errorf("quoted cell = %q, want 含,逗号", rows[1].Content)
	}
}

func TestLoadCSV_MissingColumnsDefaultEmpty(t *testing.T) {
	path := writeTempCSV(t, "content,expected_answer\n回答,参考\n")

	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ID != "" || rows[0].FileName != "" {
		t.Errorf("missing columns should default empty, got %+v", rows[0])
	}
	if rows[0].Content != "回答" || rows[0].Expected != "参考" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestLoadCSV_RaggedAndBOM(t *testing.T) {
	// BOM on the first header cell, uppercase header names, and a short row.
	path := writeTempCSV(t, "\uFEFFID,Content,Expected_Answer\nq1,回答\n")

	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ID != "q1" || rows[0].Content != "回答" || rows[0].Expected != "" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")
	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"id", "content", "expected_answer", "file_name"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	row := []interface{}{"q1", "共88个订单", "88", "report.xlsx"}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	rows, err := LoadXLSX(path)
	if err != nil {
		t.Fatalf("LoadXLSX: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := model.AnswerRow{ID: "q1", FileName: "report.xlsx", Content: "共88个订单", Expected: "88"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
}

func TestLoad_Dispatch(t *testing.T) {
	csvPath := writeTempCSV(t, "content,expected_answer\na,b\n")
	if _, err := Load(csvPath); err != nil {
		t.Errorf("Load(.csv): %v", err)
	}
	if _, err := Load("answers.txt"); err == nil {
		t.Error("Load(.txt) should fail on unsupported format")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Load on missing file should fail")
	}
}
