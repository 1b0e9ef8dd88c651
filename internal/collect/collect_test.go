package collect

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passes through", "销售额为1000元", "销售额为1000元"},
		{"simple markup", "<p>销售额为<b>1000</b>元</p>", "销售额为 1000 元"},
		{"script dropped", "<div>答案<script>alert(1)</script></div>", "答案"},
		{"style dropped", "<style>p{}</style><p>内容</p>", "内容"},
		{"nested blocks", "<ul><li>A</li><li>B</li></ul>", "A B"},
		{"whitespace trimmed", "<p>  a  </p>\n<p> b </p>", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlattenHTML(tt.in); got != tt.want {
				t.Errorf("FlattenHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRowWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.csv")

	w, err := NewRowWriter(path)
	if err != nil {
		t.Fatalf("NewRowWriter: %v", err)
	}

	rows := []Row{
		{ID: "q1", Role: "assistant", Content: "答案1", Timestamp: "2025-06-27T10:00:00", FileName: "data.xlsx", Expected: "参考1"},
		{ID: "q2", Role: "assistant", Content: "含,逗号", FileName: "data.xlsx", Expected: "参考2"},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	// Rows are flushed per write: the file is complete before Close.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records before close, want 3", len(records))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if records[0][0] != "id" || records[0][5] != "expected_answer" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "答案1" || records[2][2] != "含,逗号" {
		t.Errorf("content cells = %q, %q", records[1][2], records[2][2])
	}
}

func TestNewRowWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.csv")
	if err := os.WriteFile(path, []byte("stale content\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := NewRowWriter(path)
	if err != nil {
		t.Fatalf("NewRowWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "stale") {
		t.Errorf("previous content survived: %q", raw)
	}
}

func TestLoadTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	content := "question,expected_answer,file_name\n" +
		"销售额是多少,1000,data.xlsx\n" +
		",skipped,data.xlsx\n" +
		"利润是多少,200,other.xlsx\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tasks: %v", err)
	}

	tasks, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 (blank question skipped)", len(tasks))
	}
	want := Task{Question: "销售额是多少", Expected: "1000", FileName: "data.xlsx"}
	if tasks[0] != want {
		t.Errorf("tasks[0] = %+v, want %+v", tasks[0], want)
	}
	if tasks[1].FileName != "other.xlsx" {
		t.Errorf("tasks[1].FileName = %q", tasks[1].FileName)
	}
}

func TestLoadTasks_UnsupportedFormat(t *testing.T) {
	if _, err := LoadTasks("tasks.json"); err == nil {
		t.Error("LoadTasks(.json) should fail")
	}
}
