package textnorm

import (
	"strings"
	"testing"

	"github.com/mingqiu/gradecheck/internal/model"
)

func newTestNormalizer() *Normalizer {
	return New(model.DefaultConfig().Normalizer)
}

func TestNormalizer_Steps(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"cjk date", "2025年6月27日", "2025-6-27"},
		{"cjk date keeps padding", "2025年06月07日", "2025-06-07"},
		{"date inside sentence", "截止2025年6月27日的数据", "截止2025-6-27的数据"},
		{"leftover date markers", "6月27日", "6-27-"},
		{"ascii comma separator", "A,B,C", "a b c"},
		{"fullwidth comma separator", "甲，乙，丙", "甲 乙 丙"},
		{"semicolons and connectors", "a;b；c和d&e", "a b c d e"},
		{"filler phrase removed", "查询结果显示销售额上升", "销售额上升"},
		{"multiple fillers removed", "任务执行完成，结果如下", "结果"},
		{"integer float suffix", "总数为88.0", "总数为88"},
		{"real decimal kept", "得分0.57", "得分0.57"},
		{"punctuation stripped", "利润（去年）：200元！", "利润 去- 200元"},
		{"percent and slash kept", "增长50% 比例3/4", "增长50% 比例3/4"},
		{"lowercase", "ABC Def", "abc def"},
		{"whitespace collapsed", "a   b\t c", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"",
		"查询结果显示销售额为1000元，利润为200元",
		"2025年6月27日的订单，分别为A和B",
		"总数为88.0；增长50%",
		"Sales: 1,234.56 (up 3.4%)",
		"混合 Mixed 文本 TEXT 123",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizer_PreservesDigitsAndMarkers(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("2025年6月27日 增长50% 比率0.25 路径a/b 区间1-2")
	for _, want := range []string{"2025-6-27", "50%", "0.25", "a/b", "1-2"} {
		if !strings.Contains(got, want) {
			t.Errorf("normalized %q lost %q", got, want)
		}
	}
}

func TestNormalizer_CustomFillerTable(t *testing.T) {
	n := New(model.NormalizerConfig{FillerPhrases: []string{"无关前缀"}})

	if got := n.Normalize("无关前缀答案是42"); got != "答案是42" {
		t.Errorf("custom filler not removed, got %q", got)
	}
	// Default fillers are not part of the custom table.
	if got := n.Normalize("查询结果显示42"); got != "查询结果显示42" {
		t.Errorf("unexpected removal with custom table, got %q", got)
	}
}
