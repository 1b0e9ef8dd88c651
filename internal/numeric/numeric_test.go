package numeric

import (
	"math"
	"testing"

	"github.com/mingqiu/gradecheck/internal/model"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"empty", "", nil},
		{"no numbers", "没有数字", nil},
		{"integer", "共88个", []float64{88}},
		{"decimal", "得分为0.57", []float64{0.57}},
		{"bare decimal", "比率.25", []float64{0.25}},
		{"signed", "变化-3.5和+2", []float64{-3.5, 2}},
		{"thousands separator", "销售额1,234.56元", []float64{1234.56}},
		{"several in order", "1000元利润200元增长5%", []float64{1000, 200, 5}},
		{"date-like", "2025-6-27", []float64{2025, -6, -27}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("Extract(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestComparator_Close(t *testing.T) {
	c := NewComparator(model.DefaultConfig().Thresholds)

	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"exact", 88, 88, true},
		{"within absolute tolerance", 100.009, 100, true},
		{"within relative tolerance", 100.09, 100, true},
		{"outside absolute, within relative", 1000.5, 1000, true},
		{"outside both", 100.2, 100, false},
		{"relative anchored to expected", 100000 + 90, 100000, true},
		{"zero expected uses absolute only", 0.005, 0, true},
		{"zero expected outside absolute", 0.02, 0, false},
		{"negative values", -88.005, -88, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Close(tt.a, tt.b); got != tt.want {
				t.Errorf("Close(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestComparator_Match(t *testing.T) {
	c := NewComparator(model.DefaultConfig().Thresholds)

	tests := []struct {
		name     string
		expected []float64
		ai       []float64
		matched  int
		full     bool
	}{
		{"no expected numbers", nil, []float64{1, 2}, 0, true},
		{"all matched", []float64{88, 12}, []float64{12, 88}, 2, true},
		{"partial", []float64{88, 12}, []float64{88}, 1, false},
		{"none", []float64{88}, []float64{90}, 0, false},
		{"tolerance applies", []float64{100}, []float64{100.009}, 1, true},
		{"duplicates consume one-to-one", []float64{5, 5}, []float64{5}, 1, false},
		{"ai duplicates both claimed", []float64{5, 5}, []float64{5, 5}, 2, true},
		{"extra ai numbers ignored", []float64{88}, []float64{1, 88, 99}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, full := c.Match(tt.expected, tt.ai)
			if matched != tt.matched || full != tt.full {
				t.Errorf("Match(%v, %v) = (%d, %v), want (%d, %v)",
					tt.expected, tt.ai, matched, full, tt.matched, tt.full)
			}
		})
	}
}
