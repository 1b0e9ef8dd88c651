// Package numeric extracts numbers from answer text and pairs them against
// expected values under a mixed absolute/relative tolerance.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mingqiu/gradecheck/internal/model"
)

// Signed decimal or integer. Thousands separators are stripped beforehand.
var numberPattern = regexp.MustCompile(`[-+]?\d*\.\d+|[-+]?\d+`)

// Extract returns every numeric token in s in order of appearance.
// Duplicates are kept: matching consumes tokens one-for-one.
func Extract(s string) []float64 {
	s = strings.ReplaceAll(s, ",", "")
	matches := numberPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue // malformed substrings are excluded, never fatal
		}
		nums = append(nums, v)
	}
	return nums
}

// Comparator decides whether two numbers agree within tolerance.
type Comparator struct {
	tolAbs float64
	tolRel float64
}

// NewComparator builds a Comparator from the configured tolerances.
func NewComparator(cfg model.ThresholdConfig) *Comparator {
	return &Comparator{tolAbs: cfg.NumericTolAbs, tolRel: cfg.NumericTolRel}
}

// Close reports |a-b| <= max(tolAbs, |b|*tolRel). The relative tolerance is
// anchored to the expected value b.
func (c *Comparator) Close(a, b float64) bool {
	return math.Abs(a-b) <= math.Max(c.tolAbs, math.Abs(b)*c.tolRel)
}

// Match greedily pairs expected numbers against AI numbers one-to-one: each
// expected value, in order, claims the first unconsumed AI value within
// tolerance. Returns the matched count and whether every expected value
// found a partner. len(expected)==0 yields (0, true): nothing to verify.
func (c *Comparator) Match(expected, ai []float64) (matched int, full bool) {
	pool := make([]float64, len(ai))
	copy(pool, ai)

	for _, e := range expected {
		for i, a := range pool {
			if c.Close(a, e) {
				matched++
				pool = append(pool[:i], pool[i+1:]...)
				break
			}
		}
	}
	return matched, matched == len(expected)
}
