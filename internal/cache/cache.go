// Package cache memoizes evaluation results. Collected batches routinely
// repeat the same question across source workbooks, so identical
// (answer, expected) pairs are graded once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mingqiu/gradecheck/internal/model"
)

// Store is the memoization interface used by the batch evaluator.
type Store interface {
	Get(key string) (model.EvaluationResult, bool)
	Set(key string, res model.EvaluationResult)
}

// Key derives a cache key from the raw answer pair. The texts are hashed
// together with a separator so ("a","bc") and ("ab","c") cannot collide.
func Key(ai, expected string) string {
	h := sha256.New()
	h.Write([]byte(ai))
	h.Write([]byte{0})
	h.Write([]byte(expected))
	return "gradecheck:v1:" + hex.EncodeToString(h.Sum(nil))
}
