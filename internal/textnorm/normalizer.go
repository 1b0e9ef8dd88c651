// Package textnorm canonicalizes raw answer text so the matchers compare
// content rather than formatting. Normalization is deterministic and
// idempotent: normalizing an already-normalized string is a no-op.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/mingqiu/gradecheck/internal/model"
)

var (
	// 2025年6月27日 -> 2025-6-27 (no zero padding added or removed)
	cjkDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

	// List separators, ASCII and full-width, plus the connectors 和 and &.
	separatorPattern = regexp.MustCompile(`[,，;；和&]`)

	// Year/month/day markers left over after the date rule.
	dateMarkerPattern = regexp.MustCompile(`[年月日]`)

	// Integer-valued floats: 88.0 -> 88.
	floatSuffixPattern = regexp.MustCompile(`\.0\b`)

	// Whitespace runs, including full-width spaces.
	spaceRunPattern = regexp.MustCompile(`[\s\p{Zs}]+`)

	// Everything that is not a letter, digit, underscore, %, ., -, / or
	// whitespace gets replaced by a space. \p{L} keeps CJK ideographs.
	dropPattern = regexp.MustCompile(`[^\p{L}\p{N}_%.\-/\s]`)
)

// Normalizer applies the canonicalization pipeline. The filler-phrase table
// is configuration, not code, so deployments can extend it.
type Normalizer struct {
	fillers *strings.Replacer
}

// New creates a Normalizer with the given rule configuration.
func New(cfg model.NormalizerConfig) *Normalizer {
	pairs := make([]string, 0, len(cfg.FillerPhrases)*2)
	for _, phrase := range cfg.FillerPhrases {
		if phrase == "" {
			continue
		}
		pairs = append(pairs, phrase, "")
	}
	return &Normalizer{fillers: strings.NewReplacer(pairs...)}
}

// Normalize canonicalizes s. Steps run in a fixed order, each feeding the
// next; digits, %, hyphens, slashes and CJK ideographs always survive.
func (n *Normalizer) Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = cjkDatePattern.ReplaceAllString(s, "$1-$2-$3")
	s = separatorPattern.ReplaceAllString(s, " ")
	s = dateMarkerPattern.ReplaceAllString(s, "-")
	s = n.fillers.Replace(s)
	s = floatSuffixPattern.ReplaceAllString(s, "")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	s = dropPattern.ReplaceAllString(s, " ")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
