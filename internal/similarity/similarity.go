// Package similarity provides the candidate matching signals for normalized
// answer text: containment, token-set (list) matching, character-level
// sequence ratio and token Jaccard.
package similarity

import (
	"regexp"
	"strings"
)

// List items are delimited by whitespace runs or single hyphens.
var itemSplitPattern = regexp.MustCompile(`\s+|-`)

// Contains reports whether the normalized expected string is a literal
// substring of the normalized AI string. Callers must guard against an
// empty expected string, which would match anything.
func Contains(expected, ai string) bool {
	return strings.Contains(ai, expected)
}

// SplitItems tokenizes a normalized string on whitespace or hyphens,
// preserving order and duplicates. Blank fragments are dropped.
func SplitItems(s string) []string {
	parts := itemSplitPattern.Split(s, -1)
	items := parts[:0]
	for _, p := range parts {
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ItemSet collapses the items of a normalized string into a set.
func ItemSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range SplitItems(s) {
		set[item] = struct{}{}
	}
	return set
}

// SetJaccard computes |a∩b| / |a∪b|, returning 0.0 for an empty union.
func SetJaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for item := range a {
		if _, ok := b[item]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// ListMatch checks whether two normalized strings carry the same unordered
// collection of items. Returns the match decision against the threshold and
// the underlying Jaccard similarity.
func ListMatch(expected, ai string, threshold float64) (bool, float64) {
	jaccard := SetJaccard(ItemSet(expected), ItemSet(ai))
	return jaccard >= threshold, jaccard
}

// TokenJaccard computes Jaccard similarity over whitespace-split tokens.
// Returns 0.0 if either side has no tokens.
func TokenJaccard(a, b string) float64 {
	sa := fieldSet(a)
	sb := fieldSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}
	return SetJaccard(sa, sb)
}

func fieldSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}

// SequenceRatio computes the character-level similarity of two strings as
// 2*M/T, where M is the total length of the longest matching blocks and T
// the combined length. Operates on runes so CJK text is measured per
// ideograph. Two empty strings are identical, ratio 1.0.
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingTotal(ra, rb)) / float64(total)
}

// matchingTotal sums matching block lengths by recursing around the longest
// common block, mirroring the classic longest-matching-blocks algorithm.
func matchingTotal(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingTotal(a[:i], b[:j]) + matchingTotal(a[i+size:], b[j+size:])
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size], preferring
// the earliest occurrence on ties.
func longestMatch(a, b []rune) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// j2len[j] is the length of the match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int)
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
