// internal/textindex/tokenizer.go
// Package textindex implements an in-memory TF-IDF index with cosine
// similarity retrieval. Indexes are immutable once built; a rebuild produces
// a fresh Index with a new generation number, so readers of an older index
// are never disturbed.
package textindex

import "strings"

// Tokenize lowercases text, replaces every run of characters outside
// [a-z0-9] with a single space, and splits on whitespace. Empty tokens are
// dropped. The same function backs both index construction and query
// vectorization; the two must never diverge.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
