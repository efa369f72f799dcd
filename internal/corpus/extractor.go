// internal/corpus/extractor.go
// Package corpus harvests indexable chunks from a directory of section
// files. Each configured source pairs a filename with a human-readable
// section label; file text is whitespace-collapsed and segmented into
// sentence-like units.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mgearhart/foliolab/internal/textindex"
)

// Source names one harvestable region: a file under the corpus root and the
// section label attached to every chunk mined from it.
type Source struct {
	File    string `json:"file"`
	Section string `json:"section"`
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	sentenceEnd = regexp.MustCompile(`([.!?])\s+`)
)

// Extract reads every source under root, collapses whitespace, and splits on
// sentence-ending punctuation followed by whitespace. Empty candidates are
// discarded. Sources whose file is missing are skipped; a root with no
// readable sources at all is an error.
func Extract(root string, sources []Source) ([]textindex.Chunk, error) {
	var chunks []textindex.Chunk
	found := 0
	for _, src := range sources {
		raw, err := os.ReadFile(filepath.Join(root, src.File))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read corpus file %s: %w", src.File, err)
		}
		found++
		for i, text := range SplitSentences(string(raw)) {
			chunks = append(chunks, textindex.Chunk{
				ID:      fmt.Sprintf("%s:%d", src.Section, i),
				Section: src.Section,
				Text:    text,
			})
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("no corpus sources found under %s", root)
	}
	return chunks, nil
}

// SplitSentences collapses all whitespace runs to single spaces and splits
// the result after sentence-ending punctuation. Returns only non-empty
// segments, punctuation preserved.
func SplitSentences(text string) []string {
	collapsed := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if collapsed == "" {
		return nil
	}
	marked := sentenceEnd.ReplaceAllString(collapsed, "$1\x00")
	var out []string
	for _, part := range strings.Split(marked, "\x00") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
