// internal/prompt/prompt.go
// Package prompt assembles retrieved chunks into the context block and
// system framing sent to a provider.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mgearhart/foliolab/internal/textindex"
)

// System is the default framing for answer generation.
const System = "You answer questions about this portfolio using only the provided context. " +
	"If the context does not contain the answer, say so briefly. Keep answers under three sentences."

// FormatContext builds the CONTEXT block from scored chunks and returns the
// context text, the token count used, and the number of distinct sections
// covered. A maxTokens of zero means unlimited.
func FormatContext(chunks []textindex.ScoredChunk, maxTokens int) (string, int, int) {
	if len(chunks) == 0 {
		return "", 0, 0
	}
	if maxTokens < 0 {
		maxTokens = 0
	}

	var b strings.Builder
	b.WriteString("CONTEXT\n")

	contextTokens := 0
	remaining := maxTokens
	sections := make(map[string]struct{})

	for _, chunk := range chunks {
		text := strings.TrimSpace(chunk.Chunk.Text)
		if text == "" {
			continue
		}

		if maxTokens > 0 {
			if remaining <= 0 {
				break
			}
			if tokens := estimateTokens(text); tokens > remaining {
				text = truncateToTokens(text, remaining)
			}
		}

		usedTokens := estimateTokens(text)
		if usedTokens == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("[%s] %s\n", chunk.Chunk.Section, text))
		contextTokens += usedTokens
		if maxTokens > 0 {
			remaining -= usedTokens
		}
		sections[chunk.Chunk.Section] = struct{}{}
	}

	return strings.TrimRight(b.String(), "\n"), contextTokens, len(sections)
}

// Build pairs the question with its context block into the final user
// prompt.
func Build(question string, chunks []textindex.ScoredChunk, maxTokens int) string {
	context, _, _ := FormatContext(chunks, maxTokens)
	if context == "" {
		return question
	}
	return fmt.Sprintf("%s\n\nQUESTION\n%s", context, question)
}

func estimateTokens(text string) int {
	return len(strings.Fields(text))
}

func truncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	parts := strings.Fields(text)
	if len(parts) <= maxTokens {
		return text
	}
	return strings.Join(parts[:maxTokens], " ")
}
