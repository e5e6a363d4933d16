package chunking

import "strings"

// tokenCharRatio is the rough characters-per-token ratio for English prose.
const tokenCharRatio = 4

// EstimateTokens gives an approximate token count. Exact tokenization is not
// required for chunk sizing, so a character heuristic is enough.
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	n := (len(trimmed) + tokenCharRatio - 1) / tokenCharRatio
	if n < 1 {
		n = 1
	}
	return n
}

// overlapTail returns roughly overlapTokens worth of trailing text, cut at a
// word boundary. An empty string means the text is too short to overlap.
func overlapTail(text string, overlapTokens int) string {
	if overlapTokens <= 0 {
		return ""
	}
	budget := overlapTokens * tokenCharRatio
	if len(text) <= budget {
		return ""
	}
	cut := len(text) - budget
	idx := strings.IndexByte(text[cut:], ' ')
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[cut+idx+1:])
}
