package common

import (
	"regexp"
	"strings"
)

// Decision-indicator patterns shared by the navigation extractor, the
// chunker and the decision-tree extractor, so a navigation flag and a chunk
// classification can never disagree about the same text.
var decisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bif\b`),
	regexp.MustCompile(`(?i)\bthen\b`),
	regexp.MustCompile(`(?i)\bwhen\b`),
	regexp.MustCompile(`(?i)\bunless\b`),
	regexp.MustCompile(`(?i)\botherwise\b`),
	regexp.MustCompile(`(?i)\bmust\b`),
	regexp.MustCompile(`(?i)\bshall\b`),
	regexp.MustCompile(`(?i)\brequired?s?\b`),
	regexp.MustCompile(`(?i)\bapprov(?:e[ds]?|al)\b`),
	regexp.MustCompile(`(?i)\b(?:declin(?:e[ds]?)|den(?:y|ied|ial))\b`),
	regexp.MustCompile(`(?i)\brefer(?:red|ral)?\b`),
	regexp.MustCompile(`(?i)\beligib(?:le|ility)\b`),
	regexp.MustCompile(`(?i)\bexceeds?\b`),
	regexp.MustCompile(`(?i)\b(?:minimum|maximum)\b`),
	regexp.MustCompile(`(?i)\b(?:at least|no more than|greater than|less than)\b`),
}

// DecisionSignals counts decision-indicator language in text. distinct is
// the number of different patterns that matched at least once; total is the
// number of matches across all patterns.
func DecisionSignals(text string) (distinct, total int) {
	for _, re := range decisionPatterns {
		n := len(re.FindAllStringIndex(text, -1))
		if n > 0 {
			distinct++
			total += n
		}
	}
	return distinct, total
}

// HasDecisionLanguage reports whether the decision-indicator density of the
// text clears the shared threshold: at least two distinct signals, or one
// signal per forty words.
func HasDecisionLanguage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	distinct, total := DecisionSignals(text)
	if distinct >= 2 {
		return true
	}
	words := len(strings.Fields(text))
	return total >= 1 && words > 0 && total*40 >= words
}

// DecisionDensity returns total decision signals per word, for callers that
// rank sections rather than gate them.
func DecisionDensity(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	_, total := DecisionSignals(text)
	return float64(total) / float64(words)
}
