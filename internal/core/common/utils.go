package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ParseJSON cleans and unmarshals a JSON object embedded in free-form text
// into a type T. It tolerates common LLM quirks: markdown fences, prose
// before or after the object, trailing commentary.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr := StripCodeFence(response)

	start := strings.IndexByte(jsonStr, '{')
	end := strings.LastIndexByte(jsonStr, '}')
	if start == -1 || end == -1 || end <= start {
		return zero, fmt.Errorf("no JSON object found in response")
	}
	jsonStr = jsonStr[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
