package chunking

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

var clauseStartRe = regexp.MustCompile(`(?i)^(?:if|when|unless|otherwise|except)\b`)

// splitContent cuts a node's content into chunk-sized parts. Decision
// sections split at clause starts so one rule never straddles two chunks;
// everything else splits by paragraph, falling back to sentences.
func splitContent(content string, typ model.ChunkType, cfg Config) []string {
	if EstimateTokens(content) <= cfg.MaxTokens {
		return []string{content}
	}
	if typ == model.ChunkDecision {
		return splitDecision(content, cfg)
	}
	return splitProse(content, cfg)
}

// splitProse packs paragraphs up to the target size, splitting any single
// oversized paragraph by sentences. Consecutive parts share a short overlap
// tail so boundary context is not lost.
func splitProse(content string, cfg Config) []string {
	var units []string
	for _, para := range splitParagraphs(content) {
		if EstimateTokens(para) > cfg.MaxTokens {
			units = append(units, packUnits(splitSentences(para), " ", cfg.TargetTokens, cfg.MaxTokens, cfg.OverlapTokens)...)
			continue
		}
		units = append(units, para)
	}
	return packUnits(units, "\n\n", cfg.TargetTokens, cfg.MaxTokens, cfg.OverlapTokens)
}

// splitDecision groups sentences into clauses that start at decision
// keywords, then packs whole clauses. No overlap is added between decision
// parts: repeating half a condition would read as a second rule.
func splitDecision(content string, cfg Config) []string {
	clauses := decisionClauses(content)
	var units []string
	for _, cl := range clauses {
		if EstimateTokens(cl) > cfg.MaxTokens {
			units = append(units, splitSentences(cl)...)
			continue
		}
		units = append(units, cl)
	}
	return packUnits(units, " ", cfg.TargetTokens, cfg.MaxTokens, 0)
}

// decisionClauses joins sentences into runs, opening a new run whenever a
// sentence starts with a decision keyword.
func decisionClauses(content string) []string {
	sentences := splitSentences(content)
	var clauses []string
	var cur []string
	for _, s := range sentences {
		if clauseStartRe.MatchString(s) && len(cur) > 0 {
			clauses = append(clauses, strings.Join(cur, " "))
			cur = cur[:0]
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		clauses = append(clauses, strings.Join(cur, " "))
	}
	return clauses
}

// packUnits greedily fills parts up to targetTokens. A unit that alone
// exceeds maxTokens is emitted as its own part: an indivisible unit may
// break the ceiling, a packed one never does. The overflow check only fires
// once a part holds a real unit, so a carried overlap tail can never be
// flushed on its own.
func packUnits(units []string, sep string, targetTokens, maxTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0
	unitCount := 0

	flush := func() string {
		out := ""
		if unitCount > 0 {
			out = strings.TrimSpace(current.String())
			if out != "" {
				result = append(result, out)
			}
		}
		current.Reset()
		currentTokens = 0
		unitCount = 0
		return out
	}

	for _, unit := range units {
		unitTokens := EstimateTokens(unit)
		if unitTokens > maxTokens {
			flush()
			result = append(result, strings.TrimSpace(unit))
			continue
		}
		if unitCount > 0 && currentTokens+unitTokens > targetTokens {
			prev := flush()
			if tail := overlapTail(prev, overlapTokens); tail != "" {
				current.WriteString(tail)
				currentTokens = EstimateTokens(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(unit)
		currentTokens += unitTokens
		unitCount++
	}
	flush()
	return result
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences is deliberately simple: terminal punctuation followed by a
// space. Abbreviation-aware splitting is not worth the cost here, since an
// occasional short "sentence" just packs into the same chunk anyway.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flat := strings.Join(strings.Fields(text), " ")
	for i, r := range flat {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(flat) && flat[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// mergeTrailing folds an undersized final part into its predecessor when the
// pair still fits under the ceiling. Returns the parts and how many merges
// happened.
func mergeTrailing(parts []string, sep string, minTokens, maxTokens int) ([]string, int) {
	merged := 0
	for len(parts) > 1 {
		last := parts[len(parts)-1]
		prev := parts[len(parts)-2]
		if EstimateTokens(last) >= minTokens {
			break
		}
		if EstimateTokens(prev)+EstimateTokens(last) > maxTokens {
			break
		}
		parts = parts[:len(parts)-1]
		parts[len(parts)-1] = prev + sep + last
		merged++
	}
	return parts, merged
}
