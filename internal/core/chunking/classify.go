package chunking

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/common"
	"github.com/covenantlabs/guidegraph/internal/core/model"
)

var (
	definitionRe = regexp.MustCompile(`(?i)\b(?:means|is defined as|shall mean|refers to)\b`)
	defTitleRe   = regexp.MustCompile(`(?i)\b(?:definitions?|glossary|terminology)\b`)
	tabTitleRe   = regexp.MustCompile(`(?i)\b(?:matrix|table|grid|schedule)\b`)
	columnSepRe  = regexp.MustCompile(`\|| {3,}|\t`)
)

// Classify assigns a chunk type to a navigation node's content. Precedence
// runs table, then decision, then definition: a pricing matrix full of
// "must" language is still a table, and a defined term that embeds a
// condition is still a decision.
func Classify(n *model.NavigationNode) model.ChunkType {
	content := strings.TrimSpace(n.Content)
	if content == "" {
		return model.ChunkHeader
	}
	if looksTabular(n.Title, content) {
		return model.ChunkTable
	}
	if n.Metadata.DecisionIndicator || common.HasDecisionLanguage(n.Title+"\n"+content) {
		return model.ChunkDecision
	}
	if defTitleRe.MatchString(n.Title) || definitionRe.MatchString(content) {
		return model.ChunkDefinition
	}
	return model.ChunkContent
}

// looksTabular wants either a table-ish title or at least two lines that
// split into three or more columns.
func looksTabular(title, content string) bool {
	if tabTitleRe.MatchString(title) {
		return true
	}
	columnar := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(columnSepRe.Split(line, -1)) >= 3 {
			columnar++
			if columnar >= 2 {
				return true
			}
		}
	}
	return false
}
