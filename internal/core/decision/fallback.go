package decision

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

var (
	conditionalRe = regexp.MustCompile(`(?i)^(?:if|when|unless|where|should)\b`)
	otherwiseRe   = regexp.MustCompile(`(?i)^(?:otherwise|in all other cases|for all other cases)\b`)
	thenSplitRe   = regexp.MustCompile(`(?i)\s*,?\s*\bthen\b\s*`)

	negatedApprovalRe = regexp.MustCompile(`(?i)\b(?:must not|may not|cannot|can not|shall not|will not)\b[^.]*\bapprov`)
	declineRe         = regexp.MustCompile(`(?i)\b(?:declin\w*|den(?:y|ied|ial)\w*|reject\w*|ineligible|not eligible|does not qualify|disqualif\w*)\b`)
	approveRe         = regexp.MustCompile(`(?i)\b(?:approv\w*|eligible|qualifies|acceptable|may proceed)\b`)
	referRe           = regexp.MustCompile(`(?i)\b(?:refer\w*|manual review|manual underwriting|underwriter review|escalat\w*)\b`)
)

type clause struct {
	condition string
	outcome   model.Outcome
	detail    string
}

// patternTree synthesizes a minimal tree from conditional sentences in the
// section text. It always returns a tree: text with no recognizable clauses
// yields a single default REFER leaf under the root.
func patternTree(treeID, sectionID, title, text string) *model.DecisionTree {
	ids := &idAlloc{prefix: treeID}
	tree := &model.DecisionTree{
		ID:        treeID,
		SectionID: sectionID,
		Title:     title,
		Nodes:     make(map[string]*model.DecisionTreeNode),
		Source:    model.SourcePattern,
	}

	rootCondition := "Evaluate section conditions"
	if title != "" {
		rootCondition = "Evaluate " + title
	}
	root := model.NewRootNode(ids.next(), rootCondition)
	tree.RootID = root.ID
	tree.AddNode(root)

	clauses := scanClauses(text)
	for _, cl := range clauses {
		branch := model.NewBranchNode(ids.next(), root.ID, cl.condition)
		tree.AddNode(branch)
		var descriptions map[model.Outcome]string
		if cl.detail != "" {
			descriptions = map[model.Outcome]string{cl.outcome: cl.detail}
		}
		tree.AddNode(model.NewLeafNode(ids.next(), branch.ID, []model.Outcome{cl.outcome}, descriptions))
	}
	if len(clauses) == 0 {
		tree.AddNode(model.NewLeafNode(ids.next(), root.ID,
			[]model.Outcome{model.DefaultOutcome},
			map[model.Outcome]string{model.DefaultOutcome: "No explicit decision criteria; route to manual review"}))
	}
	return tree
}

// scanClauses pulls "if condition then outcome" shapes out of free text.
// Clause units are sentences, with semicolons treated as unit breaks so that
// inline rule lists ("If X: APPROVE; If Y: DECLINE") split cleanly.
func scanClauses(text string) []clause {
	var out []clause
	for _, unit := range clauseUnits(text) {
		switch {
		case conditionalRe.MatchString(unit):
			condition, detail := splitConditional(unit)
			out = append(out, clause{condition: condition, outcome: inferOutcome(unit), detail: detail})
		case otherwiseRe.MatchString(unit):
			out = append(out, clause{condition: "Otherwise", outcome: inferOutcome(unit), detail: unit})
		}
	}
	return out
}

func clauseUnits(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")
	var out []string
	var cur strings.Builder
	for i := 0; i < len(flat); i++ {
		c := flat[i]
		cur.WriteByte(c)
		atBreak := c == ';' ||
			((c == '.' || c == '!' || c == '?') && (i+1 == len(flat) || flat[i+1] == ' '))
		if atBreak {
			if u := strings.TrimSpace(strings.TrimRight(cur.String(), ";")); u != "" {
				out = append(out, u)
			}
			cur.Reset()
		}
	}
	if u := strings.TrimSpace(cur.String()); u != "" {
		out = append(out, u)
	}
	return out
}

func splitConditional(s string) (condition, detail string) {
	if loc := thenSplitRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[1]:])
	}
	if i := strings.IndexAny(s, ":,"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return strings.TrimRight(strings.TrimSpace(s), "."), ""
}

// inferOutcome maps a clause's wording onto the mandatory vocabulary.
// Negated approval reads as a decline; anything with no outcome language at
// all gets the default.
func inferOutcome(s string) model.Outcome {
	switch {
	case negatedApprovalRe.MatchString(s):
		return model.OutcomeDecline
	case declineRe.MatchString(s):
		return model.OutcomeDecline
	case approveRe.MatchString(s):
		return model.OutcomeApprove
	case referRe.MatchString(s):
		return model.OutcomeRefer
	default:
		return model.DefaultOutcome
	}
}
