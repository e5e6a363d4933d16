package decision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/covenantlabs/guidegraph/internal/core/common"
	"github.com/covenantlabs/guidegraph/internal/core/model"
	"github.com/covenantlabs/guidegraph/internal/oracle"
)

// FragmentSource produces validated decision fragments for a section.
// *oracle.Oracle satisfies it; tests substitute stubs.
type FragmentSource interface {
	Available() bool
	Extract(ctx context.Context, req oracle.Request) (*model.DecisionFragment, error)
}

// Config bounds the extractor's oracle fan-out.
type Config struct {
	MaxConcurrent int
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	return c
}

// Extractor turns decision-bearing navigation sections into decision trees.
// Sections are sent to the reasoning backend concurrently; any failure on a
// section drops to the pattern fallback, so a section that carries decision
// language always yields a tree.
type Extractor struct {
	source FragmentSource
	cfg    Config
	log    *slog.Logger
}

func NewExtractor(source FragmentSource, cfg Config, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		source: source,
		cfg:    cfg.withDefaults(),
		log:    log,
	}
}

// OracleAvailable reports whether a reasoning backend is attached and ready.
func (e *Extractor) OracleAvailable() bool {
	return e.source != nil && e.source.Available()
}

type sectionResult struct {
	idx  int
	tree *model.DecisionTree
	warn string
	err  string
}

// Extract builds one decision tree per decision-bearing section of the
// structure. A document without decision language is a valid input: the
// result carries Success=false and a warning, not an error. Per-section
// failures are isolated; remaining sections still extract.
func (e *Extractor) Extract(ctx context.Context, structure *model.NavigationStructure) (*model.ExtractionResult, error) {
	if structure == nil || structure.Root() == nil {
		return nil, fmt.Errorf("navigation structure is empty")
	}

	sections := selectSections(structure)
	if len(sections) == 0 {
		e.log.Info("no decision sections found", "document", structure.DocumentID)
		return &model.ExtractionResult{
			Success:  false,
			Warnings: []string{"no decision-language sections found"},
		}, nil
	}

	results := make(chan sectionResult, len(sections))
	sem := make(chan struct{}, e.cfg.MaxConcurrent)
	for i, section := range sections {
		sem <- struct{}{}
		go func(i int, section *model.NavigationNode) {
			defer func() { <-sem }()
			results <- e.extractSection(ctx, structure, i, section)
		}(i, section)
	}

	// Placement is by section index, not completion order, so tree numbering
	// follows document order regardless of oracle latency.
	slots := make([]sectionResult, len(sections))
	for range sections {
		r := <-results
		slots[r.idx] = r
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &model.ExtractionResult{Success: true}
	built := 0
	for _, r := range slots {
		if r.warn != "" {
			result.Warnings = append(result.Warnings, r.warn)
		}
		if r.err != "" {
			result.Errors = append(result.Errors, r.err)
			continue
		}
		if r.tree != nil {
			result.Trees = append(result.Trees, r.tree)
			built++
		}
	}
	result.CompletenessScore = float64(built) / float64(len(sections))
	if built == 0 {
		result.Success = false
	}

	e.log.Info("decision extraction complete",
		"document", structure.DocumentID,
		"sections", len(sections),
		"trees", built,
		"errors", len(result.Errors))
	return result, nil
}

func (e *Extractor) extractSection(ctx context.Context, structure *model.NavigationStructure, idx int, section *model.NavigationNode) sectionResult {
	treeID := fmt.Sprintf("dt_%04d", idx)
	res := sectionResult{idx: idx}

	if e.source != nil && e.source.Available() {
		fragment, err := e.source.Extract(ctx, oracle.Request{
			SectionTitle:   section.Title,
			SectionText:    section.Content,
			NavigationPath: structure.Path(section.ID),
		})
		if err == nil {
			res.tree = normalize(treeFromFragment(treeID, section.ID, section.Title, fragment))
			return res
		}
		if ctx.Err() != nil {
			res.err = fmt.Sprintf("section %s: %v", section.ID, ctx.Err())
			return res
		}
		e.log.Warn("oracle extraction failed, using pattern fallback",
			"section", section.ID, "error", err)
		res.warn = fmt.Sprintf("section %s: oracle extraction failed (%v); used pattern fallback", section.ID, err)
	}

	tree := patternTree(treeID, section.ID, section.Title, section.Content)
	if tree == nil {
		res.err = fmt.Sprintf("section %s: no decision tree could be extracted", section.ID)
		return res
	}
	res.tree = normalize(tree)
	return res
}

// selectSections returns the content nodes that look decisional, in document
// order: the ones the navigation pass flagged, plus any whose text trips the
// shared decision-language detector.
func selectSections(structure *model.NavigationStructure) []*model.NavigationNode {
	var out []*model.NavigationNode
	for _, n := range structure.OrderedNodes() {
		if n.ID == structure.RootID || n.Content == "" {
			continue
		}
		if n.Metadata.DecisionIndicator || common.HasDecisionLanguage(n.Title+"\n"+n.Content) {
			out = append(out, n)
		}
	}
	return out
}
