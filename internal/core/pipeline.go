package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/covenantlabs/guidegraph/internal/config"
	"github.com/covenantlabs/guidegraph/internal/core/chunking"
	"github.com/covenantlabs/guidegraph/internal/core/decision"
	"github.com/covenantlabs/guidegraph/internal/core/model"
	"github.com/covenantlabs/guidegraph/internal/core/navigation"
	"github.com/covenantlabs/guidegraph/internal/core/validation"
)

// ProcessResult aggregates every stage's output for one processed document.
// Extraction keeps the forest exactly as extracted; Trees is the validated
// forest, repaired when auto-fix is on, and is what downstream consumers
// should persist.
type ProcessResult struct {
	DocumentID string                     `json:"document_id"`
	Navigation *model.NavigationStructure `json:"navigation"`
	Chunking   *model.ChunkingResult      `json:"chunking"`
	Extraction *model.ExtractionResult    `json:"extraction"`
	Validation *model.ValidationResult    `json:"validation"`
	Trees      []*model.DecisionTree      `json:"trees"`
}

// Pipeline wires the processing stages end to end: navigation extraction,
// semantic chunking, decision tree extraction and validation. Component
// fields are exported so callers and tests can swap individual stages.
type Pipeline struct {
	Navigation *navigation.Extractor
	Chunker    *chunking.Chunker
	Decisions  *decision.Extractor
	Validator  *validation.Validator

	// AutoFix routes validation through the repairing path, so Trees in
	// the result may differ from Extraction.Trees.
	AutoFix bool

	log *slog.Logger
}

// NewPipeline builds a pipeline from configuration. source may be nil, in
// which case decision extraction runs on the pattern extractor alone.
func NewPipeline(cfg *config.Config, source decision.FragmentSource, log *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Navigation: navigation.NewExtractor(navigation.Config{
			MinTOCEntries: cfg.Navigation.MinTOCEntries,
			MaxHeadingLen: cfg.Navigation.MaxHeadingLen,
		}),
		Chunker: chunking.NewChunker(chunking.Config{
			MaxTokens:     cfg.Chunking.MaxTokens,
			TargetTokens:  cfg.Chunking.TargetTokens,
			MinTokens:     cfg.Chunking.MinTokens,
			OverlapTokens: cfg.Chunking.OverlapTokens,
		}),
		Decisions: decision.NewExtractor(source, decision.Config{
			MaxConcurrent: cfg.Oracle.MaxConcurrent,
		}, log),
		Validator: validation.New(),
		AutoFix:   cfg.Pipeline.AutoFix,
		log:       log,
	}
}

// Process runs rawText through all four stages. Only navigation extraction
// and context cancellation surface as errors; every downstream defect is
// reported inside the result instead, so a degraded document still comes
// back scored.
func (p *Pipeline) Process(ctx context.Context, rawText, documentName, formatHint string) (*ProcessResult, error) {
	start := time.Now()

	structure, err := p.Navigation.Extract(rawText, documentName, formatHint)
	if err != nil {
		return nil, fmt.Errorf("navigation extraction failed: %w", err)
	}
	p.log.Info("navigation structure extracted",
		"document", documentName,
		"nodes", len(structure.Nodes),
		"decision_roots", len(structure.DecisionRoots))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunked := p.Chunker.Chunk(structure)
	p.log.Info("content chunked",
		"document", documentName,
		"chunks", len(chunked.Chunks),
		"relationships", len(chunked.Relationships))

	extraction, err := p.Decisions.Extract(ctx, structure)
	if err != nil {
		return nil, fmt.Errorf("decision extraction failed: %w", err)
	}
	if !extraction.Success {
		p.log.Warn("decision extraction incomplete",
			"document", documentName,
			"warnings", extraction.Warnings,
			"errors", extraction.Errors)
	}

	trees := extraction.Trees
	scores := contextScores(structure, chunked, trees)
	var report *model.ValidationResult
	if p.AutoFix {
		fixed, applied := p.Validator.AutoFix(trees)
		report = p.Validator.ValidateWithContext(fixed, scores)
		report.AutoFixesApplied = applied
		trees = fixed
	} else {
		report = p.Validator.ValidateWithContext(trees, scores)
	}
	p.log.Info("forest validated",
		"document", documentName,
		"trees", len(trees),
		"overall_quality", report.OverallQuality,
		"critical_issues", report.CriticalCount(),
		"auto_fixes", report.AutoFixesApplied,
		"valid", report.IsValid(),
		"elapsed", time.Since(start))

	return &ProcessResult{
		DocumentID: structure.DocumentID,
		Navigation: structure,
		Chunking:   chunked,
		Extraction: extraction,
		Validation: report,
		Trees:      trees,
	}, nil
}

// contextScores derives the two caller-supplied validation inputs from the
// earlier stages: how many trees still link to a live navigation section,
// and how faithfully chunk contexts preserve the navigation paths they were
// cut from. Both are 1.0 on a healthy run.
func contextScores(structure *model.NavigationStructure, chunked *model.ChunkingResult, trees []*model.DecisionTree) validation.ContextScores {
	scores := validation.NeutralContextScores()
	if len(trees) > 0 {
		linked := 0
		for _, t := range trees {
			if structure.Node(t.SectionID) != nil {
				linked++
			}
		}
		scores.EntityLinkage = float64(linked) / float64(len(trees))
	}
	if n := len(chunked.Chunks); n > 0 {
		preserved := 0
		for _, c := range chunked.Chunks {
			if slices.Equal(c.Context.NavigationPath, structure.Path(c.NodeID)) {
				preserved++
			}
		}
		scores.NavigationPreservation = float64(preserved) / float64(n)
	}
	return scores
}
