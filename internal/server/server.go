package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/covenantlabs/guidegraph/internal/core"
	"github.com/covenantlabs/guidegraph/internal/core/model"
	"github.com/covenantlabs/guidegraph/internal/graph"
	"github.com/covenantlabs/guidegraph/internal/ingest"
)

// Server adapts HTTP requests onto the processing pipeline. It holds no
// processing logic of its own. A nil Assembler disables graph persistence.
type Server struct {
	Pipeline  *core.Pipeline
	Assembler *graph.Assembler

	log *slog.Logger
}

func New(pipeline *core.Pipeline, assembler *graph.Assembler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Pipeline: pipeline, Assembler: assembler, log: log}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.POST("/documents/process", s.ProcessDocument)
	r.POST("/documents/ingest", s.IngestDocument)
	r.POST("/trees/validate", s.ValidateTrees)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"oracle": s.Pipeline.Decisions.OracleAvailable(),
		"graph":  s.Assembler != nil,
	})
}

type ProcessRequest struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Format string `json:"format"`
}

// ExtractionSummary mirrors the extraction result without repeating the
// forest, which travels once under "trees".
type ExtractionSummary struct {
	Success           bool     `json:"success"`
	CompletenessScore float64  `json:"completeness_score"`
	Warnings          []string `json:"warnings,omitempty"`
	Errors            []string `json:"errors,omitempty"`
}

type ProcessResponse struct {
	DocumentID    string                  `json:"document_id"`
	Sections      int                     `json:"sections"`
	Chunks        int                     `json:"chunks"`
	Relationships int                     `json:"relationships"`
	Pages         int                     `json:"pages,omitempty"`
	Extraction    ExtractionSummary       `json:"extraction"`
	Trees         []*model.DecisionTree   `json:"trees"`
	Validation    *model.ValidationResult `json:"validation"`
	Graph         *graph.AssembleStats    `json:"graph,omitempty"`
}

func (s *Server) ProcessDocument(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	s.process(c, req.Text, req.Name, req.Format, 0)
}

func (s *Server) IngestDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if !ingest.IsSupportedExtension(file.Filename) {
		c.JSON(http.StatusUnsupportedMediaType,
			gin.H{"error": fmt.Sprintf("unsupported file type %q", filepath.Ext(file.Filename))})
		return
	}

	f, err := file.Open()
	if err != nil {
		s.log.Error("uploaded file open failed", "filename", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	doc, err := ingest.Read(f, file.Filename)
	if err != nil {
		s.log.Error("document extraction failed", "filename", file.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to extract document text"})
		return
	}

	name := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	s.process(c, doc.Text, name, doc.FormatHint, doc.Pages)
}

func (s *Server) process(c *gin.Context, text, name, format string, pages int) {
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document text is required"})
		return
	}
	if name == "" {
		name = "document"
	}

	res, err := s.Pipeline.Process(c.Request.Context(), text, name, format)
	if err != nil {
		if errors.Is(err, model.ErrEmptyDocument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "document text is required"})
			return
		}
		s.log.Error("document processing failed", "document", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process document"})
		return
	}

	resp := ProcessResponse{
		DocumentID:    res.DocumentID,
		Sections:      len(res.Navigation.Nodes),
		Chunks:        len(res.Chunking.Chunks),
		Relationships: len(res.Chunking.Relationships),
		Pages:         pages,
		Extraction: ExtractionSummary{
			Success:           res.Extraction.Success,
			CompletenessScore: res.Extraction.CompletenessScore,
			Warnings:          res.Extraction.Warnings,
			Errors:            res.Extraction.Errors,
		},
		Trees:      res.Trees,
		Validation: res.Validation,
	}

	if s.Assembler != nil {
		stats, err := s.Assembler.Assemble(c.Request.Context(), res.DocumentID, res)
		if err != nil {
			s.log.Error("graph assembly aborted", "document", name, "error", err)
		} else {
			resp.Graph = &stats
		}
	}

	c.JSON(http.StatusOK, resp)
}

type ValidateRequest struct {
	Trees   []*model.DecisionTree `json:"trees"`
	AutoFix bool                  `json:"auto_fix"`
}

// ValidateTrees scores a forest supplied by the caller, regardless of where
// it was extracted. With auto_fix set, the response carries the repaired
// forest alongside its validation.
func (s *Server) ValidateTrees(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.AutoFix {
		report, fixed := s.Pipeline.Validator.ValidateAndFix(req.Trees)
		c.JSON(http.StatusOK, gin.H{"validation": report, "trees": fixed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": s.Pipeline.Validator.Validate(req.Trees)})
}
