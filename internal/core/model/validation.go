package model

// Severity ranks a validation issue.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Issue type tags used by the decision-tree validator.
const (
	IssueMissingOutcome     = "missing_mandatory_outcome"
	IssueIncompletePath     = "incomplete_path"
	IssueOrphanNode         = "orphaned_node"
	IssueMissingType        = "missing_node_type"
	IssueInvalidType        = "invalid_node_type"
	IssueVariantViolation   = "variant_field_violation"
	IssueDuplicateCondition = "duplicate_condition"
	IssueContradiction      = "contradictory_conditions"
	IssueCycle              = "cycle_detected"
	IssueUnreachable        = "unreachable_node"
	IssueEmptyTree          = "empty_tree"
)

// ValidationIssue is a first-class defect record. Completeness and
// consistency defects are never raised as errors; they ride alongside a
// best-effort result.
type ValidationIssue struct {
	Severity    Severity `json:"severity"`
	IssueType   string   `json:"issue_type"`
	Description string   `json:"description"`
	TreeID      string   `json:"tree_id,omitempty"`
	NodeIDs     []string `json:"node_ids,omitempty"`
	AutoFixable bool     `json:"auto_fixable"`
}

// ValidationCounts are the node and path tallies of one validation run.
type ValidationCounts struct {
	TotalNodes      int `json:"total_nodes"`
	RootNodes       int `json:"root_nodes"`
	BranchNodes     int `json:"branch_nodes"`
	LeafNodes       int `json:"leaf_nodes"`
	OrphanedNodes   int `json:"orphaned_nodes"`
	TotalPaths      int `json:"total_paths"`
	ValidPaths      int `json:"valid_paths"`
	IncompletePaths int `json:"incomplete_paths"`
}

// Weights of the overall-quality blend. Fixed by contract.
const (
	WeightStructural   = 0.25
	WeightConsistency  = 0.20
	WeightOutcome      = 0.25
	WeightPathCoverage = 0.15
	WeightEntityLink   = 0.10
	WeightNavigation   = 0.05
)

// ValidationResult is recomputed on every run and never mutated in place.
type ValidationResult struct {
	StructuralScore   float64           `json:"structural_score"`
	CompletenessScore float64           `json:"completeness_score"`
	ConsistencyScore  float64           `json:"consistency_score"`
	OutcomeScore      float64           `json:"outcome_score"`
	EntityLinkScore   float64           `json:"entity_link_score"`
	NavigationScore   float64           `json:"navigation_score"`
	OverallQuality    float64           `json:"overall_quality"`
	Issues            []ValidationIssue `json:"issues,omitempty"`
	Counts            ValidationCounts  `json:"counts"`
	AutoFixesApplied  int               `json:"auto_fixes_applied"`
}

// CriticalCount tallies CRITICAL issues.
func (r *ValidationResult) CriticalCount() int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// IsValid is the single source of truth for "production-ready": zero
// critical issues, completeness >= 0.95, consistency >= 0.90 and full
// outcome coverage.
func (r *ValidationResult) IsValid() bool {
	return r.CriticalCount() == 0 &&
		r.CompletenessScore >= 0.95 &&
		r.ConsistencyScore >= 0.90 &&
		r.OutcomeScore >= 1.0
}
