package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/covenantlabs/guidegraph/internal/config"
	"github.com/covenantlabs/guidegraph/internal/core/common"
	"github.com/covenantlabs/guidegraph/internal/core/model"
)

const (
	defaultTimeout = 30 * time.Second

	// Guards against pathological responses; real guideline sections
	// produce trees nowhere near these limits.
	maxFragmentDepth    = 12
	maxFragmentBranches = 128
)

// Request is one document section handed to the reasoning backend.
type Request struct {
	SectionTitle   string
	SectionText    string
	NavigationPath []string
}

// Oracle wraps a Client with the extraction prompt, a per-call timeout and
// response validation. The backend output is never trusted: anything that
// fails to parse, or that names an outcome outside the mandatory
// vocabulary, is rejected so the caller can fall back to pattern
// extraction.
type Oracle struct {
	client   Client
	provider string
	prompt   string
	timeout  time.Duration
}

func New(client Client, provider, prompt string, timeout time.Duration) *Oracle {
	if prompt == "" {
		prompt = config.DefaultDecisionPrompt
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Oracle{
		client:   client,
		provider: provider,
		prompt:   prompt,
		timeout:  timeout,
	}
}

// Available reports whether a backend is configured at all.
func (o *Oracle) Available() bool {
	return o != nil && o.client != nil
}

// Extract asks the backend for the decision logic of one section and
// validates the answer. Leaf outcomes come back canonicalized.
func (o *Oracle) Extract(ctx context.Context, req Request) (*model.DecisionFragment, error) {
	if !o.Available() {
		provider := "none"
		if o != nil && o.provider != "" {
			provider = o.provider
		}
		return nil, &Error{Provider: provider, Reason: "no backend configured", Err: ErrUnavailable}
	}

	prompt := fmt.Sprintf(o.prompt,
		req.SectionTitle,
		strings.Join(req.NavigationPath, " > "),
		outcomeVocabulary(),
		req.SectionText,
	)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	response, err := o.client.Generate(callCtx, prompt)
	if err != nil {
		return nil, &Error{Provider: o.provider, Reason: "generate failed", Err: err}
	}

	fragment, err := common.ParseJSON[model.DecisionFragment](response)
	if err != nil {
		return nil, &Error{Provider: o.provider, Reason: "unparseable response", Err: err}
	}

	if err := validateFragment(&fragment); err != nil {
		return nil, &Error{Provider: o.provider, Reason: "rejected response", Err: err}
	}
	return &fragment, nil
}

func outcomeVocabulary() string {
	parts := make([]string, len(model.MandatoryOutcomes))
	for i, outcome := range model.MandatoryOutcomes {
		parts[i] = string(outcome)
	}
	return strings.Join(parts, ", ")
}

func validateFragment(f *model.DecisionFragment) error {
	if strings.TrimSpace(f.Condition) == "" {
		return fmt.Errorf("fragment has no root condition")
	}
	if len(f.Branches) == 0 {
		return fmt.Errorf("fragment has no branches")
	}
	total := 0
	return walkBranches(f.Branches, 0, &total)
}

// walkBranches enforces the fragment shape: a branch either carries an
// outcome or nests further branches, never both. Valid outcomes are
// rewritten to their canonical form in place.
func walkBranches(branches []model.FragmentBranch, depth int, total *int) error {
	if depth > maxFragmentDepth {
		return fmt.Errorf("fragment nesting deeper than %d levels", maxFragmentDepth)
	}
	for i := range branches {
		b := &branches[i]
		*total++
		if *total > maxFragmentBranches {
			return fmt.Errorf("fragment has more than %d branches", maxFragmentBranches)
		}

		if len(b.Branches) == 0 {
			outcome, ok := model.IsMandatoryOutcome(b.Outcome)
			if !ok {
				return fmt.Errorf("outcome %q is not in the mandatory vocabulary", b.Outcome)
			}
			b.Outcome = string(outcome)
			continue
		}

		if b.Outcome != "" {
			return fmt.Errorf("branch %q carries both an outcome and sub-branches", b.Condition)
		}
		if strings.TrimSpace(b.Condition) == "" {
			return fmt.Errorf("interior branch is missing a condition")
		}
		if err := walkBranches(b.Branches, depth+1, total); err != nil {
			return err
		}
	}
	return nil
}
