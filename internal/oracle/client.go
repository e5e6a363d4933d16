package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Client is the narrow surface the decision extractor needs from a
// reasoning backend. Response text is untrusted.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrUnavailable marks a backend that cannot be reached at all, as opposed
// to one that answered badly.
var ErrUnavailable = errors.New("reasoning backend unavailable")

// Error wraps a backend failure with the provider name, so logs can tell a
// refused response from an unreachable service.
type Error struct {
	Provider string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle %s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("oracle %s: %s", e.Provider, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
