package compliance

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the review flow. Every error is terminal for the
// attempt it occurred in; retries are the caller's responsibility.
var (
	// ErrBackendUnavailable means the engine capability resolved to manual
	// mode; callers should offer the manual-entry fallback.
	ErrBackendUnavailable = errors.New("compliance engine integration is not configured")
	// ErrInvalidState means the application is still in its draft stage.
	ErrInvalidState = errors.New("submit the application before starting a backend review")
	// ErrConfigurationMissing means no workflow identifier could be resolved
	// from either the deployment config or the schema document.
	ErrConfigurationMissing = errors.New("no workflow identifier configured")
	// ErrNoJobStarted means no review job has ever been recorded for the application.
	ErrNoJobStarted = errors.New("no review job has been started for this application yet")
)

// MissingInputError reports a schema-required input with no matching value or
// uploaded document.
type MissingInputError struct {
	Key   string
	Label string
}

func (e *MissingInputError) Error() string {
	label := e.Label
	if label == "" {
		label = e.Key
	}
	return fmt.Sprintf("missing required input for %s", label)
}
