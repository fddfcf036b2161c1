package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
)

var (
	// ErrBusy is returned when an operation is attempted while a run is in flight.
	ErrBusy = errors.New("analysis already in progress")
	// ErrNotInitialized is returned when Init has not loaded persisted state yet.
	ErrNotInitialized = errors.New("session not initialized")
)

// ValidationError reports an operation invoked without the input it needs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// describe turns a pipeline failure into the message shown to the user.
func describe(err error) string {
	var (
		extErr     *remote.ExtractionError
		anErr      *remote.AnalysisError
		timeoutErr *remote.TimeoutError
		trErr      *remote.TransportError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "Analysis cancelled"
	case errors.As(err, &extErr):
		if extErr.Status >= 300 {
			return fmt.Sprintf("Text extraction failed (HTTP %d)", extErr.Status)
		}
		return "Text extraction failed: unreadable response"
	case errors.As(err, &anErr):
		if anErr.Status >= 300 {
			return fmt.Sprintf("Analysis failed (HTTP %d)", anErr.Status)
		}
		return "Analysis failed: unreadable response"
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("The analysis service did not answer within %s", timeoutErr.Timeout)
	case errors.As(err, &trErr):
		return "Network unavailable: could not reach the analysis service"
	default:
		return "Something went wrong!"
	}
}
