package remote

import (
	"fmt"
	"time"
)

// Stage names a step of the remote pipeline.
type Stage string

const (
	StageExtract Stage = "extract"
	StageAnalyze Stage = "analyze"
)

// ExtractionError is returned when the extraction endpoint answers with a
// non-success status or an unreadable body.
type ExtractionError struct {
	Status int
	Body   string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("extraction failed (status %d)", e.Status)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AnalysisError is returned when the analysis endpoint answers with a
// non-success status or an unreadable body.
type AnalysisError struct {
	Status int
	Body   string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("analysis failed (status %d)", e.Status)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// TransportError means the service could not be reached at all.
type TransportError struct {
	Stage Stage
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network unavailable during %s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimeoutError means a call did not settle within the configured timeout.
type TimeoutError struct {
	Stage   Stage
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Stage, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
