package report

import (
	"errors"
	"fmt"
)

// ErrorKind classifies how a case or input failed.
type ErrorKind string

const (
	// KindCaptureTimeout marks a capture process killed at its deadline.
	KindCaptureTimeout ErrorKind = "capture_timeout"
	// KindCaptureFailed marks a non-zero exit or missing capture output.
	KindCaptureFailed ErrorKind = "capture_failed"
	// KindNoBaseline marks a case with no reference artifacts.
	KindNoBaseline ErrorKind = "no_baseline"
	// KindComparison marks a failure of the pixel-diff tool itself.
	KindComparison ErrorKind = "comparison_error"
)

// ErrMalformed marks a report or archive document that failed to parse or
// validate. Commands reading stored reports treat it as fatal; it must never
// be interpreted as a passing gate.
var ErrMalformed = errors.New("malformed report")

// CaseError is a classified per-case failure. Per-case errors are recorded on
// the result and never abort the run.
type CaseError struct {
	Kind    ErrorKind
	Message string
	Detail  string
}

func (e *CaseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// KindOf extracts the classification from an error chain, or "" when the
// error is not a CaseError.
func KindOf(err error) ErrorKind {
	var ce *CaseError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
