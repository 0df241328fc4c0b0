package session

import "fmt"

// RefinementError reports a model collaborator failure for one refinement
// step. The session's click list is left unchanged and its mask and path
// keep their last-good values; the caller retries or undoes explicitly.
type RefinementError struct {
	StepID int
	Err    error
}

// NewRefinementError wraps a collaborator error with its step id
func NewRefinementError(stepID int, err error) *RefinementError {
	return &RefinementError{StepID: stepID, Err: err}
}

func (e *RefinementError) Error() string {
	return fmt.Sprintf("refinement step %d failed: %v", e.StepID, e.Err)
}

func (e *RefinementError) Unwrap() error {
	return e.Err
}
