package step

import (
	"errors"
	"fmt"
)

// ErrElementNotFound means every candidate for a target failed its readiness
// predicate within its timeout. Stages that treat a target as optional
// swallow this; mandatory steps propagate it wrapped in a StepError.
var ErrElementNotFound = errors.New("element not found with any locator candidate")

// ErrWaitTimeout means a page-condition wait (URL change, overlay
// disappearance) elapsed without the condition becoming true.
var ErrWaitTimeout = errors.New("wait condition timed out")

// StepError wraps any interaction failure with the target that failed.
type StepError struct {
	Target string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Target, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
