package workflow

import (
	"errors"
	"fmt"
)

// ErrLoginTimedOut means the manual-checkpoint wait elapsed without the
// portal reaching the post-login URL. Distinct from generic failure so the
// caller can say "you ran out of time entering the CAPTCHA" instead of
// "the application broke".
var ErrLoginTimedOut = errors.New("login timed out waiting for manual CAPTCHA entry")

// SessionInitError means the browser session could not be created. Fatal;
// the run ends without further steps.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("session init failed: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error {
	return e.Err
}

// RunError wraps a failure with the stage it originated in.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
