// Package browser owns the single live browser session. All portal access
// is funneled through the Session interface from one worker goroutine; the
// handle is never touched concurrently.
package browser

import (
	"errors"

	"github.com/gstflow/gstflow/internal/locator"
)

// ErrNotFound is returned by Session.Find when the candidate matches no
// element in the live DOM right now. Callers poll; a single miss is not
// terminal.
var ErrNotFound = errors.New("element not found")

// Element is one resolved DOM element handle.
type Element interface {
	Click() error
	// Input replaces the element's current text with value.
	Input(value string) error
	// Hover moves the pointer over the element, firing pointer-over events.
	// Required for menu links that are not interactable until revealed.
	Hover() error
	// SelectIndex picks the option at index i of a <select> and fires a
	// change event.
	SelectIndex(i int) error
	Visible() (bool, error)
	// Interactable reports whether the element can receive a click now.
	Interactable() error
}

// Session is the live browser session used by the step executor.
type Session interface {
	Navigate(url string) error
	// Find attempts a single immediate lookup of one locator candidate.
	// Returns ErrNotFound when nothing matches.
	Find(c locator.Candidate) (Element, error)
	// URL returns the current page URL.
	URL() (string, error)
	// Eval runs a page-level JavaScript function expression.
	Eval(js string) error
	// Screenshot writes a full-page capture to path. Diagnostics only.
	Screenshot(path string) error
	Close() error
}

// Options configures session launch.
type Options struct {
	// DownloadDir receives generated report files; created if absent and
	// bound with download prompts suppressed.
	DownloadDir string
	Headless    bool
	Width       int
	Height      int
}

// LaunchFunc creates a session. The orchestrator takes one so tests can
// substitute a fake for the real browser.
type LaunchFunc func(opts Options) (Session, error)
