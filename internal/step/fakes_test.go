package step

import (
	"errors"
	"time"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/locator"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

// tinyWaits keeps ladder fallthrough and timeout paths fast in tests.
func tinyWaits() waitpolicy.Policy {
	return waitpolicy.Policy{
		ShortWait:            20 * time.Millisecond,
		LongWait:             30 * time.Millisecond,
		VeryLongWait:         40 * time.Millisecond,
		ManualCheckpointWait: 50 * time.Millisecond,
		Poll:                 time.Millisecond,
	}
}

type fakeElement struct {
	visible      bool
	interactable bool
	// visibleAfter delays visibility for the given number of Visible calls.
	visibleAfter int
	visibleCalls int

	clicks   int
	hovers   int
	typed    []string
	selected []int
}

func newFakeElement() *fakeElement {
	return &fakeElement{visible: true, interactable: true}
}

func (e *fakeElement) Click() error { e.clicks++; return nil }

func (e *fakeElement) Input(value string) error {
	e.typed = append(e.typed, value)
	return nil
}

func (e *fakeElement) Hover() error { e.hovers++; return nil }

func (e *fakeElement) SelectIndex(i int) error {
	e.selected = append(e.selected, i)
	return nil
}

func (e *fakeElement) Visible() (bool, error) {
	e.visibleCalls++
	if e.visibleCalls <= e.visibleAfter {
		return false, nil
	}
	return e.visible, nil
}

func (e *fakeElement) Interactable() error {
	if !e.interactable {
		return errors.New("covered by another element")
	}
	return nil
}

type fakeSession struct {
	elements map[string]*fakeElement
	urls     []string
	finds    []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{elements: make(map[string]*fakeElement)}
}

func (s *fakeSession) add(expr string) *fakeElement {
	el := newFakeElement()
	s.elements[expr] = el
	return el
}

func (s *fakeSession) Navigate(url string) error { return nil }

func (s *fakeSession) Find(c locator.Candidate) (browser.Element, error) {
	s.finds = append(s.finds, c.Expr)
	el, ok := s.elements[c.Expr]
	if !ok {
		return nil, browser.ErrNotFound
	}
	return el, nil
}

// URL pops through the configured sequence, sticking on the last entry.
func (s *fakeSession) URL() (string, error) {
	if len(s.urls) == 0 {
		return "", nil
	}
	url := s.urls[0]
	if len(s.urls) > 1 {
		s.urls = s.urls[1:]
	}
	return url, nil
}

func (s *fakeSession) Eval(js string) error { return nil }

func (s *fakeSession) Screenshot(path string) error { return nil }

func (s *fakeSession) Close() error { return nil }
