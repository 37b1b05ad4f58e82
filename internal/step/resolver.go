package step

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/locator"
	"github.com/gstflow/gstflow/internal/logger"
	"github.com/gstflow/gstflow/internal/status"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

// Resolver turns an abstract target into a live element handle by walking
// the target's candidate ladder in declared order. Each candidate gets the
// full tier timeout; the first one whose predicate becomes true wins and the
// remaining candidates are never attempted.
type Resolver struct {
	session browser.Session
	waits   waitpolicy.Policy
	sink    status.Sink
}

func NewResolver(session browser.Session, waits waitpolicy.Policy, sink status.Sink) *Resolver {
	return &Resolver{session: session, waits: waits, sink: sink}
}

// Resolve polls each candidate up to the tier's timeout for pred to become
// true. Falling past a candidate emits a downgrade notice; only after the
// last candidate fails does the call fail with ErrElementNotFound.
func (r *Resolver) Resolve(t locator.Target, tier waitpolicy.Tier, pred locator.Predicate) (browser.Element, error) {
	if len(t.Candidates) == 0 {
		return nil, fmt.Errorf("target %q has no locator candidates", t.Name)
	}

	timeout := r.waits.DurationFor(tier)
	for i, c := range t.Candidates {
		el, ok := r.tryCandidate(c, pred, timeout)
		if ok {
			logger.Debug("resolved target",
				zap.String("target", t.Name),
				zap.Int("candidate", i+1),
				zap.String("kind", c.Kind.String()))
			return el, nil
		}
		if i < len(t.Candidates)-1 {
			status.Warnf(r.sink, fmt.Sprintf(
				"Locator %d/%d for %s timed out; falling back to next candidate",
				i+1, len(t.Candidates), t.Name))
		}
	}
	return nil, fmt.Errorf("%w: %s (%d candidates tried)", ErrElementNotFound, t.Name, len(t.Candidates))
}

func (r *Resolver) tryCandidate(c locator.Candidate, pred locator.Predicate, timeout time.Duration) (browser.Element, bool) {
	deadline := time.Now().Add(timeout)
	for {
		el, err := r.session.Find(c)
		if err == nil {
			ready, perr := satisfies(el, pred)
			if perr == nil && ready {
				return el, true
			}
		}
		if !time.Now().Before(deadline) {
			return nil, false
		}
		time.Sleep(r.waits.PollInterval())
	}
}

func satisfies(el browser.Element, pred locator.Predicate) (bool, error) {
	switch pred {
	case locator.Visible:
		return el.Visible()
	case locator.Clickable:
		if err := el.Interactable(); err != nil {
			return false, nil
		}
		return true, nil
	default:
		return true, nil
	}
}
