package step

import (
	"fmt"
	"strings"
	"time"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/locator"
	"github.com/gstflow/gstflow/internal/status"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

type actionKind int

const (
	actionClick actionKind = iota
	actionTypeText
	actionHover
	actionSelectIndex
	actionWaitURLContains
	actionWaitInvisible
)

// Action is one interaction to apply to a resolved target.
type Action struct {
	kind   actionKind
	text   string
	index  int
	substr string
}

func Click() Action                        { return Action{kind: actionClick} }
func TypeText(value string) Action         { return Action{kind: actionTypeText, text: value} }
func Hover() Action                        { return Action{kind: actionHover} }
func SelectIndex(i int) Action             { return Action{kind: actionSelectIndex, index: i} }
func WaitURLContains(substr string) Action { return Action{kind: actionWaitURLContains, substr: substr} }
func WaitInvisible() Action                { return Action{kind: actionWaitInvisible} }

func (a Action) String() string {
	switch a.kind {
	case actionTypeText:
		return "typeText"
	case actionHover:
		return "hover"
	case actionSelectIndex:
		return fmt.Sprintf("selectIndex(%d)", a.index)
	case actionWaitURLContains:
		return fmt.Sprintf("waitForUrlContains(%q)", a.substr)
	case actionWaitInvisible:
		return "waitForInvisible"
	default:
		return "click"
	}
}

// Executor is the single choke point through which every portal interaction
// passes: resolve the target at the declared tier, then apply the action.
// Uniform timeout discipline, uniform failure reporting.
type Executor struct {
	session  browser.Session
	resolver *Resolver
	waits    waitpolicy.Policy
}

func NewExecutor(session browser.Session, waits waitpolicy.Policy, sink status.Sink) *Executor {
	return &Executor{
		session:  session,
		resolver: NewResolver(session, waits, sink),
		waits:    waits,
	}
}

// Perform resolves target at the declared tier and applies the action.
// Failures come back as *StepError carrying the target name.
func (x *Executor) Perform(t locator.Target, a Action, tier waitpolicy.Tier) error {
	var err error
	switch a.kind {
	case actionClick:
		err = x.withResolved(t, tier, locator.Clickable, browser.Element.Click)
	case actionTypeText:
		err = x.withResolved(t, tier, locator.Visible, func(el browser.Element) error {
			return el.Input(a.text)
		})
	case actionHover:
		err = x.withResolved(t, tier, locator.Visible, browser.Element.Hover)
	case actionSelectIndex:
		err = x.withResolved(t, tier, locator.Exists, func(el browser.Element) error {
			return el.SelectIndex(a.index)
		})
	case actionWaitURLContains:
		err = x.waitURLContains(a.substr, tier)
	case actionWaitInvisible:
		err = x.waitInvisible(t, tier)
	default:
		err = fmt.Errorf("unknown action %v", a.kind)
	}
	if err != nil {
		return &StepError{Target: t.Name, Err: err}
	}
	return nil
}

func (x *Executor) withResolved(t locator.Target, tier waitpolicy.Tier, pred locator.Predicate, apply func(browser.Element) error) error {
	el, err := x.resolver.Resolve(t, tier, pred)
	if err != nil {
		return err
	}
	return apply(el)
}

// waitURLContains polls the session URL until it contains substr or the
// tier's timeout elapses. This is how login confirmation is detected: the
// portal redirects to a known welcome URL once the human clears the CAPTCHA.
func (x *Executor) waitURLContains(substr string, tier waitpolicy.Tier) error {
	deadline := time.Now().Add(x.waits.DurationFor(tier))
	for {
		url, err := x.session.URL()
		if err == nil && strings.Contains(url, substr) {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: url does not contain %q", ErrWaitTimeout, substr)
		}
		time.Sleep(x.waits.PollInterval())
	}
}

// waitInvisible polls the target's primary candidate until it is absent or
// hidden. Used for transient loading overlays; absence counts as success.
func (x *Executor) waitInvisible(t locator.Target, tier waitpolicy.Tier) error {
	if len(t.Candidates) == 0 {
		return fmt.Errorf("target %q has no locator candidates", t.Name)
	}
	c := t.Candidates[0]
	deadline := time.Now().Add(x.waits.DurationFor(tier))
	for {
		el, err := x.session.Find(c)
		if err != nil {
			return nil
		}
		if visible, verr := el.Visible(); verr == nil && !visible {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s still visible", ErrWaitTimeout, t.Name)
		}
		time.Sleep(x.waits.PollInterval())
	}
}
