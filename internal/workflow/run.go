// Package workflow sequences the portal stages for one run: sign-in with a
// human-entered CAPTCHA, then the operator-selected flows. One run owns the
// browser session for its whole lifetime and tears it down on every exit
// path; the caller is responsible for not starting concurrent runs.
package workflow

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/locator"
	"github.com/gstflow/gstflow/internal/logger"
	"github.com/gstflow/gstflow/internal/status"
	"github.com/gstflow/gstflow/internal/step"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

const eventBuffer = 256

// Config carries the run-invariant engine settings.
type Config struct {
	PortalURL      string
	WelcomeURLPart string
	DownloadDir    string
	// ScreenshotDir receives diagnostic captures on ledger-flow failures.
	// Defaults to the working directory.
	ScreenshotDir string
	Headless      bool
	Waits         waitpolicy.Policy
}

func (c Config) withDefaults() Config {
	if c.PortalURL == "" {
		c.PortalURL = DefaultPortalURL
	}
	if c.WelcomeURLPart == "" {
		c.WelcomeURLPart = DefaultWelcomeURLPart
	}
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
	if c.Waits == (waitpolicy.Policy{}) {
		c.Waits = waitpolicy.Default()
	}
	return c
}

// Engine creates runs. It holds no per-run state; each run carries its own
// RunState and session handle.
type Engine struct {
	cfg    Config
	launch browser.LaunchFunc
}

// NewEngine builds an engine. A nil launch uses the real browser.
func NewEngine(cfg Config, launch browser.LaunchFunc) *Engine {
	if launch == nil {
		launch = browser.Launch
	}
	return &Engine{cfg: cfg.withDefaults(), launch: launch}
}

// Run is the handle for one in-progress or finished workflow execution.
type Run struct {
	engine *Engine
	cred   Credential
	sel    Selection

	events *status.Channel
	done   chan struct{}

	mu    sync.Mutex
	stage Stage
	err   error
}

// StartRun launches one workflow execution on a dedicated goroutine and
// returns immediately. The caller consumes Events and Wait.
func (e *Engine) StartRun(cred Credential, sel Selection) *Run {
	r := &Run{
		engine: e,
		cred:   cred,
		sel:    sel,
		events: status.NewChannel(eventBuffer),
		done:   make(chan struct{}),
		stage:  StageIdle,
	}
	go r.execute()
	return r
}

// Events streams status lines until the run terminates, then is closed.
func (r *Run) Events() <-chan status.Event {
	return r.events.Events()
}

// Wait blocks until the run reaches a terminal stage and returns its error,
// nil on Completed.
func (r *Run) Wait() error {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Stage returns the current state-machine stage.
func (r *Run) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *Run) setStage(s Stage) {
	r.mu.Lock()
	r.stage = s
	r.mu.Unlock()
	logger.Debug("stage transition",
		zap.String("stage", s.String()),
		zap.String("client", r.cred.DisplayName))
}

func (r *Run) execute() {
	defer close(r.done)
	defer r.events.Close()

	err := r.drive()
	if err != nil {
		r.mu.Lock()
		r.err = err
		r.stage = StageFailed
		r.mu.Unlock()
		r.error(fmt.Sprintf("Run failed: %v", err))
		return
	}
	r.setStage(StageCompleted)
	r.info("Automation actions completed (or reached selected point).")
}

// drive is the top-level run boundary: it guarantees session teardown on
// every exit path and reports a single terminal status to the caller.
func (r *Run) drive() error {
	cfg := r.engine.cfg
	sel := r.sel.Normalized()
	if sel.ReturnsDashboard && !r.sel.ReturnsDashboard {
		r.info("GSTR-2B download requires the Returns Dashboard; including it in this run.")
	}

	r.setStage(StageInitializing)
	r.info("Launching browser session...")
	sess, err := r.engine.launch(browser.Options{
		DownloadDir: cfg.DownloadDir,
		Headless:    cfg.Headless,
	})
	if err != nil {
		return &SessionInitError{Err: err}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("session close failed", zap.Error(cerr))
		} else {
			r.info("Browser session closed.")
		}
	}()
	r.info(fmt.Sprintf("Downloads will be saved to: %s", cfg.DownloadDir))

	x := step.NewExecutor(sess, cfg.Waits, r.events)

	if err := r.login(sess, x); err != nil {
		return err
	}

	if !sel.wantsFlows() {
		r.info("Action: Just Login selected. Automation stops here.")
		return nil
	}

	if sel.ReturnsDashboard {
		r.setStage(StageDashboardFlow)
		if err := r.dashboardFlow(x, sel); err != nil {
			return &RunError{Stage: StageDashboardFlow, Err: err}
		}
	}

	if sel.CreditLedger {
		r.setStage(StageCreditLedgerFlow)
		if err := r.creditLedgerFlow(sess, x, sel.CreditDates); err != nil {
			r.captureDiagnostics(sess, "credit_ledger")
			return &RunError{Stage: StageCreditLedgerFlow, Err: err}
		}
	}

	if sel.CashLedger {
		r.setStage(StageCashLedgerFlow)
		if err := r.cashLedgerFlow(x); err != nil {
			r.captureDiagnostics(sess, "cash_ledger")
			return &RunError{Stage: StageCashLedgerFlow, Err: err}
		}
	}

	return nil
}

// login drives NavigatingToLogin through LoginConfirmed. The manual
// checkpoint is the one blocking point requiring a human: the engine focuses
// the CAPTCHA field and waits for the portal to reach the welcome URL.
func (r *Run) login(sess browser.Session, x *step.Executor) error {
	cfg := r.engine.cfg

	r.setStage(StageNavigatingToLogin)
	r.info("Navigating to GST portal...")
	if err := sess.Navigate(cfg.PortalURL); err != nil {
		return &RunError{Stage: StageNavigatingToLogin, Err: err}
	}

	if err := x.Perform(signInLink, step.Click(), waitpolicy.Long); err != nil {
		return &RunError{Stage: StageNavigatingToLogin, Err: err}
	}
	r.info("Clicked on Login link.")

	r.optional(x, loadingOverlay, step.WaitInvisible(), waitpolicy.Short, "loading overlay")

	r.setStage(StageFillingCredentials)
	if err := x.Perform(usernameField, step.TypeText(r.cred.Username), waitpolicy.Long); err != nil {
		return &RunError{Stage: StageFillingCredentials, Err: err}
	}
	if err := x.Perform(passwordField, step.TypeText(r.cred.Secret), waitpolicy.Long); err != nil {
		return &RunError{Stage: StageFillingCredentials, Err: err}
	}
	r.info("Username and password entered.")

	r.setStage(StageAwaitingManualCaptcha)
	if err := x.Perform(captchaField, step.Click(), waitpolicy.Long); err != nil {
		return &RunError{Stage: StageAwaitingManualCaptcha, Err: err}
	}
	r.info(fmt.Sprintf(
		"IMPORTANT: enter the CAPTCHA in the browser and click Login. You have %s.",
		cfg.Waits.DurationFor(waitpolicy.ManualCheckpoint)))

	err := x.Perform(postLoginURL, step.WaitURLContains(cfg.WelcomeURLPart), waitpolicy.ManualCheckpoint)
	if err != nil {
		if errors.Is(err, step.ErrWaitTimeout) {
			return ErrLoginTimedOut
		}
		return &RunError{Stage: StageAwaitingManualCaptcha, Err: err}
	}

	r.setStage(StageLoginConfirmed)
	r.info("Login successful. Navigated to welcome page.")

	r.optional(x, postLoginModal, step.Click(), waitpolicy.Short, "post-login popup")
	return nil
}

// optional performs a step whose target's absence is normal: ElementNotFound
// and wait timeouts are downgraded to a notice instead of failing the run.
func (r *Run) optional(x *step.Executor, t locator.Target, a step.Action, tier waitpolicy.Tier, desc string) {
	err := x.Perform(t, a, tier)
	switch {
	case err == nil:
		r.info(fmt.Sprintf("Handled %s.", desc))
	case errors.Is(err, step.ErrElementNotFound) || errors.Is(err, step.ErrWaitTimeout):
		r.info(fmt.Sprintf("No %s found (this is normal); continuing.", desc))
	default:
		r.warn(fmt.Sprintf("Could not handle %s: %v; continuing.", desc, err))
	}
}

func (r *Run) info(msg string) {
	logger.Info(msg, zap.String("client", r.cred.DisplayName))
	status.Infof(r.events, msg)
}

func (r *Run) warn(msg string) {
	logger.Warn(msg, zap.String("client", r.cred.DisplayName))
	status.Warnf(r.events, msg)
}

func (r *Run) error(msg string) {
	logger.Error(msg, zap.String("client", r.cred.DisplayName))
	status.Errorf(r.events, msg)
}
