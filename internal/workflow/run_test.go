package workflow

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/locator"
	"github.com/gstflow/gstflow/internal/status"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

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
	clicks       int
	hovers       int
	typed        []string
	selected     []int
}

func (e *fakeElement) Click() error { e.clicks++; return nil }

func (e *fakeElement) Input(value string) error { e.typed = append(e.typed, value); return nil }

func (e *fakeElement) Hover() error { e.hovers++; return nil }

func (e *fakeElement) SelectIndex(i int) error { e.selected = append(e.selected, i); return nil }

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }
func (e *fakeElement) Interactable() error {
	if !e.interactable {
		return errors.New("not interactable")
	}
	return nil
}

type fakeSession struct {
	elements  map[string]*fakeElement
	url       string
	navigated []string
	finds     []string
	closed    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{elements: make(map[string]*fakeElement)}
}

func (s *fakeSession) add(expr string) *fakeElement {
	el := &fakeElement{visible: true, interactable: true}
	s.elements[expr] = el
	return el
}

func (s *fakeSession) Navigate(url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) Find(c locator.Candidate) (browser.Element, error) {
	s.finds = append(s.finds, c.Expr)
	el, ok := s.elements[c.Expr]
	if !ok {
		return nil, browser.ErrNotFound
	}
	return el, nil
}

func (s *fakeSession) URL() (string, error) { return s.url, nil }

func (s *fakeSession) Eval(js string) error { return nil }

func (s *fakeSession) Screenshot(path string) error { return nil }

func (s *fakeSession) Close() error { s.closed++; return nil }

// loginReadySession has the sign-in page elements present and already
// reports the post-login welcome URL, so login confirms immediately.
func loginReadySession() *fakeSession {
	s := newFakeSession()
	s.add(signInLink.Candidates[0].Expr)
	s.add(usernameField.Candidates[0].Expr)
	s.add(passwordField.Candidates[0].Expr)
	s.add(captchaField.Candidates[0].Expr)
	s.url = "https://services.gst.gov.in/services/auth/fowelcome"
	return s
}

func testEngine(t *testing.T, sess *fakeSession) *Engine {
	t.Helper()
	cfg := Config{
		ScreenshotDir: t.TempDir(),
		Waits:         tinyWaits(),
	}
	return NewEngine(cfg, func(opts browser.Options) (browser.Session, error) {
		return sess, nil
	})
}

func runToEnd(t *testing.T, r *Run) ([]status.Event, error) {
	t.Helper()
	var events []status.Event
	for e := range r.Events() {
		events = append(events, e)
	}
	return events, r.Wait()
}

func eventMessages(events []status.Event) string {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintln(&b, e.Message)
	}
	return b.String()
}

func TestLoginOnlyStopsAfterLogin(t *testing.T) {
	sess := loginReadySession()
	eng := testEngine(t, sess)

	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{LoginOnly: true})
	events, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, StageCompleted, r.Stage())
	require.True(t, r.Stage().Terminal())

	require.Equal(t, []string{"acme01"}, sess.elements[usernameField.Candidates[0].Expr].typed)
	require.Equal(t, []string{"pw"}, sess.elements[passwordField.Candidates[0].Expr].typed)

	// No post-login flow was touched.
	require.NotContains(t, sess.finds, financialYearSelect.Candidates[0].Expr)
	require.NotContains(t, sess.finds, creditLedgerLink.Candidates[0].Expr)

	require.Contains(t, eventMessages(events), "Just Login")
	require.Equal(t, 1, sess.closed)
}

func TestDownloadReportRunsDashboardFirst(t *testing.T) {
	sess := loginReadySession()
	sess.add(returnsDashboardButton.Candidates[0].Expr)
	fin := sess.add(financialYearSelect.Candidates[0].Expr)
	quarter := sess.add(quarterSelect.Candidates[0].Expr)
	month := sess.add(monthSelect.Candidates[0].Expr)
	search := sess.add(dashboardSearchButton.Candidates[0].Expr)
	prepare := sess.add(prepareDownloadButton.Candidates[0].Expr)
	generate := sess.add(generateFileButton.Candidates[0].Expr)

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{
			DownloadReport: true,
			Dashboard:      DashboardFilter{YearIndex: 1, QuarterIndex: 0, MonthIndex: 3},
		})
	events, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, StageCompleted, r.Stage())

	// Download implies the dashboard flow, announced to the consumer.
	require.Contains(t, eventMessages(events), "Returns Dashboard")

	require.Equal(t, []int{1}, fin.selected)
	require.Equal(t, []int{0}, quarter.selected)
	require.Equal(t, []int{3}, month.selected)
	require.Equal(t, 1, search.clicks)
	require.Equal(t, 1, prepare.clicks)
	require.Equal(t, 1, generate.clicks)
	require.Equal(t, 1, sess.closed)
}

func TestMissingDownloadControlsDoNotFailRun(t *testing.T) {
	sess := loginReadySession()
	sess.add(returnsDashboardButton.Candidates[0].Expr)
	sess.add(financialYearSelect.Candidates[0].Expr)
	sess.add(quarterSelect.Candidates[0].Expr)
	sess.add(monthSelect.Candidates[0].Expr)
	sess.add(dashboardSearchButton.Candidates[0].Expr)
	// No prepare/generate buttons: nothing to download for this period.

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{DownloadReport: true})
	events, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, StageCompleted, r.Stage())
	require.Contains(t, eventMessages(events), "GENERATE EXCEL FILE TO DOWNLOAD")
}

func TestCaptchaTimeoutIsDistinct(t *testing.T) {
	sess := loginReadySession()
	sess.url = "https://www.gst.gov.in/" // never reaches the welcome URL

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{LoginOnly: true})
	_, err := runToEnd(t, r)
	require.ErrorIs(t, err, ErrLoginTimedOut)
	require.Equal(t, StageFailed, r.Stage())
	require.Equal(t, 1, sess.closed, "session must be torn down exactly once")
}

func TestCredentialStepFailureRecordsStage(t *testing.T) {
	sess := loginReadySession()
	delete(sess.elements, usernameField.Candidates[0].Expr)

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{LoginOnly: true})
	_, err := runToEnd(t, r)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	require.Equal(t, StageFillingCredentials, runErr.Stage)
	require.Equal(t, StageFailed, r.Stage())
	require.Equal(t, 1, sess.closed)
}

func TestSessionInitFailure(t *testing.T) {
	launchErr := errors.New("no chromium binary")
	eng := NewEngine(Config{Waits: tinyWaits()},
		func(opts browser.Options) (browser.Session, error) {
			return nil, launchErr
		})

	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{LoginOnly: true})
	_, err := runToEnd(t, r)

	var initErr *SessionInitError
	require.ErrorAs(t, err, &initErr)
	require.ErrorIs(t, err, launchErr)
	require.Equal(t, StageFailed, r.Stage())
}

func TestCreditLedgerFlow(t *testing.T) {
	sess := loginReadySession()
	sess.add(servicesMenu.Candidates[0].Expr)
	ledgers := sess.add(ledgersSubmenu.Candidates[0].Expr)
	sess.add(creditLedgerLink.Candidates[0].Expr)
	sess.add(creditLedgerDetailLink.Candidates[0].Expr)
	from := sess.add(creditLedgerFromDate.Candidates[0].Expr)
	to := sess.add(creditLedgerToDate.Candidates[0].Expr)
	goBtn := sess.add(creditLedgerGoButton.Candidates[0].Expr)

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{
			CreditLedger: true,
			CreditDates:  DateRange{From: "01-04-2025", To: "30-06-2025"},
		})
	_, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, StageCompleted, r.Stage())

	require.Equal(t, 1, ledgers.hovers, "submenu must be revealed by hover")
	require.Equal(t, []string{"01-04-2025"}, from.typed)
	require.Equal(t, []string{"30-06-2025"}, to.typed)
	require.Equal(t, 1, goBtn.clicks)
}

func TestCashLedgerFlow(t *testing.T) {
	sess := loginReadySession()
	sess.add(servicesMenu.Candidates[0].Expr)
	sess.add(ledgersSubmenu.Candidates[0].Expr)
	cash := sess.add(cashLedgerLink.Candidates[0].Expr)
	balance := sess.add(cashLedgerBalanceLink.Candidates[0].Expr)

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{CashLedger: true})
	_, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, 1, cash.clicks)
	require.Equal(t, 1, balance.clicks)
}

func TestCreditLedgerFailurePropagatesWithStage(t *testing.T) {
	sess := loginReadySession()
	sess.add(servicesMenu.Candidates[0].Expr)
	// Ledgers submenu missing: the mandatory menu step must fail the run.

	eng := testEngine(t, sess)
	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{
			CreditLedger: true,
			CreditDates:  DateRange{From: "01-04-2025", To: "30-06-2025"},
		})
	_, err := runToEnd(t, r)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	require.Equal(t, StageCreditLedgerFlow, runErr.Stage)
	require.Equal(t, 1, sess.closed)
}

func TestRunNavigatesToConfiguredPortal(t *testing.T) {
	sess := loginReadySession()
	eng := NewEngine(Config{
		PortalURL: "https://portal.test/",
		Waits:     tinyWaits(),
	}, func(opts browser.Options) (browser.Session, error) {
		return sess, nil
	})

	r := eng.StartRun(Credential{DisplayName: "Acme", Username: "acme01", Secret: "pw"},
		Selection{LoginOnly: true})
	_, err := runToEnd(t, r)
	require.NoError(t, err)
	require.Equal(t, []string{"https://portal.test/"}, sess.navigated)
}
