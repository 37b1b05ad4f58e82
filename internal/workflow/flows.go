package workflow

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/gstflow/gstflow/internal/browser"
	"github.com/gstflow/gstflow/internal/logger"
	"github.com/gstflow/gstflow/internal/step"
	"github.com/gstflow/gstflow/internal/waitpolicy"
)

// dashboardFlow opens the returns dashboard, applies the filter dropdowns in
// declared order, submits the search, and optionally triggers the two-stage
// GSTR-2B generation. Either download control may be absent depending on the
// filing period; that is logged, not fatal.
func (r *Run) dashboardFlow(x *step.Executor, sel Selection) error {
	r.info("Navigating to Returns Dashboard...")
	if err := x.Perform(returnsDashboardButton, step.Click(), waitpolicy.Long); err != nil {
		return err
	}
	r.info("Clicked Returns Dashboard button.")

	r.info("Applying filters on Returns Dashboard...")
	if err := x.Perform(financialYearSelect, step.SelectIndex(sel.Dashboard.YearIndex), waitpolicy.Long); err != nil {
		return err
	}
	r.info(fmt.Sprintf("Selected Financial Year (index: %d)", sel.Dashboard.YearIndex))

	if err := x.Perform(quarterSelect, step.SelectIndex(sel.Dashboard.QuarterIndex), waitpolicy.Short); err != nil {
		return err
	}
	r.info(fmt.Sprintf("Selected Quarter (index: %d)", sel.Dashboard.QuarterIndex))

	if err := x.Perform(monthSelect, step.SelectIndex(sel.Dashboard.MonthIndex), waitpolicy.Short); err != nil {
		return err
	}
	r.info(fmt.Sprintf("Selected Month (index: %d)", sel.Dashboard.MonthIndex))

	if err := x.Perform(dashboardSearchButton, step.Click(), waitpolicy.Short); err != nil {
		return err
	}
	r.info("Clicked Search button on Returns Dashboard.")

	if sel.DownloadReport {
		r.downloadReport(x)
	}
	return nil
}

// downloadReport runs the two-stage GSTR-2B sequence: a "prepare download"
// control followed by the file-generation control. Replaying either click is
// not safe, so there is no retry; a missing control is logged and the run
// continues.
func (r *Run) downloadReport(x *step.Executor) {
	r.info("Attempting to download GSTR-2B...")

	if err := x.Perform(prepareDownloadButton, step.Click(), waitpolicy.Short); err != nil {
		if errors.Is(err, step.ErrElementNotFound) {
			r.info("GSTR-2B initial download button not found; continuing.")
		} else {
			r.warn(fmt.Sprintf("GSTR-2B initial download click failed: %v; continuing.", err))
		}
	} else {
		r.info("Clicked GSTR-2B 'Download' button.")
	}

	if err := x.Perform(generateFileButton, step.Click(), waitpolicy.VeryLong); err != nil {
		r.warn("GSTR-2B download skipped: 'GENERATE EXCEL FILE TO DOWNLOAD' button not found on the page.")
		return
	}
	r.info("Clicked 'GENERATE EXCEL FILE TO DOWNLOAD'. Check the downloads folder for the file.")
}

// creditLedgerFlow opens the electronic credit ledger through the Services
// menu. The Ledgers entry must be hovered first: the ledger link is not
// interactable until a pointer-over event reveals it.
func (r *Run) creditLedgerFlow(sess browser.Session, x *step.Executor, dates DateRange) error {
	r.info("Navigating to Electronic Credit Ledger...")

	if err := r.openLedgersMenu(x); err != nil {
		return err
	}
	if err := x.Perform(creditLedgerLink, step.Click(), waitpolicy.Long); err != nil {
		return err
	}
	r.info("Clicked 'Electronic Credit Ledger' from hover menu.")

	if err := x.Perform(creditLedgerDetailLink, step.Click(), waitpolicy.Long); err != nil {
		return err
	}
	r.info("Opened detailed Electronic Credit Ledger view.")

	return r.setCreditLedgerDates(sess, x, dates)
}

// setCreditLedgerDates fills the from/to fields and invokes the query. A
// body click between fields dismisses the portal's date-picker popup, which
// otherwise covers the next field.
func (r *Run) setCreditLedgerDates(sess browser.Session, x *step.Executor, dates DateRange) error {
	r.info(fmt.Sprintf("Setting credit ledger dates: from %s to %s", dates.From, dates.To))

	if err := x.Perform(creditLedgerFromDate, step.TypeText(dates.From), waitpolicy.Short); err != nil {
		return err
	}
	r.dismissDatePicker(sess)

	if err := x.Perform(creditLedgerToDate, step.TypeText(dates.To), waitpolicy.Short); err != nil {
		return err
	}
	r.dismissDatePicker(sess)

	if err := x.Perform(creditLedgerGoButton, step.Click(), waitpolicy.Short); err != nil {
		return err
	}
	r.info("Clicked 'GO' for credit ledger date range.")
	return nil
}

func (r *Run) dismissDatePicker(sess browser.Session) {
	if err := sess.Eval(`() => document.body.click()`); err != nil {
		logger.Debug("date picker dismissal failed", zap.Error(err))
	}
}

// cashLedgerFlow opens the electronic cash ledger and its balance-details
// view through the same hover-revealed menu path.
func (r *Run) cashLedgerFlow(x *step.Executor) error {
	r.info("Navigating to Electronic Cash Ledger...")

	if err := r.openLedgersMenu(x); err != nil {
		return err
	}
	if err := x.Perform(cashLedgerLink, step.Click(), waitpolicy.Long); err != nil {
		return err
	}
	r.info("Clicked 'Electronic Cash Ledger' from hover menu.")

	if err := x.Perform(cashLedgerBalanceLink, step.Click(), waitpolicy.Long); err != nil {
		return err
	}
	r.info("Opened cash ledger balance details.")
	return nil
}

func (r *Run) openLedgersMenu(x *step.Executor) error {
	if err := x.Perform(servicesMenu, step.Click(), waitpolicy.Short); err != nil {
		return err
	}
	r.info("Clicked 'Services' menu.")

	if err := x.Perform(ledgersSubmenu, step.Hover(), waitpolicy.Short); err != nil {
		return err
	}
	r.info("Hovered over 'Ledgers' submenu.")
	return nil
}

// captureDiagnostics writes a timestamped screenshot for navigation-class
// failures. Best-effort: it never raises its own error.
func (r *Run) captureDiagnostics(sess browser.Session, tag string) {
	name := fmt.Sprintf("debug_%s_%d.png", tag, time.Now().Unix())
	path := filepath.Join(r.engine.cfg.ScreenshotDir, name)
	if err := sess.Screenshot(path); err != nil {
		logger.Warn("diagnostic screenshot failed", zap.String("path", path), zap.Error(err))
		return
	}
	r.info(fmt.Sprintf("Debug screenshot saved: %s", path))
}
