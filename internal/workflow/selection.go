package workflow

// Credential identifies one client on the portal. Supplied externally,
// immutable for the duration of one run, never persisted by the engine.
type Credential struct {
	DisplayName string
	Username    string
	Secret      string
}

// DashboardFilter carries the option indices applied to the returns
// dashboard dropdowns, in portal display order.
type DashboardFilter struct {
	YearIndex    int
	QuarterIndex int
	MonthIndex   int
}

// DateRange holds from/to date strings as the portal's date fields expect
// them (dd-mm-yyyy).
type DateRange struct {
	From string
	To   string
}

// Selection is the set of independently optional flows for one run, read
// once at run start and immutable thereafter.
type Selection struct {
	LoginOnly        bool
	ReturnsDashboard bool
	DownloadReport   bool
	CreditLedger     bool
	CashLedger       bool

	Dashboard   DashboardFilter
	CreditDates DateRange
}

// Normalized upgrades implied flags: downloading the GSTR-2B report only
// makes sense from a filtered returns dashboard, so DownloadReport switches
// ReturnsDashboard on rather than failing.
func (s Selection) Normalized() Selection {
	if s.DownloadReport {
		s.ReturnsDashboard = true
	}
	return s
}

// wantsFlows reports whether any post-login flow is selected.
func (s Selection) wantsFlows() bool {
	return s.ReturnsDashboard || s.DownloadReport || s.CreditLedger || s.CashLedger
}
