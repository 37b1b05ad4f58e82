package workflow

import "github.com/gstflow/gstflow/internal/locator"

// Portal URLs and login form identity. The welcome URL substring is how a
// confirmed login is detected after the human clears the CAPTCHA.
const (
	DefaultPortalURL      = "https://www.gst.gov.in/"
	DefaultWelcomeURLPart = "services.gst.gov.in/services/auth/fowelcome"
	DefaultDownloadDir    = "GST_Downloads"
)

// Static targets, one per abstract UI element the workflow touches.
// Candidate order is the trust ladder: attribute-based expressions first,
// absolute structural paths last. The portal occasionally ships with altered
// styling but stable structure, which is the only reason the absolute paths
// are kept at all.
var (
	signInLink = locator.NewTarget("sign-in-link",
		locator.Candidate{Kind: locator.XPath, Expr: "//a[contains(@href,'login') and normalize-space()='Login']"},
		locator.Candidate{Kind: locator.XPath, Expr: "/html/body/div[1]/header/div[2]/div/div/ul/li[2]"},
	)

	loadingOverlay = locator.NewTarget("loading-overlay",
		locator.Candidate{Kind: locator.CSS, Expr: ".dimmer-holder"},
	)

	usernameField = locator.NewTarget("sign-in-username",
		locator.Candidate{Kind: locator.CSS, Expr: "#username"},
		locator.Candidate{Kind: locator.XPath, Expr: "//input[@id='username']"},
	)

	passwordField = locator.NewTarget("sign-in-password",
		locator.Candidate{Kind: locator.CSS, Expr: "#user_pass"},
		locator.Candidate{Kind: locator.XPath, Expr: "//input[@id='user_pass']"},
	)

	captchaField = locator.NewTarget("sign-in-captcha",
		locator.Candidate{Kind: locator.CSS, Expr: "#captcha"},
		locator.Candidate{Kind: locator.CSS, Expr: "input[name='captcha']"},
		locator.Candidate{Kind: locator.CSS, Expr: "input[placeholder*='captcha' i]"},
		locator.Candidate{Kind: locator.XPath, Expr: "//input[contains(@placeholder, 'captcha') or contains(@placeholder, 'Captcha') or contains(@placeholder, 'CAPTCHA')]"},
		locator.Candidate{Kind: locator.XPath, Expr: "//input[@type='text' and position()=last()]"},
	)

	postLoginModal = locator.NewTarget("post-login-modal-dismiss",
		locator.Candidate{Kind: locator.XPath, Expr: "//*[normalize-space()='Remind me later']"},
	)

	returnsDashboardButton = locator.NewTarget("returns-dashboard-button",
		locator.Candidate{Kind: locator.CSS, Expr: "button[onclick*='return.gst.gov.in/returns/auth/dashboard']"},
		locator.Candidate{Kind: locator.XPath, Expr: "//button[.//span[normalize-space()='Return Dashboard']]"},
		locator.Candidate{Kind: locator.XPath, Expr: "/html/body/div[2]/div[2]/div/div[2]/div[2]/div/div[1]/div[3]/div/div[1]/button/span"},
	)

	financialYearSelect = locator.NewTarget("dashboard-financial-year",
		locator.Candidate{Kind: locator.CSS, Expr: "select[name='fin']"},
		locator.Candidate{Kind: locator.XPath, Expr: "//select[@name='fin']"},
	)

	quarterSelect = locator.NewTarget("dashboard-quarter",
		locator.Candidate{Kind: locator.CSS, Expr: "select[name='quarter']"},
		locator.Candidate{Kind: locator.XPath, Expr: "//select[@name='quarter']"},
	)

	monthSelect = locator.NewTarget("dashboard-month",
		locator.Candidate{Kind: locator.CSS, Expr: "select[name='mon']"},
		locator.Candidate{Kind: locator.XPath, Expr: "//select[@name='mon']"},
	)

	dashboardSearchButton = locator.NewTarget("dashboard-search",
		locator.Candidate{Kind: locator.XPath, Expr: "//button[normalize-space()='SEARCH']"},
		locator.Candidate{Kind: locator.CSS, Expr: "button[type='submit']"},
	)

	prepareDownloadButton = locator.NewTarget("gstr2b-prepare-download",
		locator.Candidate{Kind: locator.CSS, Expr: "button[data-ng-click='offlinepath(x.return_ty)']"},
	)

	generateFileButton = locator.NewTarget("gstr2b-generate-file",
		locator.Candidate{Kind: locator.XPath, Expr: "//button[normalize-space()='GENERATE EXCEL FILE TO DOWNLOAD']"},
	)

	servicesMenu = locator.NewTarget("services-menu",
		locator.Candidate{Kind: locator.XPath, Expr: "//a[contains(@class, 'dropdown-toggle') and starts-with(normalize-space(.), 'Services')]"},
	)

	ledgersSubmenu = locator.NewTarget("ledgers-submenu",
		locator.Candidate{Kind: locator.LinkText, Expr: "Ledgers"},
	)

	creditLedgerLink = locator.NewTarget("credit-ledger-link",
		locator.Candidate{Kind: locator.XPath, Expr: "//a[@href='//return.gst.gov.in/returns/auth/ledger/itcledger' and normalize-space()='Electronic Credit Ledger']"},
	)

	creditLedgerDetailLink = locator.NewTarget("credit-ledger-detail-link",
		locator.Candidate{Kind: locator.CSS, Expr: "a[data-ng-bind='trans.LBL_ELEC_CREDIT_LEDG']"},
	)

	creditLedgerFromDate = locator.NewTarget("credit-ledger-from-date",
		locator.Candidate{Kind: locator.CSS, Expr: "#sumlg_frdt"},
	)

	creditLedgerToDate = locator.NewTarget("credit-ledger-to-date",
		locator.Candidate{Kind: locator.CSS, Expr: "#sumlg_todt"},
	)

	creditLedgerGoButton = locator.NewTarget("credit-ledger-go",
		locator.Candidate{Kind: locator.CSS, Expr: "button[data-ng-click='getdetLdgr()']"},
	)

	cashLedgerLink = locator.NewTarget("cash-ledger-link",
		locator.Candidate{Kind: locator.XPath, Expr: "//a[@href='//payment.gst.gov.in/payment/auth/ledger/cashledger' and normalize-space()='Electronic Cash Ledger']"},
	)

	cashLedgerBalanceLink = locator.NewTarget("cash-ledger-balance-details",
		locator.Candidate{Kind: locator.CSS, Expr: "a.inverseLink[data-target='#balanceModal']"},
	)

	// Pseudo-target for URL-condition waits; no candidates needed.
	postLoginURL = locator.NewTarget("post-login-url")
)
