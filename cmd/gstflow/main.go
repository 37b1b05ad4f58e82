package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gstflow/gstflow/internal/clients"
	"github.com/gstflow/gstflow/internal/logger"
	"github.com/gstflow/gstflow/internal/waitpolicy"
	"github.com/gstflow/gstflow/internal/workflow"
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gstflow",
		Short: "Drive the GST portal through login, returns dashboard, report download, and ledger lookups",
		Long: `gstflow automates the GST portal for one client at a time: it signs in
(pausing for you to enter the CAPTCHA in the live browser window), then runs
the actions you select: returns-dashboard filtering, GSTR-2B download, and
credit/cash ledger lookups.

Examples:
  gstflow --clients clients.xlsx --client "Acme Traders" --returns-dashboard --year 1 --month 4
  gstflow --username myuser --password mypass --download-2b --year 0 --quarter 1 --month 1
  gstflow --clients clients.xlsx --client "Acme Traders" --credit-ledger --from 01-04-2025 --to 30-06-2025`,
		PreRunE: setupConfig,
		RunE:    run,
	}

	if err := setupFlags(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file")
	cmd.Flags().String("clients", "clients.xlsx", "Path to the client credentials workbook")
	cmd.Flags().String("client", "", "Client display name to select from the workbook")
	cmd.Flags().String("name", "", "Display name when passing credentials directly")
	cmd.Flags().String("username", "", "GST username (bypasses the workbook)")
	cmd.Flags().String("password", "", "GST password (bypasses the workbook)")

	cmd.Flags().Bool("login-only", false, "Sign in and stop")
	cmd.Flags().Bool("returns-dashboard", false, "Open and filter the Returns Dashboard")
	cmd.Flags().Bool("download-2b", false, "Download GSTR-2B (implies --returns-dashboard)")
	cmd.Flags().Bool("credit-ledger", false, "Open the Electronic Credit Ledger")
	cmd.Flags().Bool("cash-ledger", false, "Open the Electronic Cash Ledger")

	cmd.Flags().Int("year", 0, "Financial year dropdown index")
	cmd.Flags().Int("quarter", 0, "Quarter dropdown index")
	cmd.Flags().Int("month", 0, "Month/period dropdown index")
	cmd.Flags().String("from", "", "Credit ledger from-date (dd-mm-yyyy)")
	cmd.Flags().String("to", "", "Credit ledger to-date (dd-mm-yyyy)")

	cmd.Flags().String("portal-url", workflow.DefaultPortalURL, "Portal base URL")
	cmd.Flags().String("download-dir", workflow.DefaultDownloadDir, "Directory for downloaded reports")
	cmd.Flags().String("screenshot-dir", ".", "Directory for diagnostic screenshots")
	cmd.Flags().Bool("headless", false, "Run the browser headless (CAPTCHA entry needs a visible window)")
	cmd.Flags().BoolP("verbose", "v", false, "Show detailed progress")

	cmd.Flags().Bool("list-clients", false, "List client names from the workbook and exit")
	cmd.Flags().String("write-sample", "", "Write a template workbook to the given path and exit")

	return viper.BindPFlags(cmd.Flags())
}

func setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	viper.SetEnvPrefix("gstflow")
	viper.AutomaticEnv()
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	if err := logger.Init(viper.GetBool("verbose")); err != nil {
		return err
	}
	defer logger.Sync()

	if path := viper.GetString("write-sample"); path != "" {
		if err := clients.WriteSample(path); err != nil {
			return fmt.Errorf("write sample workbook: %w", err)
		}
		fmt.Printf("Sample workbook written to %s\n", path)
		return nil
	}

	if viper.GetBool("list-clients") {
		set, err := clients.Load(viper.GetString("clients"))
		if err != nil {
			return err
		}
		for _, name := range set.Names() {
			fmt.Println(name)
		}
		return nil
	}

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	sel, err := buildSelection()
	if err != nil {
		return err
	}

	engine := workflow.NewEngine(workflow.Config{
		PortalURL:     viper.GetString("portal-url"),
		DownloadDir:   viper.GetString("download-dir"),
		ScreenshotDir: viper.GetString("screenshot-dir"),
		Headless:      viper.GetBool("headless"),
		Waits:         waitpolicy.Default(),
	}, nil)

	fmt.Printf("→ Starting run for %s\n", cred.DisplayName)
	r := engine.StartRun(cred, sel)
	for e := range r.Events() {
		fmt.Printf("[%s] %-5s %s\n", e.Timestamp.Format("15:04:05"), e.Severity, e.Message)
	}

	if err := r.Wait(); err != nil {
		if errors.Is(err, workflow.ErrLoginTimedOut) {
			return fmt.Errorf("you ran out of time entering the CAPTCHA; start the run again")
		}
		return err
	}
	fmt.Println("✓ Run completed")
	return nil
}

// resolveCredential prefers direct flags; otherwise it selects a client by
// display name from the workbook. Workbook problems surface here, before
// any browser session exists.
func resolveCredential() (workflow.Credential, error) {
	username := viper.GetString("username")
	password := viper.GetString("password")
	if username != "" || password != "" {
		if username == "" || password == "" {
			return workflow.Credential{}, fmt.Errorf("--username and --password must be given together")
		}
		name := viper.GetString("name")
		if name == "" {
			name = username
		}
		return workflow.Credential{DisplayName: name, Username: username, Secret: password}, nil
	}

	clientName := viper.GetString("client")
	if clientName == "" {
		return workflow.Credential{}, fmt.Errorf("select a client with --client, or pass --username/--password")
	}
	set, err := clients.Load(viper.GetString("clients"))
	if err != nil {
		return workflow.Credential{}, err
	}
	rec, ok := set.Get(clientName)
	if !ok {
		return workflow.Credential{}, fmt.Errorf("client %q not found in %s", clientName, viper.GetString("clients"))
	}
	return workflow.Credential{DisplayName: rec.DisplayName, Username: rec.Username, Secret: rec.Secret}, nil
}

func buildSelection() (workflow.Selection, error) {
	sel := workflow.Selection{
		LoginOnly:        viper.GetBool("login-only"),
		ReturnsDashboard: viper.GetBool("returns-dashboard"),
		DownloadReport:   viper.GetBool("download-2b"),
		CreditLedger:     viper.GetBool("credit-ledger"),
		CashLedger:       viper.GetBool("cash-ledger"),
		Dashboard: workflow.DashboardFilter{
			YearIndex:    viper.GetInt("year"),
			QuarterIndex: viper.GetInt("quarter"),
			MonthIndex:   viper.GetInt("month"),
		},
		CreditDates: workflow.DateRange{
			From: viper.GetString("from"),
			To:   viper.GetString("to"),
		},
	}

	if !sel.LoginOnly && !sel.ReturnsDashboard && !sel.DownloadReport && !sel.CreditLedger && !sel.CashLedger {
		sel.LoginOnly = true
	}
	if sel.CreditLedger && (sel.CreditDates.From == "" || sel.CreditDates.To == "") {
		return workflow.Selection{}, fmt.Errorf("--credit-ledger requires --from and --to dates")
	}
	return sel, nil
}
