package workflow

// Stage is one state of the run state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageInitializing
	StageNavigatingToLogin
	StageFillingCredentials
	StageAwaitingManualCaptcha
	StageLoginConfirmed
	StageDashboardFlow
	StageCreditLedgerFlow
	StageCashLedgerFlow
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageInitializing:
		return "Initializing"
	case StageNavigatingToLogin:
		return "NavigatingToLogin"
	case StageFillingCredentials:
		return "FillingCredentials"
	case StageAwaitingManualCaptcha:
		return "AwaitingManualCaptcha"
	case StageLoginConfirmed:
		return "LoginConfirmed"
	case StageDashboardFlow:
		return "DashboardFlow"
	case StageCreditLedgerFlow:
		return "CreditLedgerFlow"
	case StageCashLedgerFlow:
		return "CashLedgerFlow"
	case StageCompleted:
		return "Completed"
	case StageFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the stage ends the run.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}
