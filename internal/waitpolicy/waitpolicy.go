package waitpolicy

import "time"

// Tier classifies an interaction by expected latency. Portal latency is
// bimodal plus one human-paced outlier, so every wait declares its tier
// explicitly; there is no default.
type Tier int

const (
	Short Tier = iota
	Long
	VeryLong
	ManualCheckpoint
)

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Long:
		return "long"
	case VeryLong:
		return "veryLong"
	case ManualCheckpoint:
		return "manualCheckpoint"
	default:
		return "unknown"
	}
}

// Policy maps tiers to concrete timeouts. It is a pure value; a zero Policy
// is invalid, use Default or construct all four durations.
type Policy struct {
	ShortWait            time.Duration
	LongWait             time.Duration
	VeryLongWait         time.Duration
	ManualCheckpointWait time.Duration

	// Poll is the interval between condition checks within one wait.
	Poll time.Duration
}

// Default returns the portal-tuned policy: most elements appear within
// seconds, some pages render materially slower, report generation is slower
// still, and CAPTCHA entry is bounded only by human pace.
func Default() Policy {
	return Policy{
		ShortWait:            15 * time.Second,
		LongWait:             40 * time.Second,
		VeryLongWait:         75 * time.Second,
		ManualCheckpointWait: 90 * time.Second,
		Poll:                 200 * time.Millisecond,
	}
}

// DurationFor returns the timeout for a tier. Pure mapping, no side effects.
func (p Policy) DurationFor(t Tier) time.Duration {
	switch t {
	case Short:
		return p.ShortWait
	case Long:
		return p.LongWait
	case VeryLong:
		return p.VeryLongWait
	case ManualCheckpoint:
		return p.ManualCheckpointWait
	default:
		return p.ShortWait
	}
}

// PollInterval returns the condition-check cadence.
func (p Policy) PollInterval() time.Duration {
	if p.Poll <= 0 {
		return 200 * time.Millisecond
	}
	return p.Poll
}
