package wallet

import (
	"context"
	"time"

	"github.com/exalabs/exapower/internal/models"
	"github.com/sirupsen/logrus"
)

const CountdownSeconds = 8

type RunOutcome int

const (
	// RunIdle: the backend rejected the action for a reason other than
	// the cooldown; the caller may try again.
	RunIdle RunOutcome = iota
	// RunEligibleTomorrow: the action succeeded, next run in 24h.
	RunEligibleTomorrow
	// RunLockedToday: the backend reported the cooldown, no further
	// attempts today.
	RunLockedToday
	// RunAbandoned: the caller went away before the outcome arrived.
	RunAbandoned
)

func (o RunOutcome) String() string {
	switch o {
	case RunEligibleTomorrow:
		return "eligible_tomorrow"
	case RunLockedToday:
		return "locked_today"
	case RunAbandoned:
		return "abandoned"
	default:
		return "idle"
	}
}

type RunResult struct {
	Outcome RunOutcome
	Earning *models.EarningResult
	Err     error
}

// Runner paces the earning action with a fixed-length countdown. The
// countdown is presentation only, not a correctness mechanism: the real
// rate limit lives in the backend. Cancelling ctx stops the ticks and
// abandons the result, never the in-flight request itself.
type Runner struct {
	wallet *Service
	log    *logrus.Logger

	// Interval between ticks; one second unless a test shortens it.
	Interval time.Duration
	// OnTick, when set, receives the remaining seconds for display.
	OnTick func(secondsLeft int)
}

func NewRunner(wallet *Service, log *logrus.Logger) *Runner {
	return &Runner{
		wallet:   wallet,
		log:      log,
		Interval: time.Second,
	}
}

// Run fires the earning action and blocks for the countdown plus however
// long the backend still needs. The request runs detached: if ctx is
// cancelled mid-flight the backend still completes it and the result is
// dropped.
func (r *Runner) Run(ctx context.Context) RunResult {
	results := make(chan RunResult, 1)
	go func() {
		earning, err := r.wallet.PerformEarningAction(context.Background())
		results <- r.classify(earning, err)
	}()

	if !r.countdown(ctx) {
		return RunResult{Outcome: RunAbandoned}
	}

	select {
	case res := <-results:
		return res
	case <-ctx.Done():
		return RunResult{Outcome: RunAbandoned}
	}
}

// countdown ticks from CountdownSeconds down to zero. Returns false when
// ctx was cancelled before it finished.
func (r *Runner) countdown(ctx context.Context) bool {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(CountdownSeconds)
	for left := CountdownSeconds - 1; left >= 0; left-- {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			r.tick(left)
		}
	}
	return true
}

func (r *Runner) tick(left int) {
	if r.OnTick != nil {
		r.OnTick(left)
	}
}

func (r *Runner) classify(earning *models.EarningResult, err error) RunResult {
	switch {
	case err == nil:
		return RunResult{Outcome: RunEligibleTomorrow, Earning: earning}
	case IsCooldown(err):
		return RunResult{Outcome: RunLockedToday, Err: err}
	default:
		r.log.Warnf("earning action failed: %v", err)
		return RunResult{Outcome: RunIdle, Err: err}
	}
}
