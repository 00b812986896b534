package wallet

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/exalabs/exapower/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, handler http.HandlerFunc) (*Runner, *session.Memory) {
	t.Helper()
	svc, store, _ := newTestService(t, handler)
	runner := NewRunner(svc, testLogger())
	runner.Interval = time.Millisecond
	return runner, store
}

func TestRunnerSuccess(t *testing.T) {
	runner, store := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"earning_amount":2.75,"new_balance":123.25}]`))
	})
	require.NoError(t, store.Set("u1", ""))

	var ticks []int
	runner.OnTick = func(left int) { ticks = append(ticks, left) }

	res := runner.Run(context.Background())
	assert.Equal(t, RunEligibleTomorrow, res.Outcome)
	require.NotNil(t, res.Earning)
	assert.Equal(t, "2.75", res.Earning.EarningAmount.StringFixed(2))
	assert.NoError(t, res.Err)

	require.NotEmpty(t, ticks)
	assert.Equal(t, CountdownSeconds, ticks[0])
	assert.Equal(t, 0, ticks[len(ticks)-1])
}

func TestRunnerCooldownLocksToday(t *testing.T) {
	runner, store := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Too soon, wait 24 hours"}`))
	})
	require.NoError(t, store.Set("u1", ""))

	res := runner.Run(context.Background())
	assert.Equal(t, RunLockedToday, res.Outcome)
	require.Error(t, res.Err)
	assert.Equal(t, "Too soon, wait 24 hours", res.Err.Error())
}

func TestRunnerOtherRejectionReturnsToIdle(t *testing.T) {
	runner, store := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"account not activated"}`))
	})
	require.NoError(t, store.Set("u1", ""))

	res := runner.Run(context.Background())
	assert.Equal(t, RunIdle, res.Outcome)
	assert.Error(t, res.Err)
}

func TestRunnerAbandonedOnCancel(t *testing.T) {
	release := make(chan struct{})
	runner, store := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	})
	require.NoError(t, store.Set("u1", ""))
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runner.Run(ctx)
	assert.Equal(t, RunAbandoned, res.Outcome)
}

func TestRunOutcomeString(t *testing.T) {
	assert.Equal(t, "idle", RunIdle.String())
	assert.Equal(t, "eligible_tomorrow", RunEligibleTomorrow.String())
	assert.Equal(t, "locked_today", RunLockedToday.String())
	assert.Equal(t, "abandoned", RunAbandoned.String())
}
