package signal

import (
	"syscall"
	"testing"

	"github.com/qiotoolkit/qiotoolkit/telemetry"
	"github.com/stretchr/testify/require"
)

// handle's os.Exit paths (third SIGINT, SIGTERM) are not exercised here:
// they would terminate the test binary.

func TestWatcherSingleSigintPrintsStatus(t *testing.T) {
	clock := telemetry.NewClock(telemetry.Limits{})
	called := false
	w := NewWatcher(clock, func() string { called = true; return "status" })
	defer w.Close()

	w.handle(syscall.SIGINT)
	require.True(t, called)
	_, halted := clock.ShouldStop(0, 0)
	require.False(t, halted)
}

func TestWatcherSigusr2Halts(t *testing.T) {
	clock := telemetry.NewClock(telemetry.Limits{})
	w := NewWatcher(clock, func() string { return "" })
	defer w.Close()

	w.handle(syscall.SIGUSR2)
	reason, halted := clock.ShouldStop(0, 0)
	require.True(t, halted)
	require.Equal(t, telemetry.ExitHalted, reason)
}

func TestWatcherDoubleSigintWithinWindowHalts(t *testing.T) {
	clock := telemetry.NewClock(telemetry.Limits{})
	w := NewWatcher(clock, func() string { return "" })
	defer w.Close()

	w.handle(syscall.SIGINT)
	w.handle(syscall.SIGINT)
	_, halted := clock.ShouldStop(0, 0)
	require.True(t, halted)
}
