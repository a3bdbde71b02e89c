// Package signal wires the POSIX process signals named in spec §6 to the
// solver's cooperative halt flag. There is no third-party signal-handling
// library in the retrieval pack (or in the wider Go ecosystem — os/signal
// is the idiomatic and only mechanism), so this package is built directly
// on os/signal and syscall; see DESIGN.md.
package signal

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Watcher wires a telemetry.Clock to the host's signal disposition:
// SIGINT/SIGUSR1 print status, a second SIGINT within 2s (or SIGUSR2)
// halts, a third SIGINT (or SIGTERM) aborts immediately.
type Watcher struct {
	clock      *telemetry.Clock
	statusFunc func() string
	sigintAt   []time.Time
	ch         chan os.Signal
	stop       chan struct{}
}

// NewWatcher registers signal handling for clock. statusFunc is called to
// render the human-readable status line on SIGINT/SIGUSR1.
func NewWatcher(clock *telemetry.Clock, statusFunc func() string) *Watcher {
	w := &Watcher{
		clock:      clock,
		statusFunc: statusFunc,
		ch:         make(chan os.Signal, 4),
		stop:       make(chan struct{}),
	}
	signal.Notify(w.ch, syscall.SIGINT, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM)
	return w
}

// Run services signals until Close is called. Intended to run in its own
// goroutine for the lifetime of a solver invocation.
func (w *Watcher) Run() {
	for {
		select {
		case sig := <-w.ch:
			w.handle(sig)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handle(sig os.Signal) {
	switch sig {
	case syscall.SIGINT:
		now := time.Now()
		w.sigintAt = append(w.sigintAt, now)
		switch {
		case len(w.sigintAt) >= 3:
			logrus.Error("third SIGINT received, aborting")
			os.Exit(130)
		case len(w.sigintAt) == 2 && now.Sub(w.sigintAt[0]) <= 2*time.Second:
			logrus.Warn("second SIGINT within 2s, halting")
			w.clock.Halt()
		default:
			fmt.Println(w.statusFunc())
		}
	case syscall.SIGUSR1:
		fmt.Println(w.statusFunc())
	case syscall.SIGUSR2:
		logrus.Warn("SIGUSR2 received, halting")
		w.clock.Halt()
	case syscall.SIGTERM:
		logrus.Error("SIGTERM received, aborting")
		os.Exit(143)
	}
}

// Close stops the watcher goroutine and unregisters signal handling.
func (w *Watcher) Close() {
	signal.Stop(w.ch)
	close(w.stop)
}

// RecoverFPE is Go's equivalent of spec §6's SIGFPE handling: the
// runtime never raises a catchable SIGFPE for integer division by zero,
// it panics instead. Deferred at the top of a solver invocation, it
// recovers that panic, prints the same "specific user-error" message, and
// exits the way the POSIX handler would.
func RecoverFPE() {
	if r := recover(); r != nil {
		logrus.Errorf("arithmetic error: %v", r)
		fmt.Println("_QTK107 arithmetic error (division by zero)")
		os.Exit(107)
	}
}
