package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// runController is the part of the orchestrator driven by signals.
type runController interface {
	Pause() bool
	Resume() bool
	Cancel() bool
	IsPaused() bool
}

// watchSignals cancels the run on SIGINT or SIGTERM and toggles pause on
// the platform's pause signal. The returned function stops watching.
//
// Design decision: We cancel through the orchestrator rather than the
// context so the run ends in the Cancelled state and the report still
// covers the pages audited so far. cancelRun is the fallback for a signal
// that arrives before the run is active, when Cancel has nothing to stop.
func watchSignals(ctrl runController, cancelRun context.CancelFunc, logger *slog.Logger, out io.Writer) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, append([]os.Signal{os.Interrupt, syscall.SIGTERM}, pauseSignals...)...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				handleSignal(ctrl, cancelRun, sig, logger, out)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// handleSignal applies one signal to the run.
func handleSignal(ctrl runController, cancelRun context.CancelFunc, sig os.Signal, logger *slog.Logger, out io.Writer) {
	if isPauseSignal(sig) {
		if ctrl.IsPaused() {
			if ctrl.Resume() {
				fmt.Fprintln(out, "Resumed.")
			}
			return
		}
		if ctrl.Pause() {
			fmt.Fprintln(out, "Paused. Send the same signal again to resume.")
		}
		return
	}

	logger.Info("received shutdown signal, cancelling...", "signal", sig.String())
	if ctrl.Cancel() {
		fmt.Fprintln(out, "Cancelling; writing partial report...")
		return
	}
	// No active run yet, or it already ended: stop the one about to start.
	if cancelRun != nil {
		cancelRun()
	}
}
