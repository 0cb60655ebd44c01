//go:build windows

package main

import "os"

// pauseSignals is empty: Windows has no user signals.
var pauseSignals []os.Signal

func isPauseSignal(os.Signal) bool {
	return false
}
