package scheduler

import "errors"

// ErrAlreadyRunning is returned by Run when the Scheduler is already running.
var ErrAlreadyRunning = errors.New("scheduler is already running")
