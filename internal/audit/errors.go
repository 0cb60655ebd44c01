package audit

import "errors"

var (
	// ErrNoURLs is returned by Start when the URL list is empty.
	ErrNoURLs = errors.New("no URLs to audit")

	// ErrAlreadyRunning is returned by Start while another run is active.
	ErrAlreadyRunning = errors.New("an audit is already running")
)
