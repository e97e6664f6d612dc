package download

import "errors"

var (
	// ErrEmptyBatch is returned by Start when no items are queued
	ErrEmptyBatch = errors.New("download: no queued items to start")

	// ErrDependencyUnavailable is returned by Start when the yt-dlp
	// dependency cannot be found
	ErrDependencyUnavailable = errors.New("download: yt-dlp is not available")

	// ErrBatchRunning is returned when an operation requires an idle session
	ErrBatchRunning = errors.New("download: a batch is already running")

	// ErrPoolUsed is returned when Start is called on a pool that already
	// ran; a stopped or drained pool must be reconstructed
	ErrPoolUsed = errors.New("download: pool already used, construct a new one")

	// ErrInvalidWorkers is returned when the worker limit is not positive
	ErrInvalidWorkers = errors.New("download: worker limit must be positive")

	// ErrNotQueued is returned when removing an item that is absent or
	// already dispatched
	ErrNotQueued = errors.New("download: item is not queued")
)
