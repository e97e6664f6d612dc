package model

// Status represents the lifecycle state of a queue item
type Status string

const (
	// StatusQueued means the item is waiting and has not been dispatched yet
	StatusQueued Status = "Queued"

	// StatusRunning means an executor is downloading the item
	StatusRunning Status = "Running"

	// StatusCompleted means the download finished successfully
	StatusCompleted Status = "Completed"

	// StatusError means the download failed with an error
	StatusError Status = "Error"

	// StatusUnavailable means the fetch dependency was missing, so no
	// download was attempted
	StatusUnavailable Status = "Unavailable"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions can occur
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusUnavailable
}

// CanTransition reports whether moving from s to next is a legal step of the
// one-directional item lifecycle: Queued -> Running -> terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning || next.IsTerminal()
	case StatusRunning:
		return next.IsTerminal()
	default:
		return false
	}
}
