package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// QueueItem represents a single queued download. The URL is the item's
// identity within a session.
type QueueItem struct {
	URL        string
	Status     Status
	Percent    int    // 0 to 100, meaningful while Running or Completed
	ETASec     int    // ETA in seconds, -1 if unknown
	LastError  string // last error message if any
	OutputPath string // path to downloaded file, set on Completed
	AddedAt    time.Time
	FinishedAt time.Time
}

// ETAString returns ETA formatted as hh:mm:ss or mm:ss, or "—" if unknown
func (it *QueueItem) ETAString() string {
	if it.ETASec <= 0 {
		return "—"
	}

	hours := it.ETASec / 3600
	minutes := (it.ETASec % 3600) / 60
	seconds := it.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// DisplayName returns the downloaded file name when known, otherwise the URL
func (it *QueueItem) DisplayName() string {
	if it.OutputPath != "" {
		return filepath.Base(it.OutputPath)
	}
	return it.URL
}
