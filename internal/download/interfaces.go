package download

import (
	"context"

	"github.com/mdgt/rutube-saver/internal/model"
)

// Progress is one tick reported by the fetch layer while downloading
type Progress struct {
	DownloadedBytes int64
	TotalBytes      int64 // 0 when the total size is unknown
	ETASec          int   // -1 when unknown
}

// Fetcher abstracts the external media-fetching dependency.
type Fetcher interface {
	// Check reports whether the underlying dependency is usable. It is
	// consulted once per batch, before any executor is launched.
	Check(ctx context.Context) error

	// Fetch downloads url into dir, invoking onProgress as data arrives,
	// and returns the path of the produced file. Fetch blocks until the
	// download completes or fails; it is not interruptible mid-transfer.
	Fetch(ctx context.Context, url, dir string, onProgress func(Progress)) (string, error)
}

// Observer is the sole surface through which a UI or CLI layer watches the
// core. All callbacks are invoked from the coordinator goroutine, never
// concurrently.
type Observer interface {
	OnProgress(url string, percent int)
	OnStatusChanged(url string, status model.Status)
	OnFinished(url, path string)
	OnLogLine(text string)
	OnBatchProgress(completed, total int)
}

// NopObserver discards all callbacks
type NopObserver struct{}

func (NopObserver) OnProgress(string, int)               {}
func (NopObserver) OnStatusChanged(string, model.Status) {}
func (NopObserver) OnFinished(string, string)            {}
func (NopObserver) OnLogLine(string)                     {}
func (NopObserver) OnBatchProgress(completed, total int) {}
