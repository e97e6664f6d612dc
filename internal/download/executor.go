package download

import (
	"context"
	"fmt"

	"github.com/mdgt/rutube-saver/internal/event"
	"github.com/mdgt/rutube-saver/internal/model"
)

// Executor drives exactly one item's download to completion or failure and
// translates the fetch layer's progress callbacks into bus events. It never
// touches the item store; the coordinator is the only writer.
type Executor struct {
	fetcher Fetcher
	bus     *event.Bus
	outDir  string // captured at dispatch time, immutable for the batch
}

func newExecutor(fetcher Fetcher, bus *event.Bus, outDir string) *Executor {
	return &Executor{fetcher: fetcher, bus: bus, outDir: outDir}
}

// Run downloads url and publishes progress, finished and terminal status
// events. Failures are contained here: whatever the fetch layer does, the
// item ends in exactly one terminal state and nothing propagates.
func (e *Executor) Run(ctx context.Context, url string) {
	if e.fetcher == nil {
		e.bus.Publish(event.Log{Text: fmt.Sprintf("yt-dlp is not available, skipping %s", url)})
		e.bus.Publish(event.StatusChanged{URL: url, Status: model.StatusUnavailable})
		return
	}

	e.bus.Publish(event.StatusChanged{URL: url, Status: model.StatusRunning})
	e.bus.Publish(event.Log{Text: "starting download: " + url})

	path, err := e.fetch(ctx, url)
	if err != nil {
		e.bus.Publish(event.Log{Text: fmt.Sprintf("error downloading %s: %v", url, err)})
		e.bus.Publish(event.StatusChanged{URL: url, Status: model.StatusError, Error: err.Error()})
		return
	}

	e.bus.Publish(event.Progress{URL: url, Percent: 100, ETASec: 0})
	e.bus.Publish(event.Finished{URL: url, Path: path})
	e.bus.Publish(event.StatusChanged{URL: url, Status: model.StatusCompleted})
}

// fetch wraps the Fetcher call, turning panics into errors so a misbehaving
// fetch layer cannot leave the item stuck in Running.
func (e *Executor) fetch(ctx context.Context, url string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()

	lastPercent := 0
	return e.fetcher.Fetch(ctx, url, e.outDir, func(p Progress) {
		// Withhold progress while the total size is unknown.
		if p.TotalBytes <= 0 {
			return
		}
		percent := int(p.DownloadedBytes * 100 / p.TotalBytes)
		if percent > 100 {
			percent = 100
		}
		// Never report lower than our own last report.
		if percent < lastPercent {
			percent = lastPercent
		}
		lastPercent = percent
		e.bus.Publish(event.Progress{URL: url, Percent: percent, ETASec: p.ETASec})
	})
}
