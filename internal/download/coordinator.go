package download

import (
	"fmt"

	"github.com/mdgt/rutube-saver/internal/event"
	"github.com/mdgt/rutube-saver/internal/model"
	"github.com/mdgt/rutube-saver/internal/queue"
)

// Completion is one successfully downloaded item with its resolved path
type Completion struct {
	URL  string
	Path string
}

// Coordinator is the sole consumer of the event bus. It owns every mutation
// of the item store during a batch, aggregates overall progress and collects
// the produced file paths. Executors publish, the coordinator applies; no
// other synchronization is needed on the store.
type Coordinator struct {
	store  *queue.Store
	bus    *event.Bus
	obs    Observer
	outDir string
	total  int

	// mutated only by the run goroutine, read after done closes
	terminal    int
	completed   int
	failed      int
	completions []Completion

	done chan struct{}
}

func newCoordinator(store *queue.Store, bus *event.Bus, obs Observer, outDir string, total int) *Coordinator {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Coordinator{
		store:  store,
		bus:    bus,
		obs:    obs,
		outDir: outDir,
		total:  total,
		done:   make(chan struct{}),
	}
}

// run drains the bus until it is closed and fully consumed
func (c *Coordinator) run() {
	defer close(c.done)

	for {
		e, ok := c.bus.Next()
		if !ok {
			return
		}

		switch ev := e.(type) {
		case event.Progress:
			c.store.UpdateProgress(ev.URL, ev.Percent)
			c.store.UpdateETA(ev.URL, ev.ETASec)
			c.obs.OnProgress(ev.URL, ev.Percent)

		case event.Finished:
			path, ok := resolveOutputPath(ev.Path, c.outDir)
			if !ok {
				// Best-effort reconciliation failed: logged and excluded
				// from the session file list, not an item error.
				c.obs.OnLogLine(fmt.Sprintf("downloaded file for %s not found (reported %q)", ev.URL, ev.Path))
				break
			}
			c.store.SetOutputPath(ev.URL, path)
			c.completions = append(c.completions, Completion{URL: ev.URL, Path: path})
			c.obs.OnFinished(ev.URL, path)

		case event.StatusChanged:
			if ev.Error != "" {
				c.store.SetLastError(ev.URL, ev.Error)
			}
			c.store.UpdateStatus(ev.URL, ev.Status)
			c.obs.OnStatusChanged(ev.URL, ev.Status)
			if ev.Status.IsTerminal() {
				c.terminal++
				if ev.Status == model.StatusCompleted {
					c.completed++
				} else {
					c.failed++
				}
				// Any terminal state consumes one unit of batch work.
				c.obs.OnBatchProgress(c.terminal, c.total)
			}

		case event.Log:
			c.obs.OnLogLine(ev.Text)
		}
	}
}
