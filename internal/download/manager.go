package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/mdgt/rutube-saver/internal/event"
	"github.com/mdgt/rutube-saver/internal/model"
	"github.com/mdgt/rutube-saver/internal/queue"
)

// lockFileName guards the output directory against concurrent sessions
const lockFileName = ".rutube-saver.lock"

// HistoryRecorder persists completed downloads for later cleanup. The
// manager treats it as optional; a nil recorder disables history.
type HistoryRecorder interface {
	Record(batchID, url, path string) error
}

// Manager owns one download session: the item store, the per-batch
// scheduler/coordinator pair, and the append-only list of files this session
// produced. It is the only type callers outside this package need.
type Manager struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu         sync.Mutex
	store      *queue.Store
	obs        Observer
	history    HistoryRecorder
	outDir     string
	workers    int
	running    bool
	pool       *Pool
	batchDone  chan struct{}
	downloaded []string
}

// NewManager creates a session manager downloading into outDir with at most
// workers concurrent downloads.
func NewManager(fetcher Fetcher, outDir string, workers int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		fetcher: fetcher,
		logger:  logger,
		store:   queue.NewStore(),
		obs:     NopObserver{},
		outDir:  outDir,
		workers: workers,
	}
}

// SetObserver installs the callback surface for UI layers
func (m *Manager) SetObserver(obs Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obs == nil {
		obs = NopObserver{}
	}
	m.obs = obs
}

// SetHistory attaches a history recorder for completed downloads
func (m *Manager) SetHistory(h HistoryRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = h
}

// SetOutputDir changes the destination directory. Takes effect for batches
// started afterwards; an already-running batch keeps the directory it
// captured at dispatch time.
func (m *Manager) SetOutputDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outDir = dir
}

// SetWorkers changes the worker limit for batches started afterwards
func (m *Manager) SetWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = 1
	}
	m.workers = n
}

// AddURLs queues the given URLs, silently skipping duplicates, and returns
// how many were actually added.
func (m *Manager) AddURLs(urls []string) int {
	added := 0
	for _, url := range urls {
		if m.store.Add(url) {
			added++
			m.logger.Debug("queued", "url", url)
		}
	}
	return added
}

// Remove deletes a not-yet-dispatched item from the queue
func (m *Manager) Remove(url string) error {
	if !m.store.Remove(url) {
		return fmt.Errorf("%w: %s", ErrNotQueued, url)
	}
	return nil
}

// Items returns a point-in-time copy of the queue
func (m *Manager) Items() []model.QueueItem {
	return m.store.Snapshot()
}

// DownloadedFiles returns the paths produced by this session so far
func (m *Manager) DownloadedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.downloaded))
	copy(out, m.downloaded)
	return out
}

// Running reports whether a batch is currently active
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// BatchProgress returns how many live items reached a terminal state and the
// total live item count.
func (m *Manager) BatchProgress() (terminal, total int) {
	items := m.store.Snapshot()
	for _, it := range items {
		if it.Status.IsTerminal() {
			terminal++
		}
	}
	return terminal, len(items)
}

// Start launches a batch over every currently queued item. It fails fast on
// an empty queue, a missing fetch dependency, or an output directory held by
// another session; per-item failures never surface here.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrBatchRunning
	}
	urls := m.store.QueuedURLs()
	if len(urls) == 0 {
		return ErrEmptyBatch
	}
	if err := m.fetcher.Check(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	outDir := m.outDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	flk := flock.New(filepath.Join(outDir, lockFileName))
	locked, err := flk.TryLock()
	if err != nil {
		return fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("output directory %s is in use by another session", outDir)
	}

	bus := event.NewBus()
	coord := newCoordinator(m.store, bus, m.obs, outDir, len(urls))
	pool := NewPool(m.workers)
	exec := newExecutor(m.fetcher, bus, outDir)

	go coord.run()
	if err := pool.Start(ctx, urls, exec); err != nil {
		bus.Close()
		<-coord.done
		if unlockErr := flk.Unlock(); unlockErr != nil {
			m.logger.Warn("release output directory lock", "error", unlockErr)
		}
		return err
	}

	batchID := uuid.NewString()
	done := make(chan struct{})
	m.running = true
	m.pool = pool
	m.batchDone = done
	m.logger.Info("batch started", "items", len(urls), "workers", m.workers, "batch_id", batchID)

	go m.finishBatch(pool, coord, bus, flk, batchID, done)
	return nil
}

// Stop politely stops the current batch: no new downloads start, in-flight
// downloads run to their natural completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}
	m.pool.Stop()
	m.logger.Info("stop requested, in-flight downloads will finish")
}

// Wait blocks until the most recently started batch has fully drained
func (m *Manager) Wait() {
	m.mu.Lock()
	done := m.batchDone
	m.mu.Unlock()

	if done == nil {
		return
	}
	<-done
}

// Reset clears the queue and the session file list. With deleteFiles set it
// also removes the recorded files from disk, returning how many were
// deleted. A running batch must drain first.
func (m *Manager) Reset(deleteFiles bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return 0, ErrBatchRunning
	}

	removed := 0
	if deleteFiles {
		for _, path := range m.downloaded {
			if err := os.Remove(path); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					m.logger.Warn("delete downloaded file", "path", path, "error", err)
				}
				continue
			}
			removed++
		}
	}

	m.store.Clear()
	m.downloaded = nil
	return removed, nil
}

func (m *Manager) finishBatch(pool *Pool, coord *Coordinator, bus *event.Bus, flk *flock.Flock, batchID string, done chan struct{}) {
	pool.Wait()
	bus.Close()
	<-coord.done

	m.mu.Lock()
	for _, c := range coord.completions {
		m.downloaded = append(m.downloaded, c.Path)
	}
	history := m.history
	m.running = false
	m.pool = nil
	m.mu.Unlock()

	if history != nil {
		for _, c := range coord.completions {
			if err := history.Record(batchID, c.URL, c.Path); err != nil {
				m.logger.Warn("record history entry", "url", c.URL, "error", err)
			}
		}
	}

	if err := flk.Unlock(); err != nil {
		m.logger.Warn("release output directory lock", "error", err)
	}

	m.logger.Info("batch finished",
		"batch_id", batchID,
		"completed", coord.completed,
		"failed", coord.failed,
		"total", coord.total)
	close(done)
}
