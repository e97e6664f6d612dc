package download

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdgt/rutube-saver/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerAddURLsDeduplicates(t *testing.T) {
	mgr := NewManager(newMockFetcher(t.TempDir()), t.TempDir(), 2, quietLogger())

	added := mgr.AddURLs([]string{
		"https://rutube.ru/video/a/",
		"https://rutube.ru/video/a/",
		"https://rutube.ru/video/b/",
	})
	if added != 2 {
		t.Errorf("Expected 2 added, got %d", added)
	}
	if len(mgr.Items()) != 2 {
		t.Errorf("Expected 2 items, got %d", len(mgr.Items()))
	}
}

func TestManagerStartPreconditions(t *testing.T) {
	dir := t.TempDir()
	fetcher := newMockFetcher(dir)
	mgr := NewManager(fetcher, dir, 2, quietLogger())

	if err := mgr.Start(context.Background()); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Expected ErrEmptyBatch for empty queue, got %v", err)
	}

	mgr.AddURLs(testURLs(1))
	fetcher.checkErr = errors.New("yt-dlp binary not found")
	if err := mgr.Start(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("Expected ErrDependencyUnavailable, got %v", err)
	}
	if fetcher.fetchCount() != 0 {
		t.Errorf("Expected zero fetch attempts, got %d", fetcher.fetchCount())
	}

	// Items must be untouched by the rejected start.
	for _, item := range mgr.Items() {
		if item.Status != model.StatusQueued {
			t.Errorf("Expected item still Queued, got %s", item.Status)
		}
	}
}

func TestManagerBatchCompletesAllItems(t *testing.T) {
	outDir := t.TempDir()
	fetcher := newMockFetcher(outDir)
	mgr := NewManager(fetcher, outDir, 2, quietLogger())
	obs := newRecordingObserver()
	mgr.SetObserver(obs)

	mgr.AddURLs(testURLs(5))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mgr.Wait()

	items := mgr.Items()
	for _, item := range items {
		if item.Status != model.StatusCompleted {
			t.Errorf("Expected %s Completed, got %s", item.URL, item.Status)
		}
		if item.Percent != 100 {
			t.Errorf("Expected %s at 100%%, got %d", item.URL, item.Percent)
		}
		if item.OutputPath == "" {
			t.Errorf("Expected %s to have an output path", item.URL)
		}
	}

	if files := mgr.DownloadedFiles(); len(files) != 5 {
		t.Errorf("Expected 5 downloaded files, got %d", len(files))
	}
	if completed, total := obs.lastBatchProgress(); completed != 5 || total != 5 {
		t.Errorf("Expected batch progress 5/5, got %d/%d", completed, total)
	}
	if obs.maxRunning > 2 {
		t.Errorf("Expected at most 2 items Running at once, observed %d", obs.maxRunning)
	}

	// Progress per item must be non-decreasing as observed by the coordinator.
	for url, ticks := range obs.progress {
		last := -1
		for _, p := range ticks {
			if p < last {
				t.Errorf("Progress for %s regressed: %d after %d", url, p, last)
			}
			last = p
		}
	}
}

func TestManagerItemFailureDoesNotAbortBatch(t *testing.T) {
	outDir := t.TempDir()
	fetcher := newMockFetcher(outDir)
	urls := testURLs(4)
	fetcher.failURLs = map[string]bool{urls[2]: true}

	mgr := NewManager(fetcher, outDir, 2, quietLogger())
	obs := newRecordingObserver()
	mgr.SetObserver(obs)

	mgr.AddURLs(urls)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mgr.Wait()

	completed, failed := 0, 0
	for _, item := range mgr.Items() {
		switch item.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusError:
			failed++
			if item.LastError == "" {
				t.Error("Expected failed item to record its error")
			}
		default:
			t.Errorf("Expected terminal state for %s, got %s", item.URL, item.Status)
		}
	}
	if completed != 3 || failed != 1 {
		t.Errorf("Expected 3 completed and 1 failed, got %d/%d", completed, failed)
	}
	if terminal, total := obs.lastBatchProgress(); terminal != 4 || total != 4 {
		t.Errorf("Expected batch progress 4/4 counting failures, got %d/%d", terminal, total)
	}
	if files := mgr.DownloadedFiles(); len(files) != 3 {
		t.Errorf("Expected 3 downloaded files, got %d", len(files))
	}
}

func TestManagerStopPreventsNewDispatch(t *testing.T) {
	outDir := t.TempDir()
	fetcher := newMockFetcher(outDir)
	fetcher.started = make(chan string, 3)
	fetcher.release = make(chan struct{})

	mgr := NewManager(fetcher, outDir, 1, quietLogger())
	mgr.AddURLs(testURLs(3))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	<-fetcher.started
	mgr.Stop()
	close(fetcher.release)
	mgr.Wait()

	queued, terminal := 0, 0
	for _, item := range mgr.Items() {
		switch {
		case item.Status == model.StatusQueued:
			queued++
		case item.Status.IsTerminal():
			terminal++
		default:
			t.Errorf("Expected no item left in %s after drain", item.Status)
		}
	}
	if terminal != 1 || queued != 2 {
		t.Errorf("Expected 1 terminal and 2 still queued, got %d/%d", terminal, queued)
	}
}

func TestManagerRejectsConcurrentBatches(t *testing.T) {
	outDir := t.TempDir()
	fetcher := newMockFetcher(outDir)
	fetcher.started = make(chan string, 1)
	fetcher.release = make(chan struct{})

	mgr := NewManager(fetcher, outDir, 1, quietLogger())
	mgr.AddURLs(testURLs(1))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	<-fetcher.started
	if err := mgr.Start(context.Background()); !errors.Is(err, ErrBatchRunning) {
		t.Errorf("Expected ErrBatchRunning, got %v", err)
	}
	close(fetcher.release)
	mgr.Wait()
}

func TestManagerRemoveOnlyQueuedItems(t *testing.T) {
	mgr := NewManager(newMockFetcher(t.TempDir()), t.TempDir(), 1, quietLogger())
	mgr.AddURLs(testURLs(2))

	if err := mgr.Remove(testURLs(1)[0]); err != nil {
		t.Errorf("Expected removal of queued item to succeed, got %v", err)
	}
	if err := mgr.Remove("https://rutube.ru/video/unknown/"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("Expected ErrNotQueued, got %v", err)
	}
}

func TestManagerResetDeletesSessionFiles(t *testing.T) {
	outDir := t.TempDir()
	fetcher := newMockFetcher(outDir)
	mgr := NewManager(fetcher, outDir, 2, quietLogger())

	mgr.AddURLs(testURLs(2))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mgr.Wait()

	files := mgr.DownloadedFiles()
	if len(files) != 2 {
		t.Fatalf("Expected 2 downloaded files, got %d", len(files))
	}

	removed, err := mgr.Reset(true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 files removed, got %d", removed)
	}
	for _, f := range files {
		if _, statErr := os.Stat(f); statErr == nil {
			t.Errorf("Expected %s to be deleted", f)
		}
	}
	if len(mgr.Items()) != 0 {
		t.Error("Expected queue cleared after reset")
	}
	if len(mgr.DownloadedFiles()) != 0 {
		t.Error("Expected session file list cleared after reset")
	}
}

// relocatingFetcher reports a path outside the output directory while the
// real file lands inside it, exercising basename reconciliation.
type relocatingFetcher struct{}

func (relocatingFetcher) Check(context.Context) error {
	return nil
}

func (relocatingFetcher) Fetch(_ context.Context, _, dir string, _ func(Progress)) (string, error) {
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("media"), 0o644); err != nil {
		return "", err
	}
	return "/nonexistent/tmp/clip.mp4", nil
}

func TestManagerReconcilesReportedPath(t *testing.T) {
	outDir := t.TempDir()
	mgr := NewManager(relocatingFetcher{}, outDir, 1, quietLogger())
	mgr.AddURLs(testURLs(1))

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mgr.Wait()

	files := mgr.DownloadedFiles()
	if len(files) != 1 {
		t.Fatalf("Expected 1 downloaded file, got %d", len(files))
	}
	expected := filepath.Join(outDir, "clip.mp4")
	if files[0] != expected {
		t.Errorf("Expected reconciled path %s, got %s", expected, files[0])
	}
}

// historySink records history calls in memory
type historySink struct {
	entries [][3]string
}

func (h *historySink) Record(batchID, url, path string) error {
	h.entries = append(h.entries, [3]string{batchID, url, path})
	return nil
}

func TestManagerRecordsHistory(t *testing.T) {
	outDir := t.TempDir()
	mgr := NewManager(newMockFetcher(outDir), outDir, 2, quietLogger())
	sink := &historySink{}
	mgr.SetHistory(sink)

	mgr.AddURLs(testURLs(3))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mgr.Wait()

	if len(sink.entries) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(sink.entries))
	}
	batchID := sink.entries[0][0]
	for _, e := range sink.entries {
		if e[0] != batchID {
			t.Error("Expected a single batch id across entries")
		}
		if e[1] == "" || e[2] == "" {
			t.Error("Expected url and path recorded")
		}
	}
}
