package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mdgt/rutube-saver/internal/model"
)

// mockFetcher is a deterministic Fetcher that writes a real file per URL so
// path reconciliation succeeds. It tracks how many fetches run concurrently.
type mockFetcher struct {
	dir      string
	checkErr error
	delay    time.Duration
	failURLs map[string]bool

	// gate, when set, makes Fetch signal started and block until released
	started chan string
	release chan struct{}

	mu        sync.Mutex
	calls     []string
	active    int
	maxActive int
}

func newMockFetcher(dir string) *mockFetcher {
	return &mockFetcher{dir: dir}
}

func (f *mockFetcher) Check(context.Context) error {
	return f.checkErr
}

func (f *mockFetcher) Fetch(_ context.Context, url, dir string, onProgress func(Progress)) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.started != nil {
		f.started <- url
		<-f.release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failURLs[url] {
		return "", errors.New("network unreachable")
	}

	onProgress(Progress{DownloadedBytes: 50, TotalBytes: 100, ETASec: 1})
	onProgress(Progress{DownloadedBytes: 100, TotalBytes: 100, ETASec: 0})

	path := filepath.Join(dir, safeName(url)+".mp4")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *mockFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *mockFetcher) peakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

func safeName(url string) string {
	return strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_").Replace(url)
}

// recordingObserver captures every callback for later assertions
type recordingObserver struct {
	mu            sync.Mutex
	progress      map[string][]int
	statuses      map[string][]model.Status
	finished      map[string]string
	logLines      []string
	batchProgress [][2]int
	maxRunning    int
	running       int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		progress: make(map[string][]int),
		statuses: make(map[string][]model.Status),
		finished: make(map[string]string),
	}
}

func (o *recordingObserver) OnProgress(url string, percent int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress[url] = append(o.progress[url], percent)
}

func (o *recordingObserver) OnStatusChanged(url string, status model.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[url] = append(o.statuses[url], status)
	switch {
	case status == model.StatusRunning:
		o.running++
		if o.running > o.maxRunning {
			o.maxRunning = o.running
		}
	case status.IsTerminal():
		o.running--
	}
}

func (o *recordingObserver) OnFinished(url, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished[url] = path
}

func (o *recordingObserver) OnLogLine(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logLines = append(o.logLines, text)
}

func (o *recordingObserver) OnBatchProgress(completed, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batchProgress = append(o.batchProgress, [2]int{completed, total})
}

func (o *recordingObserver) lastBatchProgress() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.batchProgress) == 0 {
		return 0, 0
	}
	last := o.batchProgress[len(o.batchProgress)-1]
	return last[0], last[1]
}

func testURLs(n int) []string {
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://rutube.ru/video/%d/", i))
	}
	return urls
}
