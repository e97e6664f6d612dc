package queue

import (
	"sync"
	"time"

	"github.com/mdgt/rutube-saver/internal/model"
)

// Store holds the ordered set of queue items for one session. Items are keyed
// by URL; insertion order is preserved for rendering and dispatch.
//
// All status, progress and output-path writes are expected to come from a
// single goroutine (the coordinator); the lock exists so that readers can
// take consistent snapshots while a batch is running.
type Store struct {
	mu    sync.RWMutex
	items []*model.QueueItem
	index map[string]*model.QueueItem
}

// NewStore creates an empty item store
func NewStore() *Store {
	return &Store{
		index: make(map[string]*model.QueueItem),
	}
}

// Add appends a new queued item for url. It returns false without mutation
// when the URL is already present; duplicate submissions are not merged.
func (s *Store) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[url]; exists {
		return false
	}

	item := &model.QueueItem{
		URL:     url,
		Status:  model.StatusQueued,
		ETASec:  -1,
		AddedAt: time.Now(),
	}
	s.items = append(s.items, item)
	s.index[url] = item
	return true
}

// Remove deletes the item for url. Removal is only allowed while the item is
// still Queued; once dispatched the call is a no-op returning false, so an
// in-flight executor never races with its own item disappearing.
func (s *Store) Remove(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.index[url]
	if !exists || item.Status != model.StatusQueued {
		return false
	}

	delete(s.index, url)
	for i, it := range s.items {
		if it == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns a point-in-time copy of all items in insertion order.
// Callers get value copies, never references into the live set.
func (s *Store) Snapshot() []model.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.QueueItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out
}

// Len returns the number of live items
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// QueuedURLs returns the URLs of all not-yet-dispatched items in order
func (s *Store) QueuedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var urls []string
	for _, item := range s.items {
		if item.Status == model.StatusQueued {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

// UpdateStatus sets the status for url. Illegal backward transitions and
// unknown URLs are ignored; terminal statuses stamp FinishedAt.
func (s *Store) UpdateStatus(url string, status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.index[url]
	if !exists || !item.Status.CanTransition(status) {
		return
	}

	item.Status = status
	if status == model.StatusCompleted {
		item.Percent = 100
	}
	if status.IsTerminal() {
		item.FinishedAt = time.Now()
	}
}

// UpdateProgress sets the percent for url, clamped into [current, 100] so
// observed progress never regresses. Unknown URLs are ignored.
func (s *Store) UpdateProgress(url string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.index[url]
	if !exists {
		return
	}

	if percent > 100 {
		percent = 100
	}
	if percent > item.Percent {
		item.Percent = percent
	}
}

// UpdateETA sets the estimated seconds remaining for url
func (s *Store) UpdateETA(url string, etaSec int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, exists := s.index[url]; exists {
		item.ETASec = etaSec
	}
}

// SetOutputPath records the downloaded file path for url
func (s *Store) SetOutputPath(url, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, exists := s.index[url]; exists {
		item.OutputPath = path
	}
}

// SetLastError records the failure message for url
func (s *Store) SetLastError(url, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, exists := s.index[url]; exists {
		item.LastError = msg
	}
}

// Clear removes all items; used by session reset
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]*model.QueueItem)
}
