package logging

// ProgressSampler suppresses repetitive per-tick progress logs while keeping
// the signal when an item crosses a percentage bucket boundary. One sampler
// tracks all items of a batch, keyed by URL.
type ProgressSampler struct {
	bucketSize int
	lastBucket map[string]int
}

// NewProgressSampler constructs a sampler emitting when an item's percent
// crosses bucket boundaries (default 10%).
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{
		bucketSize: bucketSize,
		lastBucket: make(map[string]int),
	}
}

// ShouldLog reports whether a progress tick for url at percent deserves a
// console line.
func (s *ProgressSampler) ShouldLog(url string, percent int) bool {
	if s == nil {
		return true
	}
	if percent > 100 {
		percent = 100
	}

	bucket := percent / s.bucketSize
	last, seen := s.lastBucket[url]
	if seen && bucket <= last {
		return false
	}
	s.lastBucket[url] = bucket
	return true
}

// Reset clears sampler state, e.g. when a new batch starts
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = make(map[string]int)
}
