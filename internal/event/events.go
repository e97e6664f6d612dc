package event

import "github.com/mdgt/rutube-saver/internal/model"

// Event is the closed vocabulary published by executors and consumed by the
// coordinator.
type Event interface {
	event()
}

// Progress reports download progress for one item. ETASec is -1 when the
// fetch layer does not know the remaining time.
type Progress struct {
	URL     string
	Percent int
	ETASec  int
}

// StatusChanged reports an item lifecycle transition. Error carries the
// failure message when Status is Error.
type StatusChanged struct {
	URL    string
	Status model.Status
	Error  string
}

// Finished carries the final file path as reported by the fetch layer. It is
// published exactly once per successfully fetched item, before the item's
// terminal StatusChanged.
type Finished struct {
	URL  string
	Path string
}

// Log carries a human-readable console line
type Log struct {
	Text string
}

func (Progress) event()      {}
func (StatusChanged) event() {}
func (Finished) event()      {}
func (Log) event()           {}
