package queue

// Package queue implements the item store: the ordered, URL-keyed set of
// queue entries and their mutable download state.
