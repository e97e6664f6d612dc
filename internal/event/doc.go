package event

// Package event defines the download event vocabulary and the bus that
// carries events from concurrent executors to the single coordinator.
