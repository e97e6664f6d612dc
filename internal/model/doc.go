package model

// Package model defines the queue item data model shared across the
// application: item status lifecycle and per-item download state.
