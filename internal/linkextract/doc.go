package linkextract

// Package linkextract finds Rutube video links in free-form text and yields
// them as ordered, deduplicated URL sequences for the download queue.
