package download

// Package download implements the core download pipeline built on top of
// yt-dlp (via github.com/lrstanley/go-ytdlp behind the Fetcher interface).
// It manages the item lifecycle, bounds executor concurrency, relays
// progress events to a single coordinator, and records produced files for
// session cleanup.
