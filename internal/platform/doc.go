package platform

// Package platform integrates with the host environment: the yt-dlp binary
// (resolution, installation and downloads via go-ytdlp) and filesystem
// helpers for the output directory.
