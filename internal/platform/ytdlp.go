package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/mdgt/rutube-saver/internal/download"
)

// Progress ticks are sampled at this interval by go-ytdlp
const progressInterval = 500 * time.Millisecond

// YTDLPFetcher downloads media through the yt-dlp binary via go-ytdlp.
// It satisfies download.Fetcher.
type YTDLPFetcher struct{}

// NewYTDLPFetcher creates the production fetcher
func NewYTDLPFetcher() *YTDLPFetcher {
	return &YTDLPFetcher{}
}

// Check resolves an existing yt-dlp installation without downloading one.
// The manager calls this once per batch before launching executors.
func (f *YTDLPFetcher) Check(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{DisableDownload: true}); err != nil {
		return fmt.Errorf("resolve yt-dlp: %w", err)
	}
	return nil
}

// Fetch runs one download to completion, relaying progress ticks to
// onProgress. The call blocks; yt-dlp's download is not interruptible.
func (f *YTDLPFetcher) Fetch(ctx context.Context, url, dir string, onProgress func(download.Progress)) (string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(filepath.Join(dir, "%(title)s.%(ext)s"))

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		eta := -1
		if d := update.ETA(); d > 0 {
			eta = int(d.Seconds())
		}
		onProgress(download.Progress{
			DownloadedBytes: int64(update.DownloadedBytes),
			TotalBytes:      int64(update.TotalBytes),
			ETASec:          eta,
		})
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		return "", err
	}

	// The final path comes from the extracted info; yt-dlp may rename files
	// during post-processing, which the coordinator reconciles against the
	// output directory.
	if result != nil {
		info, infoErr := result.GetExtractedInfo()
		if infoErr == nil && len(info) > 0 && info[0].Filename != nil {
			return *info[0].Filename, nil
		}
	}
	return "", nil
}

// Install downloads a managed yt-dlp binary when none is present on the
// system. Used by the explicit install command, never implicitly.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	return nil
}
