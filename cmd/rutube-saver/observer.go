package main

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/mdgt/rutube-saver/internal/logging"
	"github.com/mdgt/rutube-saver/internal/model"
)

// consoleObserver renders batch events as log lines. Progress ticks arrive at
// up to two per second per item, so they pass through a per-item percentage
// sampler and a global rate limiter before reaching the console.
type consoleObserver struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	limiter *rate.Limiter
}

func newConsoleObserver(logger *slog.Logger, progressStep int) *consoleObserver {
	return &consoleObserver{
		logger:  logger,
		sampler: logging.NewProgressSampler(progressStep),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

func (o *consoleObserver) OnProgress(url string, percent int) {
	if !o.sampler.ShouldLog(url, percent) {
		return
	}
	if percent < 100 && !o.limiter.Allow() {
		return
	}
	o.logger.Info("downloading", "url", url, "percent", percent)
}

func (o *consoleObserver) OnStatusChanged(url string, status model.Status) {
	switch status {
	case model.StatusRunning:
		o.logger.Debug("started", "url", url)
	case model.StatusError, model.StatusUnavailable:
		o.logger.Error("download failed", "url", url, "status", status)
	default:
		o.logger.Info("status changed", "url", url, "status", status)
	}
}

func (o *consoleObserver) OnFinished(url, path string) {
	o.logger.Info("saved", "url", url, "path", path)
}

func (o *consoleObserver) OnLogLine(text string) {
	o.logger.Info(text)
}

func (o *consoleObserver) OnBatchProgress(completed, total int) {
	o.logger.Info("batch progress", "done", completed, "total", total)
}
