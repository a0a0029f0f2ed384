package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"photoorg/internal/logging"
	"photoorg/internal/organizer"
)

// progressRenderer consumes per-file outcomes while a run is in flight.
type progressRenderer interface {
	Observe(organizer.Outcome)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Observe(organizer.Outcome) {}
func (noopProgress) Finish()                   {}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func newBarProgress(w io.Writer, total int) *barProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Organizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &barProgress{bar: bar}
}

func (p *barProgress) Observe(o organizer.Outcome) {
	p.bar.Describe(truncateName(o.File.Name, 30))
	_ = p.bar.Add(1)
}

func (p *barProgress) Finish() {
	_ = p.bar.Finish()
}

// logProgress reports progress as sampled log lines when no terminal is
// attached.
type logProgress struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

func newLogProgress(logger *slog.Logger, total int) *logProgress {
	return &logProgress{logger: logger, sampler: logging.NewProgressSampler(10), total: total}
}

func (p *logProgress) Observe(o organizer.Outcome) {
	p.done++
	if !p.sampler.ShouldLog(p.done, p.total) {
		return
	}
	p.logger.Info(
		"organize progress",
		logging.Int("done", p.done),
		logging.Int("total", p.total),
		logging.Int("percent", p.done*100/p.total),
		logging.String(logging.FieldSourceFile, o.File.Name),
	)
}

func (p *logProgress) Finish() {}

// newProgressRenderer draws a bar when w is an interactive terminal and
// otherwise falls back to sampled progress logs.
func newProgressRenderer(w io.Writer, logger *slog.Logger, total int, enabled bool) progressRenderer {
	if !enabled || total == 0 {
		return noopProgress{}
	}
	if !isTerminal(w) {
		return newLogProgress(logger, total)
	}
	return newBarProgress(w, total)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
