package main

import (
	"io"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// Sink receives the structured events the orchestrator emits while it runs:
// table-started, chunk-committed, table-done, warning, error. The default
// implementation writes to a *log.Logger and renders a per-table progress
// bar, suppressed entirely under --quiet.
type Sink interface {
	TableStarted(table string, estimatedRows int64)
	ChunkCommitted(table string, rows int64)
	TableDone(table string, rows int64)
	Warning(message string)
	Error(message string)
}

// logSink is the concrete Sink backing every run; grounded on the teacher's
// plain *log.Logger usage and the original project's tqdm/trange-driven
// progress reporting, replaced here with progressbar/v3.
type logSink struct {
	logger *log.Logger
	quiet  bool
	bar    *progressbar.ProgressBar
}

func newLogSink(out io.Writer, quiet bool) *logSink {
	return &logSink{logger: log.New(out, "", log.LstdFlags), quiet: quiet}
}

func (s *logSink) TableStarted(table string, estimatedRows int64) {
	if s.quiet {
		return
	}
	s.logger.Printf("transferring table %s (~%s rows)", table, humanize.Comma(estimatedRows))
	if estimatedRows > 0 {
		s.bar = progressbar.Default(estimatedRows, table)
	} else {
		s.bar = nil
	}
}

func (s *logSink) ChunkCommitted(table string, rows int64) {
	if s.quiet {
		return
	}
	if s.bar != nil {
		_ = s.bar.Add64(rows)
	}
}

func (s *logSink) TableDone(table string, rows int64) {
	if s.bar != nil {
		_ = s.bar.Finish()
		s.bar = nil
	}
	if s.quiet {
		return
	}
	s.logger.Printf("table %s done: %s rows transferred", table, humanize.Comma(rows))
}

func (s *logSink) Warning(message string) {
	s.logger.Printf("warning: %s", message)
}

func (s *logSink) Error(message string) {
	s.logger.Printf("error: %s", message)
}
