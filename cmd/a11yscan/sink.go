package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
)

// runSink records audit events in the run store and prints progress.
// The orchestrator serializes observer calls, so no locking is needed.
type runSink struct {
	store  *database.RunStore
	logger *slog.Logger
	out    io.Writer
}

func newRunSink(store *database.RunStore, logger *slog.Logger, out io.Writer) *runSink {
	return &runSink{store: store, logger: logger, out: out}
}

// OnProgress logs the page being started or the next pending one.
func (s *runSink) OnProgress(p model.Progress) {
	s.logger.Debug("progress", "url", p.CurrentURL, "completed", p.Completed, "total", p.Total)
}

// OnResults stores the findings of one page.
//
// The store outlives the run context so results arriving while a cancel
// is in progress are still kept.
func (s *runSink) OnResults(findings []model.Finding) {
	if err := s.store.AddFindings(context.Background(), findings); err != nil {
		s.logger.Error("failed to store findings", "error", err)
		return
	}
	issues := 0
	for _, f := range findings {
		if f.IsIssue() {
			issues++
		}
	}
	fmt.Fprintf(s.out, "  %s: %d finding(s), %d issue(s)\n", findings[0].SourceURL, len(findings), issues)
}

// OnError stores and prints a run error.
func (s *runSink) OnError(e model.RunError) {
	if err := s.store.AddError(context.Background(), e); err != nil {
		s.logger.Error("failed to store run error", "error", err)
	}
	fmt.Fprintf(s.out, "  %s: %s: %s\n", e.URL, e.Kind, e.Message)
}

// OnComplete prints the completion line.
func (s *runSink) OnComplete() {
	fmt.Fprintln(s.out, "Audit complete.")
}
