package main

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/lvlc/internal/compiler"
	"github.com/udisondev/lvlc/internal/db"
)

// ledgerStore is the part of db.LedgerRepository the CLI needs.
type ledgerStore interface {
	RecordResult(ctx context.Context, rec db.CompileRecord) error
	FinishRun(ctx context.Context, runID uuid.UUID, total, failed int) error
}

// ledgerRecorderAdapter adapts a ledgerStore to compiler.Recorder for one run.
type ledgerRecorderAdapter struct {
	store ledgerStore
	runID uuid.UUID
}

func (a *ledgerRecorderAdapter) Record(ctx context.Context, r compiler.Result) error {
	rec := db.CompileRecord{
		RunID:      a.runID,
		SourceFile: r.Source,
		OutputFile: r.Output,
		OK:         r.OK(),
		SizeBytes:  r.Size,
		Planets:    r.Planets,
		Enemies:    r.Enemies,
		Duration:   r.Duration,
	}
	if r.OK() {
		rec.Checksum = r.Checksum[:]
	} else {
		rec.Error = r.Err.Error()
	}
	return a.store.RecordResult(ctx, rec)
}

// finish closes the run with the batch totals.
func (a *ledgerRecorderAdapter) finish(ctx context.Context, report compiler.Report) {
	if err := a.store.FinishRun(ctx, a.runID, len(report.Results), report.Failed); err != nil {
		slog.Warn("closing ledger run", "run_id", a.runID, "err", err)
	}
}
