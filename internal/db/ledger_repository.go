package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompileRun is one batch invocation of the compiler.
type CompileRun struct {
	RunID      uuid.UUID
	SourceDir  string
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Failed     int
}

// CompileRecord is the stored outcome of compiling one source file.
type CompileRecord struct {
	RunID      uuid.UUID
	SourceFile string
	OutputFile string
	OK         bool
	Error      string
	Checksum   []byte // nil when the file failed
	SizeBytes  int
	Planets    int
	Enemies    int
	Duration   time.Duration
	CompiledAt time.Time
}

// LedgerRepository stores compile runs and their per-file results.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// BeginRun opens a new run for sourceDir and returns its id.
func (r *LedgerRepository) BeginRun(ctx context.Context, sourceDir string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO compile_runs (run_id, source_dir, started_at) VALUES ($1::uuid, $2, $3)`,
		runID.String(), sourceDir, time.Now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating compile run for %q: %w", sourceDir, err)
	}
	return runID, nil
}

// RecordResult stores one per-file result.
func (r *LedgerRepository) RecordResult(ctx context.Context, rec CompileRecord) error {
	query := `
		INSERT INTO compile_results
			(run_id, source_file, output_file, ok, error, checksum, size_bytes, planets, enemies, duration_ms, compiled_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	compiledAt := rec.CompiledAt
	if compiledAt.IsZero() {
		compiledAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, query,
		rec.RunID.String(),
		rec.SourceFile,
		rec.OutputFile,
		rec.OK,
		rec.Error,
		rec.Checksum,
		rec.SizeBytes,
		rec.Planets,
		rec.Enemies,
		rec.Duration.Milliseconds(),
		compiledAt,
	)
	if err != nil {
		return fmt.Errorf("recording result for %s: %w", rec.SourceFile, err)
	}
	return nil
}

// FinishRun closes a run with its totals.
func (r *LedgerRepository) FinishRun(ctx context.Context, runID uuid.UUID, total, failed int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE compile_runs SET finished_at = $1, total = $2, failed = $3 WHERE run_id = $4::uuid`,
		time.Now(), total, failed, runID.String(),
	)
	if err != nil {
		return fmt.Errorf("finishing compile run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing compile run %s: run not found", runID)
	}
	return nil
}

// LoadRun loads a run by id.
func (r *LedgerRepository) LoadRun(ctx context.Context, runID uuid.UUID) (*CompileRun, error) {
	var (
		id  string
		run CompileRun
	)
	err := r.pool.QueryRow(ctx,
		`SELECT run_id::text, source_dir, started_at, finished_at, total, failed
		 FROM compile_runs WHERE run_id = $1::uuid`, runID.String(),
	).Scan(&id, &run.SourceDir, &run.StartedAt, &run.FinishedAt, &run.Total, &run.Failed)
	if err != nil {
		return nil, fmt.Errorf("loading compile run %s: %w", runID, err)
	}
	if run.RunID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing run id %q: %w", id, err)
	}
	return &run, nil
}

// ListResults returns the results of a run in insertion order.
func (r *LedgerRepository) ListResults(ctx context.Context, runID uuid.UUID) ([]CompileRecord, error) {
	query := `
		SELECT source_file, output_file, ok, error, checksum, size_bytes, planets, enemies, duration_ms, compiled_at
		FROM compile_results
		WHERE run_id = $1::uuid
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("listing results of run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []CompileRecord
	for rows.Next() {
		rec := CompileRecord{RunID: runID}
		var durationMs int64
		if err := rows.Scan(
			&rec.SourceFile, &rec.OutputFile, &rec.OK, &rec.Error, &rec.Checksum,
			&rec.SizeBytes, &rec.Planets, &rec.Enemies, &durationMs, &rec.CompiledAt,
		); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}

	return records, nil
}
