package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/lvlc/internal/db"
	"github.com/udisondev/lvlc/internal/testutil"
)

func TestLedgerRepository_RoundTrip(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := db.NewLedgerRepository(pool)
	ctx := context.Background()

	runID, err := repo.BeginRun(ctx, "/levels")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, runID)

	checksum := make([]byte, 32)
	for i := range checksum {
		checksum[i] = byte(i)
	}

	ok := db.CompileRecord{
		RunID:      runID,
		SourceFile: "/levels/01.json",
		OutputFile: "/levels/01.lvl",
		OK:         true,
		Checksum:   checksum,
		SizeBytes:  120,
		Planets:    2,
		Enemies:    3,
		Duration:   15 * time.Millisecond,
	}
	failed := db.CompileRecord{
		RunID:      runID,
		SourceFile: "/levels/02.json",
		OutputFile: "/levels/02.lvl",
		Error:      "normalize: kills_goal: kills_goal is required",
	}
	require.NoError(t, repo.RecordResult(ctx, ok))
	require.NoError(t, repo.RecordResult(ctx, failed))
	require.NoError(t, repo.FinishRun(ctx, runID, 2, 1))

	run, err := repo.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "/levels", run.SourceDir)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Failed)
	require.NotNil(t, run.FinishedAt)

	results, err := repo.ListResults(ctx, runID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "/levels/01.json", results[0].SourceFile)
	assert.True(t, results[0].OK)
	assert.Equal(t, checksum, results[0].Checksum)
	assert.Equal(t, 120, results[0].SizeBytes)
	assert.Equal(t, 3, results[0].Enemies)
	assert.Equal(t, 15*time.Millisecond, results[0].Duration)

	assert.False(t, results[1].OK)
	assert.Nil(t, results[1].Checksum)
	assert.Equal(t, failed.Error, results[1].Error)
}

func TestLedgerRepository_FinishUnknownRun(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := db.NewLedgerRepository(pool)

	err := repo.FinishRun(context.Background(), uuid.New(), 1, 0)
	assert.Error(t, err)
}

func TestLedgerRepository_ResultNeedsRun(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := db.NewLedgerRepository(pool)

	err := repo.RecordResult(context.Background(), db.CompileRecord{RunID: uuid.New(), SourceFile: "x.json"})
	assert.Error(t, err, "foreign key must reject results without a run")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()

	version, err := db.RunMigrations(ctx, pool.Config().ConnString())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var exists bool
	err = pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, db.VersionTable).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "ledger migrations must be tracked in %s", db.VersionTable)
}
