package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/foundation/errors"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusPassed, StatusFor(0, 0))
	assert.Equal(t, StatusWarnings, StatusFor(0, 2))
	assert.Equal(t, StatusFailed, StatusFor(1, 2))
}

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := range 3 {
		run := NewRun("snap", base.Add(time.Duration(i)*time.Minute))
		run.Duration = 1500 * time.Millisecond
		run.Pages = 12
		run.Warnings = i
		require.NoError(t, store.Record(ctx, run))
		_, err := uuid.Parse(run.ID)
		require.NoError(t, err)
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	newest := runs[0]
	assert.True(t, newest.StartedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, 1500*time.Millisecond, newest.Duration)
	assert.Equal(t, 12, newest.Pages)
	assert.Equal(t, 2, newest.Warnings)
	assert.Equal(t, StatusWarnings, newest.Status)
	assert.Equal(t, "snap", newest.Snapshot)
	assert.True(t, runs[1].StartedAt.Before(newest.StartedAt))
}

func TestRecord_FillsIDAndStatus(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	run := &Run{StartedAt: time.Now(), Errors: 3}
	require.NoError(t, store.Record(t.Context(), run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusFailed, run.Status)
}

func TestRecord_DuplicateIDIsStoreError(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	run := NewRun("snap", time.Now())
	require.NoError(t, store.Record(t.Context(), run))

	err = store.Record(t.Context(), run)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStore))
}

func TestOpen_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(t.Context(), NewRun("a", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.Recent(t.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
