package journal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := testStore(t)

	run, err := store.Begin("alpha")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	require.NoError(t, store.SetStep(run, "Fetching"))
	require.NoError(t, store.SetStep(run, "Rendering"))
	require.NoError(t, store.Finish(run, "Running", nil))

	latest, err := store.Latest("alpha")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, "Running", latest.State)
	assert.Equal(t, "Rendering", latest.Step)
	assert.Empty(t, latest.Error)
	assert.False(t, latest.FinishedAt.IsZero())
}

func TestFinishRecordsError(t *testing.T) {
	store := testStore(t)

	run, err := store.Begin("alpha")
	require.NoError(t, err)
	require.NoError(t, store.Finish(run, "Failed", errors.New("steamcmd exited 8")))

	latest, err := store.Latest("alpha")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Failed", latest.State)
	assert.Equal(t, "steamcmd exited 8", latest.Error)
}

func TestLatestReturnsNilForUnknownInstance(t *testing.T) {
	store := testStore(t)

	latest, err := store.Latest("never-provisioned")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestLatestPicksMostRecentRun(t *testing.T) {
	store := testStore(t)

	first, err := store.Begin("alpha")
	require.NoError(t, err)
	require.NoError(t, store.Finish(first, "Failed", errors.New("boom")))

	second, err := store.Begin("alpha")
	require.NoError(t, err)
	require.NoError(t, store.Finish(second, "Running", nil))

	latest, err := store.Latest("alpha")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Running", latest.State)
}
