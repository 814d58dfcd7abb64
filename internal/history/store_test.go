package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctiluca/rendermanager/internal/coordinator"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_history.json")
	store := NewStore(path)

	records := []coordinator.JobHistoryRecord{
		{JobID: 0, BlendFile: "/a.blend", TotalFrames: 10, CompletedFrames: 10, WorkersUsed: 2, CompletedAt: time.Now().Truncate(time.Second)},
		{JobID: 1, BlendFile: "/b.blend", TotalFrames: 5, CompletedFrames: 5, WorkersUsed: 1, CompletedAt: time.Now().Truncate(time.Second)},
	}

	store.Save(records)
	loaded := store.Load()

	require.Len(t, loaded, 2)
	assert.Equal(t, records[0].BlendFile, loaded[0].BlendFile)
	assert.Equal(t, records[1].JobID, loaded[1].JobID)
}

func TestLoadMissingFileReturnsNil(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Nil(t, store.Load())
}

func TestLoadCorruptFileReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store := NewStore(path)
	assert.Nil(t, store.Load())
}

func TestLoadTruncatesToNewestCapEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_history.json")
	store := NewStore(path)

	records := make([]coordinator.JobHistoryRecord, Cap+10)
	for i := range records {
		records[i] = coordinator.JobHistoryRecord{JobID: i, BlendFile: "/job.blend"}
	}

	store.Save(records)
	loaded := store.Load()

	require.Len(t, loaded, Cap)
	assert.Equal(t, 10, loaded[0].JobID, "the oldest 10 records should have been dropped")
	assert.Equal(t, Cap+9, loaded[len(loaded)-1].JobID)
}
