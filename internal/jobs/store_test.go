package jobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartographix/internal/apperr"
)

func newTestStore(t *testing.T, opts StoreOptions) *Store {
	t.Helper()
	opts.Logger = zerolog.Nop()
	return NewStore(opts)
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t, StoreOptions{})

	job, err := store.Create(CreateParams{City: "Paris", Country: "France", Theme: "midnight", Distance: 10000, Format: "instagram"})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.NotContains(t, job.ID, "-")
	assert.Equal(t, StatusQueued, job.Status)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, "Paris", got.City)

	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestStoreCapacityCeiling(t *testing.T) {
	store := newTestStore(t, StoreOptions{MaxJobs: 2})

	_, err := store.Create(CreateParams{City: "A"})
	require.NoError(t, err)
	_, err = store.Create(CreateParams{City: "B"})
	require.NoError(t, err)

	_, err = store.Create(CreateParams{City: "C"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAtCapacity))
	assert.Equal(t, 2, store.Len())
}

func TestStoreCreateEvictsBeforeRefusing(t *testing.T) {
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, StoreOptions{MaxJobs: 1, Now: func() time.Time { return clock }})

	old, err := store.Create(CreateParams{City: "Old"})
	require.NoError(t, err)
	store.MarkProcessing(old.ID)
	require.True(t, store.Complete(old.ID, ""))

	// Past the terminal retention window the slot is reclaimed on demand.
	clock = clock.Add(DefaultRetainTerminal + time.Minute)
	fresh, err := store.Create(CreateParams{City: "Fresh"})
	require.NoError(t, err)

	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestStoreTerminalTransitionsAreFinal(t *testing.T) {
	store := newTestStore(t, StoreOptions{})
	job, err := store.Create(CreateParams{City: "Paris"})
	require.NoError(t, err)

	store.MarkProcessing(job.ID)
	store.SetStage(job.ID, StageRendering)
	require.True(t, store.Fail(job.ID, "Generation timed out after 300 seconds"))

	// A render finishing after the timeout must not resurrect the job.
	assert.False(t, store.Complete(job.ID, "/tmp/poster.png"))
	assert.False(t, store.Fail(job.ID, "other"))

	store.SetStage(job.ID, StageSendingEmail)
	got, _ := store.Get(job.ID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, StageRendering, got.Stage)
	assert.Empty(t, got.ResultPath)
	assert.Equal(t, "Generation timed out after 300 seconds", got.Error)
}

func TestStoreCleanupWindows(t *testing.T) {
	clock := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var removedPaths []string
	store := newTestStore(t, StoreOptions{
		Now:            func() time.Time { return clock },
		RemoveArtifact: func(path string) { removedPaths = append(removedPaths, path) },
	})

	done, err := store.Create(CreateParams{City: "Done"})
	require.NoError(t, err)
	store.MarkProcessing(done.ID)
	require.True(t, store.Complete(done.ID, "/out/done.png"))

	stuck, err := store.Create(CreateParams{City: "Stuck"})
	require.NoError(t, err)
	store.MarkProcessing(stuck.ID)

	// One hour in: both inside their windows.
	clock = clock.Add(time.Hour)
	store.Cleanup()
	assert.Equal(t, 2, store.Len())

	// Three hours in: terminal job evicted with its artifact, stuck job kept.
	clock = clock.Add(2 * time.Hour)
	store.Cleanup()
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{"/out/done.png"}, removedPaths)
	_, ok := store.Get(stuck.ID)
	assert.True(t, ok)

	// Past the absolute ceiling the stuck job goes too.
	clock = clock.Add(4 * time.Hour)
	store.Cleanup()
	assert.Equal(t, 0, store.Len())
}

func TestStoreShare(t *testing.T) {
	store := newTestStore(t, StoreOptions{})
	job, err := store.Create(CreateParams{City: "Paris"})
	require.NoError(t, err)

	_, ok := store.Share(job.ID, false)
	assert.False(t, ok, "queued job must not be shareable")

	store.MarkProcessing(job.ID)
	require.True(t, store.Complete(job.ID, "/out/paris.png"))

	token, ok := store.Share(job.ID, false)
	require.True(t, ok)
	assert.Len(t, token, 12)

	again, ok := store.Share(job.ID, true)
	require.True(t, ok)
	assert.Equal(t, token, again, "share must be idempotent")

	shared, ok := store.GetByShare(token)
	require.True(t, ok)
	assert.Equal(t, job.ID, shared.ID)
	assert.True(t, shared.GalleryOptIn)

	_, ok = store.GetByShare("bogus")
	assert.False(t, ok)
	_, ok = store.Share("missing", false)
	assert.False(t, ok)
}

func TestStoreShareIndexEvictedWithJob(t *testing.T) {
	clock := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := newTestStore(t, StoreOptions{Now: func() time.Time { return clock }})

	job, err := store.Create(CreateParams{City: "Paris"})
	require.NoError(t, err)
	store.MarkProcessing(job.ID)
	require.True(t, store.Complete(job.ID, "/out/paris.png"))
	token, ok := store.Share(job.ID, true)
	require.True(t, ok)

	clock = clock.Add(DefaultRetainTerminal + time.Minute)
	store.Cleanup()

	_, ok = store.GetByShare(token)
	assert.False(t, ok)
}

func TestStoreListGallery(t *testing.T) {
	clock := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := newTestStore(t, StoreOptions{Now: func() time.Time { return clock }})

	for i := 0; i < 5; i++ {
		job, err := store.Create(CreateParams{City: fmt.Sprintf("City%d", i)})
		require.NoError(t, err)
		store.MarkProcessing(job.ID)
		require.True(t, store.Complete(job.ID, ""))
		_, ok := store.Share(job.ID, i%2 == 0) // 0, 2, 4 opt in
		require.True(t, ok)
		clock = clock.Add(time.Minute)
	}
	// Completed but never shared: invisible to the gallery.
	hidden, err := store.Create(CreateParams{City: "Hidden"})
	require.NoError(t, err)
	store.MarkProcessing(hidden.ID)
	require.True(t, store.Complete(hidden.ID, ""))

	page, total := store.ListGallery(0, 0)
	require.Equal(t, 3, total)
	require.Len(t, page, 3)
	assert.Equal(t, "City4", page[0].City, "newest first")
	assert.Equal(t, "City2", page[1].City)
	assert.Equal(t, "City0", page[2].City)

	page, total = store.ListGallery(2, 0)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "City4", page[0].City)

	page, total = store.ListGallery(2, 2)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "City0", page[0].City)

	page, _ = store.ListGallery(10, 99)
	assert.Empty(t, page)
}
