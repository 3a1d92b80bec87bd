package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJobStorePutGet(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &models.GenerationJob{
		TaskID:       "task-1",
		TournamentID: 42,
		Status:       models.JobStatusPending,
		Backend:      models.BackendThread,
	}
	require.NoError(t, store.Put(ctx, job))

	got, err := store.Get(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.TournamentID)
	assert.Equal(t, models.JobStatusPending, got.Status)

	// Хранилище отдаёт копию: мутация результата не влияет на запись.
	got.Status = models.JobStatusDone
	again, err := store.Get(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, again.Status)
}

func TestMemoryJobStoreGetUnknown(t *testing.T) {
	store := NewMemoryJobStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryJobStoreUpdate(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.GenerationJob{TaskID: "task-1", Status: models.JobStatusPending}))

	updated, err := store.Update(ctx, "task-1", func(job *models.GenerationJob) {
		job.Status = models.JobStatusRunning
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, updated.Status)
	assert.False(t, updated.UpdatedAt.IsZero())

	_, err = store.Update(ctx, "missing", func(job *models.GenerationJob) {})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryJobStorePruneFinished(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Put(ctx, &models.GenerationJob{TaskID: "done-old", Status: models.JobStatusDone, UpdatedAt: old}))
	require.NoError(t, store.Put(ctx, &models.GenerationJob{TaskID: "error-old", Status: models.JobStatusError, UpdatedAt: old}))
	require.NoError(t, store.Put(ctx, &models.GenerationJob{TaskID: "running-old", Status: models.JobStatusRunning, UpdatedAt: old}))
	require.NoError(t, store.Put(ctx, &models.GenerationJob{TaskID: "done-fresh", Status: models.JobStatusDone, UpdatedAt: time.Now()}))

	pruned := store.PruneFinished(24 * time.Hour)
	assert.Equal(t, 2, pruned)

	// Незавершённые и свежие задачи остаются.
	_, err := store.Get(ctx, "running-old")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "done-fresh")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "done-old")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
