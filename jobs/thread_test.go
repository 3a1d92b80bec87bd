package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	result Result
	err    error
	calls  int
	mu     sync.Mutex
}

func (r *stubRunner) RunGeneration(ctx context.Context, task GenerationTask) (Result, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.result, r.err
}

func waitForFinished(t *testing.T, store JobStore, taskID string) *models.GenerationJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), taskID)
		require.NoError(t, err)
		if job.Finished() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestThreadExecutorDispatchSuccess(t *testing.T) {
	store := NewMemoryJobStore()
	runner := &stubRunner{result: Result{SessionsCount: 496, Message: "generated", GenerationMS: 12, DBWriteMS: 3}}
	executor := NewThreadExecutor(runner, store, nil, slog.Default())

	var statuses []models.JobStatus
	var mu sync.Mutex
	executor.SetStatusListener(func(job *models.GenerationJob) {
		mu.Lock()
		statuses = append(statuses, job.Status)
		mu.Unlock()
	})

	task := GenerationTask{TaskID: "task-1", TournamentID: 9, EnqueuedAt: time.Now()}
	require.NoError(t, executor.Dispatch(context.Background(), task))

	job := waitForFinished(t, store, "task-1")
	assert.Equal(t, models.JobStatusDone, job.Status)
	assert.Equal(t, 496, job.SessionsCount)
	assert.Equal(t, "generated", job.Message)
	require.NotNil(t, job.GenerationMS)
	assert.EqualValues(t, 12, *job.GenerationMS)
	require.NotNil(t, job.QueueWaitMS)
	assert.Equal(t, models.BackendThread, job.Backend)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, models.JobStatusPending, statuses[0])
	assert.Equal(t, models.JobStatusDone, statuses[len(statuses)-1])
}

func TestThreadExecutorDispatchFailure(t *testing.T) {
	store := NewMemoryJobStore()
	runner := &stubRunner{err: errors.New("not enough players")}
	executor := NewThreadExecutor(runner, store, nil, slog.Default())

	task := GenerationTask{TaskID: "task-2", TournamentID: 9, EnqueuedAt: time.Now()}
	require.NoError(t, executor.Dispatch(context.Background(), task))

	job := waitForFinished(t, store, "task-2")
	assert.Equal(t, models.JobStatusError, job.Status)
	assert.Equal(t, "not enough players", job.Message)
}

func TestThreadExecutorBackendName(t *testing.T) {
	executor := NewThreadExecutor(&stubRunner{}, NewMemoryJobStore(), nil, slog.Default())
	assert.Equal(t, models.BackendThread, executor.Backend())
}

func TestSelectorWithoutBrokerPicksThread(t *testing.T) {
	thread := NewThreadExecutor(&stubRunner{}, NewMemoryJobStore(), nil, slog.Default())
	selector := NewSelector(nil, nil, thread, slog.Default())

	picked := selector.Pick(context.Background())
	assert.Equal(t, models.BackendThread, picked.Backend())
}
