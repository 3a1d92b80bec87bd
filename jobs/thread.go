package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"golang.org/x/time/rate"
)

// ThreadExecutor выполняет задачу в отдельной горутине процесса —
// резервный режим на случай недоступности брокера. Статусы пишутся в тот же
// словарь, что и у брокерного исполнителя.
type ThreadExecutor struct {
	runner   Runner
	store    JobStore
	limiter  *rate.Limiter
	logger   *slog.Logger
	listener StatusListener
}

func NewThreadExecutor(runner Runner, store JobStore, limiter *rate.Limiter, logger *slog.Logger) *ThreadExecutor {
	return &ThreadExecutor{
		runner:  runner,
		store:   store,
		limiter: limiter,
		logger:  logger,
	}
}

func (e *ThreadExecutor) SetStatusListener(fn StatusListener) {
	e.listener = fn
}

func (e *ThreadExecutor) Backend() string {
	return models.BackendThread
}

func (e *ThreadExecutor) Dispatch(ctx context.Context, task GenerationTask) error {
	now := time.Now()
	job := &models.GenerationJob{
		TaskID:       task.TaskID,
		TournamentID: task.TournamentID,
		Status:       models.JobStatusPending,
		Backend:      models.BackendThread,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.Put(ctx, job); err != nil {
		return err
	}
	e.notify(job)

	go e.execute(task)
	return nil
}

func (e *ThreadExecutor) execute(task GenerationTask) {
	// Фоновая задача живёт дольше породившего её запроса и не имеет
	// таймаута со стороны вызывающего.
	ctx := context.Background()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.fail(ctx, task.TaskID, err.Error())
			return
		}
	}

	queueWait := time.Since(task.EnqueuedAt).Milliseconds()
	e.update(ctx, task.TaskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusRunning
		job.QueueWaitMS = &queueWait
	})

	result, err := e.runner.RunGeneration(ctx, task)
	if err != nil {
		e.logger.Error("in-process generation failed",
			slog.String("task_id", task.TaskID),
			slog.Int("tournament_id", task.TournamentID),
			slog.Any("error", err))
		e.fail(ctx, task.TaskID, err.Error())
		return
	}

	e.update(ctx, task.TaskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusDone
		job.SessionsCount = result.SessionsCount
		job.Message = result.Message
		job.GenerationMS = &result.GenerationMS
		job.DBWriteMS = &result.DBWriteMS
	})
}

func (e *ThreadExecutor) fail(ctx context.Context, taskID, message string) {
	e.update(ctx, taskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusError
		job.Message = message
	})
}

func (e *ThreadExecutor) update(ctx context.Context, taskID string, fn func(job *models.GenerationJob)) {
	job, err := e.store.Update(ctx, taskID, fn)
	if err != nil {
		e.logger.Error("failed to update generation job", slog.String("task_id", taskID), slog.Any("error", err))
		return
	}
	e.notify(job)
}

func (e *ThreadExecutor) notify(job *models.GenerationJob) {
	if e.listener != nil {
		e.listener(job)
	}
}
