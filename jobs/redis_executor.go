package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	generationQueueKey      = "generation:queue"
	generationProcessingKey = "generation:processing"
)

// RedisExecutor ставит задачи в очередь-список Redis. Гарантии доставки
// реализованы паттерном reliable queue: воркер атомарно переносит задачу в
// processing-список (BLMOVE) и подтверждает её (LREM) только после того, как
// статус финальный, а транзакция генерации закоммичена. Задачи, оставшиеся
// в processing после падения воркера, возвращаются в очередь при старте —
// доставка как минимум один раз.
type RedisExecutor struct {
	rdb    *redis.Client
	store  JobStore
	logger *slog.Logger
}

func NewRedisExecutor(rdb *redis.Client, store JobStore, logger *slog.Logger) *RedisExecutor {
	return &RedisExecutor{
		rdb:    rdb,
		store:  store,
		logger: logger,
	}
}

func (e *RedisExecutor) Backend() string {
	return models.BackendBroker
}

func (e *RedisExecutor) Dispatch(ctx context.Context, task GenerationTask) error {
	now := time.Now()
	job := &models.GenerationJob{
		TaskID:       task.TaskID,
		TournamentID: task.TournamentID,
		Status:       models.JobStatusPending,
		Backend:      models.BackendBroker,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.Put(ctx, job); err != nil {
		return err
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal generation task %s: %w", task.TaskID, err)
	}
	if err := e.rdb.LPush(ctx, generationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue generation task %s: %w", task.TaskID, err)
	}
	return nil
}

// Worker снимает задачи генерации с очереди Redis и исполняет их через
// Runner. Лимитер ограничивает число запусков генерации в минуту: лишние
// задачи ждут в очереди, а не отклоняются.
type Worker struct {
	rdb      *redis.Client
	store    JobStore
	runner   Runner
	limiter  *rate.Limiter
	logger   *slog.Logger
	listener StatusListener
}

func NewWorker(rdb *redis.Client, store JobStore, runner Runner, limiter *rate.Limiter, logger *slog.Logger) *Worker {
	return &Worker{
		rdb:     rdb,
		store:   store,
		runner:  runner,
		limiter: limiter,
		logger:  logger,
	}
}

func (w *Worker) SetStatusListener(fn StatusListener) {
	w.listener = fn
}

// Run блокируется до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	w.requeueOrphans(ctx)
	w.logger.Info("generation worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("generation worker stopped")
			return
		default:
		}

		payload, err := w.rdb.BLMove(ctx, generationQueueKey, generationProcessingKey, "RIGHT", "LEFT", 5*time.Second).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Error("failed to pop generation task", slog.Any("error", err))
			time.Sleep(time.Second)
			continue
		}

		w.process(ctx, payload)
	}
}

func (w *Worker) process(ctx context.Context, payload string) {
	// Подтверждаем задачу только после записи финального статуса.
	defer func() {
		if err := w.rdb.LRem(context.Background(), generationProcessingKey, 1, payload).Err(); err != nil {
			w.logger.Error("failed to ack generation task", slog.Any("error", err))
		}
	}()

	var task GenerationTask
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		w.logger.Error("dropping malformed generation task", slog.Any("error", err))
		return
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			w.fail(task.TaskID, err.Error())
			return
		}
	}

	queueWait := time.Since(task.EnqueuedAt).Milliseconds()
	w.update(task.TaskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusRunning
		job.QueueWaitMS = &queueWait
	})

	// Сама генерация не должна обрываться остановкой воркера посреди
	// транзакции; у неё нет таймаута со стороны вызывающего.
	result, err := w.runner.RunGeneration(context.Background(), task)
	if err != nil {
		w.logger.Error("queued generation failed",
			slog.String("task_id", task.TaskID),
			slog.Int("tournament_id", task.TournamentID),
			slog.Any("error", err))
		w.fail(task.TaskID, err.Error())
		return
	}

	w.update(task.TaskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusDone
		job.SessionsCount = result.SessionsCount
		job.Message = result.Message
		job.GenerationMS = &result.GenerationMS
		job.DBWriteMS = &result.DBWriteMS
	})
}

// requeueOrphans возвращает в очередь задачи, оставшиеся в processing-списке
// после некорректного завершения предыдущего воркера.
func (w *Worker) requeueOrphans(ctx context.Context) {
	payloads, err := w.rdb.LRange(ctx, generationProcessingKey, 0, -1).Result()
	if err != nil {
		w.logger.Error("failed to inspect processing list", slog.Any("error", err))
		return
	}
	if len(payloads) == 0 {
		return
	}

	w.logger.Warn("requeueing orphaned generation tasks", slog.Int("count", len(payloads)))
	for _, payload := range payloads {
		if err := w.rdb.LPush(ctx, generationQueueKey, payload).Err(); err != nil {
			w.logger.Error("failed to requeue orphaned task", slog.Any("error", err))
			return
		}
		if err := w.rdb.LRem(ctx, generationProcessingKey, 1, payload).Err(); err != nil {
			w.logger.Error("failed to remove orphaned task from processing", slog.Any("error", err))
		}
	}
}

func (w *Worker) fail(taskID, message string) {
	w.update(taskID, func(job *models.GenerationJob) {
		job.Status = models.JobStatusError
		job.Message = message
	})
}

func (w *Worker) update(taskID string, fn func(job *models.GenerationJob)) {
	job, err := w.store.Update(context.Background(), taskID, fn)
	if err != nil {
		w.logger.Error("failed to update generation job", slog.String("task_id", taskID), slog.Any("error", err))
		return
	}
	if w.listener != nil {
		w.listener(job)
	}
}
