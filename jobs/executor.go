package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/redis/go-redis/v9"
)

// GenerationTask — сериализуемое описание одной фоновой генерации.
type GenerationTask struct {
	TaskID       string                   `json:"task_id"`
	TournamentID int                      `json:"tournament_id"`
	Request      models.GenerationRequest `json:"request"`
	EnqueuedAt   time.Time                `json:"enqueued_at"`
}

// Result — итог успешной генерации, попадающий в запись задачи.
type Result struct {
	SessionsCount int
	Message       string
	GenerationMS  int64
	DBWriteMS     int64
}

// Runner выполняет собственно генерацию. Его реализует сервисный слой;
// исполнители отвечают только за доставку задачи и учёт её статуса.
type Runner interface {
	RunGeneration(ctx context.Context, task GenerationTask) (Result, error)
}

// Executor принимает задачу к исполнению. Dispatch возвращается сразу после
// постановки в очередь; результат виден только через JobStore.
type Executor interface {
	Dispatch(ctx context.Context, task GenerationTask) error

	Backend() string
}

// StatusListener уведомляется о каждой смене статуса задачи
// (используется для трансляции статуса по WebSocket).
type StatusListener func(job *models.GenerationJob)

// Selector выбирает исполнителя на каждый вызов: если брокер доступен —
// очередь, иначе деградация до потока внутри процесса. Проба выполняется
// на каждую диспетчеризацию, а не через глобальный флаг.
type Selector struct {
	rdb    *redis.Client
	broker Executor
	thread Executor
	logger *slog.Logger
}

func NewSelector(rdb *redis.Client, broker, thread Executor, logger *slog.Logger) *Selector {
	return &Selector{
		rdb:    rdb,
		broker: broker,
		thread: thread,
		logger: logger,
	}
}

func (s *Selector) Pick(ctx context.Context) Executor {
	if s.rdb == nil || s.broker == nil {
		return s.thread
	}

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.rdb.Ping(probeCtx).Err(); err != nil {
		s.logger.Warn("message broker unreachable, falling back to in-process execution",
			slog.Any("error", err))
		return s.thread
	}
	return s.broker
}
