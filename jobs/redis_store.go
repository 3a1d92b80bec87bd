package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/redis/go-redis/v9"
)

const jobKeyPrefix = "generation:job:"

// jobTTL — срок хранения записи о задаче в Redis; дольше результат
// генерации никому не нужен, его источник истины — сами сессии в БД.
const jobTTL = 24 * time.Hour

// RedisJobStore хранит задачи как JSON-значения в Redis с TTL.
// Задачу мутирует только исполняющий её воркер, поэтому get-modify-set в
// Update не требует дополнительной блокировки.
type RedisJobStore struct {
	rdb *redis.Client
}

func NewRedisJobStore(rdb *redis.Client) *RedisJobStore {
	return &RedisJobStore{rdb: rdb}
}

func jobKey(taskID string) string {
	return jobKeyPrefix + taskID
}

func (s *RedisJobStore) Put(ctx context.Context, job *models.GenerationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal generation job %s: %w", job.TaskID, err)
	}
	if err := s.rdb.Set(ctx, jobKey(job.TaskID), payload, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store generation job %s: %w", job.TaskID, err)
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, taskID string) (*models.GenerationJob, error) {
	payload, err := s.rdb.Get(ctx, jobKey(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load generation job %s: %w", taskID, err)
	}

	var job models.GenerationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation job %s: %w", taskID, err)
	}
	return &job, nil
}

func (s *RedisJobStore) Update(ctx context.Context, taskID string, fn func(job *models.GenerationJob)) (*models.GenerationJob, error) {
	job, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	fn(job)
	job.UpdatedAt = time.Now()

	if err := s.Put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
