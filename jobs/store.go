package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
)

var ErrJobNotFound = errors.New("generation job not found")

// JobStore хранит записи о задачах генерации. Реализация на мьютексе
// обслуживает in-process режим, реализация на Redis — брокерный режим;
// диспетчер зависит только от интерфейса.
type JobStore interface {
	Put(ctx context.Context, job *models.GenerationJob) error
	Get(ctx context.Context, taskID string) (*models.GenerationJob, error)
	Update(ctx context.Context, taskID string, fn func(job *models.GenerationJob)) (*models.GenerationJob, error)
}

// MemoryJobStore — реестр задач в памяти процесса под RW-мьютексом.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.GenerationJob
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*models.GenerationJob)}
}

func (s *MemoryJobStore) Put(ctx context.Context, job *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.TaskID] = &copied
	return nil
}

func (s *MemoryJobStore) Get(ctx context.Context, taskID string) (*models.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[taskID]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryJobStore) Update(ctx context.Context, taskID string, fn func(job *models.GenerationJob)) (*models.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[taskID]
	if !ok {
		return nil, ErrJobNotFound
	}
	fn(job)
	job.UpdatedAt = time.Now()
	copied := *job
	return &copied, nil
}

// PruneFinished удаляет завершённые задачи старше maxAge и возвращает число
// удалённых записей. Задачи не являются постоянным состоянием турнира,
// поэтому реестр периодически чистится.
func (s *MemoryJobStore) PruneFinished(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for taskID, job := range s.jobs {
		if job.Finished() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, taskID)
			pruned++
		}
	}
	return pruned
}
