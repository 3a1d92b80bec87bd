package models

import "time"

// JobStatus — статус фоновой задачи генерации.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusDone     JobStatus = "done"
	JobStatusError    JobStatus = "error"
	JobStatusRetrying JobStatus = "retrying"
)

// Бэкенды выполнения фоновых задач.
const (
	BackendBroker = "broker"
	BackendThread = "thread"
)

// GenerationJob — запись о задаче генерации сессий. Создаётся при
// диспетчеризации, изменяется только воркером, для опроса доступна
// только на чтение. Не является частью постоянного состояния турнира.
type GenerationJob struct {
	TaskID       string    `json:"task_id"`
	TournamentID int       `json:"tournament_id"`
	Status       JobStatus `json:"status"`
	Backend      string    `json:"backend"`

	SessionsCount int    `json:"sessions_count,omitempty"`
	Message       string `json:"message,omitempty"`

	// Метрики времени, если бэкенд их сообщил.
	GenerationMS *int64 `json:"generation_duration_ms,omitempty"`
	DBWriteMS    *int64 `json:"db_write_time_ms,omitempty"`
	QueueWaitMS  *int64 `json:"queue_wait_time_ms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished сообщает, достигла ли задача терминального статуса.
func (j *GenerationJob) Finished() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}
