package jobs

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor периодически чистит in-process реестр задач: Redis-записи
// истекают сами по TTL, а карту в памяти надо подметать вручную.
type Janitor struct {
	cron   *cron.Cron
	store  *MemoryJobStore
	maxAge time.Duration
	logger *slog.Logger
}

func NewJanitor(store *MemoryJobStore, logger *slog.Logger) *Janitor {
	return &Janitor{
		cron:   cron.New(),
		store:  store,
		maxAge: jobTTL,
		logger: logger,
	}
}

func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc("@hourly", func() {
		if pruned := j.store.PruneFinished(j.maxAge); pruned > 0 {
			j.logger.Info("pruned finished generation jobs", slog.Int("count", pruned))
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}
