package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/tournament-sessions/generators"
	"github.com/Dosada05/tournament-sessions/jobs"
	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/repositories"
	"github.com/Dosada05/tournament-sessions/schedule"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AsyncPlayerThreshold — граница числа игроков, начиная с которой генерация
// уходит в фоновый воркер вместо выполнения внутри запроса.
const AsyncPlayerThreshold = 128

// defaultCampusID используется, когда запрос не называет кампусы явно:
// турнир играется на своей основной площадке.
const defaultCampusID = 0

// PreviewResult — результат предпросмотра: те же сессии, что дала бы
// генерация, плюс агрегаты по формату. Ничего не сохраняется.
type PreviewResult struct {
	TournamentID             int                        `json:"tournament_id"`
	PlayerCount              int                        `json:"player_count"`
	Sessions                 []*models.GeneratedSession `json:"sessions"`
	TotalMatches             int                        `json:"total_matches"`
	TotalRounds              int                        `json:"total_rounds"`
	EstimatedDurationMinutes int                        `json:"estimated_duration_minutes"`
}

// GenerateResult — результат операции генерации. Для синхронного пути
// заполнены Sessions, для асинхронного — TaskID и Backend.
type GenerateResult struct {
	Success                bool                       `json:"success"`
	Async                  bool                       `json:"async"`
	TournamentID           int                        `json:"tournament_id"`
	PlayerCount            int                        `json:"player_count"`
	Sessions               []*models.GeneratedSession `json:"sessions,omitempty"`
	SessionsGeneratedCount int                        `json:"sessions_generated_count"`
	TaskID                 string                     `json:"task_id,omitempty"`
	Backend                string                     `json:"async_backend,omitempty"`
	Message                string                     `json:"message,omitempty"`
}

// GenerationService — диспетчер генерации сессий: владеет решением
// «синхронно или в фоне», реестром фоновых задач и публичными операциями
// generate/preview/poll/delete.
type GenerationService struct {
	txm            repositories.TransactionManager
	tournamentRepo repositories.TournamentRepository
	sessionRepo    repositories.SessionRepository
	campusRepo     repositories.CampusRepository
	scopeGuard     *CampusScopeGuard
	logger         *slog.Logger

	selector  *jobs.Selector
	jobStores []jobs.JobStore

	exporter    *ScheduleExporter
	onGenerated func(tournamentID, sessionsCount int)

	now func() time.Time
}

func NewGenerationService(
	txm repositories.TransactionManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	campusRepo repositories.CampusRepository,
	scopeGuard *CampusScopeGuard,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		txm:            txm,
		tournamentRepo: tournamentRepo,
		sessionRepo:    sessionRepo,
		campusRepo:     campusRepo,
		scopeGuard:     scopeGuard,
		logger:         logger,
		now:            time.Now,
	}
}

// SetExecutorSelector подключает исполнителей фоновых задач. Вызывается из
// main после сборки исполнителей: они, в свою очередь, ссылаются на этот
// сервис как на jobs.Runner.
func (s *GenerationService) SetExecutorSelector(selector *jobs.Selector, stores ...jobs.JobStore) {
	s.selector = selector
	s.jobStores = stores
}

// SetExporter включает выгрузку CSV-экспорта расписания после успешной
// генерации. Nil отключает экспорт.
func (s *GenerationService) SetExporter(exporter *ScheduleExporter) {
	s.exporter = exporter
}

// SetGeneratedListener подключает уведомление о завершённой генерации
// (трансляция в WebSocket-хаб).
func (s *GenerationService) SetGeneratedListener(fn func(tournamentID, sessionsCount int)) {
	s.onGenerated = fn
}

// Preview запускает генераторы без какой-либо записи в БД.
func (s *GenerationService) Preview(ctx context.Context, tournamentID int, req models.GenerationRequest, caller models.Caller) (*PreviewResult, error) {
	if err := s.scopeGuard.Check(ctx, caller, tournamentID, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	t, playerCount, overrides, err := s.loadGenerationInputs(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if playerCount < generators.MinPlayers(t.Format) {
		return nil, fmt.Errorf("%w: format %s requires at least %d players, got %d",
			ErrNotEnoughPlayers, t.Format, generators.MinPlayers(t.Format), playerCount)
	}

	playerIDs, err := s.tournamentRepo.ListEnrolledPlayerIDs(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	sessions, estimated, _, err := s.buildSessions(ctx, t, req, overrides, playerIDs)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		TournamentID:             tournamentID,
		PlayerCount:              playerCount,
		Sessions:                 sessions,
		TotalMatches:             len(sessions),
		TotalRounds:              countRounds(sessions),
		EstimatedDurationMinutes: estimated,
	}, nil
}

// Generate валидирует запрос и либо генерирует сессии внутри текущего
// запроса, либо отдаёт задачу фоновому исполнителю — в зависимости от
// числа игроков.
func (s *GenerationService) Generate(ctx context.Context, tournamentID int, req models.GenerationRequest, caller models.Caller) (*GenerateResult, error) {
	// Проверка зоны доступа идёт первой, до любой другой валидации.
	if err := s.scopeGuard.Check(ctx, caller, tournamentID, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	t, playerCount, overrides, err := s.loadGenerationInputs(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.validateCanGenerate(t, playerCount); err != nil {
		return nil, err
	}

	if playerCount < AsyncPlayerThreshold {
		playerIDs, err := s.tournamentRepo.ListEnrolledPlayerIDs(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		sessions, _, err := s.generateAndPersist(ctx, t, req, overrides, playerIDs)
		if err != nil {
			return nil, err
		}
		s.afterGenerated(t, sessions)

		return &GenerateResult{
			Success:                true,
			Async:                  false,
			TournamentID:           tournamentID,
			PlayerCount:            playerCount,
			Sessions:               sessions,
			SessionsGeneratedCount: len(sessions),
			Message:                fmt.Sprintf("generated %d sessions", len(sessions)),
		}, nil
	}

	task := jobs.GenerationTask{
		TaskID:       uuid.NewString(),
		TournamentID: tournamentID,
		Request:      req,
		EnqueuedAt:   s.now(),
	}
	executor := s.selector.Pick(ctx)
	if err := executor.Dispatch(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to dispatch generation task: %w", err)
	}

	s.logger.Info("session generation dispatched",
		slog.Int("tournament_id", tournamentID),
		slog.Int("player_count", playerCount),
		slog.String("task_id", task.TaskID),
		slog.String("backend", executor.Backend()),
	)

	return &GenerateResult{
		Success:      true,
		Async:        true,
		TournamentID: tournamentID,
		PlayerCount:  playerCount,
		TaskID:       task.TaskID,
		Backend:      executor.Backend(),
		Message:      fmt.Sprintf("session generation for %d players queued on %s backend", playerCount, executor.Backend()),
	}, nil
}

// PollStatus возвращает текущий статус задачи. Операция без побочных
// эффектов, может вызываться сколько угодно раз. Недоступное хранилище
// (например, упавший Redis) не прерывает опрос: задача, ушедшая в
// thread-fallback, остаётся доступной через реестр в памяти.
func (s *GenerationService) PollStatus(ctx context.Context, tournamentID int, taskID string) (*models.GenerationJob, error) {
	var storeErr error
	for _, store := range s.jobStores {
		job, err := store.Get(ctx, taskID)
		if err != nil {
			if !errors.Is(err, jobs.ErrJobNotFound) {
				s.logger.Warn("job store unavailable, trying next",
					slog.String("task_id", taskID),
					slog.String("error", err.Error()),
				)
				if storeErr == nil {
					storeErr = err
				}
			}
			continue
		}
		if job.TournamentID != tournamentID {
			return nil, ErrTaskNotFound
		}
		return job, nil
	}
	if storeErr != nil {
		return nil, storeErr
	}
	return nil, ErrTaskNotFound
}

// DeleteGenerated удаляет автосгенерированные сессии турнира и снимает флаг
// sessions_generated. Отсутствие сессий — успех с нулевым счётчиком.
func (s *GenerationService) DeleteGenerated(ctx context.Context, tournamentID int) (int64, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return 0, mapTournamentError(err)
	}

	var deleted int64
	err := s.txm.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		d, err := s.sessionRepo.DeleteAutoGenerated(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		deleted = d
		return s.tournamentRepo.SetSessionsGenerated(ctx, exec, tournamentID, false, nil)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("generated sessions deleted",
		slog.Int("tournament_id", tournamentID),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// RunGeneration реализует jobs.Runner: исполняет фоновую задачу в своей
// транзакции, независимой от запроса, который её поставил. Условия
// генерации перепроверяются — между постановкой и исполнением они могли
// измениться.
func (s *GenerationService) RunGeneration(ctx context.Context, task jobs.GenerationTask) (jobs.Result, error) {
	t, playerCount, overrides, err := s.loadGenerationInputs(ctx, task.TournamentID)
	if err != nil {
		return jobs.Result{}, err
	}
	if err := s.validateCanGenerate(t, playerCount); err != nil {
		return jobs.Result{}, err
	}

	playerIDs, err := s.tournamentRepo.ListEnrolledPlayerIDs(ctx, task.TournamentID)
	if err != nil {
		return jobs.Result{}, err
	}

	sessions, metrics, err := s.generateAndPersist(ctx, t, task.Request, overrides, playerIDs)
	if err != nil {
		return jobs.Result{}, err
	}
	s.afterGenerated(t, sessions)

	return jobs.Result{
		SessionsCount: len(sessions),
		Message:       fmt.Sprintf("generated %d sessions", len(sessions)),
		GenerationMS:  metrics.generationMS,
		DBWriteMS:     metrics.dbWriteMS,
	}, nil
}

type generationMetrics struct {
	generationMS int64
	dbWriteMS    int64
}

// loadGenerationInputs параллельно загружает турнир, число игроков и
// сохранённые переопределения кампусов.
func (s *GenerationService) loadGenerationInputs(ctx context.Context, tournamentID int) (*models.Tournament, int, []*models.CampusScheduleOverride, error) {
	var (
		t           *models.Tournament
		playerCount int
		overrides   []*models.CampusScheduleOverride
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			return mapTournamentError(err)
		}
		t = loaded
		return nil
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.CountEnrolledPlayers(gCtx, tournamentID)
		if err != nil {
			return err
		}
		playerCount = count
		return nil
	})
	g.Go(func() error {
		loaded, err := s.campusRepo.ListScheduleOverrides(gCtx, tournamentID)
		if err != nil {
			return err
		}
		overrides = loaded
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, nil, err
	}
	return t, playerCount, overrides, nil
}

func (s *GenerationService) validateCanGenerate(t *models.Tournament, playerCount int) error {
	if t.Status != models.StatusEnrollmentClosed {
		return ErrEnrollmentNotClosed
	}
	if t.SessionsGenerated {
		return ErrSessionsAlreadyGenerated
	}
	min := generators.MinPlayers(t.Format)
	if playerCount < min {
		return fmt.Errorf("%w: format %s requires at least %d players, got %d",
			ErrNotEnoughPlayers, t.Format, min, playerCount)
	}
	return nil
}

// buildSessions — чистая часть генерации: расписание + генератор формата.
// Возвращает сессии, оценку длительности турнира в минутах и время
// генерации в миллисекундах.
func (s *GenerationService) buildSessions(ctx context.Context, t *models.Tournament, req models.GenerationRequest, stored []*models.CampusScheduleOverride, playerIDs []int) ([]*models.GeneratedSession, int, int64, error) {
	generator, err := generators.ForFormat(t.Format)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrFormatNotSupported, err)
	}

	sched, start := s.buildSchedule(t, req, stored)

	started := time.Now()
	sessions, err := generator.GenerateSessions(ctx, generators.GenerateSessionsParams{
		Tournament: t,
		PlayerIDs:  playerIDs,
		Schedule:   sched,
	})
	if err != nil {
		if errors.Is(err, generators.ErrSwissNotSupported) {
			return nil, 0, 0, fmt.Errorf("%w: %v", ErrFormatNotSupported, err)
		}
		return nil, 0, 0, fmt.Errorf("session generation failed: %w", err)
	}
	generationMS := time.Since(started).Milliseconds()

	estimated := int(sched.LastEnd().Sub(start) / time.Minute)
	return sessions, estimated, generationMS, nil
}

// buildSchedule собирает планы кампусов. Переопределения из запроса
// накладываются на сохранённые в БД по каждому полю отдельно.
func (s *GenerationService) buildSchedule(t *models.Tournament, req models.GenerationRequest, stored []*models.CampusScheduleOverride) (*schedule.Schedule, time.Time) {
	merged := make(map[int]models.CampusScheduleParams, len(stored)+len(req.CampusScheduleOverrides))
	for _, o := range stored {
		merged[o.CampusID] = o.CampusScheduleParams
	}
	for campusID, params := range req.CampusScheduleOverrides {
		base := merged[campusID]
		if params.MatchDurationMinutes != nil {
			base.MatchDurationMinutes = params.MatchDurationMinutes
		}
		if params.BreakDurationMinutes != nil {
			base.BreakDurationMinutes = params.BreakDurationMinutes
		}
		if params.ParallelFields != nil {
			base.ParallelFields = params.ParallelFields
		}
		merged[campusID] = base
	}

	campusIDs := req.CampusIDs
	if len(campusIDs) == 0 {
		for campusID := range merged {
			campusIDs = append(campusIDs, campusID)
		}
		sort.Ints(campusIDs)
	}
	if len(campusIDs) == 0 {
		campusIDs = []int{defaultCampusID}
	}

	start := t.StartDate
	if now := s.now(); now.After(start) {
		start = now.Add(15 * time.Minute)
	}

	requestParams := schedule.Params{
		MatchDurationMinutes: req.SessionDurationMinutes,
		BreakDurationMinutes: req.BreakMinutes,
		ParallelFields:       req.ParallelFields,
	}

	plans := make([]*schedule.CampusPlan, 0, len(campusIDs))
	for _, campusID := range campusIDs {
		var override *models.CampusScheduleParams
		if params, ok := merged[campusID]; ok {
			override = &params
		}
		plans = append(plans, schedule.NewCampusPlan(campusID, schedule.ResolveParams(override, t, requestParams), start))
	}
	return schedule.New(plans...), start
}

// generateAndPersist пишет сессии и флаг генерации в одной транзакции:
// при любой ошибке в БД не остаётся частичного набора.
func (s *GenerationService) generateAndPersist(ctx context.Context, t *models.Tournament, req models.GenerationRequest, stored []*models.CampusScheduleOverride, playerIDs []int) ([]*models.GeneratedSession, generationMetrics, error) {
	sessions, _, generationMS, err := s.buildSessions(ctx, t, req, stored, playerIDs)
	if err != nil {
		return nil, generationMetrics{}, err
	}

	writeStarted := time.Now()
	err = s.txm.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sessionRepo.BulkCreate(ctx, exec, sessions); err != nil {
			return err
		}
		if len(req.CampusScheduleOverrides) > 0 {
			if err := s.campusRepo.ReplaceScheduleOverrides(ctx, exec, t.ID, requestOverridesToModels(t.ID, req)); err != nil {
				return err
			}
		}
		generatedAt := s.now()
		return s.tournamentRepo.SetSessionsGenerated(ctx, exec, t.ID, true, &generatedAt)
	})
	if err != nil {
		return nil, generationMetrics{}, err
	}

	metrics := generationMetrics{
		generationMS: generationMS,
		dbWriteMS:    time.Since(writeStarted).Milliseconds(),
	}

	s.logger.Info("sessions generated",
		slog.Int("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int("sessions", len(sessions)),
		slog.Int64("generation_ms", metrics.generationMS),
		slog.Int64("db_write_ms", metrics.dbWriteMS),
	)
	return sessions, metrics, nil
}

// ListSessions возвращает сохранённые сессии турнира.
func (s *GenerationService) ListSessions(ctx context.Context, tournamentID int) ([]*models.GeneratedSession, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentError(err)
	}
	return s.sessionRepo.ListByTournament(ctx, tournamentID)
}

func (s *GenerationService) afterGenerated(t *models.Tournament, sessions []*models.GeneratedSession) {
	if s.onGenerated != nil {
		s.onGenerated(t.ID, len(sessions))
	}
	if s.exporter != nil {
		// Экспорт не должен задерживать ни запрос, ни фоновую задачу.
		go func() {
			if err := s.exporter.UploadScheduleCSV(context.Background(), t, sessions); err != nil {
				s.logger.Error("schedule export failed",
					slog.Int("tournament_id", t.ID),
					slog.Any("error", err))
			}
		}()
	}
}

func validateRequest(req models.GenerationRequest) error {
	if req.ParallelFields < 1 {
		return fmt.Errorf("%w: parallel_fields must be at least 1", ErrValidationFailed)
	}
	if req.SessionDurationMinutes < 1 {
		return fmt.Errorf("%w: session_duration_minutes must be at least 1", ErrValidationFailed)
	}
	if req.BreakMinutes < 0 {
		return fmt.Errorf("%w: break_minutes must not be negative", ErrValidationFailed)
	}
	if req.NumberOfRounds != nil && *req.NumberOfRounds < 1 {
		return fmt.Errorf("%w: number_of_rounds must be at least 1", ErrValidationFailed)
	}
	return nil
}

func requestOverridesToModels(tournamentID int, req models.GenerationRequest) []*models.CampusScheduleOverride {
	overrides := make([]*models.CampusScheduleOverride, 0, len(req.CampusScheduleOverrides))
	for campusID, params := range req.CampusScheduleOverrides {
		overrides = append(overrides, &models.CampusScheduleOverride{
			TournamentID:         tournamentID,
			CampusID:             campusID,
			CampusScheduleParams: params,
		})
	}
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].CampusID < overrides[j].CampusID })
	return overrides
}

func mapTournamentError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

func countRounds(sessions []*models.GeneratedSession) int {
	type phaseRound struct {
		phase models.SessionPhase
		round int
	}
	seen := make(map[phaseRound]struct{})
	for _, s := range sessions {
		seen[phaseRound{s.Phase, s.Round}] = struct{}{}
	}
	return len(seen)
}
