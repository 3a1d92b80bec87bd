package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-sessions/config"
	"github.com/Dosada05/tournament-sessions/db"
	"github.com/Dosada05/tournament-sessions/handlers"
	"github.com/Dosada05/tournament-sessions/jobs"
	"github.com/Dosada05/tournament-sessions/live"
	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/repositories"
	api "github.com/Dosada05/tournament-sessions/routes"
	"github.com/Dosada05/tournament-sessions/services"
	"github.com/Dosada05/tournament-sessions/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txManager := repositories.NewSQLTransactionManager(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	campusRepo := repositories.NewPostgresCampusRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	scopeGuard := services.NewCampusScopeGuard(services.NewSlogAuditRecorder(logger))
	generationService := services.NewGenerationService(
		txManager,
		tournamentRepo,
		sessionRepo,
		campusRepo,
		scopeGuard,
		logger,
	)
	generationService.SetGeneratedListener(wsHub.BroadcastGenerated)

	// Экспорт расписаний в Cloudflare R2, если хранилище настроено
	if cfg.ExportEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		generationService.SetExporter(services.NewScheduleExporter(uploader, logger))
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("schedule export disabled: R2 storage is not configured")
	}

	// Исполнители фоновых генераций. Поток внутри процесса есть всегда;
	// очередь в Redis подключается при наличии REDIS_URL.
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.GenerationsPerMinute)), cfg.GenerationsPerMinute)
	statusListener := func(job *models.GenerationJob) {
		wsHub.BroadcastJobStatus(job.TournamentID, job)
	}

	memoryStore := jobs.NewMemoryJobStore()
	threadExecutor := jobs.NewThreadExecutor(generationService, memoryStore, limiter, logger)
	threadExecutor.SetStatusListener(statusListener)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	jobStores := []jobs.JobStore{memoryStore}
	var selector *jobs.Selector
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		redisStore := jobs.NewRedisJobStore(rdb)
		brokerExecutor := jobs.NewRedisExecutor(rdb, redisStore, logger)
		worker := jobs.NewWorker(rdb, redisStore, generationService, limiter, logger)
		worker.SetStatusListener(statusListener)
		go worker.Run(workerCtx)

		selector = jobs.NewSelector(rdb, brokerExecutor, threadExecutor, logger)
		jobStores = []jobs.JobStore{redisStore, memoryStore}
		logger.Info("Redis job queue initialized")
	} else {
		selector = jobs.NewSelector(nil, nil, threadExecutor, logger)
		logger.Info("running without message broker, background jobs stay in-process")
	}
	generationService.SetExecutorSelector(selector, jobStores...)

	// Периодическая чистка завершённых задач из памяти процесса
	janitor := jobs.NewJanitor(memoryStore, logger)
	if err := janitor.Start(); err != nil {
		logger.Error("failed to start job janitor", slog.Any("error", err))
		os.Exit(1)
	}
	defer janitor.Stop()
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	sessionHandler := handlers.NewSessionHandler(generationService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey, sessionHandler, webSocketHandler)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopWorker()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
