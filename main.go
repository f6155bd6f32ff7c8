package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"officescheduler/config"
	"officescheduler/cron"
	"officescheduler/database"
	ruleRepo "officescheduler/database/repository/rule"
	shiftRepo "officescheduler/database/repository/shift"
	staffRepo "officescheduler/database/repository/staff"
	"officescheduler/handlers"
	"officescheduler/middleware"
	"officescheduler/routes"
	"officescheduler/services/directory"
	"officescheduler/services/notion"
	"officescheduler/services/schedule"
	"officescheduler/services/session"
	"officescheduler/services/storage"
	"officescheduler/services/submission"
	"officescheduler/utils"
)

type repositories struct {
	rules  ruleRepo.RuleRepository
	staff  staffRepo.StaffRepository
	shifts shiftRepo.ShiftRepository
	checks map[string]utils.Checker
	close  func(context.Context)
}

func notionRepositories(cfg *config.Config, logger *zap.Logger) *repositories {
	client := notion.NewClient(notion.Options{
		Token:      cfg.NotionToken,
		Version:    cfg.NotionVersion,
		BaseURL:    cfg.NotionBaseURL,
		RatePerSec: cfg.NotionRatePerSec,
		Logger:     logger.Named("notion"),
	})
	return &repositories{
		rules:  ruleRepo.NewNotionRuleRepo(client),
		staff:  staffRepo.NewNotionStaffRepo(client, cfg.NotionStaffDBID),
		shifts: shiftRepo.NewNotionShiftRepo(client),
		checks: map[string]utils.Checker{"notion": client.Ping},
		close:  func(context.Context) {},
	}
}

func mongoRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	client, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DatabaseName)

	for _, ensure := range []func(context.Context, *mongo.Database) error{
		ruleRepo.EnsureIndexes,
		staffRepo.EnsureIndexes,
		shiftRepo.EnsureIndexes,
	} {
		if err := ensure(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return &repositories{
		rules:  ruleRepo.NewMongoRuleRepo(db),
		staff:  staffRepo.NewMongoStaffRepo(db),
		shifts: shiftRepo.NewMongoShiftRepo(db),
		checks: map[string]utils.Checker{"mongo": database.Ping(client)},
		close: func(ctx context.Context) {
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.GetLogger().Fatal("main: failed to load config", zap.Error(err))
	}
	utils.InitializeLogger(cfg.IsProduction(), cfg.LogLevel)
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// repositories.
	var repos *repositories
	switch cfg.StoreBackend {
	case config.BackendMongo:
		repos, err = mongoRepositories(startCtx, cfg)
		if err != nil {
			logger.Fatal("main: failed to initialize MongoDB backend", zap.Error(err))
		}
	default:
		if cfg.NotionToken == "" {
			logger.Warn("main: NOTION_TOKEN is empty; every remote call will fail")
		}
		repos = notionRepositories(cfg, logger)
	}

	// session store.
	var store session.Store
	var memoryStore *session.MemoryStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb, err := utils.NewSessionCache(cfg)
		if err != nil {
			logger.Fatal("main: failed to initialize session cache", zap.Error(err))
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
		repos.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		memoryStore = session.NewMemoryStore()
		store = memoryStore
	}

	// summary uploads.
	var summaries storage.SummaryStorage
	if cfg.CloudinaryURL != "" {
		svc, err := storage.NewStorageService(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage service", zap.Error(err))
		}
		summaries = svc
	}

	// services.
	teams := cfg.TeamDirectory()
	sessionService := &session.DefaultScheduleSessionService{
		Store:     store,
		Directory: teams,
		Rules: &directory.DefaultConfigFetcher{
			Teams:   teams,
			Repo:    repos.rules,
			Timeout: cfg.RequestTimeout,
			Logger:  logger.Named("config"),
		},
		Staff: &directory.DefaultStaffDirectory{
			Repo:    repos.staff,
			Timeout: cfg.RequestTimeout,
			Logger:  logger.Named("staff"),
		},
		Gateway: &submission.DefaultGateway{
			Teams:   teams,
			Repo:    repos.shifts,
			Mode:    cfg.SubmitMode,
			Timeout: cfg.SubmitTimeout,
			Logger:  logger.Named("submission"),
		},
		Storage: summaries,
		Grid:    schedule.DefaultGrid(),
		Logger:  logger.Named("session"),
	}

	// housekeeping.
	monitor := utils.NewHealthMonitor(5*time.Second, repos.checks)
	monitor.Refresh(startCtx)
	limiter := middleware.NewRateLimiter(cfg.MaxRequestsPerMin)

	worker := cron.NewWorker(logger)
	jobs := []cron.Job{
		cron.HealthJob(monitor, "@every 1m", logger),
		cron.LimiterSweepJob(limiter, 15*time.Minute, "@every 10m"),
	}
	if memoryStore != nil {
		jobs = append(jobs, cron.SessionSweepJob(memoryStore, cfg.SessionTTL, "@every 10m", logger))
	}
	for _, job := range jobs {
		if err := worker.Add(job); err != nil {
			logger.Fatal("main: failed to schedule job", zap.String("job", job.Name), zap.Error(err))
		}
	}
	worker.Start()

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(limiter.Middleware())

	scheduleHandler := handlers.NewScheduleHandler(sessionService, logger)
	healthHandler := handlers.NewHealthHandler(monitor)
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(scheduleHandler, healthHandler))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.StoreBackend),
		zap.String("sessions", cfg.SessionStore),
		zap.String("submitMode", cfg.SubmitMode),
		zap.Strings("teams", teams.Names()),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Stop(ctx)
	repos.close(ctx)

	logger.Info("main: server stopped gracefully")
}
