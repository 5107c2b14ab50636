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

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/config"
	"github.com/Dosada05/cup-engine/db"
	"github.com/Dosada05/cup-engine/handlers"
	"github.com/Dosada05/cup-engine/ledger"
	"github.com/Dosada05/cup-engine/repositories"
	api "github.com/Dosada05/cup-engine/routes"
	"github.com/Dosada05/cup-engine/services"
	"github.com/Dosada05/cup-engine/simulation"
	"github.com/Dosada05/cup-engine/storage"
	"github.com/Dosada05/cup-engine/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store", cfg.StoreDriver))

	if err := run(cfg, logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	var store repositories.Store
	var clubLedger ledger.ClubLedger
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
				return err
			}
		}
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		store = repositories.NewPostgresStore(dbConn, logger)

		pool, err := ledger.Connect(ctx, cfg.LedgerDSN())
		if err != nil {
			return err
		}
		defer pool.Close()
		clubLedger = ledger.NewPostgresLedger(pool, logger)
	default:
		logger.Warn("using the in-memory store, state is lost on restart")
		store = repositories.NewMemoryStore(nil)
		clubLedger = ledger.NewMemoryLedger()
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	tiebreak, err := services.TiebreakStrategyByName(cfg.TiebreakStrategy)
	if err != nil {
		return err
	}
	resolver := services.NewKnockoutResolver(tiebreak, cfg.AwayGoalsRule)
	controller := services.NewRoundController(
		store,
		simulation.NewReputationSimulator(cfg.SimulationSeed),
		simulation.SyntheticLineups{},
		resolver,
		wsHub,
		cfg.SecondLegGap,
		logger,
	)
	prizes := services.NewPrizeService(store, clubLedger, services.NewPrizeCalculator(), logger)
	calendar := services.Calendar{}
	editions := services.NewEditionService(store)

	var archiver services.EditionArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewEditionArchiver(uploader, logger)
		logger.Info("edition archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	season := services.NewSeasonService(store, editions, archiver, logger,
		services.NewDomesticCupOrchestrator(store, controller, prizes, calendar, logger),
		services.NewContinentalCupOrchestrator(store, controller, prizes, calendar, logger),
	)
	logger.Info("services initialized")

	if cfg.SchedulerInterval > 0 {
		scheduler, err := startScheduler(ctx, season, cfg.SchedulerInterval, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Error("failed to stop scheduler", slog.Any("error", err))
			}
		}()
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Competitions: handlers.NewCompetitionHandler(season, editions),
		Editions:     handlers.NewEditionHandler(season, editions, prizes),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
	}, cfg.JWTSecretKey, cfg.AllowedOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// startScheduler plays every round whose date has passed, once at startup and
// then on each tick.
func startScheduler(ctx context.Context, season *services.SeasonService, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	advance := func() {
		played, err := season.AdvanceDue(ctx, time.Now())
		if err != nil {
			logger.Error("scheduler: advancing due rounds failed", slog.Any("error", err))
			return
		}
		if played > 0 {
			logger.Info("scheduler: played due rounds", slog.Int("rounds", played))
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(advance),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule round driver: %w", err)
	}
	scheduler.Start()
	logger.Info("round scheduler started", slog.Duration("interval", interval))
	return scheduler, nil
}
