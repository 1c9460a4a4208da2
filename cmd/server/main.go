package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/database"
	"github.com/codequesthq/codequest-backend/internal/handler"
	"github.com/codequesthq/codequest-backend/internal/logger"
	"github.com/codequesthq/codequest-backend/internal/repository"
	"github.com/codequesthq/codequest-backend/internal/router"
	"github.com/codequesthq/codequest-backend/internal/service"
	"github.com/codequesthq/codequest-backend/internal/validator"
	"github.com/codequesthq/codequest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Code-Quest Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	clk := clock.System{}

	// ─── Initialize Repositories ───────────────────────────────────────
	competitionRepo := repository.NewCompetitionRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	disqualificationRepo := repository.NewDisqualificationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, studentRepo, teacherRepo)
	competitionService := service.NewCompetitionService(competitionRepo, participantRepo, resultRepo, rdb, clk, log)
	joinService := service.NewJoinService(competitionRepo, participantRepo, studentRepo, clk, log)
	submissionService := service.NewSubmissionService(competitionRepo, participantRepo, submissionRepo, resultRepo, clk, log)
	resultService := service.NewResultService(competitionRepo, participantRepo, resultRepo, competitionService, service.ScoreByWeight, clk, log)
	disqualifyService := service.NewDisqualifyService(competitionRepo, participantRepo, disqualificationRepo, clk, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentRepo, teacherRepo),
		Competition:   handler.NewCompetitionHandler(competitionService, resultService),
		StudentPortal: handler.NewStudentPortalHandler(competitionService, joinService, submissionService, resultService),
		Grading:       handler.NewGradingHandler(competitionService, resultService, disqualifyService),
		WS:            handler.NewWSHandler(rdb, joinService, log, cfg.AllowedOrigins),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all live competitions into Redis BEFORE accepting traffic.
	if err := competitionService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Run Server + Status Worker ────────────────────────────────────
	statusWorker := worker.NewStatusWorker(competitionRepo, rdb, clk, cfg.StatusSweepInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		statusWorker.Start(gctx)
		return nil
	})

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")
	case <-gctx.Done():
		log.Error().Msg("Component failed, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	cancel()
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Shutdown with error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
