package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/config"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/handlers"
	"github.com/gleanhq/glean-engine/pkg/logging"
	"github.com/gleanhq/glean-engine/pkg/mcp"
	"github.com/gleanhq/glean-engine/pkg/mcp/tools"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("analyzer", cfg.Analyzer.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.MigrateURL(cfg.Database.URL(), cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	db, err := database.NewConnection(ctx, &database.Config{URL: cfg.Database.URL()})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	taxonomy, err := config.LoadTaxonomy(cfg.Scoring.TaxonomyPath)
	if err != nil {
		logger.Fatal("Failed to load taxonomy", zap.Error(err))
	}

	toolRepo := repositories.NewToolRepository(db.Pool)
	claimRepo := repositories.NewClaimRepository(db.Pool)
	changelogRepo := repositories.NewChangelogRepository(db.Pool)

	scorer := services.NewRelevanceScorer(cfg.Scoring, taxonomy)
	curationService := services.NewCurationService(&services.CurationServiceDeps{
		DB:       db,
		Scorer:   scorer,
		Curation: cfg.Curation,
		Logger:   logger,
	})
	reviewService := services.NewReviewService(&services.ReviewServiceDeps{
		DB:       db,
		QueueCap: cfg.Curation.MaxReviewQueue,
		Logger:   logger,
	})
	statsService := services.NewStatsService(&services.StatsServiceDeps{DB: db, Logger: logger})
	reportService := services.NewReportService(&services.ReportServiceDeps{DB: db, Logger: logger})

	authMiddleware := auth.NewMiddleware(cfg.Auth, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewToolHandler(curationService, toolRepo, claimRepo, changelogRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCurationHandler(curationService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewStatsHandler(statsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewReportHandler(reportService, logger).RegisterRoutes(mux, authMiddleware)

	mcpServer := mcp.NewServer("glean-engine", Version, logger)
	tools.RegisterCurationTools(mcpServer.MCP(), &tools.CurationToolDeps{
		ReviewService: reviewService,
		StatsService:  statsService,
		ToolRepo:      toolRepo,
		ClaimRepo:     claimRepo,
		Logger:        logger,
	})
	streamable := mcpServer.NewStreamableHTTPServer()
	mux.Handle("/mcp", authMiddleware.RequireAuth(streamable.ServeHTTP))

	srv := &http.Server{
		Addr:         cfg.BindAddr + ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting glean-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}
}
