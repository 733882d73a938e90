package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/config"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// app bundles the pieces every command needs: loaded config, a logger, and
// an open connection pool.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}

// setup loads configuration and opens the database. Pass needDB false for
// commands that only read config.
func setup(ctx context.Context, needDB bool) (*app, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath, version)
	} else {
		cfg, err = config.Load(version)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	if needDB {
		a.db, err = database.NewConnection(ctx, &database.Config{URL: cfg.Database.URL()})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}
	return a, nil
}

// curationService builds the curation write path on the app's pool.
func (a *app) curationService() (services.CurationService, error) {
	taxonomy, err := config.LoadTaxonomy(a.cfg.Scoring.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	scorer := services.NewRelevanceScorer(a.cfg.Scoring, taxonomy)
	return services.NewCurationService(&services.CurationServiceDeps{
		DB:       a.db,
		Scorer:   scorer,
		Curation: a.cfg.Curation,
		Logger:   a.logger,
	}), nil
}

func (a *app) reviewService() services.ReviewService {
	return services.NewReviewService(&services.ReviewServiceDeps{
		DB:       a.db,
		QueueCap: a.cfg.Curation.MaxReviewQueue,
		Logger:   a.logger,
	})
}
