package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// PipelineStats is a point-in-time snapshot of the curation pipeline.
type PipelineStats struct {
	StatusCounts     map[string]int  `json:"status_counts"`
	PendingDiscovery int             `json:"pending_discoveries"`
	OrphanClaims     int             `json:"orphan_claims"`
	Sources          []*SourceHealth `json:"sources"`
}

// SourceHealth reports a source's reliability and yield.
type SourceHealth struct {
	Name              string  `json:"name"`
	Reliability       string  `json:"reliability"`
	TotalDiscoveries  int     `json:"total_discoveries"`
	UsefulDiscoveries int     `json:"useful_discoveries"`
	YieldRate         float64 `json:"yield_rate"`
}

// StatsService aggregates pipeline health for the status command, the HTTP
// stats endpoint, and the MCP pipeline_stats tool.
type StatsService interface {
	PipelineStats(ctx context.Context) (*PipelineStats, error)
}

// StatsServiceDeps contains dependencies for StatsService.
type StatsServiceDeps struct {
	DB     *database.DB
	Logger *zap.Logger
}

type statsService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(deps *StatsServiceDeps) StatsService {
	return &statsService{db: deps.DB, logger: deps.Logger}
}

var _ StatsService = (*statsService)(nil)

func (s *statsService) PipelineStats(ctx context.Context) (*PipelineStats, error) {
	counts, err := repositories.NewToolRepository(s.db.Pool).CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := repositories.NewDiscoveryRepository(s.db.Pool).CountUnprocessed(ctx)
	if err != nil {
		return nil, err
	}

	orphans, err := repositories.NewClaimRepository(s.db.Pool).ListOrphans(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := repositories.NewSourceRepository(s.db.Pool).ListSources(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PipelineStats{
		StatusCounts:     counts,
		PendingDiscovery: pending,
		OrphanClaims:     len(orphans),
	}
	for _, src := range sources {
		health := &SourceHealth{
			Name:              src.Name,
			Reliability:       src.Reliability,
			TotalDiscoveries:  src.TotalDiscoveries,
			UsefulDiscoveries: src.UsefulDiscoveries,
		}
		if src.TotalDiscoveries > 0 {
			health.YieldRate = float64(src.UsefulDiscoveries) / float64(src.TotalDiscoveries)
		}
		stats.Sources = append(stats.Sources, health)
	}

	return stats, nil
}
