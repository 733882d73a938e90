// Package scout collects raw product discoveries from external sources and
// records them for later analysis. Scouts never create tools or claims; they
// only append discoveries.
package scout

import (
	"context"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// Finding is one raw item a scout pulled from its source.
type Finding struct {
	SourceURL string
	RawText   string
	Metadata  map[string]any
}

// Scout pulls findings from one external source.
type Scout interface {
	// Fetch returns up to limit findings. Implementations respect ctx for
	// cancellation and rate-limit their own outbound requests.
	Fetch(ctx context.Context, limit int) ([]Finding, error)

	// SourceName names the sources row findings are recorded under.
	SourceName() string
}

// Runner fetches from a scout and persists the findings as discoveries.
type Runner struct {
	sourceRepo    repositories.SourceRepository
	discoveryRepo repositories.DiscoveryRepository
	logger        *zap.Logger
}

// NewRunner creates a scout Runner.
func NewRunner(sourceRepo repositories.SourceRepository, discoveryRepo repositories.DiscoveryRepository, logger *zap.Logger) *Runner {
	return &Runner{
		sourceRepo:    sourceRepo,
		discoveryRepo: discoveryRepo,
		logger:        logger,
	}
}

// Run executes one scout and returns how many discoveries were recorded.
// Findings that fail to persist are logged and skipped; one bad row does not
// abort a sweep.
func (r *Runner) Run(ctx context.Context, s Scout, limit int) (int, error) {
	source, err := r.sourceRepo.GetSourceByName(ctx, s.SourceName())
	if err != nil {
		return 0, err
	}

	findings, err := s.Fetch(ctx, limit)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, f := range findings {
		if err := ctx.Err(); err != nil {
			return recorded, err
		}

		discovery := &models.Discovery{
			SourceID:  source.ID,
			SourceURL: f.SourceURL,
			RawText:   f.RawText,
			Metadata:  f.Metadata,
		}
		if err := r.discoveryRepo.CreateDiscovery(ctx, discovery); err != nil {
			r.logger.Warn("Failed to record discovery",
				zap.String("source", s.SourceName()), zap.Error(err))
			continue
		}
		recorded++
	}

	if err := r.sourceRepo.RecordDiscoveryStats(ctx, source.ID, recorded, 0); err != nil {
		r.logger.Warn("Failed to update source stats",
			zap.String("source", s.SourceName()), zap.Error(err))
	}

	r.logger.Info("Scout run complete",
		zap.String("source", s.SourceName()),
		zap.Int("recorded", recorded))

	return recorded, nil
}
