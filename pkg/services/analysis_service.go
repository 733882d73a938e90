package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/analyzer"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// AnalysisReport summarizes one analysis run.
type AnalysisReport struct {
	Processed int `json:"processed"`
	Extracted int `json:"extracted"`
	Merged    int `json:"merged"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}

// AnalysisService drains unprocessed discoveries through an analyzer and
// submits what it extracts into the curation pipeline.
type AnalysisService interface {
	Analyze(ctx context.Context, limit int) (*AnalysisReport, error)
}

// AnalysisServiceDeps contains dependencies for AnalysisService.
type AnalysisServiceDeps struct {
	DB       *database.DB
	Analyzer analyzer.Analyzer
	Curation CurationService
	Logger   *zap.Logger
}

type analysisService struct {
	db       *database.DB
	analyzer analyzer.Analyzer
	curation CurationService
	logger   *zap.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(deps *AnalysisServiceDeps) AnalysisService {
	return &analysisService{
		db:       deps.DB,
		analyzer: deps.Analyzer,
		curation: deps.Curation,
		logger:   deps.Logger,
	}
}

var _ AnalysisService = (*analysisService)(nil)

// Analyze processes up to limit pending discoveries. Each discovery is
// independent: an analyzer failure marks that run's report and moves on, and
// cancellation stops between discoveries, never mid-submit.
func (s *analysisService) Analyze(ctx context.Context, limit int) (*AnalysisReport, error) {
	report := &AnalysisReport{}

	discoveryRepo := repositories.NewDiscoveryRepository(s.db.Pool)

	pending, err := discoveryRepo.ListUnprocessed(ctx, limit)
	if err != nil {
		return nil, err
	}

	for _, discovery := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		extraction, err := s.analyzer.Analyze(ctx, discovery)
		if err != nil {
			report.Failed++
			s.logger.Warn("Analyzer failed on discovery",
				zap.String("discovery_id", discovery.ID.String()),
				zap.String("analyzer", s.analyzer.Name()),
				zap.Error(err))
			continue
		}

		if extraction == nil {
			report.Empty++
			if err := discoveryRepo.MarkProcessed(ctx, discovery.ID, nil); err != nil {
				s.logger.Warn("Failed to mark discovery processed", zap.Error(err))
			}
			report.Processed++
			continue
		}

		claims := make([]models.ClaimInput, 0, len(extraction.Claims))
		for _, c := range extraction.Claims {
			claims = append(claims, models.ClaimInput{
				SourceID:   discovery.SourceID,
				ClaimType:  c.ClaimType,
				Content:    c.Content,
				Confidence: c.Confidence,
				RawText:    c.RawText,
			})
		}

		result, err := s.curation.Submit(ctx, &extraction.Candidate, claims)
		if err != nil {
			report.Failed++
			s.logger.Warn("Failed to submit extraction",
				zap.String("candidate", extraction.Candidate.Name),
				zap.Error(err))
			continue
		}

		report.Extracted++
		if result.Merged {
			report.Merged++
		}

		if err := discoveryRepo.MarkProcessed(ctx, discovery.ID, &result.Tool.ID); err != nil {
			s.logger.Warn("Failed to mark discovery processed", zap.Error(err))
		}
		report.Processed++
	}

	return report, nil
}
