package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/config"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// SubmitResult reports what happened to a submitted candidate.
type SubmitResult struct {
	Tool              *models.Tool `json:"tool"`
	Merged            bool         `json:"merged"`
	ClaimsAdded       int          `json:"claims_added"`
	SkippedDuplicates int          `json:"skipped_duplicates"`
}

// CurationReport summarizes one curation run.
type CurationReport struct {
	Started   int `json:"started_analysis"`
	Scored    int `json:"scored"`
	Promoted  int `json:"promoted_to_review"`
	Held      int `json:"held_in_analyzing"`
	QueueFull int `json:"deferred_queue_full"`
	Orphans   int `json:"orphan_claims"`
}

// CurationService is the write path of the curation engine. Submit routes a
// candidate and its claims through entity resolution; Curate sweeps the
// pipeline, scoring tools and promoting them into the review queue.
type CurationService interface {
	Submit(ctx context.Context, candidate *models.Candidate, claims []models.ClaimInput) (*SubmitResult, error)
	Curate(ctx context.Context) (*CurationReport, error)

	// MergeDuplicate folds one tool into another. The older record wins the
	// canonical role regardless of argument order.
	MergeDuplicate(ctx context.Context, firstID, secondID uuid.UUID) (*MergeResult, error)
}

// CurationServiceDeps contains dependencies for CurationService.
type CurationServiceDeps struct {
	DB       *database.DB
	Scorer   RelevanceScorer
	Curation config.CurationConfig
	Logger   *zap.Logger
}

type curationService struct {
	db     *database.DB
	scorer RelevanceScorer
	cfg    config.CurationConfig
	logger *zap.Logger
}

// NewCurationService creates a CurationService.
func NewCurationService(deps *CurationServiceDeps) CurationService {
	return &curationService{
		db:     deps.DB,
		scorer: deps.Scorer,
		cfg:    deps.Curation,
		logger: deps.Logger,
	}
}

var _ CurationService = (*curationService)(nil)

// Submit resolves a candidate against existing tools and attaches its
// claims. A match routes claims to the existing record; otherwise a new tool
// enters the inbox. The whole operation is one transaction: a failure leaves
// no partial candidate behind.
func (s *curationService) Submit(ctx context.Context, candidate *models.Candidate, claims []models.ClaimInput) (*SubmitResult, error) {
	if candidate.Name == "" {
		return nil, fmt.Errorf("candidate requires a name")
	}

	result := &SubmitResult{}

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		*result = SubmitResult{}
		toolRepo := repositories.NewToolRepository(q)
		claimRepo := repositories.NewClaimRepository(q)

		resolver := NewEntityResolver(&EntityResolverDeps{
			ToolRepo:     toolRepo,
			Threshold:    s.cfg.DedupThreshold,
			NameWeight:   s.cfg.NameWeight,
			DomainWeight: s.cfg.DomainWeight,
			Logger:       s.logger,
		})

		match, err := resolver.FindMatch(ctx, candidate)
		if err != nil {
			return err
		}

		var tool *models.Tool
		if match != nil {
			tool = match
			result.Merged = true
			if fillToolGaps(tool, candidate) {
				if err := toolRepo.UpdateTool(ctx, tool); err != nil {
					return err
				}
			}
		} else {
			var url *string
			if candidate.URL != "" {
				u := candidate.URL
				url = &u
			}
			tool = &models.Tool{
				Name:        candidate.Name,
				URL:         url,
				Description: candidate.Description,
				Category:    candidate.Category,
				Status:      models.StatusInbox,
			}
			if err := toolRepo.CreateTool(ctx, tool); err != nil {
				return err
			}
		}

		// Statements the canonical record already carries from the same
		// source are skipped, so resubmitting a candidate never inflates its
		// claim set or its score.
		seen := make(map[string]struct{})
		if result.Merged {
			existing, err := claimRepo.ListByTool(ctx, tool.ID)
			if err != nil {
				return err
			}
			for _, c := range existing {
				seen[claimKey(c.SourceID, c.Content)] = struct{}{}
			}
		}

		for _, input := range claims {
			key := claimKey(input.SourceID, input.Content)
			if _, dup := seen[key]; dup {
				result.SkippedDuplicates++
				continue
			}
			seen[key] = struct{}{}

			claim := &models.Claim{
				ToolID:     tool.ID,
				SourceID:   input.SourceID,
				ClaimType:  input.ClaimType,
				Content:    input.Content,
				Confidence: input.Confidence,
				RawText:    input.RawText,
			}
			if err := claimRepo.CreateClaim(ctx, claim); err != nil {
				return err
			}
			result.ClaimsAdded++
		}

		result.Tool = tool
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// fillToolGaps copies candidate fields onto a matched tool where the tool
// has none. Existing values are never overwritten here; that reconciliation
// belongs to the merger, which weighs claim confidence.
func fillToolGaps(tool *models.Tool, candidate *models.Candidate) bool {
	changed := false
	if tool.URL == nil && candidate.URL != "" {
		u := candidate.URL
		tool.URL = &u
		changed = true
	}
	if tool.Description == "" && candidate.Description != "" {
		tool.Description = candidate.Description
		changed = true
	}
	if tool.Category == "" && candidate.Category != "" {
		tool.Category = candidate.Category
		changed = true
	}
	return changed
}

// Curate sweeps the pipeline: inbox tools start analysis, analyzing tools
// get scored, and those with enough evidence and relevance move to review
// while the queue has room. Each tool is its own transaction, and the sweep
// checks for cancellation between tools so a shutdown never tears one in
// half.
func (s *curationService) Curate(ctx context.Context) (*CurationReport, error) {
	report := &CurationReport{}

	toolRepo := repositories.NewToolRepository(s.db.Pool)

	inbox, err := toolRepo.ListByStatus(ctx, models.StatusInbox)
	if err != nil {
		return nil, err
	}

	for _, tool := range inbox {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.startAnalysis(ctx, tool); err != nil {
			s.logger.Warn("Failed to start analysis",
				zap.String("tool", tool.Name), zap.Error(err))
			continue
		}
		report.Started++
	}

	analyzing, err := toolRepo.ListByStatus(ctx, models.StatusAnalyzing)
	if err != nil {
		return nil, err
	}

	counts, err := toolRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	queueRoom := s.cfg.MaxReviewQueue - counts[models.StatusReview]

	for _, tool := range analyzing {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		promoted, err := s.scoreAndRoute(ctx, tool, &queueRoom, report)
		if err != nil {
			s.logger.Warn("Failed to curate tool",
				zap.String("tool", tool.Name), zap.Error(err))
			continue
		}
		report.Scored++
		if promoted {
			report.Promoted++
		}
	}

	// Integrity sweep. The schema's cascade should make this zero; anything
	// else is worth a loud log line.
	orphans, err := repositories.NewClaimRepository(s.db.Pool).ListOrphans(ctx)
	if err != nil {
		return nil, err
	}
	report.Orphans = len(orphans)
	if len(orphans) > 0 {
		s.logger.Error("Orphan claims detected", zap.Int("count", len(orphans)))
	}

	return report, nil
}

func (s *curationService) startAnalysis(ctx context.Context, tool *models.Tool) error {
	return s.db.WithTx(ctx, func(q database.Querier) error {
		p := NewPipeline(&PipelineDeps{
			ToolRepo:      repositories.NewToolRepository(q),
			ChangelogRepo: repositories.NewChangelogRepository(q),
			Logger:        s.logger,
		})
		return p.Transition(ctx, tool.ID, models.StatusInbox, models.StatusAnalyzing, "analysis started")
	})
}

// scoreAndRoute scores one analyzing tool and promotes it to review when it
// has enough claims, clears the relevance bar (or is flagged for mandatory
// attention), and the queue has room.
func (s *curationService) scoreAndRoute(ctx context.Context, tool *models.Tool, queueRoom *int, report *CurationReport) (bool, error) {
	promoted := false

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		promoted = false
		toolRepo := repositories.NewToolRepository(q)
		claimRepo := repositories.NewClaimRepository(q)

		claims, err := claimRepo.ListByTool(ctx, tool.ID)
		if err != nil {
			return err
		}

		breakdown := s.scorer.Score(tool, claims)
		if err := toolRepo.SetRelevanceScore(ctx, tool.ID, breakdown.Total); err != nil {
			return err
		}

		if len(claims) < s.cfg.MinClaims {
			report.Held++
			return nil
		}
		if breakdown.Total < s.cfg.MinScore && !breakdown.Flagged {
			report.Held++
			return nil
		}
		if *queueRoom <= 0 {
			report.QueueFull++
			return nil
		}

		detail := fmt.Sprintf("scored %.2f from %d claims", breakdown.Total, len(claims))
		if breakdown.Flagged {
			detail += " (flagged)"
		}

		p := NewPipeline(&PipelineDeps{
			ToolRepo:      toolRepo,
			ChangelogRepo: repositories.NewChangelogRepository(q),
			Logger:        s.logger,
		})
		if err := p.Transition(ctx, tool.ID, models.StatusAnalyzing, models.StatusReview, detail); err != nil {
			return err
		}

		promoted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if promoted {
		*queueRoom--
	}
	return promoted, nil
}

func (s *curationService) MergeDuplicate(ctx context.Context, firstID, secondID uuid.UUID) (*MergeResult, error) {
	var result *MergeResult

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		toolRepo := repositories.NewToolRepository(q)

		first, err := toolRepo.GetToolByID(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := toolRepo.GetToolByID(ctx, secondID)
		if err != nil {
			return err
		}

		canonical, duplicate := first, second
		if second.FirstSeen.Before(first.FirstSeen) {
			canonical, duplicate = second, first
		}

		merger := NewClaimMerger(&ClaimMergerDeps{
			ToolRepo:      toolRepo,
			ClaimRepo:     repositories.NewClaimRepository(q),
			DiscoveryRepo: repositories.NewDiscoveryRepository(q),
			ChangelogRepo: repositories.NewChangelogRepository(q),
			Logger:        s.logger,
		})

		result, err = merger.Merge(ctx, canonical, duplicate)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
