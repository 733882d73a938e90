package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// ReviewService serves the human review queue and finalizes decisions.
// Approve and reject are idempotent failures: deciding a tool that already
// left review returns ErrInvalidTransition rather than double-applying.
type ReviewService interface {
	// Queue returns tools awaiting review, highest relevance first,
	// optionally filtered by a minimum score and paged by limit/offset.
	Queue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error)

	// Approve moves a tool from review to approved.
	Approve(ctx context.Context, toolID uuid.UUID) (*models.Tool, error)

	// Reject moves a tool from review to rejected. The reason is optional;
	// when given it is stored so re-discoveries surface the earlier decision.
	Reject(ctx context.Context, toolID uuid.UUID, reason string) (*models.Tool, error)

	// Skip verifies a tool is still awaiting review and leaves it untouched.
	// Iteration order is the client's concern; skipping changes no state.
	Skip(ctx context.Context, toolID uuid.UUID) (*models.Tool, error)

	// SendBack returns a tool from review to inbox for more evidence.
	SendBack(ctx context.Context, toolID uuid.UUID, note string) (*models.Tool, error)
}

// ReviewServiceDeps contains dependencies for ReviewService.
type ReviewServiceDeps struct {
	DB       *database.DB
	QueueCap int
	Logger   *zap.Logger
}

type reviewService struct {
	db       *database.DB
	queueCap int
	logger   *zap.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(deps *ReviewServiceDeps) ReviewService {
	return &reviewService{
		db:       deps.DB,
		queueCap: deps.QueueCap,
		logger:   deps.Logger,
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) Queue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	if filters.Limit <= 0 || filters.Limit > s.queueCap {
		filters.Limit = s.queueCap
	}
	return repositories.NewToolRepository(s.db.Pool).ListReviewQueue(ctx, filters)
}

func (s *reviewService) Approve(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	return s.decide(ctx, toolID, models.StatusApproved, nil, "approved by reviewer")
}

func (s *reviewService) Reject(ctx context.Context, toolID uuid.UUID, reason string) (*models.Tool, error) {
	if reason == "" {
		return s.decide(ctx, toolID, models.StatusRejected, nil, "rejected")
	}
	return s.decide(ctx, toolID, models.StatusRejected, &reason, "rejected: "+reason)
}

func (s *reviewService) Skip(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	tool, err := repositories.NewToolRepository(s.db.Pool).GetToolByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if tool.Status != models.StatusReview {
		return nil, fmt.Errorf("tool is %s: %w", tool.Status, apperrors.ErrInvalidTransition)
	}
	return tool, nil
}

// decide applies a terminal review outcome and its changelog entry in one
// transaction.
func (s *reviewService) decide(ctx context.Context, toolID uuid.UUID, status string, reason *string, detail string) (*models.Tool, error) {
	var tool *models.Tool

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		toolRepo := repositories.NewToolRepository(q)

		if err := toolRepo.SetReviewOutcome(ctx, toolID, status, reason, time.Now()); err != nil {
			return err
		}

		entry := &models.ChangelogEntry{
			ToolID:    toolID,
			EventType: transitionEvents[status],
			Detail:    detail,
		}
		if err := repositories.NewChangelogRepository(q).AppendEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to record review decision: %w", err)
		}

		var err error
		tool, err = toolRepo.GetToolByID(ctx, toolID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review decision applied",
		zap.String("tool_id", toolID.String()),
		zap.String("outcome", status))

	return tool, nil
}

func (s *reviewService) SendBack(ctx context.Context, toolID uuid.UUID, note string) (*models.Tool, error) {
	var tool *models.Tool

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		toolRepo := repositories.NewToolRepository(q)
		p := NewPipeline(&PipelineDeps{
			ToolRepo:      toolRepo,
			ChangelogRepo: repositories.NewChangelogRepository(q),
			Logger:        s.logger,
		})

		if err := p.Transition(ctx, toolID, models.StatusReview, models.StatusInbox, note); err != nil {
			return err
		}

		var err error
		tool, err = toolRepo.GetToolByID(ctx, toolID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tool, nil
}
