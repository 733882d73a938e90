package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// transitions is the closed set of legal pipeline edges. review -> inbox is
// the send-back edge for tools that need more evidence.
var transitions = map[string][]string{
	models.StatusInbox:     {models.StatusAnalyzing},
	models.StatusAnalyzing: {models.StatusReview, models.StatusInbox},
	models.StatusReview:    {models.StatusApproved, models.StatusRejected, models.StatusInbox},
	models.StatusApproved:  {},
	models.StatusRejected:  {},
}

// transitionEvents maps a destination status to its changelog event type.
var transitionEvents = map[string]string{
	models.StatusAnalyzing: models.EventStatusAnalyzing,
	models.StatusReview:    models.EventStatusReview,
	models.StatusInbox:     models.EventStatusInbox,
	models.StatusApproved:  models.EventApproved,
	models.StatusRejected:  models.EventRejected,
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Pipeline moves tools through the curation state machine. Every successful
// transition writes exactly one changelog entry in the same unit of work.
type Pipeline interface {
	Transition(ctx context.Context, toolID uuid.UUID, from, to, detail string) error
}

// PipelineDeps contains dependencies for Pipeline.
type PipelineDeps struct {
	ToolRepo      repositories.ToolRepository
	ChangelogRepo repositories.ChangelogRepository
	Logger        *zap.Logger
}

type pipeline struct {
	toolRepo      repositories.ToolRepository
	changelogRepo repositories.ChangelogRepository
	logger        *zap.Logger
}

// NewPipeline creates a Pipeline. The repositories must share a Querier;
// run transitions inside DB.WithTx so the status change and its changelog
// entry commit together.
func NewPipeline(deps *PipelineDeps) Pipeline {
	return &pipeline{
		toolRepo:      deps.ToolRepo,
		changelogRepo: deps.ChangelogRepo,
		logger:        deps.Logger,
	}
}

var _ Pipeline = (*pipeline)(nil)

func (p *pipeline) Transition(ctx context.Context, toolID uuid.UUID, from, to, detail string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("no edge %s -> %s: %w", from, to, apperrors.ErrInvalidTransition)
	}

	if err := p.toolRepo.UpdateStatus(ctx, toolID, from, to); err != nil {
		return err
	}

	entry := &models.ChangelogEntry{
		ToolID:    toolID,
		EventType: transitionEvents[to],
		Detail:    detail,
	}
	if err := p.changelogRepo.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}

	p.logger.Info("Tool transitioned",
		zap.String("tool_id", toolID.String()),
		zap.String("from", from),
		zap.String("to", to))

	return nil
}
