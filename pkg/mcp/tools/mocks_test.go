package tools

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// mockReviewService implements services.ReviewService for tool tests.
type mockReviewService struct {
	queue       []*models.Tool
	decided     *models.Tool
	decideErr   error
	lastFilters repositories.QueueFilters
	lastReason  string
}

var _ services.ReviewService = (*mockReviewService)(nil)

func (m *mockReviewService) Queue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	m.lastFilters = filters
	return m.queue, nil
}

func (m *mockReviewService) Approve(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewService) Reject(ctx context.Context, toolID uuid.UUID, reason string) (*models.Tool, error) {
	m.lastReason = reason
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewService) Skip(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewService) SendBack(ctx context.Context, toolID uuid.UUID, note string) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

// mockStatsService implements services.StatsService for tool tests.
type mockStatsService struct {
	stats *services.PipelineStats
}

var _ services.StatsService = (*mockStatsService)(nil)

func (m *mockStatsService) PipelineStats(ctx context.Context) (*services.PipelineStats, error) {
	return m.stats, nil
}

// mockToolRepo implements repositories.ToolRepository for tool tests.
type mockToolRepo struct {
	tools map[uuid.UUID]*models.Tool
}

var _ repositories.ToolRepository = (*mockToolRepo)(nil)

func newMockToolRepo() *mockToolRepo {
	return &mockToolRepo{tools: make(map[uuid.UUID]*models.Tool)}
}

func (m *mockToolRepo) CreateTool(ctx context.Context, tool *models.Tool) error {
	m.tools[tool.ID] = tool
	return nil
}

func (m *mockToolRepo) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	tool, ok := m.tools[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tool, nil
}

func (m *mockToolRepo) ListTools(ctx context.Context, filters repositories.ToolFilters) ([]*models.Tool, int, error) {
	return nil, 0, nil
}

func (m *mockToolRepo) ListByStatus(ctx context.Context, status string) ([]*models.Tool, error) {
	return nil, nil
}

func (m *mockToolRepo) ListReviewQueue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	return nil, nil
}

func (m *mockToolRepo) UpdateTool(ctx context.Context, tool *models.Tool) error {
	m.tools[tool.ID] = tool
	return nil
}

func (m *mockToolRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	return nil
}

func (m *mockToolRepo) SetRelevanceScore(ctx context.Context, id uuid.UUID, score float64) error {
	return nil
}

func (m *mockToolRepo) SetReviewOutcome(ctx context.Context, id uuid.UUID, status string, reason *string, reviewedAt time.Time) error {
	return nil
}

func (m *mockToolRepo) DeleteTool(ctx context.Context, id uuid.UUID) error {
	delete(m.tools, id)
	return nil
}

func (m *mockToolRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

// mockClaimRepo implements repositories.ClaimRepository for tool tests.
type mockClaimRepo struct {
	claims []*models.Claim
}

var _ repositories.ClaimRepository = (*mockClaimRepo)(nil)

func (m *mockClaimRepo) CreateClaim(ctx context.Context, claim *models.Claim) error {
	m.claims = append(m.claims, claim)
	return nil
}

func (m *mockClaimRepo) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.Claim, error) {
	var claims []*models.Claim
	for _, claim := range m.claims {
		if claim.ToolID == toolID {
			claims = append(claims, claim)
		}
	}
	return claims, nil
}

func (m *mockClaimRepo) CountByTool(ctx context.Context, toolID uuid.UUID) (int, error) {
	claims, err := m.ListByTool(ctx, toolID)
	return len(claims), err
}

func (m *mockClaimRepo) RepointClaims(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockClaimRepo) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockClaimRepo) ListOrphans(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}
