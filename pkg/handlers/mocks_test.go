package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockReviewServiceForHandler implements services.ReviewService for handler tests.
type mockReviewServiceForHandler struct {
	queue       []*models.Tool
	queueErr    error
	decided     *models.Tool
	decideErr   error
	lastReason  string
	lastFilters repositories.QueueFilters
}

var _ services.ReviewService = (*mockReviewServiceForHandler)(nil)

func (m *mockReviewServiceForHandler) Queue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	m.lastFilters = filters
	if m.queueErr != nil {
		return nil, m.queueErr
	}
	return m.queue, nil
}

func (m *mockReviewServiceForHandler) Approve(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewServiceForHandler) Reject(ctx context.Context, toolID uuid.UUID, reason string) (*models.Tool, error) {
	m.lastReason = reason
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewServiceForHandler) Skip(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *mockReviewServiceForHandler) SendBack(ctx context.Context, toolID uuid.UUID, note string) (*models.Tool, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

// mockCurationServiceForHandler implements services.CurationService for handler tests.
type mockCurationServiceForHandler struct {
	submitResult *services.SubmitResult
	submitErr    error
	report       *services.CurationReport
	curateErr    error
	mergeResult  *services.MergeResult
	mergeErr     error
}

var _ services.CurationService = (*mockCurationServiceForHandler)(nil)

func (m *mockCurationServiceForHandler) Submit(ctx context.Context, candidate *models.Candidate, claims []models.ClaimInput) (*services.SubmitResult, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitResult, nil
}

func (m *mockCurationServiceForHandler) Curate(ctx context.Context) (*services.CurationReport, error) {
	if m.curateErr != nil {
		return nil, m.curateErr
	}
	return m.report, nil
}

func (m *mockCurationServiceForHandler) MergeDuplicate(ctx context.Context, firstID, secondID uuid.UUID) (*services.MergeResult, error) {
	if m.mergeErr != nil {
		return nil, m.mergeErr
	}
	return m.mergeResult, nil
}

// mockStatsServiceForHandler implements services.StatsService for handler tests.
type mockStatsServiceForHandler struct {
	stats    *services.PipelineStats
	statsErr error
}

var _ services.StatsService = (*mockStatsServiceForHandler)(nil)

func (m *mockStatsServiceForHandler) PipelineStats(ctx context.Context) (*services.PipelineStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

// mockReportServiceForHandler implements services.ReportService for handler tests.
type mockReportServiceForHandler struct {
	digest    *services.Digest
	digestErr error
	markdown  string
	lastSince time.Time
}

var _ services.ReportService = (*mockReportServiceForHandler)(nil)

func (m *mockReportServiceForHandler) Digest(ctx context.Context, since time.Time) (*services.Digest, error) {
	m.lastSince = since
	if m.digestErr != nil {
		return nil, m.digestErr
	}
	return m.digest, nil
}

func (m *mockReportServiceForHandler) RenderMarkdown(digest *services.Digest) string {
	return m.markdown
}

// mockToolRepoForHandler implements repositories.ToolRepository for handler tests.
type mockToolRepoForHandler struct {
	tools       map[uuid.UUID]*models.Tool
	listErr     error
	lastFilters repositories.ToolFilters
}

var _ repositories.ToolRepository = (*mockToolRepoForHandler)(nil)

func newMockToolRepoForHandler() *mockToolRepoForHandler {
	return &mockToolRepoForHandler{tools: make(map[uuid.UUID]*models.Tool)}
}

func (m *mockToolRepoForHandler) CreateTool(ctx context.Context, tool *models.Tool) error {
	m.tools[tool.ID] = tool
	return nil
}

func (m *mockToolRepoForHandler) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	tool, ok := m.tools[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tool, nil
}

func (m *mockToolRepoForHandler) ListTools(ctx context.Context, filters repositories.ToolFilters) ([]*models.Tool, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.lastFilters = filters
	var tools []*models.Tool
	for _, tool := range m.tools {
		if filters.Status != "" && tool.Status != filters.Status {
			continue
		}
		tools = append(tools, tool)
	}
	return tools, len(tools), nil
}

func (m *mockToolRepoForHandler) ListByStatus(ctx context.Context, status string) ([]*models.Tool, error) {
	var tools []*models.Tool
	for _, tool := range m.tools {
		if tool.Status == status {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

func (m *mockToolRepoForHandler) ListReviewQueue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	return m.ListByStatus(ctx, models.StatusReview)
}

func (m *mockToolRepoForHandler) UpdateTool(ctx context.Context, tool *models.Tool) error {
	m.tools[tool.ID] = tool
	return nil
}

func (m *mockToolRepoForHandler) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tool, ok := m.tools[id]
	if !ok || tool.Status != from {
		return apperrors.ErrInvalidTransition
	}
	tool.Status = to
	return nil
}

func (m *mockToolRepoForHandler) SetRelevanceScore(ctx context.Context, id uuid.UUID, score float64) error {
	return nil
}

func (m *mockToolRepoForHandler) SetReviewOutcome(ctx context.Context, id uuid.UUID, status string, reason *string, reviewedAt time.Time) error {
	return nil
}

func (m *mockToolRepoForHandler) DeleteTool(ctx context.Context, id uuid.UUID) error {
	delete(m.tools, id)
	return nil
}

func (m *mockToolRepoForHandler) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, tool := range m.tools {
		counts[tool.Status]++
	}
	return counts, nil
}

// mockClaimRepoForHandler implements repositories.ClaimRepository for handler tests.
type mockClaimRepoForHandler struct {
	claims  []*models.Claim
	listErr error
}

var _ repositories.ClaimRepository = (*mockClaimRepoForHandler)(nil)

func (m *mockClaimRepoForHandler) CreateClaim(ctx context.Context, claim *models.Claim) error {
	m.claims = append(m.claims, claim)
	return nil
}

func (m *mockClaimRepoForHandler) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.Claim, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var claims []*models.Claim
	for _, claim := range m.claims {
		if claim.ToolID == toolID {
			claims = append(claims, claim)
		}
	}
	return claims, nil
}

func (m *mockClaimRepoForHandler) CountByTool(ctx context.Context, toolID uuid.UUID) (int, error) {
	claims, err := m.ListByTool(ctx, toolID)
	return len(claims), err
}

func (m *mockClaimRepoForHandler) RepointClaims(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockClaimRepoForHandler) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockClaimRepoForHandler) ListOrphans(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

// mockChangelogRepoForHandler implements repositories.ChangelogRepository for handler tests.
type mockChangelogRepoForHandler struct {
	entries []*models.ChangelogEntry
}

var _ repositories.ChangelogRepository = (*mockChangelogRepoForHandler)(nil)

func (m *mockChangelogRepoForHandler) AppendEntry(ctx context.Context, entry *models.ChangelogEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockChangelogRepoForHandler) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.ChangelogEntry, error) {
	var entries []*models.ChangelogEntry
	for _, entry := range m.entries {
		if entry.ToolID == toolID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *mockChangelogRepoForHandler) ListSince(ctx context.Context, since time.Time, eventTypes []string) ([]*models.ChangelogEntry, error) {
	return m.entries, nil
}
