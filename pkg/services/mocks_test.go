package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// Mock implementations for testing

type mockToolRepo struct {
	tools map[uuid.UUID]*models.Tool
	err   error
}

func newMockToolRepo() *mockToolRepo {
	return &mockToolRepo{tools: make(map[uuid.UUID]*models.Tool)}
}

func (m *mockToolRepo) add(tool *models.Tool) *models.Tool {
	if tool.ID == uuid.Nil {
		tool.ID = uuid.New()
	}
	if tool.FirstSeen.IsZero() {
		tool.FirstSeen = time.Now()
	}
	m.tools[tool.ID] = tool
	return tool
}

func (m *mockToolRepo) CreateTool(ctx context.Context, tool *models.Tool) error {
	if m.err != nil {
		return m.err
	}
	m.add(tool)
	return nil
}

func (m *mockToolRepo) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	if m.err != nil {
		return nil, m.err
	}
	tool, ok := m.tools[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tool, nil
}

func (m *mockToolRepo) ListTools(ctx context.Context, filters repositories.ToolFilters) ([]*models.Tool, int, error) {
	var out []*models.Tool
	for _, t := range m.tools {
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), m.err
}

func (m *mockToolRepo) ListByStatus(ctx context.Context, status string) ([]*models.Tool, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Tool
	for _, t := range m.tools {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockToolRepo) ListReviewQueue(ctx context.Context, filters repositories.QueueFilters) ([]*models.Tool, error) {
	tools, err := m.ListByStatus(ctx, models.StatusReview)
	if err != nil {
		return nil, err
	}
	if filters.MinScore == nil {
		return tools, nil
	}
	var out []*models.Tool
	for _, t := range tools {
		if t.RelevanceScore != nil && *t.RelevanceScore >= *filters.MinScore {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockToolRepo) UpdateTool(ctx context.Context, tool *models.Tool) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.tools[tool.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.tools[tool.ID] = tool
	return nil
}

func (m *mockToolRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	if m.err != nil {
		return m.err
	}
	tool, ok := m.tools[id]
	if !ok || tool.Status != from {
		return apperrors.ErrInvalidTransition
	}
	tool.Status = to
	return nil
}

func (m *mockToolRepo) SetRelevanceScore(ctx context.Context, id uuid.UUID, score float64) error {
	tool, ok := m.tools[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	tool.RelevanceScore = &score
	return nil
}

func (m *mockToolRepo) SetReviewOutcome(ctx context.Context, id uuid.UUID, status string, reason *string, reviewedAt time.Time) error {
	tool, ok := m.tools[id]
	if !ok || tool.Status != models.StatusReview {
		return apperrors.ErrInvalidTransition
	}
	tool.Status = status
	tool.RejectionReason = reason
	tool.ReviewedAt = &reviewedAt
	return nil
}

func (m *mockToolRepo) DeleteTool(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.tools[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.tools, id)
	return nil
}

func (m *mockToolRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, t := range m.tools {
		counts[t.Status]++
	}
	return counts, m.err
}

var _ repositories.ToolRepository = (*mockToolRepo)(nil)

type mockClaimRepo struct {
	claims map[uuid.UUID]*models.Claim
	err    error
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{claims: make(map[uuid.UUID]*models.Claim)}
}

func (m *mockClaimRepo) add(claim *models.Claim) *models.Claim {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	m.claims[claim.ID] = claim
	return claim
}

func (m *mockClaimRepo) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if m.err != nil {
		return m.err
	}
	m.add(claim)
	return nil
}

func (m *mockClaimRepo) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Claim
	for _, c := range m.claims {
		if c.ToolID == toolID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) CountByTool(ctx context.Context, toolID uuid.UUID) (int, error) {
	claims, err := m.ListByTool(ctx, toolID)
	return len(claims), err
}

func (m *mockClaimRepo) RepointClaims(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	moved := 0
	for _, c := range m.claims {
		if c.ToolID == fromToolID {
			c.ToolID = toToolID
			moved++
		}
	}
	return moved, nil
}

func (m *mockClaimRepo) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.claims, id)
	return nil
}

func (m *mockClaimRepo) ListOrphans(ctx context.Context) ([]uuid.UUID, error) {
	return nil, m.err
}

var _ repositories.ClaimRepository = (*mockClaimRepo)(nil)

type mockDiscoveryRepo struct {
	discoveries map[uuid.UUID]*models.Discovery
	err         error
}

func newMockDiscoveryRepo() *mockDiscoveryRepo {
	return &mockDiscoveryRepo{discoveries: make(map[uuid.UUID]*models.Discovery)}
}

func (m *mockDiscoveryRepo) CreateDiscovery(ctx context.Context, discovery *models.Discovery) error {
	if m.err != nil {
		return m.err
	}
	if discovery.ID == uuid.Nil {
		discovery.ID = uuid.New()
	}
	m.discoveries[discovery.ID] = discovery
	return nil
}

func (m *mockDiscoveryRepo) GetDiscoveryByID(ctx context.Context, id uuid.UUID) (*models.Discovery, error) {
	d, ok := m.discoveries[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return d, m.err
}

func (m *mockDiscoveryRepo) ListUnprocessed(ctx context.Context, limit int) ([]*models.Discovery, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Discovery
	for _, d := range m.discoveries {
		if !d.Processed {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDiscoveryRepo) MarkProcessed(ctx context.Context, id uuid.UUID, toolID *uuid.UUID) error {
	d, ok := m.discoveries[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	d.Processed = true
	d.ToolID = toolID
	return m.err
}

func (m *mockDiscoveryRepo) RepointDiscoveries(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	moved := 0
	for _, d := range m.discoveries {
		if d.ToolID != nil && *d.ToolID == fromToolID {
			id := toToolID
			d.ToolID = &id
			moved++
		}
	}
	return moved, nil
}

func (m *mockDiscoveryRepo) CountUnprocessed(ctx context.Context) (int, error) {
	out, err := m.ListUnprocessed(ctx, 0)
	return len(out), err
}

var _ repositories.DiscoveryRepository = (*mockDiscoveryRepo)(nil)

type mockChangelogRepo struct {
	entries []*models.ChangelogEntry
	err     error
}

func (m *mockChangelogRepo) AppendEntry(ctx context.Context, entry *models.ChangelogEntry) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockChangelogRepo) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.ChangelogEntry, error) {
	var out []*models.ChangelogEntry
	for _, e := range m.entries {
		if e.ToolID == toolID {
			out = append(out, e)
		}
	}
	return out, m.err
}

func (m *mockChangelogRepo) ListSince(ctx context.Context, since time.Time, eventTypes []string) ([]*models.ChangelogEntry, error) {
	return m.entries, m.err
}

var _ repositories.ChangelogRepository = (*mockChangelogRepo)(nil)
