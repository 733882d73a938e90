//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/testhelpers"
)

// toolTestContext holds test dependencies for tool repository tests.
type toolTestContext struct {
	t        *testing.T
	engineDB *testhelpers.EngineDB
	repo     ToolRepository
}

func setupToolTest(t *testing.T) *toolTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	tc := &toolTestContext{
		t:        t,
		engineDB: engineDB,
		repo:     NewToolRepository(engineDB.DB.Pool),
	}
	tc.cleanup()
	return tc
}

func (tc *toolTestContext) cleanup() {
	tc.t.Helper()
	ctx := context.Background()
	_, _ = tc.engineDB.DB.Pool.Exec(ctx, "DELETE FROM tools")
}

func (tc *toolTestContext) createTestTool(name string, status string) *models.Tool {
	tc.t.Helper()
	url := "https://" + name + ".example.com"
	tool := &models.Tool{
		Name:        name,
		URL:         &url,
		Description: "test tool",
		Category:    "developer tools",
		Status:      status,
	}
	if err := tc.repo.CreateTool(context.Background(), tool); err != nil {
		tc.t.Fatalf("failed to create test tool: %v", err)
	}
	return tool
}

func TestToolRepository_CreateAndGet(t *testing.T) {
	tc := setupToolTest(t)
	ctx := context.Background()

	tool := tc.createTestTool("acme", models.StatusInbox)

	if tool.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if tool.FirstSeen.IsZero() {
		t.Error("expected FirstSeen to be set")
	}

	got, err := tc.repo.GetToolByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("GetToolByID failed: %v", err)
	}
	if got.Name != "acme" {
		t.Errorf("expected name acme, got %s", got.Name)
	}
	if got.Status != models.StatusInbox {
		t.Errorf("expected status inbox, got %s", got.Status)
	}
}

func TestToolRepository_GetMissing(t *testing.T) {
	tc := setupToolTest(t)

	_, err := tc.repo.GetToolByID(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToolRepository_UpdateStatus_GuardsFromStatus(t *testing.T) {
	tc := setupToolTest(t)
	ctx := context.Background()

	tool := tc.createTestTool("statusguard", models.StatusInbox)

	if err := tc.repo.UpdateStatus(ctx, tool.ID, models.StatusInbox, models.StatusAnalyzing); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// A second transition from inbox must fail: the row is now analyzing.
	err := tc.repo.UpdateStatus(ctx, tool.ID, models.StatusInbox, models.StatusAnalyzing)
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestToolRepository_ReviewQueueOrdering(t *testing.T) {
	tc := setupToolTest(t)
	ctx := context.Background()

	low := tc.createTestTool("low-score", models.StatusReview)
	high := tc.createTestTool("high-score", models.StatusReview)
	mid := tc.createTestTool("mid-score", models.StatusReview)

	for id, score := range map[uuid.UUID]float64{low.ID: 0.2, high.ID: 0.9, mid.ID: 0.5} {
		if err := tc.repo.SetRelevanceScore(ctx, id, score); err != nil {
			t.Fatalf("SetRelevanceScore failed: %v", err)
		}
	}

	queue, err := tc.repo.ListReviewQueue(ctx, QueueFilters{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected 3 tools in queue, got %d", len(queue))
	}
	if queue[0].ID != high.ID || queue[1].ID != mid.ID || queue[2].ID != low.ID {
		t.Errorf("queue not ordered by score: %s, %s, %s",
			queue[0].Name, queue[1].Name, queue[2].Name)
	}

	// A score floor trims the tail and paging resumes past it.
	floor := 0.4
	filtered, err := tc.repo.ListReviewQueue(ctx, QueueFilters{MinScore: &floor, Limit: 10})
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 tools above floor, got %d", len(filtered))
	}
	paged, err := tc.repo.ListReviewQueue(ctx, QueueFilters{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != mid.ID {
		t.Error("expected offset to resume at the second-ranked tool")
	}
}

func TestToolRepository_ReviewQueueTiesBreakByFirstSeen(t *testing.T) {
	tc := setupToolTest(t)
	ctx := context.Background()

	first := tc.createTestTool("tie-first", models.StatusReview)
	time.Sleep(10 * time.Millisecond)
	second := tc.createTestTool("tie-second", models.StatusReview)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		if err := tc.repo.SetRelevanceScore(ctx, id, 0.7); err != nil {
			t.Fatalf("SetRelevanceScore failed: %v", err)
		}
	}

	queue, err := tc.repo.ListReviewQueue(ctx, QueueFilters{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 tools in queue, got %d", len(queue))
	}
	if queue[0].ID != first.ID {
		t.Error("expected oldest tool first on equal scores")
	}
}

func TestToolRepository_SetReviewOutcome(t *testing.T) {
	tc := setupToolTest(t)
	ctx := context.Background()

	tool := tc.createTestTool("approve-me", models.StatusReview)
	now := time.Now()

	if err := tc.repo.SetReviewOutcome(ctx, tool.ID, models.StatusApproved, nil, now); err != nil {
		t.Fatalf("SetReviewOutcome failed: %v", err)
	}

	got, err := tc.repo.GetToolByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("GetToolByID failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}
	if got.ReviewedAt == nil {
		t.Error("expected ReviewedAt to be set")
	}

	// Deciding again must fail: the tool already left review.
	reason := "changed my mind"
	err = tc.repo.SetReviewOutcome(ctx, tool.ID, models.StatusRejected, &reason, now)
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestToolRepository_CountByStatus(t *testing.T) {
	tc := setupToolTest(t)

	tc.createTestTool("count-a", models.StatusInbox)
	tc.createTestTool("count-b", models.StatusInbox)
	tc.createTestTool("count-c", models.StatusReview)

	counts, err := tc.repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[models.StatusInbox] != 2 {
		t.Errorf("expected 2 inbox, got %d", counts[models.StatusInbox])
	}
	if counts[models.StatusReview] != 1 {
		t.Errorf("expected 1 review, got %d", counts[models.StatusReview])
	}
	if counts[models.StatusApproved] != 0 {
		t.Errorf("expected 0 approved, got %d", counts[models.StatusApproved])
	}
}

func TestToolRepository_ListTools_Filters(t *testing.T) {
	tc := setupToolTest(t)

	tc.createTestTool("filter-a", models.StatusInbox)
	tc.createTestTool("filter-b", models.StatusReview)

	tools, total, err := tc.repo.ListTools(context.Background(), ToolFilters{Status: models.StatusReview})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if total != 1 || len(tools) != 1 {
		t.Fatalf("expected 1 tool, got total=%d len=%d", total, len(tools))
	}
	if tools[0].Name != "filter-b" {
		t.Errorf("expected filter-b, got %s", tools[0].Name)
	}
}
