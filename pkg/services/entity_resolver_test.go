package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
)

func newTestResolver(toolRepo *mockToolRepo) EntityResolver {
	return NewEntityResolver(&EntityResolverDeps{
		ToolRepo:     toolRepo,
		Threshold:    0.85,
		NameWeight:   0.6,
		DomainWeight: 0.4,
		Logger:       zap.NewNop(),
	})
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vercel", "vercel"},
		{"Vercel.com", "vercel"},
		{"  Notion AI  ", "notionai"},
		{"linear.app", "linear"},
		{"fly.io", "fly"},
		{"C3.ai", "c3"},
		{"Mono-Repo Tool", "monorepotool"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.vercel.com/", "vercel.com"},
		{"http://vercel.com/pricing", "vercel.com/pricing"},
		{"vercel.com?ref=hn", "vercel.com"},
		{"HTTPS://Vercel.COM", "vercel.com"},
		{"https://github.com/grafana", "github.com/grafana"},
		{"https://github.com/grafana/", "github.com/grafana"},
		{"https://github.com/grafana/loki/issues", "github.com/grafana"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.in), "input %q", tt.in)
	}
}

func TestSimilarity_IdenticalDomainsShortCircuit(t *testing.T) {
	resolver := newTestResolver(newMockToolRepo())

	url := "https://acme.io"
	tool := &models.Tool{Name: "Acme Analytics", URL: &url}
	candidate := &models.Candidate{Name: "Totally Different Name", URL: "http://www.acme.io"}

	assert.Equal(t, 1.0, resolver.Similarity(candidate, tool))
}

func TestSimilarity_SharedHostDistinctProducts(t *testing.T) {
	resolver := newTestResolver(newMockToolRepo())

	url := "https://github.com/prometheus"
	tool := &models.Tool{Name: "Prometheus", URL: &url}
	candidate := &models.Candidate{Name: "Grafana", URL: "https://github.com/grafana"}

	// Same host, different products. Must stay below the match threshold.
	assert.Less(t, resolver.Similarity(candidate, tool), 0.85)
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	resolver := newTestResolver(newMockToolRepo())

	urlA := "https://acme.io"
	urlB := "https://acmecorp.com"
	toolA := &models.Tool{Name: "Acme", URL: &urlA}
	toolB := &models.Tool{Name: "Acme Corp", URL: &urlB}

	ab := resolver.Similarity(&models.Candidate{Name: toolA.Name, URL: urlA}, toolB)
	ba := resolver.Similarity(&models.Candidate{Name: toolB.Name, URL: urlB}, toolA)

	assert.InDelta(t, ab, ba, 1e-9, "similarity must be symmetric")
	assert.GreaterOrEqual(t, ab, 0.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestSimilarity_MissingURLFallsBackToName(t *testing.T) {
	resolver := newTestResolver(newMockToolRepo())

	tool := &models.Tool{Name: "Vercel"}
	candidate := &models.Candidate{Name: "Vercel.com", URL: "https://vercel.com"}

	// Tool has no URL, so the identical normalized names carry the score.
	assert.Equal(t, 1.0, resolver.Similarity(candidate, tool))
}

func TestFindMatch_ReturnsBestAboveThreshold(t *testing.T) {
	repo := newMockToolRepo()
	url := "https://linear.app"
	match := repo.add(&models.Tool{Name: "Linear", URL: &url, Status: models.StatusReview})
	repo.add(&models.Tool{Name: "Unrelated Thing", Status: models.StatusInbox})

	resolver := newTestResolver(repo)

	got, err := resolver.FindMatch(context.Background(), &models.Candidate{
		Name: "linear.app",
		URL:  "https://www.linear.app/features",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, match.ID, got.ID)
}

func TestFindMatch_BelowThresholdIsNew(t *testing.T) {
	repo := newMockToolRepo()
	repo.add(&models.Tool{Name: "Datadog", Status: models.StatusReview})

	resolver := newTestResolver(repo)

	got, err := resolver.FindMatch(context.Background(), &models.Candidate{Name: "Supabase"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindMatch_IgnoresRejectedTools(t *testing.T) {
	repo := newMockToolRepo()
	repo.add(&models.Tool{Name: "Retool", Status: models.StatusRejected})

	resolver := newTestResolver(repo)

	// An exact name match against a rejected tool must not count: the
	// resubmission deserves a fresh evaluation.
	got, err := resolver.FindMatch(context.Background(), &models.Candidate{Name: "Retool"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindMatch_MatchesApprovedTool(t *testing.T) {
	repo := newMockToolRepo()
	url := "https://outreach.ai"
	approved := repo.add(&models.Tool{Name: "Outreach.ai", URL: &url, Status: models.StatusApproved})

	resolver := newTestResolver(repo)

	// A re-discovery of a cataloged product resolves to the approved record;
	// it must never spawn a second canonical row.
	got, err := resolver.FindMatch(context.Background(), &models.Candidate{
		Name: "Outreach AI",
		URL:  "https://www.outreach.ai/",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, approved.ID, got.ID)
}

func TestFindMatch_TieGoesToOldestTool(t *testing.T) {
	repo := newMockToolRepo()
	url := "https://acme.io"

	// The newer record sits in an earlier-scanned status than the older one;
	// the tie must still break on first_seen, not on scan order.
	newer := repo.add(&models.Tool{Name: "Acme", URL: &url, Status: models.StatusInbox,
		FirstSeen: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)})
	older := repo.add(&models.Tool{Name: "Acme", URL: &url, Status: models.StatusReview,
		FirstSeen: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})

	resolver := newTestResolver(repo)

	got, err := resolver.FindMatch(context.Background(), &models.Candidate{
		Name: "Acme",
		URL:  "https://acme.io",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)
	assert.NotEqual(t, newer.ID, got.ID)
}
