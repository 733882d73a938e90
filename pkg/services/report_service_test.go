package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
)

func testDigestRenderer() ReportService {
	return NewReportService(&ReportServiceDeps{Logger: zap.NewNop()})
}

func TestRenderMarkdown_EmptyDigest(t *testing.T) {
	svc := testDigestRenderer()

	out := svc.RenderMarkdown(&Digest{
		Since:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Now(),
	})

	assert.Contains(t, out, "# Catalog Digest")
	assert.Contains(t, out, "since 2026-08-01")
	assert.Contains(t, out, "No activity in this period.")
	assert.NotContains(t, out, "## ")
}

func TestRenderMarkdown_SectionsAndLinks(t *testing.T) {
	svc := testDigestRenderer()

	out := svc.RenderMarkdown(&Digest{
		Since: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Approved: []*models.ChangelogEntry{
			{ToolName: "Supabase", ToolURL: "https://supabase.com", Detail: "approved by reviewer"},
		},
		Rejected: []*models.ChangelogEntry{
			{ToolName: "Spamly", Detail: "rejected: off-topic"},
		},
		Changes: []*models.ChangelogEntry{
			{ToolName: "Vercel", ToolURL: "https://vercel.com", Detail: "pricing changed"},
		},
	})

	assert.Contains(t, out, "## Newly Approved")
	assert.Contains(t, out, "- **[Supabase](https://supabase.com)** - approved by reviewer")
	assert.Contains(t, out, "## Rejected")
	assert.Contains(t, out, "- **Spamly** - rejected: off-topic")
	assert.Contains(t, out, "## Detected Changes")
	assert.NotContains(t, out, "## Merged Duplicates")
	assert.NotContains(t, out, "No activity in this period.")
}
