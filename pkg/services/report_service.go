package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// Digest is a periodic summary of catalog activity built from the changelog.
type Digest struct {
	Since       time.Time                `json:"since"`
	GeneratedAt time.Time                `json:"generated_at"`
	Approved    []*models.ChangelogEntry `json:"approved"`
	Rejected    []*models.ChangelogEntry `json:"rejected"`
	Merged      []*models.ChangelogEntry `json:"merged"`
	Changes     []*models.ChangelogEntry `json:"changes"`
}

// ReportService builds digests and renders them as markdown.
type ReportService interface {
	Digest(ctx context.Context, since time.Time) (*Digest, error)
	RenderMarkdown(digest *Digest) string
}

// ReportServiceDeps contains dependencies for ReportService.
type ReportServiceDeps struct {
	DB     *database.DB
	Logger *zap.Logger
}

type reportService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(deps *ReportServiceDeps) ReportService {
	return &reportService{db: deps.DB, logger: deps.Logger}
}

var _ ReportService = (*reportService)(nil)

func (s *reportService) Digest(ctx context.Context, since time.Time) (*Digest, error) {
	entries, err := repositories.NewChangelogRepository(s.db.Pool).ListSince(ctx, since, []string{
		models.EventApproved, models.EventRejected, models.EventMerged, models.EventChangeDetected,
	})
	if err != nil {
		return nil, err
	}

	digest := &Digest{Since: since, GeneratedAt: time.Now()}
	for _, entry := range entries {
		switch entry.EventType {
		case models.EventApproved:
			digest.Approved = append(digest.Approved, entry)
		case models.EventRejected:
			digest.Rejected = append(digest.Rejected, entry)
		case models.EventMerged:
			digest.Merged = append(digest.Merged, entry)
		case models.EventChangeDetected:
			digest.Changes = append(digest.Changes, entry)
		}
	}

	return digest, nil
}

func (s *reportService) RenderMarkdown(digest *Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Catalog Digest\n\n")
	fmt.Fprintf(&b, "Covering activity since %s.\n\n", digest.Since.Format("2006-01-02"))

	renderSection(&b, "Newly Approved", digest.Approved)
	renderSection(&b, "Rejected", digest.Rejected)
	renderSection(&b, "Merged Duplicates", digest.Merged)
	renderSection(&b, "Detected Changes", digest.Changes)

	if len(digest.Approved)+len(digest.Rejected)+len(digest.Merged)+len(digest.Changes) == 0 {
		b.WriteString("No activity in this period.\n")
	}

	return b.String()
}

func renderSection(b *strings.Builder, title string, entries []*models.ChangelogEntry) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", title)
	for _, entry := range entries {
		line := "- **" + entry.ToolName + "**"
		if entry.ToolURL != "" {
			line = fmt.Sprintf("- **[%s](%s)**", entry.ToolName, entry.ToolURL)
		}
		if entry.Detail != "" {
			line += " - " + entry.Detail
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}
