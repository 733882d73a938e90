package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// ChangelogRepository provides append and read access to the audit changelog.
// There is deliberately no update or delete: the changelog is append-only.
type ChangelogRepository interface {
	AppendEntry(ctx context.Context, entry *models.ChangelogEntry) error
	ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.ChangelogEntry, error)
	ListSince(ctx context.Context, since time.Time, eventTypes []string) ([]*models.ChangelogEntry, error)
}

type changelogRepository struct {
	q database.Querier
}

func NewChangelogRepository(q database.Querier) ChangelogRepository {
	return &changelogRepository{q: q}
}

var _ ChangelogRepository = (*changelogRepository)(nil)

func (r *changelogRepository) AppendEntry(ctx context.Context, entry *models.ChangelogEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO changelog (tool_id, event_type, detail, source_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		entry.ToolID, entry.EventType, entry.Detail, entry.SourceURL,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append changelog entry: %w", err)
	}

	return nil
}

func (r *changelogRepository) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.ChangelogEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.tool_id, c.event_type, c.detail, c.source_url, c.created_at,
		       t.name, COALESCE(t.url, '')
		FROM changelog c
		JOIN tools t ON t.id = c.tool_id
		WHERE c.tool_id = $1
		ORDER BY c.created_at DESC, c.id`, toolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list changelog: %w", err)
	}
	defer rows.Close()

	return collectChangelog(rows)
}

// ListSince returns changelog entries created at or after since, optionally
// restricted to the given event types. Feeds the digest report.
func (r *changelogRepository) ListSince(ctx context.Context, since time.Time, eventTypes []string) ([]*models.ChangelogEntry, error) {
	query := `
		SELECT c.id, c.tool_id, c.event_type, c.detail, c.source_url, c.created_at,
		       t.name, COALESCE(t.url, '')
		FROM changelog c
		JOIN tools t ON t.id = c.tool_id
		WHERE c.created_at >= $1`
	args := []any{since}

	if len(eventTypes) > 0 {
		query += ` AND c.event_type = ANY($2)`
		args = append(args, eventTypes)
	}
	query += ` ORDER BY c.created_at DESC, c.id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list changelog since: %w", err)
	}
	defer rows.Close()

	return collectChangelog(rows)
}

func collectChangelog(rows pgx.Rows) ([]*models.ChangelogEntry, error) {
	var entries []*models.ChangelogEntry
	for rows.Next() {
		entry := &models.ChangelogEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.ToolID, &entry.EventType, &entry.Detail,
			&entry.SourceURL, &entry.CreatedAt, &entry.ToolName, &entry.ToolURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan changelog entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating changelog: %w", err)
	}

	return entries, nil
}
