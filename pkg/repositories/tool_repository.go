package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// ToolFilters narrows ListTools results.
type ToolFilters struct {
	Status   string
	Category string
	Limit    int
	Offset   int
}

// QueueFilters narrows ListReviewQueue results. A nil MinScore applies no
// score floor.
type QueueFilters struct {
	MinScore *float64
	Limit    int
	Offset   int
}

// ToolRepository provides data access for tools.
type ToolRepository interface {
	CreateTool(ctx context.Context, tool *models.Tool) error
	GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	ListTools(ctx context.Context, filters ToolFilters) ([]*models.Tool, int, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Tool, error)
	ListReviewQueue(ctx context.Context, filters QueueFilters) ([]*models.Tool, error)
	UpdateTool(ctx context.Context, tool *models.Tool) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	SetRelevanceScore(ctx context.Context, id uuid.UUID, score float64) error
	SetReviewOutcome(ctx context.Context, id uuid.UUID, status string, reason *string, reviewedAt time.Time) error
	DeleteTool(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type toolRepository struct {
	q database.Querier
}

// NewToolRepository creates a ToolRepository backed by q, which may be a
// pool or an open transaction.
func NewToolRepository(q database.Querier) ToolRepository {
	return &toolRepository{q: q}
}

var _ ToolRepository = (*toolRepository)(nil)

const toolColumns = `id, name, url, description, category, status,
		relevance_score, rejection_reason, first_seen, last_updated, reviewed_at`

func (r *toolRepository) CreateTool(ctx context.Context, tool *models.Tool) error {
	if tool.Status == "" {
		tool.Status = models.StatusInbox
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO tools (name, url, description, category, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, first_seen, last_updated`,
		tool.Name, tool.URL, tool.Description, tool.Category, tool.Status,
	).Scan(&tool.ID, &tool.FirstSeen, &tool.LastUpdated)

	if err != nil {
		return fmt.Errorf("failed to create tool: %w", err)
	}

	return nil
}

func (r *toolRepository) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE id = $1`, id)

	tool, err := scanToolRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}

	return tool, nil
}

func (r *toolRepository) ListTools(ctx context.Context, filters ToolFilters) ([]*models.Tool, int, error) {
	limit, offset := normalizePageParams(filters.Limit, filters.Offset)

	conditions := []string{"true"}
	args := []any{}
	argIdx := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, filters.Category)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tools WHERE %s`, where)
	var total int
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tools: %w", err)
	}

	dataQuery := fmt.Sprintf(`
		SELECT `+toolColumns+`
		FROM tools
		WHERE %s
		ORDER BY last_updated DESC
		LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tools: %w", err)
	}
	defer rows.Close()

	tools, err := collectTools(rows)
	if err != nil {
		return nil, 0, err
	}

	return tools, total, nil
}

func (r *toolRepository) ListByStatus(ctx context.Context, status string) ([]*models.Tool, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE status = $1
		ORDER BY first_seen ASC, id ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools by status: %w", err)
	}
	defer rows.Close()

	return collectTools(rows)
}

// ListReviewQueue returns tools awaiting review in priority order: highest
// relevance first, oldest first within equal scores, id as the final
// tie-break so the ordering is total and stable. This is always a live query
// over the tools table, never a materialized copy.
func (r *toolRepository) ListReviewQueue(ctx context.Context, filters QueueFilters) ([]*models.Tool, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE status = $1
		  AND ($2::float8 IS NULL OR relevance_score >= $2)
		ORDER BY relevance_score DESC NULLS LAST, first_seen ASC, id ASC
		LIMIT $3 OFFSET $4`, models.StatusReview, filters.MinScore, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	defer rows.Close()

	return collectTools(rows)
}

func (r *toolRepository) UpdateTool(ctx context.Context, tool *models.Tool) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tools
		SET name = $2, url = $3, description = $4, category = $5, last_updated = now()
		WHERE id = $1`,
		tool.ID, tool.Name, tool.URL, tool.Description, tool.Category,
	)
	if err != nil {
		return fmt.Errorf("failed to update tool: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpdateStatus moves a tool from one status to another. The from status is
// part of the WHERE clause so concurrent transitions race safely: the loser
// matches zero rows and gets ErrInvalidTransition.
func (r *toolRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tools
		SET status = $3, last_updated = now()
		WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("failed to update tool status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}

	return nil
}

func (r *toolRepository) SetRelevanceScore(ctx context.Context, id uuid.UUID, score float64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tools
		SET relevance_score = $2, last_updated = now()
		WHERE id = $1`,
		id, score,
	)
	if err != nil {
		return fmt.Errorf("failed to set relevance score: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SetReviewOutcome finalizes a review decision. Only tools currently in
// review can be decided; anything else maps to ErrInvalidTransition.
func (r *toolRepository) SetReviewOutcome(ctx context.Context, id uuid.UUID, status string, reason *string, reviewedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tools
		SET status = $2, rejection_reason = $3, reviewed_at = $4, last_updated = now()
		WHERE id = $1 AND status = $5`,
		id, status, reason, reviewedAt, models.StatusReview,
	)
	if err != nil {
		return fmt.Errorf("failed to set review outcome: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}

	return nil
}

func (r *toolRepository) DeleteTool(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *toolRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM tools GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tools by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

func scanToolRow(row pgx.Row) (*models.Tool, error) {
	tool := &models.Tool{}
	err := row.Scan(
		&tool.ID, &tool.Name, &tool.URL, &tool.Description, &tool.Category,
		&tool.Status, &tool.RelevanceScore, &tool.RejectionReason,
		&tool.FirstSeen, &tool.LastUpdated, &tool.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return tool, nil
}

func collectTools(rows pgx.Rows) ([]*models.Tool, error) {
	var tools []*models.Tool
	for rows.Next() {
		tool, err := scanToolRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		tools = append(tools, tool)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tools: %w", err)
	}

	return tools, nil
}
