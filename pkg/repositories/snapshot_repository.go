package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// SnapshotRepository stores page snapshots for the update tracker.
type SnapshotRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	GetLatestByTool(ctx context.Context, toolID uuid.UUID) (*models.Snapshot, error)
}

type snapshotRepository struct {
	q database.Querier
}

func NewSnapshotRepository(q database.Querier) SnapshotRepository {
	return &snapshotRepository{q: q}
}

var _ SnapshotRepository = (*snapshotRepository)(nil)

func (r *snapshotRepository) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO tool_snapshots (tool_id, url, title, content_hash, pricing_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, fetched_at`,
		snapshot.ToolID, snapshot.URL, snapshot.Title,
		snapshot.ContentHash, snapshot.PricingText,
	).Scan(&snapshot.ID, &snapshot.FetchedAt)

	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

func (r *snapshotRepository) GetLatestByTool(ctx context.Context, toolID uuid.UUID) (*models.Snapshot, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, tool_id, url, title, content_hash, pricing_text, fetched_at
		FROM tool_snapshots
		WHERE tool_id = $1
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`, toolID)

	snapshot := &models.Snapshot{}
	err := row.Scan(
		&snapshot.ID, &snapshot.ToolID, &snapshot.URL, &snapshot.Title,
		&snapshot.ContentHash, &snapshot.PricingText, &snapshot.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return snapshot, nil
}
