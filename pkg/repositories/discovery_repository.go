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

// DiscoveryRepository provides data access for raw scout findings.
type DiscoveryRepository interface {
	CreateDiscovery(ctx context.Context, discovery *models.Discovery) error
	GetDiscoveryByID(ctx context.Context, id uuid.UUID) (*models.Discovery, error)
	ListUnprocessed(ctx context.Context, limit int) ([]*models.Discovery, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, toolID *uuid.UUID) error
	RepointDiscoveries(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error)
	CountUnprocessed(ctx context.Context) (int, error)
}

type discoveryRepository struct {
	q database.Querier
}

func NewDiscoveryRepository(q database.Querier) DiscoveryRepository {
	return &discoveryRepository{q: q}
}

var _ DiscoveryRepository = (*discoveryRepository)(nil)

func (r *discoveryRepository) CreateDiscovery(ctx context.Context, discovery *models.Discovery) error {
	if discovery.Metadata == nil {
		discovery.Metadata = map[string]any{}
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO discoveries (source_id, source_url, raw_text, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		discovery.SourceID, discovery.SourceURL, discovery.RawText, discovery.Metadata,
	).Scan(&discovery.ID, &discovery.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create discovery: %w", err)
	}

	return nil
}

func (r *discoveryRepository) GetDiscoveryByID(ctx context.Context, id uuid.UUID) (*models.Discovery, error) {
	row := r.q.QueryRow(ctx, `
		SELECT d.id, d.source_id, d.source_url, d.raw_text, d.metadata,
		       d.processed, d.tool_id, d.created_at, s.name, s.reliability
		FROM discoveries d
		JOIN sources s ON s.id = d.source_id
		WHERE d.id = $1`, id)

	discovery, err := scanDiscoveryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get discovery: %w", err)
	}

	return discovery, nil
}

// ListUnprocessed returns pending discoveries oldest first so analysis is
// roughly FIFO.
func (r *discoveryRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.Discovery, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.source_id, d.source_url, d.raw_text, d.metadata,
		       d.processed, d.tool_id, d.created_at, s.name, s.reliability
		FROM discoveries d
		JOIN sources s ON s.id = d.source_id
		WHERE NOT d.processed
		ORDER BY d.created_at ASC, d.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed discoveries: %w", err)
	}
	defer rows.Close()

	var discoveries []*models.Discovery
	for rows.Next() {
		discovery, err := scanDiscoveryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		discoveries = append(discoveries, discovery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discoveries: %w", err)
	}

	return discoveries, nil
}

// MarkProcessed flags a discovery as analyzed and links the tool it fed,
// if any. A nil toolID means analysis produced nothing usable.
func (r *discoveryRepository) MarkProcessed(ctx context.Context, id uuid.UUID, toolID *uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE discoveries SET processed = true, tool_id = $2 WHERE id = $1`,
		id, toolID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark discovery processed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// RepointDiscoveries moves discovery links from one tool to another during a
// merge, always inside the merge transaction.
func (r *discoveryRepository) RepointDiscoveries(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE discoveries SET tool_id = $2 WHERE tool_id = $1`,
		fromToolID, toToolID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint discoveries: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *discoveryRepository) CountUnprocessed(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM discoveries WHERE NOT processed`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unprocessed discoveries: %w", err)
	}
	return n, nil
}

func scanDiscoveryRow(row pgx.Row) (*models.Discovery, error) {
	discovery := &models.Discovery{}
	err := row.Scan(
		&discovery.ID, &discovery.SourceID, &discovery.SourceURL,
		&discovery.RawText, &discovery.Metadata, &discovery.Processed,
		&discovery.ToolID, &discovery.CreatedAt,
		&discovery.SourceName, &discovery.SourceReliability,
	)
	if err != nil {
		return nil, err
	}
	return discovery, nil
}
