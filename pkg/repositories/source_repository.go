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

// SourceRepository provides data access for discovery sources.
type SourceRepository interface {
	CreateSource(ctx context.Context, source *models.Source) error
	GetSourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error)
	GetSourceByName(ctx context.Context, name string) (*models.Source, error)
	ListSources(ctx context.Context) ([]*models.Source, error)
	SetReliability(ctx context.Context, id uuid.UUID, reliability string) error
	RecordDiscoveryStats(ctx context.Context, id uuid.UUID, total, useful int) error
}

type sourceRepository struct {
	q database.Querier
}

func NewSourceRepository(q database.Querier) SourceRepository {
	return &sourceRepository{q: q}
}

var _ SourceRepository = (*sourceRepository)(nil)

const sourceColumns = `id, name, source_type, url, reliability,
		total_discoveries, useful_discoveries, created_at, updated_at`

func (r *sourceRepository) CreateSource(ctx context.Context, source *models.Source) error {
	if source.Reliability == "" {
		source.Reliability = models.ReliabilityUnrated
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO sources (name, source_type, url, reliability)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		source.Name, source.SourceType, source.URL, source.Reliability,
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	return nil
}

func (r *sourceRepository) GetSourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE id = $1`, id)

	return scanSourceRow(row)
}

func (r *sourceRepository) GetSourceByName(ctx context.Context, name string) (*models.Source, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE name = $1`, name)

	return scanSourceRow(row)
}

func (r *sourceRepository) ListSources(ctx context.Context) ([]*models.Source, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		source := &models.Source{}
		if err := rows.Scan(
			&source.ID, &source.Name, &source.SourceType, &source.URL,
			&source.Reliability, &source.TotalDiscoveries, &source.UsefulDiscoveries,
			&source.CreatedAt, &source.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}

	return sources, nil
}

func (r *sourceRepository) SetReliability(ctx context.Context, id uuid.UUID, reliability string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sources SET reliability = $2, updated_at = now() WHERE id = $1`,
		id, reliability,
	)
	if err != nil {
		return fmt.Errorf("failed to set source reliability: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// RecordDiscoveryStats increments a source's discovery counters. The reliability
// feedback loop reads these to retune ratings.
func (r *sourceRepository) RecordDiscoveryStats(ctx context.Context, id uuid.UUID, total, useful int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sources
		SET total_discoveries = total_discoveries + $2,
		    useful_discoveries = useful_discoveries + $3,
		    updated_at = now()
		WHERE id = $1`,
		id, total, useful,
	)
	if err != nil {
		return fmt.Errorf("failed to record discovery stats: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanSourceRow(row pgx.Row) (*models.Source, error) {
	source := &models.Source{}
	err := row.Scan(
		&source.ID, &source.Name, &source.SourceType, &source.URL,
		&source.Reliability, &source.TotalDiscoveries, &source.UsefulDiscoveries,
		&source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}
