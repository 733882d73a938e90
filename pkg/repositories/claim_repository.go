package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// ClaimRepository provides data access for claims.
type ClaimRepository interface {
	CreateClaim(ctx context.Context, claim *models.Claim) error
	ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.Claim, error)
	CountByTool(ctx context.Context, toolID uuid.UUID) (int, error)
	RepointClaims(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error)
	DeleteClaim(ctx context.Context, id uuid.UUID) error
	ListOrphans(ctx context.Context) ([]uuid.UUID, error)
}

type claimRepository struct {
	q database.Querier
}

func NewClaimRepository(q database.Querier) ClaimRepository {
	return &claimRepository{q: q}
}

var _ ClaimRepository = (*claimRepository)(nil)

func (r *claimRepository) CreateClaim(ctx context.Context, claim *models.Claim) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO claims (tool_id, source_id, claim_type, content, confidence, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, extracted_at`,
		claim.ToolID, claim.SourceID, claim.ClaimType, claim.Content,
		claim.Confidence, claim.RawText,
	).Scan(&claim.ID, &claim.ExtractedAt)

	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// ListByTool returns a tool's claims with source reliability joined in,
// newest first.
func (r *claimRepository) ListByTool(ctx context.Context, toolID uuid.UUID) ([]*models.Claim, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.tool_id, c.source_id, c.claim_type, c.content,
		       c.confidence, c.raw_text, c.extracted_at, s.reliability
		FROM claims c
		JOIN sources s ON s.id = c.source_id
		WHERE c.tool_id = $1
		ORDER BY c.extracted_at DESC, c.id`, toolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}

	return claims, nil
}

func (r *claimRepository) CountByTool(ctx context.Context, toolID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE tool_id = $1`, toolID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return n, nil
}

// RepointClaims moves every claim from one tool to another. Used during a
// merge, always inside the merge transaction.
func (r *claimRepository) RepointClaims(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE claims SET tool_id = $2 WHERE tool_id = $1`,
		fromToolID, toToolID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint claims: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// DeleteClaim removes a single claim. Used when a merge finds the same
// statement already on the canonical record.
func (r *claimRepository) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM claims WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	return nil
}

// ListOrphans returns ids of claims whose tool row no longer exists. The
// schema's cascade makes this empty in normal operation; a non-empty result
// indicates an integrity problem worth surfacing.
func (r *claimRepository) ListOrphans(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id
		FROM claims c
		LEFT JOIN tools t ON t.id = c.tool_id
		WHERE t.id IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphan claims: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan orphan claim id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orphan claims: %w", err)
	}

	return ids, nil
}

func scanClaim(rows pgx.Rows) (*models.Claim, error) {
	claim := &models.Claim{}
	err := rows.Scan(
		&claim.ID, &claim.ToolID, &claim.SourceID, &claim.ClaimType,
		&claim.Content, &claim.Confidence, &claim.RawText, &claim.ExtractedAt,
		&claim.SourceReliability,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claim: %w", err)
	}
	return claim, nil
}
