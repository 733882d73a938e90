package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// MergeResult reports what a merge moved and kept.
type MergeResult struct {
	CanonicalID       string `json:"canonical_id"`
	DuplicateID       string `json:"duplicate_id"`
	ClaimsMoved       int    `json:"claims_moved"`
	SkippedDuplicates int    `json:"skipped_duplicates"`
	DiscoveriesMoved  int    `json:"discoveries_moved"`
}

// NormalizeClaimContent reduces claim content to its dedupe form: lowercase
// with runs of whitespace collapsed to single spaces. Two claims from the
// same source with equal normalized content are the same statement.
func NormalizeClaimContent(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

// claimKey identifies a statement for dedupe purposes. Matching is exact on
// the normalized form; fuzzy matching happens only at the product level.
func claimKey(sourceID uuid.UUID, content string) string {
	return sourceID.String() + "\x00" + NormalizeClaimContent(content)
}

// ClaimMerger folds a duplicate tool into its canonical record: claims and
// discoveries are repointed, descriptive fields are reconciled by claim
// confidence, and the duplicate row is deleted. Callers must run Merge
// inside a transaction so a failure leaves both records untouched.
type ClaimMerger interface {
	Merge(ctx context.Context, canonical, duplicate *models.Tool) (*MergeResult, error)
}

// ClaimMergerDeps contains dependencies for ClaimMerger.
type ClaimMergerDeps struct {
	ToolRepo      repositories.ToolRepository
	ClaimRepo     repositories.ClaimRepository
	DiscoveryRepo repositories.DiscoveryRepository
	ChangelogRepo repositories.ChangelogRepository
	Logger        *zap.Logger
}

type claimMerger struct {
	toolRepo      repositories.ToolRepository
	claimRepo     repositories.ClaimRepository
	discoveryRepo repositories.DiscoveryRepository
	changelogRepo repositories.ChangelogRepository
	logger        *zap.Logger
}

// NewClaimMerger creates a ClaimMerger.
func NewClaimMerger(deps *ClaimMergerDeps) ClaimMerger {
	return &claimMerger{
		toolRepo:      deps.ToolRepo,
		claimRepo:     deps.ClaimRepo,
		discoveryRepo: deps.DiscoveryRepo,
		changelogRepo: deps.ChangelogRepo,
		logger:        deps.Logger,
	}
}

var _ ClaimMerger = (*claimMerger)(nil)

func (m *claimMerger) Merge(ctx context.Context, canonical, duplicate *models.Tool) (*MergeResult, error) {
	if canonical.ID == duplicate.ID {
		return nil, fmt.Errorf("cannot merge a tool into itself: %w", apperrors.ErrDuplicateMergeConflict)
	}
	if canonical.IsTerminal() || duplicate.IsTerminal() {
		return nil, fmt.Errorf("cannot merge terminal tools: %w", apperrors.ErrDuplicateMergeConflict)
	}

	// Both claim sets are read before any rows move: they drive the field
	// reconciliation and the statement dedupe below.
	canonicalClaims, err := m.claimRepo.ListByTool(ctx, canonical.ID)
	if err != nil {
		return nil, err
	}
	duplicateClaims, err := m.claimRepo.ListByTool(ctx, duplicate.ID)
	if err != nil {
		return nil, err
	}
	canonicalConf := maxConfidence(canonicalClaims)
	duplicateConf := maxConfidence(duplicateClaims)

	// A duplicate-side claim repeating a statement already on the canonical
	// record is dropped rather than repointed.
	seen := make(map[string]struct{}, len(canonicalClaims))
	for _, c := range canonicalClaims {
		seen[claimKey(c.SourceID, c.Content)] = struct{}{}
	}
	skipped := 0
	for _, c := range duplicateClaims {
		if _, dup := seen[claimKey(c.SourceID, c.Content)]; !dup {
			seen[claimKey(c.SourceID, c.Content)] = struct{}{}
			continue
		}
		if err := m.claimRepo.DeleteClaim(ctx, c.ID); err != nil {
			return nil, err
		}
		skipped++
	}

	claimsMoved, err := m.claimRepo.RepointClaims(ctx, duplicate.ID, canonical.ID)
	if err != nil {
		return nil, err
	}

	discoveriesMoved, err := m.discoveryRepo.RepointDiscoveries(ctx, duplicate.ID, canonical.ID)
	if err != nil {
		return nil, err
	}

	if m.reconcileFields(canonical, duplicate, canonicalConf, duplicateConf) {
		if err := m.toolRepo.UpdateTool(ctx, canonical); err != nil {
			return nil, err
		}
	}

	entry := &models.ChangelogEntry{
		ToolID:    canonical.ID,
		EventType: models.EventMerged,
		Detail:    fmt.Sprintf("absorbed duplicate %q (%d claims, %d discoveries)", duplicate.Name, claimsMoved, discoveriesMoved),
	}
	if err := m.changelogRepo.AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record merge: %w", err)
	}

	if err := m.toolRepo.DeleteTool(ctx, duplicate.ID); err != nil {
		return nil, fmt.Errorf("failed to remove duplicate: %w", err)
	}

	m.logger.Info("Merged duplicate tool",
		zap.String("canonical", canonical.Name),
		zap.String("duplicate", duplicate.Name),
		zap.Int("claims_moved", claimsMoved),
		zap.Int("skipped_duplicates", skipped))

	return &MergeResult{
		CanonicalID:       canonical.ID.String(),
		DuplicateID:       duplicate.ID.String(),
		ClaimsMoved:       claimsMoved,
		SkippedDuplicates: skipped,
		DiscoveriesMoved:  discoveriesMoved,
	}, nil
}

// maxConfidence returns the highest valid claim confidence backing a tool's
// descriptive fields, or 0 when the tool has no claims.
func maxConfidence(claims []*models.Claim) float64 {
	var best float64
	for _, c := range claims {
		if c.ValidConfidence() && c.Confidence > best {
			best = c.Confidence
		}
	}
	return best
}

// reconcileFields fills gaps on the canonical record from the duplicate, and
// replaces description and category only when the duplicate's evidence is
// strictly more confident. Ties keep the canonical values. Returns true if
// anything changed.
func (m *claimMerger) reconcileFields(canonical, duplicate *models.Tool, canonicalConf, duplicateConf float64) bool {
	changed := false

	if canonical.URL == nil && duplicate.URL != nil {
		canonical.URL = duplicate.URL
		changed = true
	}

	preferDuplicate := duplicateConf > canonicalConf

	if duplicate.Description != "" && (canonical.Description == "" || preferDuplicate) {
		canonical.Description = duplicate.Description
		changed = true
	}
	if duplicate.Category != "" && (canonical.Category == "" || preferDuplicate) {
		canonical.Category = duplicate.Category
		changed = true
	}

	return changed
}
