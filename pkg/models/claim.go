package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim type constants.
const (
	ClaimTypeFeature     = "feature"     // product capabilities
	ClaimTypePricing     = "pricing"     // cost, plans, tiers
	ClaimTypeIntegration = "integration" // connects with other tools
	ClaimTypeLimitation  = "limitation"  // what it can't do
	ClaimTypeComparison  = "comparison"  // compared to competitors
	ClaimTypeUseCase     = "use_case"    // how it's used
	ClaimTypeAudience    = "audience"    // target audience
)

// ClaimTypes lists the closed set of claim types.
var ClaimTypes = []string{
	ClaimTypeFeature,
	ClaimTypePricing,
	ClaimTypeIntegration,
	ClaimTypeLimitation,
	ClaimTypeComparison,
	ClaimTypeUseCase,
	ClaimTypeAudience,
}

// Claim is a discrete, sourced, confidence-scored statement about a tool.
// Immutable once written except for re-pointing ToolID during a merge.
type Claim struct {
	ID          uuid.UUID `json:"id"`
	ToolID      uuid.UUID `json:"tool_id"`
	SourceID    uuid.UUID `json:"source_id"`
	ClaimType   string    `json:"claim_type"`
	Content     string    `json:"content"`
	Confidence  float64   `json:"confidence"`
	RawText     string    `json:"raw_text,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`

	// SourceReliability is joined in from the sources table on reads
	// that feed the scorer; it is not a column of claims.
	SourceReliability string `json:"source_reliability,omitempty"`
}

// ValidConfidence reports whether the claim's confidence is inside [0,1].
// Claims failing this are excluded from scoring and flagged, never fatal.
func (c *Claim) ValidConfidence() bool {
	return c.Confidence >= 0 && c.Confidence <= 1
}

// ClaimInput is a claim as handed over by an analyzer, before it has been
// attached to a canonical tool.
type ClaimInput struct {
	SourceID   uuid.UUID `json:"source_id"`
	ClaimType  string    `json:"claim_type"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	RawText    string    `json:"raw_text,omitempty"`
}
