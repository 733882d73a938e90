package models

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot captures the state of an approved tool's page at a point in time.
// The update tracker compares consecutive snapshots to detect changes.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	ToolID      uuid.UUID `json:"tool_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash"`
	PricingText string    `json:"pricing_text,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}
