package models

import (
	"time"

	"github.com/google/uuid"
)

// Changelog event types. Status transition events use the EventStatus* set;
// merges and tracker findings use the remaining types. The changelog is
// append-only: entries are never mutated or deleted.
const (
	EventStatusAnalyzing = "status_analyzing"
	EventStatusReview    = "status_review"
	EventStatusInbox     = "status_inbox"
	EventApproved        = "approved"
	EventRejected        = "rejected"
	EventMerged          = "merged"
	EventChangeDetected  = "change_detected"
)

// ChangelogEntry is an audit event for a tool: every status transition, every
// merge, and every change the update tracker detects on an approved tool.
type ChangelogEntry struct {
	ID        uuid.UUID `json:"id"`
	ToolID    uuid.UUID `json:"tool_id"`
	EventType string    `json:"event_type"`
	Detail    string    `json:"detail"`
	SourceURL *string   `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// ToolName and ToolURL are joined in from tools on report reads.
	ToolName string `json:"tool_name,omitempty"`
	ToolURL  string `json:"tool_url,omitempty"`
}
