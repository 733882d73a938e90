package models

import (
	"time"

	"github.com/google/uuid"
)

// Discovery is a raw scout finding, recorded before any analysis. The curation
// core treats it as read-only except for marking it processed and linking the
// tool it produced.
type Discovery struct {
	ID        uuid.UUID      `json:"id"`
	SourceID  uuid.UUID      `json:"source_id"`
	SourceURL string         `json:"source_url"`
	RawText   string         `json:"raw_text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Processed bool           `json:"processed"`
	ToolID    *uuid.UUID     `json:"tool_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	// SourceName and SourceReliability are joined in from sources on reads.
	SourceName        string `json:"source_name,omitempty"`
	SourceReliability string `json:"source_reliability,omitempty"`
}
