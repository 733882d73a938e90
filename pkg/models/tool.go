package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline status constants. A tool moves inbox -> analyzing -> review and
// terminates in approved or rejected. Only edges in pipeline.Transitions are
// legal.
const (
	StatusInbox     = "inbox"
	StatusAnalyzing = "analyzing"
	StatusReview    = "review"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Statuses lists every pipeline status in flow order.
var Statuses = []string{StatusInbox, StatusAnalyzing, StatusReview, StatusApproved, StatusRejected}

// Tool is a discovered software product tracked through the curation pipeline.
// The curation engine owns the record exclusively; reporters and the update
// tracker read it only after it reaches approved.
type Tool struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	URL             *string    `json:"url,omitempty"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Status          string     `json:"status"`
	RelevanceScore  *float64   `json:"relevance_score,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	FirstSeen       time.Time  `json:"first_seen"`
	LastUpdated     time.Time  `json:"last_updated"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// IsTerminal reports whether the tool has reached a terminal status.
func (t *Tool) IsTerminal() bool {
	return t.Status == StatusApproved || t.Status == StatusRejected
}

// Candidate is a proposed product emitted by an analyzer, before entity
// resolution has decided whether it is new or a duplicate of an existing tool.
type Candidate struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}
