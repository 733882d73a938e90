package models

import (
	"time"

	"github.com/google/uuid"
)

// Source reliability ratings, ordered from most to least trusted.
const (
	ReliabilityAuthoritative = "authoritative"
	ReliabilityHigh          = "high"
	ReliabilityMedium        = "medium"
	ReliabilityLow           = "low"
	ReliabilityUnrated       = "unrated"
)

// reliabilityWeights maps a reliability rating onto the numeric scale the
// relevance scorer consumes. Unknown ratings fall back to the unrated weight.
var reliabilityWeights = map[string]float64{
	ReliabilityAuthoritative: 1.0,
	ReliabilityHigh:          0.8,
	ReliabilityMedium:        0.5,
	ReliabilityLow:           0.3,
	ReliabilityUnrated:       0.2,
}

// ReliabilityWeight returns the scoring weight for a reliability rating.
func ReliabilityWeight(rating string) float64 {
	if w, ok := reliabilityWeights[rating]; ok {
		return w
	}
	return reliabilityWeights[ReliabilityUnrated]
}

// Source is a place tools get discovered (Reddit, Product Hunt, an RSS feed).
// Reliability is updated over time by a feedback process outside the curation
// core; the scorer only reads it.
type Source struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SourceType        string    `json:"source_type"`
	URL               *string   `json:"url,omitempty"`
	Reliability       string    `json:"reliability"`
	TotalDiscoveries  int       `json:"total_discoveries"`
	UsefulDiscoveries int       `json:"useful_discoveries"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
