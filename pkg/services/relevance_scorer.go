package services

import (
	"strings"

	"github.com/gleanhq/glean-engine/pkg/config"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// ScoreBreakdown explains a relevance score component by component, so a
// reviewer can see why a tool ranks where it does.
type ScoreBreakdown struct {
	Category    float64 `json:"category"`
	Volume      float64 `json:"volume"`
	Confidence  float64 `json:"confidence"`
	Reliability float64 `json:"reliability"`
	Keyword     float64 `json:"keyword"`
	Total       float64 `json:"total"`

	// Flagged marks the tool for mandatory human attention: a flag keyword
	// appeared, or claims carried out-of-range confidences.
	Flagged     bool     `json:"flagged"`
	FlagReasons []string `json:"flag_reasons,omitempty"`
}

// RelevanceScorer computes a composite relevance score in [0,1] from a
// tool's claims. It is pure: no I/O, no clock, same inputs same output.
type RelevanceScorer interface {
	Score(tool *models.Tool, claims []*models.Claim) ScoreBreakdown
}

type relevanceScorer struct {
	weights  config.ScoringConfig
	taxonomy *config.Taxonomy
}

// NewRelevanceScorer creates a RelevanceScorer with the given weights and
// taxonomy. Weights are assumed validated at config load.
func NewRelevanceScorer(weights config.ScoringConfig, taxonomy *config.Taxonomy) RelevanceScorer {
	return &relevanceScorer{weights: weights, taxonomy: taxonomy}
}

var _ RelevanceScorer = (*relevanceScorer)(nil)

func (s *relevanceScorer) Score(tool *models.Tool, claims []*models.Claim) ScoreBreakdown {
	b := ScoreBreakdown{}

	b.Category = s.taxonomy.CategoryWeight(tool.Category)

	valid := claims[:0:0]
	for _, c := range claims {
		if c.ValidConfidence() {
			valid = append(valid, c)
		} else {
			b.Flagged = true
			b.FlagReasons = append(b.FlagReasons, "claim with out-of-range confidence excluded from scoring")
		}
	}

	if len(valid) > 0 {
		claimCap := s.weights.ClaimCap
		if claimCap <= 0 {
			claimCap = 8
		}
		b.Volume = float64(len(valid)) / float64(claimCap)
		if b.Volume > 1 {
			b.Volume = 1
		}

		var confSum, relSum float64
		for _, c := range valid {
			confSum += c.Confidence
			relSum += models.ReliabilityWeight(c.SourceReliability)
		}
		b.Confidence = confSum / float64(len(valid))
		b.Reliability = relSum / float64(len(valid))
	}

	b.Keyword = s.keywordSignal(tool, valid, &b)

	b.Total = s.weights.CategoryWeight*b.Category +
		s.weights.VolumeWeight*b.Volume +
		s.weights.ConfidenceWeight*b.Confidence +
		s.weights.ReliabilityWeight*b.Reliability +
		s.weights.KeywordWeight*b.Keyword

	if b.Total < 0 {
		b.Total = 0
	}
	if b.Total > 1 {
		b.Total = 1
	}

	return b
}

// keywordSignal scans the tool description and claim contents for taxonomy
// keywords. It starts neutral at 0.5; each positive hit adds and each
// negative hit subtracts, clamped to [0,1]. Flag keywords do not move the
// score, they only mark the tool.
func (s *relevanceScorer) keywordSignal(tool *models.Tool, claims []*models.Claim, b *ScoreBreakdown) float64 {
	var text strings.Builder
	text.WriteString(strings.ToLower(tool.Description))
	for _, c := range claims {
		text.WriteString(" ")
		text.WriteString(strings.ToLower(c.Content))
	}
	corpus := text.String()

	signal := 0.5
	const step = 0.1

	for _, kw := range s.taxonomy.PositiveKeywords {
		if strings.Contains(corpus, strings.ToLower(kw)) {
			signal += step
		}
	}
	for _, kw := range s.taxonomy.NegativeKeywords {
		if strings.Contains(corpus, strings.ToLower(kw)) {
			signal -= step
		}
	}
	for _, kw := range s.taxonomy.FlagKeywords {
		if strings.Contains(corpus, strings.ToLower(kw)) {
			b.Flagged = true
			b.FlagReasons = append(b.FlagReasons, "flag keyword: "+kw)
		}
	}

	if signal < 0 {
		return 0
	}
	if signal > 1 {
		return 1
	}
	return signal
}
