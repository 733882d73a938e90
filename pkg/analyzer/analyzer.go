// Package analyzer turns raw discovery text into a product candidate and a
// set of typed, confidence-scored claims.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gleanhq/glean-engine/pkg/models"
)

// ExtractedClaim is a claim as produced by an analyzer, before it has a
// source or a tool attached.
type ExtractedClaim struct {
	ClaimType  string  `json:"claim_type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text,omitempty"`
}

// Extraction is the full result of analyzing one discovery.
type Extraction struct {
	Candidate models.Candidate `json:"candidate"`
	Claims    []ExtractedClaim `json:"claims"`
}

// Analyzer extracts a candidate and claims from discovery text. An analyzer
// that finds nothing usable returns (nil, nil); errors are reserved for
// transport and parse failures.
type Analyzer interface {
	Analyze(ctx context.Context, discovery *models.Discovery) (*Extraction, error)
	Name() string
}

var validClaimTypes = func() map[string]bool {
	m := make(map[string]bool, len(models.ClaimTypes))
	for _, t := range models.ClaimTypes {
		m[t] = true
	}
	return m
}()

// sanitize drops claims with unknown types, clamps confidences into [0,1],
// and discards empty content. LLM output is treated as hostile input.
func sanitize(extraction *Extraction) *Extraction {
	if extraction == nil {
		return nil
	}

	kept := extraction.Claims[:0:0]
	for _, c := range extraction.Claims {
		c.ClaimType = strings.ToLower(strings.TrimSpace(c.ClaimType))
		c.Content = strings.TrimSpace(c.Content)
		if c.Content == "" || !validClaimTypes[c.ClaimType] {
			continue
		}
		if c.Confidence < 0 {
			c.Confidence = 0
		}
		if c.Confidence > 1 {
			c.Confidence = 1
		}
		kept = append(kept, c)
	}
	extraction.Claims = kept

	extraction.Candidate.Name = strings.TrimSpace(extraction.Candidate.Name)
	if extraction.Candidate.Name == "" {
		return nil
	}
	return extraction
}

// parseExtractionJSON decodes an LLM response into an Extraction. The
// response may wrap the JSON in markdown fences.
func parseExtractionJSON(text string) (*Extraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "{"); start > 0 {
		text = text[start:]
	}

	extraction := &Extraction{}
	if err := json.Unmarshal([]byte(text), extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	return sanitize(extraction), nil
}

const extractionPrompt = `You are a product research analyst. Extract structured information about a software product from the text below.

Respond with ONLY a JSON object in this exact shape:
{
  "candidate": {
    "name": "product name",
    "url": "product homepage if mentioned, else empty",
    "description": "one sentence description",
    "category": "one of: developer tools, ai, productivity, analytics, design, marketing, other"
  },
  "claims": [
    {
      "claim_type": "one of: feature, pricing, integration, limitation, comparison, use_case, audience",
      "content": "a single discrete factual statement",
      "confidence": 0.0,
      "raw_text": "the source phrase this claim came from"
    }
  ]
}

Confidence reflects how directly the text supports the claim: 0.9+ for explicit statements, 0.5-0.8 for implied facts, below 0.5 for speculation. If the text does not describe a software product, return {"candidate": {"name": ""}, "claims": []}.

Text:
%s`
