package analyzer

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
)

// patternAnalyzer extracts claims with regular expressions. It needs no
// network or API key, which makes it the default analyzer and the one local
// development runs on. Extraction quality is deliberately modest; the point
// is a working pipeline without credentials.
type patternAnalyzer struct {
	logger *zap.Logger
}

// NewPatternAnalyzer creates the offline regex-based analyzer.
func NewPatternAnalyzer(logger *zap.Logger) Analyzer {
	return &patternAnalyzer{logger: logger}
}

var _ Analyzer = (*patternAnalyzer)(nil)

func (a *patternAnalyzer) Name() string { return "pattern" }

var (
	urlRe  = regexp.MustCompile(`https?://[^\s)>\]]+`)
	nameRe = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z0-9.\- ]{1,40}?)\s+(?:is|are|offers|provides|launches|released)\b`)

	pricingRe     = regexp.MustCompile(`(?i)(free tier|free plan|\$\d+(?:\.\d+)?(?:\s*/\s*(?:mo|month|user|seat|yr|year))?|open.?source|pay as you go|per seat)`)
	integrationRe = regexp.MustCompile(`(?i)integrat\w+ with ([A-Za-z0-9., \-]+?)(?:\.|,|$)`)
	featureRe     = regexp.MustCompile(`(?i)(?:supports?|offers?|provides?|features?|includes?)\s+([a-z0-9][^.;]{5,100})`)
	limitationRe  = regexp.MustCompile(`(?i)(?:doesn't|does not|cannot|can't|lacks|no support for)\s+([^.;]{3,80})`)
)

func (a *patternAnalyzer) Analyze(ctx context.Context, discovery *models.Discovery) (*Extraction, error) {
	text := discovery.RawText
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	extraction := &Extraction{}

	if m := nameRe.FindStringSubmatch(text); m != nil {
		extraction.Candidate.Name = strings.TrimSpace(m[1])
	} else if name, ok := discovery.Metadata["name"].(string); ok {
		extraction.Candidate.Name = name
	}
	if extraction.Candidate.Name == "" {
		a.logger.Debug("No product name found in discovery",
			zap.String("discovery_id", discovery.ID.String()))
		return nil, nil
	}

	if m := urlRe.FindString(text); m != "" {
		extraction.Candidate.URL = m
	} else if discovery.SourceURL != "" {
		extraction.Candidate.URL = discovery.SourceURL
	}

	// First sentence doubles as the description.
	if idx := strings.IndexAny(text, ".!\n"); idx > 0 {
		extraction.Candidate.Description = strings.TrimSpace(text[:idx+1])
	}

	for _, m := range pricingRe.FindAllString(text, 3) {
		extraction.Claims = append(extraction.Claims, ExtractedClaim{
			ClaimType:  models.ClaimTypePricing,
			Content:    strings.TrimSpace(m),
			Confidence: 0.6,
			RawText:    m,
		})
	}
	for _, m := range integrationRe.FindAllStringSubmatch(text, 3) {
		extraction.Claims = append(extraction.Claims, ExtractedClaim{
			ClaimType:  models.ClaimTypeIntegration,
			Content:    "integrates with " + strings.TrimSpace(m[1]),
			Confidence: 0.6,
			RawText:    m[0],
		})
	}
	for _, m := range featureRe.FindAllStringSubmatch(text, 5) {
		extraction.Claims = append(extraction.Claims, ExtractedClaim{
			ClaimType:  models.ClaimTypeFeature,
			Content:    strings.TrimSpace(m[1]),
			Confidence: 0.5,
			RawText:    m[0],
		})
	}
	for _, m := range limitationRe.FindAllStringSubmatch(text, 3) {
		extraction.Claims = append(extraction.Claims, ExtractedClaim{
			ClaimType:  models.ClaimTypeLimitation,
			Content:    "does not " + strings.TrimSpace(m[1]),
			Confidence: 0.5,
			RawText:    m[0],
		})
	}

	return sanitize(extraction), nil
}
