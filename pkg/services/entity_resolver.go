package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// EntityResolver decides whether a candidate product is new or a duplicate of
// a tool already tracked. Matching is symmetric: Similarity(a, b) equals
// Similarity(b, a).
type EntityResolver interface {
	// FindMatch returns the best existing live or approved tool the
	// candidate matches, or nil when the candidate is new.
	FindMatch(ctx context.Context, candidate *models.Candidate) (*models.Tool, error)

	// Similarity computes the blended name/domain similarity of a candidate
	// against an existing tool, in [0,1].
	Similarity(candidate *models.Candidate, tool *models.Tool) float64
}

// EntityResolverDeps contains dependencies for EntityResolver.
type EntityResolverDeps struct {
	ToolRepo  repositories.ToolRepository
	Threshold float64
	// NameWeight and DomainWeight blend the two similarity components and
	// must sum to 1. When either side lacks a URL the name weight is
	// renormalized to carry the whole score.
	NameWeight   float64
	DomainWeight float64
	Logger       *zap.Logger
}

type entityResolver struct {
	toolRepo     repositories.ToolRepository
	threshold    float64
	nameWeight   float64
	domainWeight float64
	metric       *metrics.RatcliffObershelp
	logger       *zap.Logger
}

// NewEntityResolver creates an EntityResolver.
func NewEntityResolver(deps *EntityResolverDeps) EntityResolver {
	return &entityResolver{
		toolRepo:     deps.ToolRepo,
		threshold:    deps.Threshold,
		nameWeight:   deps.NameWeight,
		domainWeight: deps.DomainWeight,
		metric:       metrics.NewRatcliffObershelp(),
		logger:       deps.Logger,
	}
}

var _ EntityResolver = (*entityResolver)(nil)

var (
	tldSuffixRe   = regexp.MustCompile(`\.(io|ai|com|co|app)$`)
	nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]`)
)

// NormalizeName lowercases a product name, strips a trailing TLD-style
// suffix (so "Vercel.com" and "Vercel" compare equal), and removes all
// non-alphanumeric characters.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = tldSuffixRe.ReplaceAllString(n, "")
	return nonAlphanumRe.ReplaceAllString(n, "")
}

// NormalizeDomain reduces a URL to its comparable identity: scheme, leading
// www., query, fragment, and trailing slashes are discarded, keeping the host
// plus the first path segment. The segment matters: two products hosted under
// the same domain ("github.com/grafana", "github.com/prometheus") must not
// normalize to the same value.
func NormalizeDomain(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	u = strings.TrimPrefix(u, "www.")
	if idx := strings.IndexAny(u, "?#"); idx >= 0 {
		u = u[:idx]
	}

	parts := strings.SplitN(u, "/", 3)
	if len(parts) >= 2 && parts[1] != "" {
		return parts[0] + "/" + parts[1]
	}
	return strings.TrimSuffix(parts[0], "/")
}

func (r *entityResolver) Similarity(candidate *models.Candidate, tool *models.Tool) float64 {
	nameSim := strutil.Similarity(NormalizeName(candidate.Name), NormalizeName(tool.Name), r.metric)

	toolURL := ""
	if tool.URL != nil {
		toolURL = *tool.URL
	}
	candDomain := NormalizeDomain(candidate.URL)
	toolDomain := NormalizeDomain(toolURL)

	// Identical domains identify the same product outright.
	if candDomain != "" && candDomain == toolDomain {
		return 1.0
	}

	if candDomain == "" || toolDomain == "" {
		// One side has no URL; the name carries the whole score.
		return nameSim
	}

	domainSim := strutil.Similarity(candDomain, toolDomain, r.metric)
	return r.nameWeight*nameSim + r.domainWeight*domainSim
}

// matchStatuses is the candidate set for duplicate resolution: everything
// live plus approved, so a re-discovery of a cataloged product resolves to
// the approved record instead of starting a second one. Rejected tools are
// excluded; a resubmission deserves a fresh evaluation.
var matchStatuses = []string{
	models.StatusInbox,
	models.StatusAnalyzing,
	models.StatusReview,
	models.StatusApproved,
}

// FindMatch returns the highest-similarity match at or above the threshold.
// Equal similarities break by earliest first_seen, then by id, so the result
// is deterministic regardless of scan order.
func (r *entityResolver) FindMatch(ctx context.Context, candidate *models.Candidate) (*models.Tool, error) {
	var best *models.Tool
	var bestSim float64

	for _, status := range matchStatuses {
		tools, err := r.toolRepo.ListByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to load tools for matching: %w", err)
		}

		for _, tool := range tools {
			sim := r.Similarity(candidate, tool)
			if best == nil || sim > bestSim || (sim == bestSim && olderTool(tool, best)) {
				best = tool
				bestSim = sim
			}
		}
	}

	if best == nil || bestSim < r.threshold {
		return nil, nil
	}

	r.logger.Debug("Candidate matched existing tool",
		zap.String("candidate", candidate.Name),
		zap.String("tool", best.Name),
		zap.Float64("similarity", bestSim))

	return best, nil
}

// olderTool reports whether a should win a similarity tie against b:
// earliest first_seen, then lowest id.
func olderTool(a, b *models.Tool) bool {
	if !a.FirstSeen.Equal(b.FirstSeen) {
		return a.FirstSeen.Before(b.FirstSeen)
	}
	return a.ID.String() < b.ID.String()
}
