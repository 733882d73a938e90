// Package tracker watches approved tools' pages for changes. It compares a
// content hash and extracted pricing text against the previous snapshot and
// records a changelog event when either differs.
package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/database"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

// TrackReport summarizes one tracking sweep.
type TrackReport struct {
	Checked   int `json:"checked"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Tracker sweeps approved tools for page changes.
type Tracker struct {
	db      *database.DB
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Tracker. rps bounds outbound page fetches per second.
func New(db *database.DB, rps float64, logger *zap.Logger) *Tracker {
	if rps <= 0 {
		rps = 1
	}
	return &Tracker{
		db:      db,
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Run checks every approved tool with a URL. Tools without URLs are skipped;
// fetch failures are counted and do not abort the sweep.
func (t *Tracker) Run(ctx context.Context) (*TrackReport, error) {
	report := &TrackReport{}

	tools, err := repositories.NewToolRepository(t.db.Pool).ListByStatus(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	for _, tool := range tools {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if tool.URL == nil || *tool.URL == "" {
			report.Skipped++
			continue
		}

		changed, err := t.checkTool(ctx, tool)
		if err != nil {
			report.Failed++
			t.logger.Warn("Failed to check tool for changes",
				zap.String("tool", tool.Name), zap.Error(err))
			continue
		}

		report.Checked++
		if changed {
			report.Changed++
		} else {
			report.Unchanged++
		}
	}

	return report, nil
}

// checkTool fetches a tool's page, snapshots it, and reports whether it
// changed since the previous snapshot. The snapshot write and any changelog
// entry share one transaction.
func (t *Tracker) checkTool(ctx context.Context, tool *models.Tool) (bool, error) {
	body, err := t.fetch(ctx, *tool.URL)
	if err != nil {
		return false, err
	}

	hash := sha256.Sum256([]byte(normalizeContent(body)))
	snapshot := &models.Snapshot{
		ToolID:      tool.ID,
		URL:         *tool.URL,
		Title:       extractTitle(body),
		ContentHash: hex.EncodeToString(hash[:]),
		PricingText: extractPricing(body),
	}

	changed := false

	err = t.db.WithTx(ctx, func(q database.Querier) error {
		changed = false
		snapshotRepo := repositories.NewSnapshotRepository(q)

		previous, err := snapshotRepo.GetLatestByTool(ctx, tool.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if err := snapshotRepo.CreateSnapshot(ctx, snapshot); err != nil {
			return err
		}

		// First snapshot is a baseline, not a change.
		if previous == nil {
			return nil
		}

		detail := diffDetail(previous, snapshot)
		if detail == "" {
			return nil
		}

		changed = true
		entry := &models.ChangelogEntry{
			ToolID:    tool.ID,
			EventType: models.EventChangeDetected,
			Detail:    detail,
			SourceURL: tool.URL,
		}
		return repositories.NewChangelogRepository(q).AppendEntry(ctx, entry)
	})
	if err != nil {
		return false, err
	}

	return changed, nil
}

// diffDetail describes what changed between two snapshots, or returns ""
// when nothing did. Pricing changes are named explicitly since they matter
// most to catalog readers.
func diffDetail(previous, current *models.Snapshot) string {
	if previous.ContentHash == current.ContentHash {
		return ""
	}

	var parts []string
	if previous.PricingText != current.PricingText {
		parts = append(parts, fmt.Sprintf("pricing changed from %q to %q",
			clip(previous.PricingText, 60), clip(current.PricingText, 60)))
	}
	if previous.Title != current.Title && current.Title != "" {
		parts = append(parts, fmt.Sprintf("title changed to %q", clip(current.Title, 80)))
	}
	if len(parts) == 0 {
		parts = append(parts, "page content changed")
	}
	return strings.Join(parts, "; ")
}

func (t *Tracker) fetch(ctx context.Context, url string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "glean-engine/1.0 (catalog update tracker)")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRe  = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	spaceRe   = regexp.MustCompile(`\s+`)
	pricingRe = regexp.MustCompile(`(?i)\$\d+(?:\.\d+)?(?:\s*/\s*(?:mo|month|user|seat|yr|year))?|free tier|free plan`)
)

// normalizeContent strips markup and collapses whitespace so cosmetic HTML
// churn doesn't read as a product change.
func normalizeContent(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

func extractTitle(html string) string {
	if m := titleRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(spaceRe.ReplaceAllString(m[1], " "))
	}
	return ""
}

// extractPricing collects price-looking fragments in page order.
func extractPricing(html string) string {
	matches := pricingRe.FindAllString(normalizeContent(html), 10)
	return strings.Join(matches, ", ")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
