package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const hnBaseURL = "https://hacker-news.firebaseio.com/v0"

// hackerNewsScout pulls recent Show HN stories. Show HN is a dense stream of
// product launches, which makes it the highest-yield free source available.
type hackerNewsScout struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHackerNewsScout creates a scout over the Hacker News Firebase API.
func NewHackerNewsScout(rps float64, logger *zap.Logger) Scout {
	if rps <= 0 {
		rps = 1
	}
	return &hackerNewsScout{
		baseURL: hnBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

var _ Scout = (*hackerNewsScout)(nil)

func (s *hackerNewsScout) SourceName() string { return "hackernews" }

type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Type  string `json:"type"`
}

func (s *hackerNewsScout) Fetch(ctx context.Context, limit int) ([]Finding, error) {
	if limit <= 0 {
		limit = 25
	}

	var ids []int
	if err := s.getJSON(ctx, s.baseURL+"/showstories.json", &ids); err != nil {
		return nil, fmt.Errorf("failed to list show stories: %w", err)
	}

	var findings []Finding
	for _, id := range ids {
		if len(findings) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return findings, err
		}

		var item hnItem
		if err := s.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", s.baseURL, id), &item); err != nil {
			s.logger.Warn("Failed to fetch HN item", zap.Int("id", id), zap.Error(err))
			continue
		}
		if item.Type != "story" || item.Title == "" {
			continue
		}

		text := item.Title
		if item.Text != "" {
			text += "\n" + item.Text
		}

		findings = append(findings, Finding{
			SourceURL: fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID),
			RawText:   text,
			Metadata: map[string]any{
				"hn_id":    item.ID,
				"hn_score": item.Score,
				"url":      item.URL,
			},
		})
	}

	return findings, nil
}

func (s *hackerNewsScout) getJSON(ctx context.Context, url string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
