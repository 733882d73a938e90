package scout

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rssScout polls configured RSS/Atom feeds (product blogs, launch digests).
type rssScout struct {
	feedURLs []string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRSSScout creates a scout over a fixed set of feed URLs.
func NewRSSScout(feedURLs []string, rps float64, logger *zap.Logger) Scout {
	if rps <= 0 {
		rps = 1
	}
	return &rssScout{
		feedURLs: feedURLs,
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logger,
	}
}

var _ Scout = (*rssScout)(nil)

func (s *rssScout) SourceName() string { return "rss" }

// rssFeed covers RSS 2.0 and, loosely, Atom: entry elements map onto item.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Entries []rssItem `xml:"entry"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Summary     string `xml:"summary"`
}

func (s *rssScout) Fetch(ctx context.Context, limit int) ([]Finding, error) {
	if limit <= 0 {
		limit = 25
	}

	var findings []Finding
	for _, feedURL := range s.feedURLs {
		if len(findings) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return findings, err
		}

		items, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			s.logger.Warn("Failed to fetch feed", zap.String("url", feedURL), zap.Error(err))
			continue
		}

		for _, item := range items {
			if len(findings) >= limit {
				break
			}
			text := item.Title
			body := item.Description
			if body == "" {
				body = item.Summary
			}
			if body != "" {
				text += "\n" + body
			}
			if strings.TrimSpace(text) == "" {
				continue
			}

			findings = append(findings, Finding{
				SourceURL: item.Link,
				RawText:   text,
				Metadata:  map[string]any{"feed": feedURL},
			})
		}
	}

	return findings, nil
}

func (s *rssScout) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, feedURL)
	}

	feed := &rssFeed{}
	if err := xml.NewDecoder(resp.Body).Decode(feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) == 0 {
		items = feed.Entries
	}
	return items, nil
}
