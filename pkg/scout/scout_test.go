package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
)

// Mock implementations for testing

type mockSourceRepo struct {
	sources map[string]*models.Source
	stats   map[uuid.UUID][2]int
}

func newMockSourceRepo(names ...string) *mockSourceRepo {
	m := &mockSourceRepo{
		sources: make(map[string]*models.Source),
		stats:   make(map[uuid.UUID][2]int),
	}
	for _, name := range names {
		m.sources[name] = &models.Source{ID: uuid.New(), Name: name, Reliability: models.ReliabilityMedium}
	}
	return m
}

func (m *mockSourceRepo) CreateSource(ctx context.Context, source *models.Source) error {
	m.sources[source.Name] = source
	return nil
}

func (m *mockSourceRepo) GetSourceByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSourceRepo) GetSourceByName(ctx context.Context, name string) (*models.Source, error) {
	s, ok := m.sources[name]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (m *mockSourceRepo) ListSources(ctx context.Context) ([]*models.Source, error) {
	var out []*models.Source
	for _, s := range m.sources {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSourceRepo) SetReliability(ctx context.Context, id uuid.UUID, reliability string) error {
	return nil
}

func (m *mockSourceRepo) RecordDiscoveryStats(ctx context.Context, id uuid.UUID, total, useful int) error {
	prev := m.stats[id]
	m.stats[id] = [2]int{prev[0] + total, prev[1] + useful}
	return nil
}

type mockDiscoveryStore struct {
	created []*models.Discovery
	failAt  int // 1-based index of the create call that fails, 0 for never
	calls   int
}

func (m *mockDiscoveryStore) CreateDiscovery(ctx context.Context, d *models.Discovery) error {
	m.calls++
	if m.failAt > 0 && m.calls == m.failAt {
		return fmt.Errorf("storage hiccup")
	}
	d.ID = uuid.New()
	m.created = append(m.created, d)
	return nil
}

func (m *mockDiscoveryStore) GetDiscoveryByID(ctx context.Context, id uuid.UUID) (*models.Discovery, error) {
	return nil, apperrors.ErrNotFound
}

func (m *mockDiscoveryStore) ListUnprocessed(ctx context.Context, limit int) ([]*models.Discovery, error) {
	return m.created, nil
}

func (m *mockDiscoveryStore) MarkProcessed(ctx context.Context, id uuid.UUID, toolID *uuid.UUID) error {
	return nil
}

func (m *mockDiscoveryStore) RepointDiscoveries(ctx context.Context, fromToolID, toToolID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockDiscoveryStore) CountUnprocessed(ctx context.Context) (int, error) {
	return len(m.created), nil
}

func TestSampleScout_Fetch(t *testing.T) {
	s := NewSampleScout()

	findings, err := s.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, findings, 2)
	assert.NotEmpty(t, findings[0].RawText)

	all, err := s.Fetch(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunner_RecordsFindings(t *testing.T) {
	sources := newMockSourceRepo("sample")
	store := &mockDiscoveryStore{}
	runner := NewRunner(sources, store, zap.NewNop())

	n, err := runner.Run(context.Background(), NewSampleScout(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.created, 3)

	sourceID := sources.sources["sample"].ID
	assert.Equal(t, [2]int{3, 0}, sources.stats[sourceID])

	for _, d := range store.created {
		assert.Equal(t, sourceID, d.SourceID)
		assert.False(t, d.Processed)
	}
}

func TestRunner_SkipsFailedRows(t *testing.T) {
	sources := newMockSourceRepo("sample")
	store := &mockDiscoveryStore{failAt: 2}
	runner := NewRunner(sources, store, zap.NewNop())

	n, err := runner.Run(context.Background(), NewSampleScout(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunner_UnknownSourceFails(t *testing.T) {
	runner := NewRunner(newMockSourceRepo(), &mockDiscoveryStore{}, zap.NewNop())

	_, err := runner.Run(context.Background(), NewSampleScout(), 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHackerNewsScout_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/showstories.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]int{1, 2, 3})
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		_, _ = fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
		if id == 2 {
			// Non-story items are skipped.
			_ = json.NewEncoder(w).Encode(hnItem{ID: id, Type: "comment"})
			return
		}
		_ = json.NewEncoder(w).Encode(hnItem{
			ID:    id,
			Type:  "story",
			Title: fmt.Sprintf("Show HN: Tool %d", id),
			URL:   "https://example.com",
			Score: 42,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewHackerNewsScout(100, zap.NewNop()).(*hackerNewsScout)
	s.baseURL = server.URL

	findings, err := s.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].RawText, "Show HN: Tool 1")
	assert.Equal(t, 42, findings[0].Metadata["hn_score"])
}

func TestRSSScout_Fetch(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <item><title>Acme launches</title><link>https://acme.dev</link><description>Acme is a platform.</description></item>
  <item><title>Beta ships</title><link>https://beta.dev</link><description>Beta provides dashboards.</description></item>
</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	s := NewRSSScout([]string{server.URL}, 100, zap.NewNop())

	findings, err := s.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].RawText, "Acme launches")
	assert.Equal(t, "https://acme.dev", findings[0].SourceURL)
}

func TestHackerNewsScout_RespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode([]int{})
	}))
	defer server.Close()

	s := NewHackerNewsScout(100, zap.NewNop()).(*hackerNewsScout)
	s.baseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, 5)
	assert.Error(t, err)
}
