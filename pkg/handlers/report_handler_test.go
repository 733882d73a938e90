package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/services"
)

func reportMux(svc *mockReportServiceForHandler) *http.ServeMux {
	mux := http.NewServeMux()
	NewReportHandler(svc, zap.NewNop()).RegisterRoutes(mux, openMiddleware())
	return mux
}

func TestReportHandler_Digest_DefaultWindow(t *testing.T) {
	svc := &mockReportServiceForHandler{digest: &services.Digest{GeneratedAt: time.Now()}}
	mux := reportMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/digest", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().Add(-defaultDigestWindow), svc.lastSince, time.Minute)
}

func TestReportHandler_Digest_ExplicitSince(t *testing.T) {
	svc := &mockReportServiceForHandler{digest: &services.Digest{}}
	mux := reportMux(svc)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/digest?since="+url.QueryEscape(since.Format(time.RFC3339)), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.lastSince.Equal(since))
}

func TestReportHandler_Digest_BadSince(t *testing.T) {
	svc := &mockReportServiceForHandler{}
	mux := reportMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/digest?since=yesterday", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_since")
}

func TestReportHandler_Digest_Markdown(t *testing.T) {
	svc := &mockReportServiceForHandler{
		digest:   &services.Digest{},
		markdown: "# Catalog Digest\n\nNo activity in this period.\n",
	}
	mux := reportMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/digest?format=markdown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# Catalog Digest")
}

func TestStatsHandler_Stats(t *testing.T) {
	svc := &mockStatsServiceForHandler{
		stats: &services.PipelineStats{
			StatusCounts:     map[string]int{"inbox": 3, "review": 1},
			PendingDiscovery: 7,
		},
	}
	mux := http.NewServeMux()
	NewStatsHandler(svc, zap.NewNop()).RegisterRoutes(mux, openMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending_discoveries":7`)
}

func TestCurationHandler_Curate(t *testing.T) {
	svc := &mockCurationServiceForHandler{
		report: &services.CurationReport{Started: 2, Scored: 2, Promoted: 1, Held: 1},
	}
	mux := http.NewServeMux()
	NewCurationHandler(svc, zap.NewNop()).RegisterRoutes(mux, openMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/api/curate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"promoted_to_review":1`)
}
