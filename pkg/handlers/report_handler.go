package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// defaultDigestWindow is how far back a digest reaches when the request
// does not say.
const defaultDigestWindow = 7 * 24 * time.Hour

// ReportHandler handles digest report HTTP requests.
type ReportHandler struct {
	reportService services.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the report handler's routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/reports/digest", authMiddleware.RequireAuth(h.Digest))
}

// Digest handles GET /api/reports/digest
// Query parameters:
//   - since: RFC 3339 timestamp bounding the digest window (default: 7 days ago)
//   - format: "json" (default) or "markdown"
func (h *ReportHandler) Digest(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-defaultDigestWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_since", "since must be an RFC 3339 timestamp"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		since = parsed
	}

	digest, err := h.reportService.Digest(r.Context(), since)
	if err != nil {
		h.logger.Error("Failed to build digest",
			zap.Time("since", since),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "build_digest_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(h.reportService.RenderMarkdown(digest)))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: digest}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
