package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// StatsHandler handles pipeline statistics HTTP requests.
type StatsHandler struct {
	statsService services.StatsService
	logger       *zap.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService services.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// RegisterRoutes registers the stats handler's routes on the given mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/stats", authMiddleware.RequireAuth(h.Stats))
}

// Stats handles GET /api/stats
// Returns per-status tool counts, pending discoveries, orphan claims, and
// per-source yield.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PipelineStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to collect pipeline stats", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "pipeline_stats_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: stats}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
