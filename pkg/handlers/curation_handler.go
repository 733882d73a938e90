package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// CurationHandler exposes the curation sweep over HTTP so schedulers can
// trigger it without shelling out to the CLI.
type CurationHandler struct {
	curationService services.CurationService
	logger          *zap.Logger
}

// NewCurationHandler creates a new curation handler.
func NewCurationHandler(curationService services.CurationService, logger *zap.Logger) *CurationHandler {
	return &CurationHandler{
		curationService: curationService,
		logger:          logger,
	}
}

// RegisterRoutes registers the curation handler's routes on the given mux.
func (h *CurationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/curate", authMiddleware.RequireAuth(h.Curate))
}

// Curate handles POST /api/curate
// Runs one full curation sweep and returns what it did.
func (h *CurationHandler) Curate(w http.ResponseWriter, r *http.Request) {
	report, err := h.curationService.Curate(r.Context())
	if err != nil {
		h.logger.Error("Curation sweep failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "curate_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: report}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
