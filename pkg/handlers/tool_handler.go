package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ToolListResponse for GET /tools
type ToolListResponse struct {
	Tools []*models.Tool `json:"tools"`
	Total int            `json:"total"`
}

// SubmitToolRequest for POST /tools
type SubmitToolRequest struct {
	Name        string              `json:"name"`
	URL         string              `json:"url,omitempty"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Claims      []models.ClaimInput `json:"claims,omitempty"`
}

// ClaimListResponse for GET /tools/{tid}/claims
type ClaimListResponse struct {
	Claims []*models.Claim `json:"claims"`
	Total  int             `json:"total"`
}

// HistoryResponse for GET /tools/{tid}/history
type HistoryResponse struct {
	Entries []*models.ChangelogEntry `json:"entries"`
	Total   int                      `json:"total"`
}

// MergeToolsRequest for POST /tools/merge
type MergeToolsRequest struct {
	FirstID  uuid.UUID `json:"first_id"`
	SecondID uuid.UUID `json:"second_id"`
}

// ============================================================================
// Handler
// ============================================================================

// ToolHandler handles tool catalog HTTP requests.
type ToolHandler struct {
	curationService services.CurationService
	toolRepo        repositories.ToolRepository
	claimRepo       repositories.ClaimRepository
	changelogRepo   repositories.ChangelogRepository
	logger          *zap.Logger
}

// NewToolHandler creates a new tool handler.
func NewToolHandler(
	curationService services.CurationService,
	toolRepo repositories.ToolRepository,
	claimRepo repositories.ClaimRepository,
	changelogRepo repositories.ChangelogRepository,
	logger *zap.Logger,
) *ToolHandler {
	return &ToolHandler{
		curationService: curationService,
		toolRepo:        toolRepo,
		claimRepo:       claimRepo,
		changelogRepo:   changelogRepo,
		logger:          logger,
	}
}

// RegisterRoutes registers the tool handler's routes on the given mux.
func (h *ToolHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/tools", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/tools", authMiddleware.RequireAuth(h.Submit))
	mux.HandleFunc("POST /api/tools/merge", authMiddleware.RequireAuth(h.Merge))
	mux.HandleFunc("GET /api/tools/{tid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("GET /api/tools/{tid}/claims", authMiddleware.RequireAuth(h.Claims))
	mux.HandleFunc("GET /api/tools/{tid}/history", authMiddleware.RequireAuth(h.History))
}

// List handles GET /api/tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repositories.ToolFilters{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}
	filters.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filters.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	tools, total, err := h.toolRepo.ListTools(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list tools", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_tools_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ToolListResponse{
		Tools: tools,
		Total: total,
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Submit handles POST /api/tools
// Routes a candidate through entity resolution: the result is either a new
// inbox tool or a merge into an existing one.
func (h *ToolHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "Tool name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	candidate := &models.Candidate{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
	}

	result, err := h.curationService.Submit(r.Context(), candidate, req.Claims)
	if err != nil {
		h.logger.Error("Failed to submit tool",
			zap.String("name", req.Name),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "submit_tool_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}

	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/tools/{tid}
func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	tool, err := h.toolRepo.GetToolByID(r.Context(), toolID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "tool_not_found", "Tool not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get tool",
			zap.String("tool_id", toolID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_tool_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tool}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Claims handles GET /api/tools/{tid}/claims
func (h *ToolHandler) Claims(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	claims, err := h.claimRepo.ListByTool(r.Context(), toolID)
	if err != nil {
		h.logger.Error("Failed to list claims",
			zap.String("tool_id", toolID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_claims_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ClaimListResponse{
		Claims: claims,
		Total:  len(claims),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// History handles GET /api/tools/{tid}/history
func (h *ToolHandler) History(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.changelogRepo.ListByTool(r.Context(), toolID)
	if err != nil {
		h.logger.Error("Failed to list changelog entries",
			zap.String("tool_id", toolID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_history_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := HistoryResponse{
		Entries: entries,
		Total:   len(entries),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Merge handles POST /api/tools/merge
func (h *ToolHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeToolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.FirstID == uuid.Nil || req.SecondID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "Both first_id and second_id are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.curationService.MergeDuplicate(r.Context(), req.FirstID, req.SecondID)
	if err != nil {
		h.logger.Error("Failed to merge tools",
			zap.String("first_id", req.FirstID.String()),
			zap.String("second_id", req.SecondID.String()),
			zap.Error(err))

		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "tool_not_found", "Tool not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrDuplicateMergeConflict) {
			if err := ErrorResponse(w, http.StatusConflict, "merge_conflict", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := ErrorResponse(w, http.StatusInternalServerError, "merge_tools_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
