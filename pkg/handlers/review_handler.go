package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/auth"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// QueueResponse for GET /queue
type QueueResponse struct {
	Tools []*models.Tool `json:"tools"`
	Total int            `json:"total"`
}

// RejectToolRequest for POST /queue/{tid}/reject
type RejectToolRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SendBackRequest for POST /queue/{tid}/send-back
type SendBackRequest struct {
	Note string `json:"note,omitempty"`
}

// ReviewHandler handles review queue HTTP requests.
type ReviewHandler struct {
	reviewService services.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService services.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers the review handler's routes on the given mux.
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/queue", authMiddleware.RequireAuth(h.Queue))
	mux.HandleFunc("POST /api/queue/{tid}/approve", authMiddleware.RequireAuth(h.Approve))
	mux.HandleFunc("POST /api/queue/{tid}/reject", authMiddleware.RequireAuth(h.Reject))
	mux.HandleFunc("POST /api/queue/{tid}/send-back", authMiddleware.RequireAuth(h.SendBack))
}

// Queue handles GET /api/queue
// Returns review-stage tools ordered by relevance score, highest first.
// Optional query params: min_score, limit, offset.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := repositories.QueueFilters{}
	filters.Limit, _ = strconv.Atoi(query.Get("limit"))
	filters.Offset, _ = strconv.Atoi(query.Get("offset"))
	if raw := query.Get("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_min_score", "min_score must be a number"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		filters.MinScore = &minScore
	}

	tools, err := h.reviewService.Queue(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list review queue", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_queue_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := QueueResponse{
		Tools: tools,
		Total: len(tools),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Approve handles POST /api/queue/{tid}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	tool, err := h.reviewService.Approve(r.Context(), toolID)
	if err != nil {
		h.writeDecisionError(w, "approve_tool_failed", toolID.String(), err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tool}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Reject handles POST /api/queue/{tid}/reject
// The reason is optional; when given it is stored on the tool so
// re-discoveries of the same product can surface the earlier decision.
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	var req RejectToolRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}

	tool, err := h.reviewService.Reject(r.Context(), toolID, req.Reason)
	if err != nil {
		h.writeDecisionError(w, "reject_tool_failed", toolID.String(), err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tool}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SendBack handles POST /api/queue/{tid}/send-back
// Returns a tool from review to the inbox for another analysis pass.
func (h *ReviewHandler) SendBack(w http.ResponseWriter, r *http.Request) {
	toolID, ok := ParseToolID(w, r, h.logger)
	if !ok {
		return
	}

	var req SendBackRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}

	tool, err := h.reviewService.SendBack(r.Context(), toolID, req.Note)
	if err != nil {
		h.writeDecisionError(w, "send_back_tool_failed", toolID.String(), err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tool}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeDecisionError maps review decision errors to HTTP responses. A tool
// that is not in review produces a conflict, not a server error, so the
// caller can tell a lost race from a failure.
func (h *ReviewHandler) writeDecisionError(w http.ResponseWriter, errorCode, toolID string, err error) {
	h.logger.Error("Review decision failed",
		zap.String("tool_id", toolID),
		zap.Error(err))

	if errors.Is(err, apperrors.ErrNotFound) {
		if err := ErrorResponse(w, http.StatusNotFound, "tool_not_found", "Tool not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if errors.Is(err, apperrors.ErrInvalidTransition) {
		if err := ErrorResponse(w, http.StatusConflict, "not_in_review", "Tool is not awaiting review"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := ErrorResponse(w, http.StatusInternalServerError, errorCode, err.Error()); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
