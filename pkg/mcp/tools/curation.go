// Package tools provides MCP tool implementations for glean-engine.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/apperrors"
	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/services"
)

// CurationToolDeps contains dependencies for curation tools.
type CurationToolDeps struct {
	ReviewService services.ReviewService
	StatsService  services.StatsService
	ToolRepo      repositories.ToolRepository
	ClaimRepo     repositories.ClaimRepository
	Logger        *zap.Logger
}

// RegisterCurationTools registers the curation pipeline MCP tools.
func RegisterCurationTools(s *server.MCPServer, deps *CurationToolDeps) {
	registerListQueueTool(s, deps)
	registerGetTool(s, deps)
	registerApproveTool(s, deps)
	registerRejectTool(s, deps)
	registerSkipTool(s, deps)
	registerPipelineStatsTool(s, deps)
}

// parseToolID parses the tool_id argument shared by the per-tool curation tools.
func parseToolID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult, error) {
	idStr, err := req.RequireString("tool_id")
	if err != nil {
		return uuid.Nil, nil, err
	}

	toolID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewErrorResult("invalid_tool_id", fmt.Sprintf("%q is not a valid tool ID", idStr)), nil
	}

	return toolID, nil, nil
}

// registerListQueueTool adds the list_queue tool for browsing the review queue.
func registerListQueueTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"list_queue",
		mcp.WithDescription(
			"List tools awaiting human review, ordered by relevance score with the "+
				"strongest candidate first. Use get_tool to inspect one before deciding.",
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Maximum number of tools to return (default 20)"),
		),
		mcp.WithNumber(
			"offset",
			mcp.Description("Skip this many tools from the top of the queue"),
		),
		mcp.WithNumber(
			"min_score",
			mcp.Description("Only return tools scoring at least this much"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filters := repositories.QueueFilters{Limit: 20}
		args, _ := req.Params.Arguments.(map[string]any)
		if limitVal, ok := args["limit"].(float64); ok {
			filters.Limit = int(limitVal)
		}
		if offsetVal, ok := args["offset"].(float64); ok {
			filters.Offset = int(offsetVal)
		}
		if minVal, ok := args["min_score"].(float64); ok {
			filters.MinScore = &minVal
		}

		queue, err := deps.ReviewService.Queue(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list review queue: %w", err)
		}

		result := struct {
			Tools []*models.Tool `json:"tools"`
			Count int            `json:"count"`
		}{
			Tools: queue,
			Count: len(queue),
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerGetTool adds the get_tool tool for inspecting a single tool with
// its claims.
func registerGetTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"get_tool",
		mcp.WithDescription(
			"Get a tool by ID, including its sourced claims with confidence and "+
				"source reliability. Use this before approving or rejecting.",
		),
		mcp.WithString(
			"tool_id",
			mcp.Required(),
			mcp.Description("UUID of the tool to fetch"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolID, errResult, err := parseToolID(req)
		if err != nil || errResult != nil {
			return errResult, err
		}

		record, err := deps.ToolRepo.GetToolByID(ctx, toolID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return NewErrorResult("tool_not_found", fmt.Sprintf("no tool with ID %s", toolID)), nil
			}
			return nil, fmt.Errorf("failed to get tool: %w", err)
		}

		claims, err := deps.ClaimRepo.ListByTool(ctx, toolID)
		if err != nil {
			return nil, fmt.Errorf("failed to list claims: %w", err)
		}

		result := struct {
			Tool   *models.Tool    `json:"tool"`
			Claims []*models.Claim `json:"claims"`
		}{
			Tool:   record,
			Claims: claims,
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerApproveTool adds the approve_tool tool.
func registerApproveTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"approve_tool",
		mcp.WithDescription(
			"Approve a tool that is awaiting review, adding it to the catalog. "+
				"Fails if the tool is not in the review stage.",
		),
		mcp.WithString(
			"tool_id",
			mcp.Required(),
			mcp.Description("UUID of the tool to approve"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolID, errResult, err := parseToolID(req)
		if err != nil || errResult != nil {
			return errResult, err
		}

		approved, err := deps.ReviewService.Approve(ctx, toolID)
		if err != nil {
			if result := decisionErrorResult(toolID, err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to approve tool: %w", err)
		}

		deps.Logger.Info("Tool approved via MCP",
			zap.String("tool_id", toolID.String()),
			zap.String("name", approved.Name))

		jsonResult, err := json.Marshal(approved)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerRejectTool adds the reject_tool tool.
func registerRejectTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"reject_tool",
		mcp.WithDescription(
			"Reject a tool that is awaiting review. Give a reason when you can; "+
				"it is kept on the record so re-discoveries surface the earlier decision.",
		),
		mcp.WithString(
			"tool_id",
			mcp.Required(),
			mcp.Description("UUID of the tool to reject"),
		),
		mcp.WithString(
			"reason",
			mcp.Description("Why the tool does not belong in the catalog"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolID, errResult, err := parseToolID(req)
		if err != nil || errResult != nil {
			return errResult, err
		}

		reason := ""
		if args, ok := req.Params.Arguments.(map[string]any); ok {
			reason, _ = args["reason"].(string)
		}

		rejected, err := deps.ReviewService.Reject(ctx, toolID, reason)
		if err != nil {
			if result := decisionErrorResult(toolID, err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to reject tool: %w", err)
		}

		deps.Logger.Info("Tool rejected via MCP",
			zap.String("tool_id", toolID.String()),
			zap.String("name", rejected.Name),
			zap.String("reason", reason))

		jsonResult, err := json.Marshal(rejected)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerSkipTool adds the skip_tool tool. Skipping decides nothing; it
// confirms the tool is still awaiting review and leaves the queue untouched,
// so an assistant can move past a tool it cannot decide on.
func registerSkipTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"skip_tool",
		mcp.WithDescription(
			"Skip a tool in the review queue without deciding on it. Changes "+
				"nothing; the tool stays in the queue for a later pass.",
		),
		mcp.WithString(
			"tool_id",
			mcp.Required(),
			mcp.Description("UUID of the tool to skip"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolID, errResult, err := parseToolID(req)
		if err != nil || errResult != nil {
			return errResult, err
		}

		skipped, err := deps.ReviewService.Skip(ctx, toolID)
		if err != nil {
			if result := decisionErrorResult(toolID, err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to skip tool: %w", err)
		}

		jsonResult, err := json.Marshal(skipped)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerPipelineStatsTool adds the pipeline_stats tool.
func registerPipelineStatsTool(s *server.MCPServer, deps *CurationToolDeps) {
	tool := mcp.NewTool(
		"pipeline_stats",
		mcp.WithDescription(
			"Get pipeline health: tool counts per status, pending discoveries, "+
				"orphaned claims, and per-source discovery yield.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := deps.StatsService.PipelineStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to collect pipeline stats: %w", err)
		}

		jsonResult, err := json.Marshal(stats)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// decisionErrorResult maps review decision errors to actionable tool results.
// Returns nil for errors the assistant cannot act on.
func decisionErrorResult(toolID uuid.UUID, err error) *mcp.CallToolResult {
	if errors.Is(err, apperrors.ErrNotFound) {
		return NewErrorResult("tool_not_found", fmt.Sprintf("no tool with ID %s", toolID))
	}
	if errors.Is(err, apperrors.ErrInvalidTransition) {
		return NewErrorResult("not_in_review", fmt.Sprintf("tool %s is not awaiting review", toolID))
	}
	return nil
}
