package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/repositories"
)

var queueFlags struct {
	limit    int
	offset   int
	minScore float64
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List tools awaiting review",
	RunE:  runQueue,
}

var showCmd = &cobra.Command{
	Use:   "show <tool-id>",
	Short: "Show a tool with its claims and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var approveCmd = &cobra.Command{
	Use:   "approve <tool-id>",
	Short: "Approve a tool awaiting review",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

var rejectFlags struct {
	reason string
}

var rejectCmd = &cobra.Command{
	Use:   "reject <tool-id>",
	Short: "Reject a tool awaiting review",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

var sendBackCmd = &cobra.Command{
	Use:   "send-back <tool-id>",
	Short: "Return a tool from review to the inbox",
	Args:  cobra.ExactArgs(1),
	RunE:  runSendBack,
}

func init() {
	queueCmd.Flags().IntVar(&queueFlags.limit, "limit", 0, "Maximum tools to list (0 = queue cap)")
	queueCmd.Flags().IntVar(&queueFlags.offset, "offset", 0, "Skip this many tools from the top of the queue")
	queueCmd.Flags().Float64Var(&queueFlags.minScore, "min-score", 0, "Only list tools scoring at least this much")
	rejectCmd.Flags().StringVar(&rejectFlags.reason, "reason", "", "Why the tool does not belong in the catalog")
}

func parseToolArg(arg string) (uuid.UUID, error) {
	toolID, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is not a valid tool ID", arg)
	}
	return toolID, nil
}

func runQueue(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	filters := repositories.QueueFilters{
		Limit:  queueFlags.limit,
		Offset: queueFlags.offset,
	}
	if cmd.Flags().Changed("min-score") {
		filters.MinScore = &queueFlags.minScore
	}

	queue, err := a.reviewService().Queue(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("list queue: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(queue) == 0 {
		fmt.Fprintln(out, "Review queue is empty.")
		return nil
	}

	for _, tool := range queue {
		score := "  -"
		if tool.RelevanceScore != nil {
			score = fmt.Sprintf("%.2f", *tool.RelevanceScore)
		}
		fmt.Fprintf(out, "%s  %s  %s\n", tool.ID, score, tool.Name)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	toolID, err := parseToolArg(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	tool, err := repositories.NewToolRepository(a.db.Pool).GetToolByID(ctx, toolID)
	if err != nil {
		return fmt.Errorf("get tool: %w", err)
	}
	claims, err := repositories.NewClaimRepository(a.db.Pool).ListByTool(ctx, toolID)
	if err != nil {
		return fmt.Errorf("list claims: %w", err)
	}
	history, err := repositories.NewChangelogRepository(a.db.Pool).ListByTool(ctx, toolID)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", tool.Name, tool.Status)
	if tool.URL != nil {
		fmt.Fprintf(out, "  URL:      %s\n", *tool.URL)
	}
	if tool.Category != "" {
		fmt.Fprintf(out, "  Category: %s\n", tool.Category)
	}
	if tool.RelevanceScore != nil {
		fmt.Fprintf(out, "  Score:    %.2f\n", *tool.RelevanceScore)
	}
	if tool.RejectionReason != nil {
		fmt.Fprintf(out, "  Rejected: %s\n", *tool.RejectionReason)
	}
	if tool.Description != "" {
		fmt.Fprintf(out, "  %s\n", tool.Description)
	}

	if len(claims) > 0 {
		fmt.Fprintf(out, "Claims (%d):\n", len(claims))
		for _, claim := range claims {
			fmt.Fprintf(out, "  [%s %.2f %s] %s\n", claim.ClaimType, claim.Confidence, claim.SourceReliability, claim.Content)
		}
	}
	if len(history) > 0 {
		fmt.Fprintf(out, "History (%d):\n", len(history))
		for _, entry := range history {
			fmt.Fprintf(out, "  %s  %-16s %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.EventType, entry.Detail)
		}
	}
	return nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	toolID, err := parseToolArg(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	tool, err := a.reviewService().Approve(cmd.Context(), toolID)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Approved %s.\n", tool.Name)
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	toolID, err := parseToolArg(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	tool, err := a.reviewService().Reject(cmd.Context(), toolID, rejectFlags.reason)
	if err != nil {
		return fmt.Errorf("reject: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s.\n", tool.Name)
	return nil
}

func runSendBack(cmd *cobra.Command, args []string) error {
	toolID, err := parseToolArg(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	tool, err := a.reviewService().SendBack(cmd.Context(), toolID, "sent back from CLI")
	if err != nil {
		return fmt.Errorf("send back: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent %s back to %s.\n", tool.Name, models.StatusInbox)
	return nil
}
