package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/models"
	"github.com/gleanhq/glean-engine/pkg/services"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline health",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	statsService := services.NewStatsService(&services.StatsServiceDeps{DB: a.db, Logger: a.logger})
	stats, err := statsService.PipelineStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("collect stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pipeline:\n")
	for _, status := range models.Statuses {
		fmt.Fprintf(out, "  %-10s %d\n", status, stats.StatusCounts[status])
	}
	fmt.Fprintf(out, "Pending discoveries: %d\n", stats.PendingDiscovery)
	if stats.OrphanClaims > 0 {
		fmt.Fprintf(out, "Orphan claims: %d (integrity fault, investigate)\n", stats.OrphanClaims)
	}

	if len(stats.Sources) > 0 {
		fmt.Fprintf(out, "Sources:\n")
		for _, src := range stats.Sources {
			fmt.Fprintf(out, "  %-14s %-13s %d/%d useful (%.0f%%)\n",
				src.Name, src.Reliability, src.UsefulDiscoveries, src.TotalDiscoveries, src.YieldRate*100)
		}
	}
	return nil
}
