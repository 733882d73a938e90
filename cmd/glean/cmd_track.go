package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Check approved tools for site changes",
	Long: "Fetches each approved tool's page, compares it against the last\n" +
		"snapshot, and records detected changes in the changelog.",
	RunE: runTrack,
}

func runTrack(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := tracker.New(a.db, a.cfg.Scout.RequestsPerSecond, a.logger).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("track: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Checked %d tools: %d changed, %d unchanged, %d failed, %d skipped.\n",
		report.Checked, report.Changed, report.Unchanged, report.Failed, report.Skipped)
	return nil
}
