package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Run one curation sweep",
	Long: "Moves inbox tools into analysis, scores analyzing tools, and promotes\n" +
		"those that clear the thresholds into the review queue.",
	RunE: runCurate,
}

func runCurate(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	curation, err := a.curationService()
	if err != nil {
		return err
	}

	report, err := curation.Curate(cmd.Context())
	if err != nil {
		return fmt.Errorf("curate: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Started analysis: %d\n", report.Started)
	fmt.Fprintf(out, "Scored:           %d\n", report.Scored)
	fmt.Fprintf(out, "Promoted:         %d\n", report.Promoted)
	fmt.Fprintf(out, "Held:             %d\n", report.Held)
	if report.QueueFull > 0 {
		fmt.Fprintf(out, "Deferred (review queue full): %d\n", report.QueueFull)
	}
	if report.Orphans > 0 {
		fmt.Fprintf(out, "Orphan claims detected: %d\n", report.Orphans)
	}
	return nil
}
