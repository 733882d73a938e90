package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/services"
)

var reportFlags struct {
	days int
	json bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a digest of recent catalog activity",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportFlags.days, "days", 7, "How many days back the digest covers")
	reportCmd.Flags().BoolVar(&reportFlags.json, "json", false, "Emit the digest as JSON instead of markdown")
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	reportService := services.NewReportService(&services.ReportServiceDeps{DB: a.db, Logger: a.logger})

	since := time.Now().AddDate(0, 0, -reportFlags.days)
	digest, err := reportService.Digest(cmd.Context(), since)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(digest)
	}

	fmt.Fprint(out, reportService.RenderMarkdown(digest))
	return nil
}
