package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/analyzer"
	"github.com/gleanhq/glean-engine/pkg/services"
)

var analyzeFlags struct {
	limit int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract claims from pending discoveries",
	Long: "Runs the configured analyzer over unprocessed discoveries, turning raw\n" +
		"texts into candidates and claims that flow into the pipeline inbox.",
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeFlags.limit, "limit", 0, "Maximum discoveries to process (0 = analyzer batch limit)")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	an, err := analyzer.New(a.cfg.Analyzer, a.logger)
	if err != nil {
		return fmt.Errorf("build analyzer: %w", err)
	}

	curation, err := a.curationService()
	if err != nil {
		return err
	}

	analysisService := services.NewAnalysisService(&services.AnalysisServiceDeps{
		DB:       a.db,
		Analyzer: an,
		Curation: curation,
		Logger:   a.logger,
	})

	limit := analyzeFlags.limit
	if limit <= 0 {
		limit = a.cfg.Analyzer.BatchLimit
	}

	report, err := analysisService.Analyze(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analyzer: %s\n", an.Name())
	fmt.Fprintf(out, "Processed %d discoveries: %d extracted (%d merged into existing tools), %d empty, %d failed.\n",
		report.Processed, report.Extracted, report.Merged, report.Empty, report.Failed)
	return nil
}
