package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/repositories"
	"github.com/gleanhq/glean-engine/pkg/scout"
)

var scoutFlags struct {
	limit int
}

var scoutCmd = &cobra.Command{
	Use:   "scout <sample|hackernews|rss>",
	Short: "Collect raw discoveries from a source",
	Long: "Fetches raw texts from the named source and records them as unprocessed\n" +
		"discoveries. Scouts never create tools; run 'glean analyze' afterwards.",
	Args: cobra.ExactArgs(1),
	RunE: runScout,
}

func init() {
	scoutCmd.Flags().IntVar(&scoutFlags.limit, "limit", 25, "Maximum findings to fetch")
}

func runScout(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	var s scout.Scout
	switch args[0] {
	case "sample":
		s = scout.NewSampleScout()
	case "hackernews":
		s = scout.NewHackerNewsScout(a.cfg.Scout.RequestsPerSecond, a.logger)
	case "rss":
		if len(a.cfg.Scout.FeedURLs) == 0 {
			return fmt.Errorf("no feed URLs configured; set scout.feed_urls or SCOUT_FEED_URLS")
		}
		s = scout.NewRSSScout(a.cfg.Scout.FeedURLs, a.cfg.Scout.RequestsPerSecond, a.logger)
	default:
		return fmt.Errorf("unknown source %q (expected sample, hackernews, or rss)", args[0])
	}

	runner := scout.NewRunner(
		repositories.NewSourceRepository(a.db.Pool),
		repositories.NewDiscoveryRepository(a.db.Pool),
		a.logger,
	)

	recorded, err := runner.Run(cmd.Context(), s, scoutFlags.limit)
	if err != nil {
		return fmt.Errorf("scout %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d discoveries from %s.\n", recorded, s.SourceName())
	return nil
}
