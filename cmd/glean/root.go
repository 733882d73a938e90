// glean is the operator CLI for the glean-engine curation pipeline. It
// drives the same services as the HTTP API, directly against the database:
// collecting discoveries, extracting claims, running curation sweeps, and
// reviewing the queue from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "glean",
	Short: "Curation pipeline for discovered software products",
	Long: "glean tracks software products from discovery through claim extraction,\n" +
		"relevance scoring, and human review into a curated catalog.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default: environment only)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scoutCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(curateCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(sendBackCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
