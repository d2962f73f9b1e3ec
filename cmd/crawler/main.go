// Command crawler collects job postings from the configured listing sites, enriches them
// with company ratings and writes one CSV file per source.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	sourceArgs []string
	noEnrich   bool
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Crawl job postings and enrich them with company ratings",
	Long: `Runs one pipeline per source: listing crawl -> detail pages (when the source has them) -> company ratings -> CSV.

Each stage checkpoints the CSV file, so a failing later stage never loses collected postings.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringSliceVarP(&sourceArgs, "source", "s", nil, "Sources to run (wanted, saramin); defaults to every enabled source")
	rootCmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Skip the company rating stage")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
