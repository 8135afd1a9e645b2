// Package cli provides the command-line interface for folio.
package cli

import (
	"fmt"

	"github.com/ppiankov/folio/internal/config"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Fetch, cache and serve a personal Medium article feed",
	Long: "folio fetches a Medium author feed, extracts a thumbnail for every article, " +
		"keeps the list in a one-hour cache and serves it to a portfolio site.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("folio %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", config.DefaultDir, "config directory")
	rootCmd.AddCommand(versionCmd, initCmd, fetchCmd, cacheCmd, blogCmd, serveCmd, doctorCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
