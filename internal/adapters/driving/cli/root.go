// Package cli provides the command-line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oswaldlabs/sitechat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "Chat server for a personal site",
	Long: `sitechat answers visitor questions about a personal site.

It indexes the site's pages and FAQ content into an in-memory store and
serves a chat endpoint that returns matching sources, optionally with a
generated answer.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Execute runs the root command. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}
