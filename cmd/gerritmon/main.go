package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.2.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "gerritmon",
	Short:   "Bridge Gerrit review events to local builds",
	Long:    `gerritmon watches a Gerrit stream-events feed, triggers configured builds for each new patchset, and tracks every event's builds until they complete.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gerritmon.yaml", "path to the configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
