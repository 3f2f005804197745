package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Server-side rendering engine for deployed Strata sites",
		Long: `Strata renders deployed sites: it matches requests against a compiled
route manifest, renders pages and endpoints through a streaming pipeline,
and statically generates prerendered routes.

The CLI operates on a built site directory containing strata.json, the
route manifest, and the build output. Application binaries embed the same
engine through the strata package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		buildCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
