// syncssr-bench stresses the readiness coordination core and reports
// wait-resolution latency. Each round builds a boundary, registers
// slots with waiting consumers and delayed producers, exits the
// boundary, and measures how long every consumer stayed suspended.
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
		Use:   "syncssr-bench",
		Short: "Benchmark the sync-ssr readiness coordination core",
		Long: `syncssr-bench measures how fast readiness waits resolve under load.

A run repeatedly builds a boundary with many coordinated slots, a
consumer waiting on each slot, and a configurable share of delayed
producers. It reports wait latency percentiles, split by whether the
wait resolved through a producer's write or through the boundary exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
