package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "warren",
	Short: "Warren - a proxy-rotation gateway",
	Long: `Warren is a proxy-rotation gateway that accepts HTTP/HTTPS/SOCKS4/SOCKS5
client sessions and forwards each one through a dynamically selected upstream
proxy drawn from a continuously validated pool.

It serves scrapers and automation clients that need high-throughput IP
rotation with per-request health selection:
  - A judge registry that ranks external echo endpoints by latency/success
  - A validator that probes raw host:port candidates against every
    supported client protocol and classifies their anonymity
  - A proxy pool with admission, selection, and eviction
  - A multi-protocol server that dispatches and bridges client sessions`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
