package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"warren-hq/warren/pkg/cli"
	"warren-hq/warren/pkg/external"
)

var grabFlags struct {
	input  string
	format string
}

var grabCmd = &cobra.Command{
	Use:   "grab",
	Short: "Enumerate raw candidates from a source, unvalidated",
	Long: `Enumerate raw host:port candidates from a source without validating them.

The real candidate source (a remote proxy list, a scraping service) is an
external collaborator reached only through the Grabber interface (spec §1);
this command's --input file is the file-backed stand-in used for local
testing and one-off lists.

Examples:
  # Print every candidate in a file
  warren grab --input candidates.txt

  # Emit candidates as JSON
  warren grab --input candidates.txt --format json`,
	RunE: runGrab,
}

func init() {
	rootCmd.AddCommand(grabCmd)

	grabCmd.Flags().StringVar(&grabFlags.input, "input", "", "candidate file (host:port per line)")
	grabCmd.Flags().StringVar(&grabFlags.format, "format", "text", "output format: text, json (csv is accepted but fails with an error)")
	grabCmd.MarkFlagRequired("input")
}

func runGrab(cmd *cobra.Command, args []string) error {
	candidates, err := readCandidateFile(grabFlags.input)
	if err != nil {
		return cli.NewCommandError("grab", err)
	}

	grabber := external.NewFileGrabber(candidates)
	drained, err := drainGrabber(context.Background(), grabber)
	if err != nil {
		return cli.NewCommandError("grab", err)
	}

	formatter := cli.NewFormatter(cli.OutputFormat(grabFlags.format))
	if err := formatter.FormatTo(os.Stdout, drained); err != nil {
		return cli.NewCommandError("grab", err)
	}

	fmt.Fprintf(os.Stderr, "%d candidates enumerated\n", len(drained))
	return nil
}
