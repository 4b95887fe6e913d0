package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"warren-hq/warren/pkg/cli"
)

var findFlags struct {
	input  string
	format string
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Grab candidates, validate them, and print the admitted set",
	Long: `Grab candidates from a source, validate each one against every
configured judge and client protocol, and print the records that would be
admitted to the pool.

Examples:
  # Validate a candidate list and print the admitted table
  warren find --input candidates.txt

  # Emit the admitted set as JSON
  warren find --input candidates.txt --format json`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVar(&findFlags.input, "input", "", "candidate file (host:port per line)")
	findCmd.Flags().StringVar(&findFlags.format, "format", "text", "output format: text, json (csv is accepted but fails with an error)")
	findCmd.MarkFlagRequired("input")
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewCommandError("find", err)
	}
	defer logger.Shutdown()

	ctx := context.Background()

	registry, err := newJudgeRegistry(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("find", err)
	}
	v := newValidator(cfg, registry)
	if err := v.CapturePublicIP(ctx); err != nil {
		logger.Warn("failed to capture validator's own public IP", "error", err)
	}

	raw, err := readCandidateFile(findFlags.input)
	if err != nil {
		return cli.NewCommandError("find", err)
	}

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(raw)))

	results := v.ValidateBatch(ctx, toValidatorCandidates(raw), cfg.Validator.MaxConcurrentChecks)
	progress.Update(int64(len(raw)))
	progress.Finish()

	admitted := make([]interface{}, 0, len(results))
	for _, r := range results {
		if r.Admitted {
			admitted = append(admitted, r)
		}
	}

	formatter := cli.NewFormatter(cli.OutputFormat(findFlags.format))
	if err := formatter.FormatTo(os.Stdout, admitted); err != nil {
		return cli.NewCommandError("find", err)
	}

	fmt.Fprintf(os.Stderr, "%d/%d candidates admitted\n", len(admitted), len(results))
	return nil
}
