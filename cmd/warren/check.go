package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"warren-hq/warren/pkg/cli"
)

// Exit codes for `check`, per SPEC_FULL §12 supplement #4: give CI-style
// scripting a meaningful signal beyond "it ran".
const (
	exitAdmitted     = 0
	exitFatal        = 1
	exitNoneAdmitted = 3
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate an input candidate list",
	Long: `Validate every host:port candidate in <file> and report how many would
be admitted to the pool.

Exit codes:
  0  at least one candidate was admitted
  1  the file could not be read or parsed
  3  the file parsed but nothing in it validated`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		os.Exit(exitFatal)
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		os.Exit(exitFatal)
		return cli.NewCommandError("check", err)
	}
	defer logger.Shutdown()

	raw, err := readCandidateFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
		return nil
	}

	ctx := context.Background()
	registry, err := newJudgeRegistry(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
		return nil
	}
	v := newValidator(cfg, registry)
	if err := v.CapturePublicIP(ctx); err != nil {
		logger.Warn("failed to capture validator's own public IP", "error", err)
	}

	p := newPool(cfg)
	results := v.ValidateBatch(ctx, toValidatorCandidates(raw), cfg.Validator.MaxConcurrentChecks)

	admittedCount := 0
	for _, r := range results {
		if err := admit(p, r); err != nil {
			logger.Warn("failed to admit candidate", "host", r.Host, "port", r.Port, "error", err)
			continue
		}
		if r.Admitted {
			admittedCount++
		}
	}

	fmt.Printf("%d candidates checked, %d admitted\n", len(results), admittedCount)

	if admittedCount == 0 {
		os.Exit(exitNoneAdmitted)
	}
	return nil
}
