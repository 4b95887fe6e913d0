/*
Package cli provides command-line interface utilities shared by Warren's
subcommands.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the warren command (grab, find, check, serve).

Output Formatting:

The cli package supports text and JSON output for displaying command
results — for example rendering an admitted pool or a judge health report.
The CSV formatter writes only its header row and then returns an error:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := poolSnapshot
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Progress Reporting:

For long-running operations like a find run validating a candidate list, use the
progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalCandidates)
	for i, candidate := range candidates {
		// validate candidate
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
