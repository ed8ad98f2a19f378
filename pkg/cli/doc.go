/*
Package cli provides command-line interface utilities for the eleu command.

Output Formatting:

The cli package supports text and JSON output for displaying command
results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Rule document errors get their own renderer so lint findings stay
readable:

	if cli.RenderRuleErrors(os.Stderr, err) {
		os.Exit(2)
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
