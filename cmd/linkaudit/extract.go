package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract and classify the links of one page",
		Long: `Extract fetches one page and sorts its links into documents, videos and
other links.

Examples:
  # Print the result as JSON
  linkaudit extract https://example.com/course

  # Human-readable output
  linkaudit extract -f text https://example.com/course

  # Save the result and record it in the history
  linkaudit extract --save https://example.com/course

  # Fetch through a running Tor proxy
  linkaudit extract --tor-proxy 127.0.0.1:9050 http://<address>.onion/`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}

	addFetchFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	x, err := a.service.Run(ctx, args[0], cfg.Save)
	if err != nil && !storageFailure(x.Result, err) {
		return err
	}

	// A failed save still prints the result; the error decides the exit code.
	if werr := writeResult(cmd.OutOrStdout(), cfg, x.Result); werr != nil {
		return werr
	}
	if x.Location != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved result to %s\n", x.Location)
	}
	return err
}
