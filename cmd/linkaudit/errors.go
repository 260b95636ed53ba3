package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/model"
)

// Exit codes.
const (
	exitOK         = 0
	exitTaxonomy   = 1
	exitUnexpected = 2
)

// reportError prints err and returns the exit code. Extraction, storage
// and formatting errors exit with 1; anything else is unexpected and exits
// with 2.
func reportError(w io.Writer, err error, verbose bool) int {
	if err == nil {
		return exitOK
	}

	if !model.IsTaxonomyError(err) {
		fmt.Fprintf(w, "unexpected error: %v\n", err)
		return exitUnexpected
	}

	fmt.Fprintf(w, "error: %v\n", err)
	if ce, ok := model.AsContextual(err); ok && verbose {
		fmt.Fprintf(w, "  type:           %s\n", ce.TypeName())
		fmt.Fprintf(w, "  correlation id: %s\n", ce.CorrelationID())
		fmt.Fprintf(w, "  elapsed:        %.2fs\n", ce.Elapsed().Seconds())
	}
	return exitTaxonomy
}

// verboseFlag reads the persistent verbose flag.
func verboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}
