package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkaudit",
		Short: "Extract and classify the links of web pages",
		Long: `linkaudit fetches web pages, extracts their links and sorts them into
document, video and other links.

A single page is handled by "extract". "crawl" follows same-site navigation
links breadth-first, visiting course-like pages (module, lesson, chapter...)
first, and merges the links of every page into one result.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and detailed errors")
	cmd.PersistentFlags().String("config", "", "Configuration file path (default: .linkaudit.yaml in current or home directory)")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.Execute()
	return reportError(cmd.ErrOrStderr(), err, verboseFlag(cmd))
}
