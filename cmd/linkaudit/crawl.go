package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/config"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a site and aggregate the links of every visited page",
		Long: `Crawl starts at a page and follows same-site navigation links
breadth-first. Links that look like course structure (module, lesson,
course, chapter, part) are visited first. The links of all visited pages
are merged into one result in visit order; repeated links are kept.

Pages that fail to load are skipped. Per-site page budgets and
ignore/follow patterns are read from the configuration file.

Examples:
  # Crawl up to 5 pages (the default)
  linkaudit crawl https://example.com/course

  # Crawl up to 20 pages, one page per second
  linkaudit crawl --max-pages 20 --delay 1s https://example.com/course`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	addFetchFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().IntP("max-pages", "m", config.DefaultMaxPages, "Maximum number of pages to visit")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Pause between page visits")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
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

	spider, maxPages := a.spiderFor(args[0])
	if cmd.Flags().Changed("max-pages") {
		maxPages = cfg.MaxPages
	}

	result, err := spider.CrawlAndExtract(ctx, args[0], maxPages)
	if err != nil {
		return err
	}

	location, saveErr := a.save(ctx, result)
	if err := writeResult(cmd.OutOrStdout(), cfg, result); err != nil {
		return err
	}
	if location != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved result to %s\n", location)
	}
	return saveErr
}
