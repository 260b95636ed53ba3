package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/pipeline"
)

// errNoURLs is returned when batch gets neither arguments nor a URL file.
var errNoURLs = errors.New("no URLs provided (pass them as arguments or with --file)")

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [url...]",
		Short: "Extract the links of many pages concurrently",
		Long: `Batch runs a single-page extraction for every URL, several at a time.
A failing URL does not stop the others. The results of the successful
URLs are written in input order.

URLs are taken from the arguments and from --file, one per line. Blank
lines and lines starting with # are ignored.

Examples:
  linkaudit batch https://example.com/a https://example.com/b
  linkaudit batch --file urls.txt -c 8 --save`,
		Args: cobra.ArbitraryArgs,
		RunE: runBatchCmd,
	}

	addFetchFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency, "Number of concurrent extractions")
	cmd.Flags().String("file", "", "File with one URL per line")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	urls := append([]string(nil), args...)
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	if file != "" {
		fromFile, err := readURLFile(file)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return errNoURLs
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	bp := pipeline.NewBatchProcessor(a.service,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithPersist(cfg.Save),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(cmd.ErrOrStderr(), "Extracting %d URLs (concurrency: %d)...\n", len(urls), cfg.Concurrency)

	items := make([]pipeline.BatchItem, len(urls))
	var (
		mu   sync.Mutex
		done int
	)
	batchErr := bp.ProcessBatchWithCallback(ctx, urls, func(item pipeline.BatchItem, index int) {
		mu.Lock()
		defer mu.Unlock()

		items[index] = item
		done++
		printProgress(cmd.ErrOrStderr(), done, len(urls), item)
	})

	if err := writeResults(cmd.OutOrStdout(), cfg, pipeline.Succeeded(items)); err != nil {
		return err
	}
	if batchErr != nil {
		return batchErr
	}
	return batchFailures(items)
}

// printProgress writes one status line for a completed item.
func printProgress(w io.Writer, done, total int, item pipeline.BatchItem) {
	switch {
	case item.Err == nil:
		fmt.Fprintf(w, "[%d/%d] ", done, total)
		printSummary(w, item.Result)
	case storageFailure(item.Result, item.Err):
		fmt.Fprintf(w, "[%d/%d] %s: extracted, but not saved: %v\n", done, total, item.URL, item.Err)
	default:
		fmt.Fprintf(w, "[%d/%d] %s: failed: %v\n", done, total, item.URL, item.Err)
	}
}

// batchFailures joins the errors of the failed items. Skipped items, which
// have neither a result nor an error, only occur after cancellation.
func batchFailures(items []pipeline.BatchItem) error {
	var errs []error
	for _, item := range items {
		if item.Err != nil {
			errs = append(errs, item.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d URLs failed: %w", len(errs), len(items), errors.Join(errs...))
}

// readURLFile reads one URL per line, skipping blank lines and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}
