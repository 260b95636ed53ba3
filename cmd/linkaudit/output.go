package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
	"github.com/nao1215/linkaudit/internal/report"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newFormatter returns the formatter used by the CLI.
func newFormatter() *report.Formatter {
	return report.NewFormatter(report.WithVersion(getVersion()))
}

// writeResult writes result in cfg.Format to cfg.OutputFile, or to stdout
// when no file is set.
func writeResult(stdout io.Writer, cfg *config.Config, result *model.ExtractionResult) error {
	return writeResults(stdout, cfg, []*model.ExtractionResult{result})
}

// writeResults writes every result in cfg.Format, one after another.
// Nothing is written when any result fails to format.
func writeResults(stdout io.Writer, cfg *config.Config, results []*model.ExtractionResult) error {
	formatter := newFormatter()

	var buf bytes.Buffer
	for _, result := range results {
		if err := formatter.Write(&buf, result, cfg.Format); err != nil {
			return err
		}
	}

	if cfg.OutputFile == "" {
		_, err := buf.WriteTo(stdout)
		return err
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.OutputFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.OutputFile, err)
	}
	return nil
}

// printSummary writes a one-line summary of result to w.
func printSummary(w io.Writer, result *model.ExtractionResult) {
	s := result.Summary()
	fmt.Fprintf(w, "%s: %d links (%d documents, %d videos, %d other)\n",
		result.SourceURL, s.TotalLinks, s.DocumentCount, s.VideoCount, s.OtherCount)
}

// storageFailure reports whether err only says that saving failed while
// result is still usable.
func storageFailure(result *model.ExtractionResult, err error) bool {
	return result != nil && errors.Is(err, model.ErrResultStorage)
}
