package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/database"
)

// historyDateLayout is the date column of the history listing.
const historyDateLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show results saved with --save",
		Long: `History lists the extractions recorded in the history database,
newest first. Results are recorded when extract, crawl, batch or serve run
with --save.

Examples:
  # The 20 most recent extractions
  linkaudit history

  # Extractions of one site
  linkaudit history example.com

  # Every domain in the history
  linkaudit history --list-domains

  # Print a stored result again
  linkaudit history --show 12 -f markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-domains", "L", false, "List every domain in the history")
	cmd.Flags().Int64P("show", "i", 0, "Print the stored result with this ID")
	cmd.Flags().IntP("limit", "n", database.DefaultListLimit, "Maximum number of records to list")
	cmd.Flags().StringP("format", "f", "text", "Output format: json, text, markdown or csv (markdown and json for listings)")
	addDBFlag(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}

	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	// Open after validating flags so a bad invocation never creates the
	// database.
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	switch {
	case listDomains:
		return listHistoryDomains(ctx, w, db)
	case showID > 0:
		return showHistoryResult(ctx, w, db, showID, format)
	default:
		var domain string
		if len(args) > 0 {
			domain = args[0]
		}
		return listHistory(ctx, w, db, domain, limit, format)
	}
}

// listHistoryDomains prints every domain with at least one record.
func listHistoryDomains(ctx context.Context, w io.Writer, db *database.ResultDB) error {
	domains, err := db.Domains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if len(domains) == 0 {
		fmt.Fprintln(w, "No saved extractions found.")
		fmt.Fprintln(w, "\nUse 'linkaudit extract --save <url>' to save a result.")
		return nil
	}

	fmt.Fprintf(w, "Domains (%d):\n\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(w, "  • %s\n", d)
	}
	return nil
}

// showHistoryResult prints one stored result.
func showHistoryResult(ctx context.Context, w io.Writer, db *database.ResultDB, id int64, format string) error {
	result, err := db.Get(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no saved extraction with ID %d", id)
		}
		return err
	}
	return newFormatter().Write(w, result, format)
}

// listHistory prints the most recent records, optionally of one domain.
func listHistory(ctx context.Context, w io.Writer, db *database.ResultDB, domain string, limit int, format string) error {
	var (
		records []database.Record
		err     error
	)
	if domain != "" {
		records, err = db.ListByDomain(ctx, domain, limit)
	} else {
		records, err = db.List(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "markdown":
		return writeHistoryMarkdown(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No saved extractions found.")
		return nil
	}

	fmt.Fprintf(w, "  %-6s  %-20s  %-30s  %s\n", "ID", "Date", "Domain", "Links (doc/video/other)")
	for _, r := range records {
		fmt.Fprintf(w, "  %-6d  %-20s  %-30s  %d (%d/%d/%d)\n",
			r.ID,
			r.CreatedAt.Local().Format(historyDateLayout),
			r.Domain,
			r.TotalCount, r.DocumentCount, r.VideoCount, r.OtherCount,
		)
	}
	fmt.Fprintln(w, "\nUse 'linkaudit history --show <id>' to print a saved result.")
	return nil
}

// writeHistoryMarkdown prints records as a markdown table.
func writeHistoryMarkdown(w io.Writer, records []database.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format(historyDateLayout),
			markdown.Link(r.Domain, r.SourceURL),
			strconv.Itoa(r.DocumentCount),
			strconv.Itoa(r.VideoCount),
			strconv.Itoa(r.OtherCount),
			strconv.Itoa(r.TotalCount),
		})
	}

	md := markdown.NewMarkdown(w)
	md.H1("Extraction history")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Date", "Source", "Documents", "Videos", "Other", "Total"},
		Rows:   rows,
	})
	return md.Build()
}
