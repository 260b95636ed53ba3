package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/linkaudit/internal/model"
)

// formatMarkdown renders the result as GitHub-flavored markdown.
func (f *Formatter) formatMarkdown(result *model.ExtractionResult) (string, error) {
	var sb strings.Builder
	md := markdown.NewMarkdown(&sb)

	f.writeMarkdownHeader(md, result)
	f.writeMarkdownSummary(md, result)
	for _, c := range model.Categories {
		f.writeMarkdownBucket(md, c, result.Bucket(c))
	}
	f.writeMarkdownDomains(md, result)
	f.writeMarkdownInfo(md, result.Metadata)
	f.writeMarkdownFooter(md)

	if err := md.Build(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeMarkdownHeader writes the title.
func (f *Formatter) writeMarkdownHeader(md *markdown.Markdown, result *model.ExtractionResult) {
	md.H1("Extraction Results for: " + result.SourceURL)
	md.PlainText("")
}

// writeMarkdownSummary writes the count table, the category chart and a
// callout about the content found.
func (f *Formatter) writeMarkdownSummary(md *markdown.Markdown, result *model.ExtractionResult) {
	s := result.Summary()

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows: [][]string{
			{categoryTitle(model.CategoryDocument), strconv.Itoa(s.DocumentCount)},
			{categoryTitle(model.CategoryVideo), strconv.Itoa(s.VideoCount)},
			{categoryTitle(model.CategoryOther), strconv.Itoa(s.OtherCount)},
			{"**Total**", "**" + strconv.Itoa(s.TotalLinks) + "**"},
		},
	})
	md.PlainText("")

	if s.TotalLinks > 0 {
		f.writePieChart(md, s)
	}

	switch {
	case s.TotalLinks == 0:
		md.Note("No links were found on this page.")
	case result.HasContent():
		md.Tip(fmt.Sprintf("Quality score: %.2f / 100", result.QualityScore()))
	default:
		md.Warningf("No document or video links among %d link(s).", s.TotalLinks)
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the category distribution.
func (f *Formatter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Categories"),
		piechart.WithShowData(true),
	)

	if s.DocumentCount > 0 {
		chart.LabelAndIntValue(categoryTitle(model.CategoryDocument), uint64(s.DocumentCount))
	}
	if s.VideoCount > 0 {
		chart.LabelAndIntValue(categoryTitle(model.CategoryVideo), uint64(s.VideoCount))
	}
	if s.OtherCount > 0 {
		chart.LabelAndIntValue(categoryTitle(model.CategoryOther), uint64(s.OtherCount))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeMarkdownBucket writes one category section with linked items.
func (f *Formatter) writeMarkdownBucket(md *markdown.Markdown, c model.Category, links []model.ExtractedLink) {
	md.H2(fmt.Sprintf("%s Links (%d)", categoryTitle(c), len(links)))
	md.PlainText("")

	if len(links) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	items := make([]string, len(links))
	for i, l := range links {
		items[i] = markdown.Link(escapeLinkText(l.DisplayText), l.URL)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeMarkdownDomains writes a per-host link count table.
func (f *Formatter) writeMarkdownDomains(md *markdown.Markdown, result *model.ExtractionResult) {
	groups := result.LinksByDomain()
	if len(groups) == 0 {
		return
	}

	rows := make([][]string, 0, len(groups))
	for _, d := range slices.Sorted(maps.Keys(groups)) {
		rows = append(rows, []string{"`" + d + "`", strconv.Itoa(len(groups[d]))})
	}

	md.H2("Links by Domain")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMarkdownInfo writes the extraction metadata.
func (f *Formatter) writeMarkdownInfo(md *markdown.Markdown, m *model.ExtractionMetadata) {
	if m == nil {
		return
	}

	md.H2("Extraction Information")
	md.PlainText("")

	rows := [][]string{
		{"Processing Time", fmt.Sprintf("%.2f seconds (%s)", m.ProcessingTime.Seconds(), m.ProcessingTime.PerformanceCategory())},
		{"Extraction Date", m.Timestamp.Format(timestampLayout)},
		{"Correlation ID", "`" + m.CorrelationID.String() + "`"},
	}
	if m.PageTitle != "" {
		rows = append([][]string{{"Page Title", m.PageTitle}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if m.ProcessingTime.IsSlow() {
		md.Cautionf("Extraction took %.2f seconds.", m.ProcessingTime.Seconds())
		md.PlainText("")
	}
}

// writeMarkdownFooter writes the report footer.
func (f *Formatter) writeMarkdownFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkaudit %s](https://github.com/nao1215/linkaudit)*", f.version)
}

// escapeLinkText keeps brackets in link text from breaking the markup.
func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
