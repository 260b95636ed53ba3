package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/linkaudit/internal/model"
)

// formatText writes a human-readable report for terminals.
func (f *Formatter) formatText(result *model.ExtractionResult) (string, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Extraction Results for: %s\n", result.SourceURL)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Total Links Found: %d\n", result.TotalLinks())
	fmt.Fprintf(&sb, "Quality Score:     %.2f\n", result.QualityScore())

	for _, c := range model.Categories {
		links := result.Bucket(c)
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s Links (%d):\n", categoryTitle(c), len(links))
		for _, l := range links {
			fmt.Fprintf(&sb, "- %s: %s\n", l.DisplayText, l.URL)
		}
	}

	if groups := result.LinksByDomain(); len(groups) > 0 {
		sb.WriteString("\n")
		sb.WriteString("Links by Domain:\n")
		for _, d := range slices.Sorted(maps.Keys(groups)) {
			fmt.Fprintf(&sb, "- %s: %d\n", d, len(groups[d]))
		}
	}

	if m := result.Metadata; m != nil {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString("Extraction Information:\n")
		if m.PageTitle != "" {
			fmt.Fprintf(&sb, "- Page Title: %s\n", m.PageTitle)
		}
		fmt.Fprintf(&sb, "- Processing Time: %.2f seconds (%s)\n", m.ProcessingTime.Seconds(), m.ProcessingTime.PerformanceCategory())
		fmt.Fprintf(&sb, "- Extraction Date: %s\n", m.Timestamp.Format(timestampLayout))
		fmt.Fprintf(&sb, "- Correlation ID: %s\n", m.CorrelationID)
	}

	return sb.String(), nil
}
