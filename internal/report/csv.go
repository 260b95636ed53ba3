package report

import (
	"encoding/csv"
	"strings"

	"github.com/nao1215/linkaudit/internal/model"
)

// csvHeader is the first row of CSV output.
var csvHeader = []string{"Type", "Text", "URL"}

// formatCSV writes one row per link, documents first.
func (f *Formatter) formatCSV(result *model.ExtractionResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, c := range model.Categories {
		for _, l := range result.Bucket(c) {
			if err := w.Write([]string{categoryTitle(c), l.DisplayText, l.URL}); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
