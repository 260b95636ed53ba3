package pipeline

import (
	"github.com/nao1215/linkaudit/internal/model"
)

// Extraction is the working state of one single-page extraction. Each step
// fills in its part; the zero value of a field means the step that owns it
// has not run yet.
type Extraction struct {
	// URL is the page being extracted.
	URL string

	// Persist requests the persist step.
	Persist bool

	// Context carries the correlation id and timing of this extraction.
	Context *model.ExtractionContext

	// Content is the fetched page body.
	Content string

	// Title is the page title, if the parser can provide one.
	Title string

	// RawLinks are the parser's candidates.
	RawLinks []model.RawLink

	// Links are the classified links.
	Links []model.ExtractedLink

	// Result is the assembled result.
	Result *model.ExtractionResult

	// Location is where the result was saved, when persisted.
	Location string

	// CompletedStages lists the steps that succeeded, in order.
	CompletedStages []string

	// FailedStage is the step that failed, if any.
	FailedStage string
}

// NewExtraction starts the state of one extraction.
func NewExtraction(url string, persist bool, ec *model.ExtractionContext) *Extraction {
	return &Extraction{
		URL:     url,
		Persist: persist,
		Context: ec,
	}
}
