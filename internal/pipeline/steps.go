package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/linkaudit/internal/model"
)

// Step names, also used as the "stage" of a failed extraction.
const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StageClassify = "classify"
	StageAssemble = "assemble"
	StagePersist  = "persist"
)

// ContentFetcher retrieves page content.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LinkParser discovers link candidates in page content.
type LinkParser interface {
	ParseLinks(content, baseURL string) ([]model.RawLink, error)
}

// TitleParser is implemented by parsers that can read the page title.
type TitleParser interface {
	PageTitle(content string) string
}

// LinkClassifier assigns categories to link candidates.
type LinkClassifier interface {
	Classify(ctx context.Context, links []model.RawLink) ([]model.ExtractedLink, error)
}

// ResultStorage persists results. An empty filename lets the storage
// derive one.
type ResultStorage interface {
	Save(ctx context.Context, result *model.ExtractionResult, filename string) (string, error)
}

// contextualize wraps err with wrap unless it already carries extraction
// context. Context cancellation is wrapped too, so errors.Is still finds
// it through the contextual error.
func contextualize(ec *model.ExtractionContext, err error, wrap func(*model.ExtractionContext, error) *model.ContextualError) error {
	if model.IsContextual(err) {
		return err
	}
	return wrap(ec, err)
}

// FetchStep retrieves the page content.
type FetchStep struct {
	fetcher ContentFetcher
}

// NewFetchStep creates a fetch step.
func NewFetchStep(fetcher ContentFetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StageFetch
}

// Do fetches x.URL into x.Content.
func (s *FetchStep) Do(ctx context.Context, x *Extraction) error {
	content, err := s.fetcher.Fetch(ctx, x.URL)
	if err != nil {
		return contextualize(x.Context, err, model.NewContentFetchError)
	}
	x.Content = content
	return nil
}

// ParseStep discovers link candidates and the page title.
type ParseStep struct {
	parser LinkParser
}

// NewParseStep creates a parse step.
func NewParseStep(parser LinkParser) *ParseStep {
	return &ParseStep{parser: parser}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return StageParse
}

// Do parses x.Content against x.URL.
func (s *ParseStep) Do(_ context.Context, x *Extraction) error {
	links, err := s.parser.ParseLinks(x.Content, x.URL)
	if err != nil {
		return contextualize(x.Context, err, model.NewLinkParsingError)
	}
	x.RawLinks = links

	if titler, ok := s.parser.(TitleParser); ok {
		x.Title = titler.PageTitle(x.Content)
	}
	return nil
}

// ClassifyStep categorizes the link candidates.
type ClassifyStep struct {
	classifier LinkClassifier
}

// NewClassifyStep creates a classify step.
func NewClassifyStep(classifier LinkClassifier) *ClassifyStep {
	return &ClassifyStep{classifier: classifier}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return StageClassify
}

// Do classifies x.RawLinks into x.Links.
func (s *ClassifyStep) Do(ctx context.Context, x *Extraction) error {
	links, err := s.classifier.Classify(ctx, x.RawLinks)
	if err != nil {
		return contextualize(x.Context, err, model.NewLinkClassificationError)
	}
	x.Links = links
	return nil
}

// AssembleStep buckets the classified links and computes the metadata.
type AssembleStep struct{}

// NewAssembleStep creates an assemble step.
func NewAssembleStep() *AssembleStep {
	return &AssembleStep{}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return StageAssemble
}

// Do builds x.Result from x.Links.
func (s *AssembleStep) Do(_ context.Context, x *Extraction) error {
	result := model.NewExtractionResult(x.URL, x.Links)

	meta, err := model.NewExtractionMetadata(model.MetadataParams{
		PageTitle:       x.Title,
		TotalLinksFound: result.TotalLinks(),
		DocumentCount:   len(result.DocumentLinks),
		VideoCount:      len(result.VideoLinks),
		ProcessingTime:  max(x.Context.Elapsed(), model.MinProcessingTime),
		CorrelationID:   x.Context.CorrelationID,
		UserAgent:       x.Context.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble result: %w", err)
	}
	result.Metadata = meta

	x.Result = result
	return nil
}

// PersistStep saves the assembled result.
type PersistStep struct {
	storage ResultStorage
	logger  *slog.Logger
}

// NewPersistStep creates a persist step.
func NewPersistStep(storage ResultStorage, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{storage: storage, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return StagePersist
}

// Do saves x.Result and records its location.
// Failures are returned as a ResultStorageError.
func (s *PersistStep) Do(ctx context.Context, x *Extraction) error {
	start := time.Now()

	location, err := s.storage.Save(ctx, x.Result, "")
	if err != nil {
		var storageErr *model.ResultStorageError
		if errors.As(err, &storageErr) {
			return err
		}
		return model.NewResultStorageError("", err)
	}
	x.Location = location

	s.logger.InfoContext(ctx, "result saved",
		"location", location,
		"elapsed", time.Since(start),
	)
	return nil
}
