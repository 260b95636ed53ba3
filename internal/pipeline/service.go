package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/log"
	"github.com/nao1215/linkaudit/internal/model"
)

// Service runs single-page extractions: fetch, parse, classify, assemble
// and, on request, persist.
//
// A Service keeps no per-call state. Every call gets its own
// ExtractionContext, so concurrent calls share nothing mutable.
type Service struct {
	fetcher    ContentFetcher
	parser     LinkParser
	classifier LinkClassifier

	// storage is optional; without it persist requests are ignored.
	storage ResultStorage

	// userAgent is recorded in the extraction context and metadata.
	userAgent string

	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStorage enables persistence.
func WithStorage(storage ResultStorage) ServiceOption {
	return func(s *Service) {
		s.storage = storage
	}
}

// WithUserAgent sets the user agent recorded in results.
func WithUserAgent(ua string) ServiceOption {
	return func(s *Service) {
		s.userAgent = ua
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an extraction service from its collaborators.
func NewService(fetcher ContentFetcher, parser LinkParser, classifier LinkClassifier, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:    fetcher,
		parser:     parser,
		classifier: classifier,
		userAgent:  config.DefaultUserAgent,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ExtractAndClassify extracts the links of one page and returns the result
// together with the raw page content.
//
// Fetch, parse and classification failures are returned as contextual
// errors carrying the correlation id of the attempt. When persist is set
// and saving fails, the assembled result is still returned along with a
// ResultStorageError.
func (s *Service) ExtractAndClassify(ctx context.Context, url string, persist bool) (*model.ExtractionResult, string, error) {
	x, err := s.Run(ctx, url, persist)
	return x.Result, x.Content, err
}

// Run performs one extraction and returns its full working state,
// including the saved location. The state is never nil.
func (s *Service) Run(ctx context.Context, url string, persist bool) (*Extraction, error) {
	ec := model.NewExtractionContext(url, s.userAgent)
	ctx = log.WithCorrelationID(ctx, ec.CorrelationID.String())
	ctx = model.WithExtractionContext(ctx, ec)

	x := NewExtraction(url, persist, ec)
	p := s.newPipeline(persist)

	s.logger.InfoContext(ctx, "extraction started",
		"url", url,
		"persist", persist,
		"steps", p.StepNames(),
	)

	if err := p.Execute(ctx, x); err != nil {
		s.logger.ErrorContext(ctx, "extraction failed",
			"url", url,
			"stage", x.FailedStage,
			"elapsed", ec.Elapsed(),
			"error", err,
		)
		return x, err
	}

	s.logger.InfoContext(ctx, "extraction completed",
		"url", url,
		"total_links", x.Result.TotalLinks(),
		"document_count", len(x.Result.DocumentLinks),
		"video_count", len(x.Result.VideoLinks),
		"processing_time", x.Result.Metadata.ProcessingTime.Seconds(),
	)

	return x, nil
}

// newPipeline builds the step sequence of one extraction.
func (s *Service) newPipeline(persist bool) *Pipeline {
	p := New(WithLogger(s.logger))
	p.AddSteps(
		NewFetchStep(s.fetcher),
		NewParseStep(s.parser),
		NewClassifyStep(s.classifier),
		NewAssembleStep(),
	)

	if persist {
		if s.storage != nil {
			p.AddStep(NewPersistStep(s.storage, s.logger))
		} else {
			s.logger.Warn("persist requested but no storage is configured")
		}
	}

	return p
}
