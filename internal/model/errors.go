package model

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	// ErrEmptyURL is returned when a URL is empty.
	ErrEmptyURL = errors.New("url is empty")

	// ErrInvalidURL is returned when a URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidCategory is returned for an unknown link category.
	ErrInvalidCategory = errors.New("invalid link category")

	// ErrInvalidCorrelationID is returned for a correlation id shorter than
	// MinCorrelationIDLength.
	ErrInvalidCorrelationID = errors.New("correlation id must be at least 8 characters")

	// ErrInvalidProcessingTime is returned for a zero or negative duration.
	ErrInvalidProcessingTime = errors.New("processing time must be positive")

	// ErrInvalidMetadata is returned when metadata counts are inconsistent.
	ErrInvalidMetadata = errors.New("invalid extraction metadata")
)

// Error kinds of the extraction taxonomy. Use errors.Is to test for them.
var (
	// ErrContentFetch marks failures retrieving page content.
	ErrContentFetch = errors.New("content fetch failed")

	// ErrLinkParsing marks failures discovering links in fetched content.
	ErrLinkParsing = errors.New("link parsing failed")

	// ErrLinkClassification marks systemic classification failures.
	ErrLinkClassification = errors.New("link classification failed")

	// ErrResultStorage marks persistence failures.
	ErrResultStorage = errors.New("result storage failed")

	// ErrResultFormatting marks unsupported or failing format conversions.
	ErrResultFormatting = errors.New("result formatting failed")
)

// ContextualError is an extraction failure decorated with the
// ExtractionContext it was raised in. Kind is one of ErrContentFetch,
// ErrLinkParsing or ErrLinkClassification.
type ContextualError struct {
	Kind    error
	Message string
	Context *ExtractionContext
	Cause   error

	// elapsed is frozen when the error is created.
	elapsed time.Duration
}

// NewContentFetchError wraps cause as a ContentFetchError.
func NewContentFetchError(ec *ExtractionContext, cause error) *ContextualError {
	return newContextualError(ErrContentFetch, ec, cause, "failed to fetch content from %s", ec.URL)
}

// NewLinkParsingError wraps cause as a LinkParsingError.
func NewLinkParsingError(ec *ExtractionContext, cause error) *ContextualError {
	return newContextualError(ErrLinkParsing, ec, cause, "failed to parse links from %s", ec.URL)
}

// NewLinkClassificationError wraps cause as a LinkClassificationError.
func NewLinkClassificationError(ec *ExtractionContext, cause error) *ContextualError {
	return newContextualError(ErrLinkClassification, ec, cause, "failed to classify links from %s", ec.URL)
}

func newContextualError(kind error, ec *ExtractionContext, cause error, format string, args ...any) *ContextualError {
	return &ContextualError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: ec,
		Cause:   cause,
		elapsed: ec.Elapsed(),
	}
}

// Error returns the message, the cause and the correlation id.
func (e *ContextualError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return fmt.Sprintf("%s [correlation_id=%s]", msg, e.CorrelationID())
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ContextualError) Unwrap() []error {
	return withCause(e.Kind, e.Cause)
}

func withCause(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}
	return []error{kind, cause}
}

// CorrelationID returns the correlation id of the failed attempt.
func (e *ContextualError) CorrelationID() CorrelationID {
	if e.Context == nil {
		return ""
	}
	return e.Context.CorrelationID
}

// Elapsed returns the time between the attempt's start and the failure.
func (e *ContextualError) Elapsed() time.Duration {
	return e.elapsed
}

// TypeName returns the taxonomy name of the error.
func (e *ContextualError) TypeName() string {
	switch {
	case errors.Is(e.Kind, ErrContentFetch):
		return "ContentFetchError"
	case errors.Is(e.Kind, ErrLinkParsing):
		return "LinkParsingError"
	case errors.Is(e.Kind, ErrLinkClassification):
		return "LinkClassificationError"
	default:
		return "ExtractionError"
	}
}

// AsContextual returns the first ContextualError in err's chain.
func AsContextual(err error) (*ContextualError, bool) {
	var ce *ContextualError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsContextual reports whether err already carries extraction context.
func IsContextual(err error) bool {
	_, ok := AsContextual(err)
	return ok
}

// ResultStorageError reports a failed save. It carries no extraction
// context.
type ResultStorageError struct {
	Location string
	Cause    error
}

// NewResultStorageError wraps cause as a ResultStorageError.
func NewResultStorageError(location string, cause error) *ResultStorageError {
	return &ResultStorageError{Location: location, Cause: cause}
}

// Error returns a description of the failure.
func (e *ResultStorageError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s: %v", ErrResultStorage, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrResultStorage, e.Location, e.Cause)
}

// Unwrap exposes ErrResultStorage and the cause.
func (e *ResultStorageError) Unwrap() []error {
	return withCause(ErrResultStorage, e.Cause)
}

// ResultFormattingError reports an unsupported or failing format.
type ResultFormattingError struct {
	Format string
	Cause  error
}

// NewResultFormattingError wraps cause as a ResultFormattingError.
func NewResultFormattingError(format string, cause error) *ResultFormattingError {
	return &ResultFormattingError{Format: format, Cause: cause}
}

// Error returns a description of the failure.
func (e *ResultFormattingError) Error() string {
	return fmt.Sprintf("failed to format result as %s: %v", e.Format, e.Cause)
}

// Unwrap exposes ErrResultFormatting and the cause.
func (e *ResultFormattingError) Unwrap() []error {
	return withCause(ErrResultFormatting, e.Cause)
}

// IsTaxonomyError reports whether err belongs to the extraction error
// taxonomy, as opposed to an unexpected failure.
func IsTaxonomyError(err error) bool {
	return errors.Is(err, ErrContentFetch) ||
		errors.Is(err, ErrLinkParsing) ||
		errors.Is(err, ErrLinkClassification) ||
		errors.Is(err, ErrResultStorage) ||
		errors.Is(err, ErrResultFormatting)
}
