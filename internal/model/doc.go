// Package model defines the data structures shared by every linkaudit
// component.
//
// This package contains the following main types:
//   - ExtractedLink: a classified hyperlink with its display text
//   - ExtractionMetadata: run-level facts about one page extraction
//   - ExtractionResult: bucketed links for one page or one whole crawl
//   - ExtractionContext: request-scoped state used to decorate errors
//
// The error taxonomy (ContentFetchError, LinkParsingError,
// LinkClassificationError, ResultStorageError, ResultFormattingError) also
// lives here so the fetcher, parser, classifier and presentation layers can
// share it without import cycles.
//
// The models are serializable to JSON for report output and database storage.
package model
