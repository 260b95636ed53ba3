// Package pipeline runs single-page link extractions as a sequence of
// steps.
//
// Service wires a fetcher, a parser and a classifier into the steps
//
//	fetch -> parse -> classify -> assemble [-> persist]
//
// and runs them for one URL. A failing step stops the run; its error is
// wrapped once into the error kind of the stage (ContentFetchError,
// LinkParsingError, LinkClassificationError or ResultStorageError) unless
// it already carries extraction context.
//
// The collaborators are small interfaces defined here, so tests can
// replace any of them with a fake.
//
// BatchProcessor runs many extractions concurrently with a bounded number
// of goroutines using errgroup.
package pipeline
