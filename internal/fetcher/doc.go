// Package fetcher retrieves page content over HTTP with bounded retries.
//
// HTTPFetcher applies a per-attempt timeout, a fixed set of request headers
// and exponential backoff. Timeouts and 5xx responses are retried up to
// MaxRetries attempts in total (the first attempt included). Client errors
// (4xx) and other transport failures fail immediately. Every failure is
// returned as a model ContentFetchError carrying the extraction context.
//
// Response bodies are capped at the configured size and decoded to UTF-8
// using the Content-Type charset or the document's <meta charset>.
package fetcher
