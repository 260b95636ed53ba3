// Package api serves extraction and crawling over HTTP with gin.
//
// Routes:
//
//	GET  /health   liveness and version
//	POST /extract  {"url": "...", "format": "json", "save_result": false}
//	POST /crawl    {"url": "...", "max_pages": 5, "format": "json"}
//
// Extraction errors are reported with their taxonomy name and correlation
// id. A ContentFetchError maps to 502 Bad Gateway, parsing and
// classification errors to 422 Unprocessable Entity, and an unsupported
// format to 400. Any other failure, including a panic, is a generic 500.
package api
