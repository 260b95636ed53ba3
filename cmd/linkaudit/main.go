// Package main provides the entry point for the linkaudit CLI.
//
// linkaudit extracts the links of web pages and sorts them into
// documents, videos and everything else. It can crawl a site breadth-first,
// process URL lists concurrently, serve the same operations over HTTP and
// keep a history of saved results.
//
// Usage:
//
//	linkaudit extract <url>
//	linkaudit crawl <url> --max-pages 10
//	linkaudit serve
//
// See --help for all available options.
package main

import "os"

func main() {
	os.Exit(Execute())
}
