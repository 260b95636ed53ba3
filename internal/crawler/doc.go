// Package crawler discovers links in HTML pages and crawls sites
// breadth-first.
//
// # Components
//
//   - Parser: extracts (URL, text) candidates from anchors, iframes,
//     embeds and objects, and finds same-host navigation links
//   - Spider: visits pages breadth-first up to a page budget and merges
//     the per-page extraction results
//   - frontier: FIFO queue with visited and queued sets
//
// # Crawl order
//
// The frontier starts with the start URL. For every visited page, the
// navigation links containing a priority keyword (module, lesson, course,
// chapter, part) are queued first, then the remaining ones. A URL is never
// visited twice within one crawl.
//
// # Failures
//
// A page whose extraction fails is logged and skipped; the crawl goes on.
// If no page succeeds, the crawl still returns a well-formed empty result.
//
// # Usage
//
//	spider := crawler.NewSpider(service, crawler.NewParser(), crawler.WithDelay(time.Second))
//	result, err := spider.CrawlAndExtract(ctx, "https://example.com/course", 5)
package crawler
