package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/linkaudit/internal/model"
)

// priorityKeywords mark navigation links that point at structured course
// content. Such links are visited before the other links of the same page.
var priorityKeywords = []string{"module", "lesson", "course", "chapter", "part"}

// PageExtractor extracts and classifies the links of a single page.
// It returns the raw page content alongside the result so navigation links
// can be derived without fetching the page twice.
type PageExtractor interface {
	ExtractAndClassify(ctx context.Context, pageURL string, persist bool) (*model.ExtractionResult, string, error)
}

// NavigationFinder derives crawlable same-host links from page content.
type NavigationFinder interface {
	FindNavigationLinks(content, baseURL string) ([]string, error)
}

// Spider crawls a site breadth-first and aggregates the links of every
// page it visits into one result.
//
// A Spider holds no per-crawl state, so one value can serve concurrent
// crawls; each CrawlAndExtract call owns its own frontier.
type Spider struct {
	// extractor runs the single-page extraction.
	extractor PageExtractor

	// navigator finds the links that extend the frontier.
	navigator NavigationFinder

	// delay is the minimum time between two page visits.
	delay time.Duration

	// ignorePatterns are URL path patterns never queued.
	// Patterns use glob syntax (e.g., "/admin/*", "*.zip").
	ignorePatterns []string

	// followPatterns restrict queued URLs to matching paths when set.
	followPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithDelay sets the delay between page visits.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are queued.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider on top of a single-page extractor.
func NewSpider(extractor PageExtractor, navigator NavigationFinder, opts ...SpiderOption) *Spider {
	s := &Spider{
		extractor: extractor,
		navigator: navigator,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CrawlAndExtract visits at most maxPages distinct URLs starting at
// startURL and merges their results. Pages are never persisted.
//
// A page that fails with an extraction error is logged and skipped. When
// no page succeeds, an empty result with zero-count metadata is returned.
// Cancellation of ctx and unexpected (non-extraction) errors abort the
// crawl and are returned.
func (s *Spider) CrawlAndExtract(ctx context.Context, startURL string, maxPages int) (*model.ExtractionResult, error) {
	start := time.Now()
	queue := newFrontier(startURL)
	limiter := s.newLimiter()

	var aggregate *model.ExtractionResult

	s.logger.InfoContext(ctx, "crawling started", "start_url", startURL, "max_pages", maxPages)

	for !queue.empty() && queue.visitedCount() < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, _ := queue.pop()
		if queue.isVisited(current) {
			s.logger.DebugContext(ctx, "skipping visited url", "url", current)
			continue
		}
		queue.markVisited(current)

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "extracting page", "url", current, "pages_crawled", queue.visitedCount())

		pageResult, content, err := s.extractor.ExtractAndClassify(ctx, current, false)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !model.IsContextual(err) {
				return nil, fmt.Errorf("unexpected error while crawling %s: %w", current, err)
			}
			s.logger.WarnContext(ctx, "page extraction failed", "url", current, "error", err)
			continue
		}

		if aggregate == nil {
			aggregate = pageResult
			aggregate.SourceURL = startURL
		} else {
			aggregate = aggregate.Merge(pageResult)
		}

		s.enqueue(ctx, queue, content, current)
	}

	if aggregate == nil {
		aggregate = emptyResult(startURL, time.Since(start))
	}

	s.logger.InfoContext(ctx, "crawling completed",
		"start_url", startURL,
		"total_pages_crawled", queue.visitedCount(),
		"total_links_found", aggregate.TotalLinks(),
	)

	return aggregate, nil
}

// enqueue discovers the navigation links of a page and appends them to
// the frontier, priority links first.
func (s *Spider) enqueue(ctx context.Context, queue *frontier, content, pageURL string) {
	if s.navigator == nil {
		return
	}

	links, err := s.navigator.FindNavigationLinks(content, pageURL)
	if err != nil {
		s.logger.WarnContext(ctx, "navigation link discovery failed", "url", pageURL, "error", err)
		return
	}

	priority, other := partitionByPriority(links)
	added := 0
	for _, link := range append(priority, other...) {
		if !s.shouldCrawl(link) {
			continue
		}
		if queue.push(link) {
			added++
		}
	}

	s.logger.DebugContext(ctx, "navigation links queued",
		"url", pageURL,
		"discovered", len(links),
		"priority", len(priority),
		"queued", added,
	)
}

// newLimiter returns the politeness limiter of one crawl.
func (s *Spider) newLimiter() *rate.Limiter {
	if s.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(s.delay), 1)
}

// partitionByPriority splits links into those containing a priority
// keyword and the rest, preserving order within each group.
func partitionByPriority(links []string) (priority, other []string) {
	for _, link := range links {
		if isPriorityLink(link) {
			priority = append(priority, link)
		} else {
			other = append(other, link)
		}
	}
	return priority, other
}

// isPriorityLink reports whether link contains a priority keyword.
func isPriorityLink(link string) bool {
	lower := strings.ToLower(link)
	for _, keyword := range priorityKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// emptyResult is returned when no page of a crawl succeeded.
func emptyResult(startURL string, elapsed time.Duration) *model.ExtractionResult {
	result := model.NewExtractionResult(startURL, nil)
	result.Metadata = &model.ExtractionMetadata{
		ProcessingTime: model.MeasuredProcessingTime(elapsed),
		Timestamp:      time.Now(),
		CorrelationID:  model.NewCorrelationID(),
	}
	return result
}

// shouldCrawl checks if a URL should be queued based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match everything below a prefix
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users/1"
//   - "*.zip" matches "/files/archive.zip"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
