package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/linkaudit/internal/model"
)

// fakePage is the canned outcome of extracting one URL.
type fakePage struct {
	links   []model.ExtractedLink
	content string
	err     error
}

// fakeExtractor serves canned pages and records the visit order.
type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string]fakePage
	calls []string
}

func (f *fakeExtractor) ExtractAndClassify(_ context.Context, pageURL string, persist bool) (*model.ExtractionResult, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	f.mu.Unlock()

	if persist {
		return nil, "", errors.New("crawl pages must not be persisted")
	}

	page, ok := f.pages[pageURL]
	if !ok {
		ec := model.NewExtractionContext(pageURL, "test")
		return nil, "", model.NewContentFetchError(ec, errors.New("404 not found"))
	}
	if page.err != nil {
		return nil, "", page.err
	}

	result := model.NewExtractionResult(pageURL, page.links)
	docs, videos := len(result.DocumentLinks), len(result.VideoLinks)
	meta, err := model.NewExtractionMetadata(model.MetadataParams{
		TotalLinksFound: len(page.links),
		DocumentCount:   docs,
		VideoCount:      videos,
		ProcessingTime:  10 * time.Millisecond,
		CorrelationID:   model.NewCorrelationID(),
	})
	if err != nil {
		return nil, "", err
	}
	result.Metadata = meta
	return result, page.content, nil
}

func (f *fakeExtractor) visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestSpider(extractor PageExtractor, opts ...SpiderOption) *Spider {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSpider(extractor, NewParser(), append([]SpiderOption{WithSpiderLogger(logger)}, opts...)...)
}

func link(t *testing.T, rawURL, text string, c model.Category) model.ExtractedLink {
	t.Helper()
	l, err := model.NewExtractedLink(rawURL, text, c)
	if err != nil {
		t.Fatalf("failed to create link: %v", err)
	}
	return l
}

func TestCrawlAndExtract(t *testing.T) {
	t.Parallel()

	t.Run("max pages 1 visits only the start page", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://example.com/": {
				links:   []model.ExtractedLink{link(t, "https://example.com/a.pdf", "A", model.CategoryDocument)},
				content: `<a href="/page2">Next</a>`,
			},
			"https://example.com/page2": {content: "<p>two</p>"},
		}}

		result, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := fake.visited(); !reflect.DeepEqual(got, []string{"https://example.com/"}) {
			t.Errorf("expected only the start page, got %v", got)
		}
		if len(result.DocumentLinks) != 1 {
			t.Errorf("expected 1 document link, got %d", len(result.DocumentLinks))
		}
	})

	t.Run("priority links are visited first", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://example.com/": {
				content: `<a href="/about">About</a><a href="/blog">Blog</a><a href="/course/Lesson-1">L1</a>`,
			},
			"https://example.com/course/Lesson-1": {},
			"https://example.com/about":           {},
			"https://example.com/blog":            {},
		}}

		_, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"https://example.com/",
			"https://example.com/course/Lesson-1",
			"https://example.com/about",
		}
		if got := fake.visited(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("padded hrefs reach the real page", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://site.test/": {content: `<a href=" /lesson-1 ">Lesson 1</a>`},
			"https://site.test/lesson-1": {
				links: []model.ExtractedLink{link(t, "https://site.test/notes.pdf", "Notes", model.CategoryDocument)},
			},
		}}

		result, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://site.test/", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://site.test/", "https://site.test/lesson-1"}
		if got := fake.visited(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if len(result.DocumentLinks) != 1 {
			t.Errorf("expected 1 document link, got %d", len(result.DocumentLinks))
		}
	})

	t.Run("never visits a url twice", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://example.com/":  {content: `<a href="/a">A</a><a href="/">Home</a>`},
			"https://example.com/a": {content: `<a href="/">Home</a><a href="/a#x">Self</a>`},
		}}

		_, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.com/", "https://example.com/a"}
		if got := fake.visited(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("failed pages are skipped", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://example.com/": {
				links:   []model.ExtractedLink{link(t, "https://youtu.be/x", "Intro", model.CategoryVideo)},
				content: `<a href="/missing">Gone</a><a href="/ok">OK</a>`,
			},
			"https://example.com/ok": {
				links: []model.ExtractedLink{link(t, "https://example.com/b.pdf", "B", model.CategoryDocument)},
			},
		}}

		result, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fake.visited()) != 3 {
			t.Errorf("expected 3 visits, got %v", fake.visited())
		}
		if result.SourceURL != "https://example.com/" {
			t.Errorf("expected start url as source, got %q", result.SourceURL)
		}
		if len(result.VideoLinks) != 1 || len(result.DocumentLinks) != 1 {
			t.Errorf("expected merged links, got %+v", result.Summary())
		}
		if result.Metadata.TotalLinksFound != 2 {
			t.Errorf("expected 2 links in metadata, got %d", result.Metadata.TotalLinksFound)
		}
	})

	t.Run("no successful page yields empty result", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{}}

		result, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TotalLinks() != 0 {
			t.Errorf("expected no links, got %d", result.TotalLinks())
		}
		if result.Metadata == nil {
			t.Fatal("expected metadata")
		}
		if result.Metadata.TotalLinksFound != 0 || result.Metadata.ProcessingTime.Duration() <= 0 {
			t.Errorf("unexpected metadata: %+v", result.Metadata)
		}
		if result.DocumentLinks == nil || result.VideoLinks == nil || result.OtherLinks == nil {
			t.Error("expected non-nil buckets")
		}
	})

	t.Run("zero max pages yields empty result", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{"https://example.com/": {}}}

		result, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fake.visited()) != 0 {
			t.Errorf("expected no visits, got %v", fake.visited())
		}
		if result.TotalLinks() != 0 {
			t.Errorf("expected empty result, got %d links", result.TotalLinks())
		}
	})

	t.Run("unexpected errors abort the crawl", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		fake := &fakeExtractor{pages: map[string]fakePage{"https://example.com/": {err: boom}}}

		_, err := newTestSpider(fake).CrawlAndExtract(context.Background(), "https://example.com/", 3)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{"https://example.com/": {}}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestSpider(fake).CrawlAndExtract(ctx, "https://example.com/", 3)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("ignore patterns filter the frontier", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExtractor{pages: map[string]fakePage{
			"https://example.com/":            {content: `<a href="/admin/panel">Admin</a><a href="/docs">Docs</a>`},
			"https://example.com/docs":        {},
			"https://example.com/admin/panel": {},
		}}

		_, err := newTestSpider(fake, WithIgnorePatterns([]string{"/admin/*"})).
			CrawlAndExtract(context.Background(), "https://example.com/", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.com/", "https://example.com/docs"}
		if got := fake.visited(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestIsPriorityLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		link string
		want bool
	}{
		{"https://example.com/module-2", true},
		{"https://example.com/LESSON/3", true},
		{"https://example.com/courses", true},
		{"https://example.com/chapter1", true},
		{"https://example.com/part-a", true},
		{"https://example.com/about", false},
	}

	for _, tt := range tests {
		if got := isPriorityLink(tt.link); got != tt.want {
			t.Errorf("isPriorityLink(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"admin prefix match", "/admin/*", "/admin/dashboard", true},
		{"admin prefix exact", "/admin/*", "/admin", true},
		{"admin prefix no match", "/admin/*", "/user/profile", false},
		{"admin prefix partial no match", "/admin/*", "/administrator", false},
		{"zip extension", "*.zip", "/files/archive.zip", true},
		{"zip extension no match", "*.zip", "/files/archive.txt", false},
		{"exact match", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},
		{"wildcard middle", "/api/v?/users", "/api/v1/users", true},
		{"wildcard middle no match", "/api/v?/users", "/api/v10/users", false},
		{"root path", "/", "/", true},
		{"root no match prefix", "/admin/*", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := matchPattern(tt.pattern, tt.path)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldCrawl(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()

		spider := newTestSpider(&fakeExtractor{})
		if !spider.shouldCrawl("https://example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("follow patterns restrict", func(t *testing.T) {
		t.Parallel()

		spider := newTestSpider(&fakeExtractor{}, WithFollowPatterns([]string{"/course/*"}))
		if !spider.shouldCrawl("https://example.com/course/1") {
			t.Error("expected /course/1 to be allowed")
		}
		if spider.shouldCrawl("https://example.com/blog") {
			t.Error("expected /blog to be rejected")
		}
	})

	t.Run("ignore beats follow", func(t *testing.T) {
		t.Parallel()

		spider := newTestSpider(&fakeExtractor{},
			WithFollowPatterns([]string{"/course/*"}),
			WithIgnorePatterns([]string{"/course/admin/*"}),
		)
		if spider.shouldCrawl("https://example.com/course/admin/x") {
			t.Error("expected ignored path to be rejected")
		}
	})
}

func TestSpiderDelay(t *testing.T) {
	t.Parallel()

	fake := &fakeExtractor{pages: map[string]fakePage{
		"https://example.com/":  {content: `<a href="/a">A</a>`},
		"https://example.com/a": {},
	}}

	start := time.Now()
	_, err := newTestSpider(fake, WithDelay(50*time.Millisecond)).
		CrawlAndExtract(context.Background(), "https://example.com/", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected the delay between visits, crawl took %s", elapsed)
	}
}
