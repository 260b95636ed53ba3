package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
)

// ErrInvalidPattern is returned when a configured pattern does not compile.
var ErrInvalidPattern = errors.New("invalid classification pattern")

// iframeProxyHost wraps third-party embeds; the real target is carried in
// its "url" query parameter.
const iframeProxyHost = "cdn.iframe.ly"

// cancelCheckInterval is how many links are classified between two
// context checks.
const cancelCheckInterval = 256

// Built-in URL patterns, all case-insensitive.
var (
	defaultDocumentPatterns = []string{
		`\.pdf$`,
		`\.pdf[?#]`,
		`pdf.*download`,
		`download.*pdf`,
	}

	defaultVideoPatterns = []string{
		`youtube\.com/watch`,
		`youtu\.be/`,
		`youtube\.com/embed/`,
		`youtube-nocookie\.com`,
	}
)

// Text-context fallbacks.
var (
	// fileSizePDF matches a size annotation next to "pdf", as in "3MB pdf".
	fileSizePDF = regexp.MustCompile(`(?i)\d+\s*MB.*pdf`)

	// watchWord matches "watch" as a whole word.
	watchWord = regexp.MustCompile(`(?i)\bwatch\b`)
)

// RuleClassifier assigns categories with a fixed, ordered rule set:
// document URL patterns, then video URL patterns, then text hints.
//
// Classification is a pure function of (url, text), so a RuleClassifier is
// safe for concurrent use.
type RuleClassifier struct {
	documentPatterns []*regexp.Regexp
	videoPatterns    []*regexp.Regexp

	// extraDocument and extraVideo are appended to the built-in sets.
	extraDocument []string
	extraVideo    []string

	logger *slog.Logger
}

// Option configures a RuleClassifier.
type Option func(*RuleClassifier)

// WithDocumentPatterns adds URL patterns classified as documents.
func WithDocumentPatterns(patterns []string) Option {
	return func(c *RuleClassifier) {
		c.extraDocument = append(c.extraDocument, patterns...)
	}
}

// WithVideoPatterns adds URL patterns classified as videos.
func WithVideoPatterns(patterns []string) Option {
	return func(c *RuleClassifier) {
		c.extraVideo = append(c.extraVideo, patterns...)
	}
}

// WithRules adds the patterns of a config file's classifier section.
func WithRules(rules config.ClassifierRules) Option {
	return func(c *RuleClassifier) {
		c.extraDocument = append(c.extraDocument, rules.DocumentPatterns...)
		c.extraVideo = append(c.extraVideo, rules.VideoPatterns...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *RuleClassifier) {
		c.logger = logger
	}
}

// New compiles the rule set. It fails only when an added pattern is not a
// valid regular expression.
func New(opts ...Option) (*RuleClassifier, error) {
	c := &RuleClassifier{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.documentPatterns, err = compileAll(slices.Concat(defaultDocumentPatterns, c.extraDocument)); err != nil {
		return nil, err
	}
	if c.videoPatterns, err = compileAll(slices.Concat(defaultVideoPatterns, c.extraVideo)); err != nil {
		return nil, err
	}

	return c, nil
}

// compileAll compiles every pattern case-insensitively.
func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Classify categorizes raw links, preserving their order.
// Links that cannot become an ExtractedLink are dropped with a warning.
// The only error is the cancellation of ctx.
func (c *RuleClassifier) Classify(ctx context.Context, links []model.RawLink) ([]model.ExtractedLink, error) {
	classified := make([]model.ExtractedLink, 0, len(links))

	for i, raw := range links {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		category := c.Category(raw.URL, raw.Text)
		link, err := model.NewExtractedLink(raw.URL, raw.Text, category)
		if err != nil {
			c.logger.WarnContext(ctx, "invalid link skipped", "url", raw.URL, "error", err)
			continue
		}
		classified = append(classified, link)
	}

	c.logger.DebugContext(ctx, "links classified",
		"input", len(links),
		"classified", len(classified),
		"dropped", len(links)-len(classified),
	)

	return classified, nil
}

// Category returns the category of one (url, text) pair. First match wins.
//
// Links through the iframe proxy are classified by their wrapped target.
// A proxied embed whose target is missing or unrecognized is a video.
func (c *RuleClassifier) Category(rawURL, text string) model.Category {
	target, proxied := unwrapProxy(rawURL)
	if proxied && target != "" {
		rawURL = target
	}

	category := c.byRules(rawURL, text)
	if proxied && category == model.CategoryOther {
		return model.CategoryVideo
	}
	return category
}

func (c *RuleClassifier) byRules(rawURL, text string) model.Category {
	switch {
	case matchAny(c.documentPatterns, rawURL):
		return model.CategoryDocument
	case matchAny(c.videoPatterns, rawURL):
		return model.CategoryVideo
	case fileSizePDF.MatchString(text):
		return model.CategoryDocument
	case watchWord.MatchString(text):
		return model.CategoryVideo
	default:
		return model.CategoryOther
	}
}

// unwrapProxy returns the "url" query parameter of an iframe proxy link.
// proxied is false for any other host.
func unwrapProxy(rawURL string) (target string, proxied bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Hostname(), iframeProxyHost) {
		return "", false
	}
	return u.Query().Get("url"), true
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
