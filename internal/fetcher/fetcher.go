package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
)

// Request headers sent with every fetch.
const (
	acceptHeader         = "text/html,application/xhtml+xml"
	acceptLanguageHeader = "en-US,en;q=0.5"
)

// DefaultBackoffUnit is the base of the exponential backoff.
// The wait after attempt n is 2^n units.
const DefaultBackoffUnit = time.Second

// HTTPFetcher retrieves page content with retries.
// It is safe for concurrent use; its configuration is fixed at construction.
type HTTPFetcher struct {
	// client performs the requests. Timeouts are applied per attempt
	// through the request context.
	client *http.Client

	// timeout bounds one attempt, including reading the body.
	timeout time.Duration

	// maxRetries is the number of attempts, including the first.
	maxRetries int

	// userAgent is sent as the User-Agent header.
	userAgent string

	// maxBodySize caps the bytes read from one response.
	maxBodySize int64

	// backoffUnit is multiplied by 2^attempt between attempts.
	backoffUnit time.Duration

	// sites supplies per-host headers and cookies. May be nil.
	sites *config.File

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient sets the HTTP client, for example one routed through Tor.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithMaxRetries sets the number of attempts, including the first.
func WithMaxRetries(n int) Option {
	return func(f *HTTPFetcher) {
		f.maxRetries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the bytes read from one response.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithBackoffUnit sets the base unit of the exponential backoff.
func WithBackoffUnit(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.backoffUnit = d
	}
}

// WithSiteConfigs supplies per-host headers and cookies.
func WithSiteConfigs(sites *config.File) Option {
	return func(f *HTTPFetcher) {
		f.sites = sites
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// New creates an HTTPFetcher with defaults from the config package.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{},
		timeout:     config.DefaultTimeout,
		maxRetries:  config.DefaultMaxRetries,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		backoffUnit: DefaultBackoffUnit,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.maxRetries < 1 {
		f.maxRetries = 1
	}
	if f.maxBodySize <= 0 {
		f.maxBodySize = config.DefaultMaxBodySize
	}

	return f
}

// NewFromConfig creates an HTTPFetcher from the application config.
func NewFromConfig(cfg *config.Config, client *http.Client, logger *slog.Logger) *HTTPFetcher {
	return New(
		WithClient(client),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithUserAgent(cfg.UserAgent),
		WithMaxBodySize(cfg.MaxBodySize),
		WithSiteConfigs(cfg.SiteConfigs),
		WithLogger(logger),
	)
}

// UserAgent returns the configured User-Agent.
func (f *HTTPFetcher) UserAgent() string {
	return f.userAgent
}

// Fetch retrieves the decoded body of rawURL.
// Failures are returned as a ContentFetchError decorated with the
// ExtractionContext carried by ctx, or a fresh one when ctx has none.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	ec, ok := model.ExtractionContextFrom(ctx)
	if !ok {
		ec = model.NewExtractionContext(rawURL, f.userAgent)
	}
	ec.TotalAttempts = f.maxRetries

	if _, err := model.ParseAbsoluteURL(rawURL); err != nil {
		return "", model.NewContentFetchError(ec, err)
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		ec.Attempt = attempt

		body, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			f.logger.DebugContext(ctx, "content fetched",
				"url", rawURL,
				"content_length", len(body),
				"attempt", attempt,
			)
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) || attempt == f.maxRetries {
			break
		}

		wait := f.backoff(attempt)
		f.logger.WarnContext(ctx, "fetch attempt failed, retrying",
			"url", rawURL,
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"backoff", wait,
			"error", err,
		)
		if err := sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	return "", model.NewContentFetchError(ec, lastErr)
}

// fetchOnce performs a single attempt bounded by the per-attempt timeout.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	attemptCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// setHeaders applies the standard headers and any per-site overrides.
func (f *HTTPFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	if f.sites == nil {
		return
	}
	site := f.sites.GetSiteConfig(req.URL.Hostname())
	for k, v := range site.Headers {
		req.Header.Set(k, v)
	}
	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
}

// backoff returns the wait after the given 1-based attempt.
func (f *HTTPFetcher) backoff(attempt int) time.Duration {
	return f.backoffUnit * time.Duration(1<<attempt)
}

// isRetryable reports whether err is a timeout or a 5xx response.
func isRetryable(err error) bool {
	if errors.Is(err, ErrServerStatus) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
