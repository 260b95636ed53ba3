package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
	"github.com/nao1215/linkaudit/internal/report"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// MaxCrawlPages caps the max_pages a client may request.
const MaxCrawlPages = 50

// Extractor extracts and classifies the links of one page.
type Extractor interface {
	ExtractAndClassify(ctx context.Context, url string, persist bool) (*model.ExtractionResult, string, error)
}

// Crawler extracts links from several pages of a site.
type Crawler interface {
	CrawlAndExtract(ctx context.Context, startURL string, maxPages int) (*model.ExtractionResult, error)
}

// Server is the HTTP API.
type Server struct {
	extractor Extractor
	crawler   Crawler
	formatter *report.Formatter

	// maxPages is used when a crawl request omits max_pages.
	maxPages int

	version string
	started time.Time
	logger  *slog.Logger

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithMaxPages sets the default page budget of /crawl.
func WithMaxPages(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithFormatter sets the formatter used for non-JSON formats.
func WithFormatter(f *report.Formatter) Option {
	return func(s *Server) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server and its routes.
func NewServer(extractor Extractor, crawler Crawler, opts ...Option) *Server {
	s := &Server{
		extractor: extractor,
		crawler:   crawler,
		maxPages:  config.DefaultMaxPages,
		version:   "dev",
		started:   time.Now(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.formatter == nil {
		s.formatter = report.NewFormatter(report.WithVersion(s.version), report.WithLogger(s.logger))
	}

	s.engine = s.routes()
	return s
}

// routes builds the gin engine.
func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(s.logger), requestLogger(s.logger))

	engine.GET("/health", s.handleHealth)
	engine.POST("/extract", s.handleExtract)
	engine.POST("/crawl", s.handleCrawl)

	return engine
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on host:port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}
