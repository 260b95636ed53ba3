package model

import (
	"context"
	"log/slog"
	"time"
)

// ExtractionContext is the request-scoped state of one extraction attempt.
// It is owned by the call that created it and must not be shared between
// concurrent operations.
type ExtractionContext struct {
	// URL is the page being extracted.
	URL string

	// CorrelationID identifies the attempt in logs and errors.
	CorrelationID CorrelationID

	// StartTime is when the attempt began.
	StartTime time.Time

	// Attempt is the 1-based fetch attempt that was in progress.
	Attempt int

	// TotalAttempts is the number of attempts allowed.
	TotalAttempts int

	// UserAgent is the user agent used for fetching.
	UserAgent string

	// Data carries free-form auxiliary values such as the failing stage.
	Data map[string]any
}

// NewExtractionContext starts a context with a fresh correlation id.
func NewExtractionContext(url, userAgent string) *ExtractionContext {
	return &ExtractionContext{
		URL:           url,
		CorrelationID: NewCorrelationID(),
		StartTime:     time.Now(),
		Attempt:       1,
		TotalAttempts: 1,
		UserAgent:     userAgent,
		Data:          make(map[string]any),
	}
}

// Elapsed returns the time since StartTime.
func (c *ExtractionContext) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}

// Set stores an auxiliary value.
func (c *ExtractionContext) Set(key string, value any) {
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	c.Data[key] = value
}

// LogValue implements slog.LogValuer.
func (c *ExtractionContext) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("url", c.URL),
		slog.String("correlation_id", c.CorrelationID.String()),
		slog.Float64("elapsed_seconds", c.Elapsed().Seconds()),
		slog.Int("attempt", c.Attempt),
		slog.Int("total_attempts", c.TotalAttempts),
	}
	if c.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", c.UserAgent))
	}
	for k, v := range c.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

type extractionContextKey struct{}

// WithExtractionContext returns a context carrying ec, so that stages
// called by the orchestrator can decorate their errors with it.
func WithExtractionContext(ctx context.Context, ec *ExtractionContext) context.Context {
	return context.WithValue(ctx, extractionContextKey{}, ec)
}

// ExtractionContextFrom returns the ExtractionContext carried by ctx.
func ExtractionContextFrom(ctx context.Context) (*ExtractionContext, bool) {
	ec, ok := ctx.Value(extractionContextKey{}).(*ExtractionContext)
	return ec, ok && ec != nil
}
