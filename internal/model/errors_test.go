package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestContextualError(t *testing.T) {
	t.Parallel()

	ec := NewExtractionContext("https://example.com", "linkaudit-test")
	cause := fmt.Errorf("request failed: %w", context.DeadlineExceeded)
	err := NewContentFetchError(ec, cause)

	t.Run("matches its kind", func(t *testing.T) {
		t.Parallel()
		if !errors.Is(err, ErrContentFetch) {
			t.Error("expected ErrContentFetch")
		}
		if errors.Is(err, ErrLinkParsing) {
			t.Error("did not expect ErrLinkParsing")
		}
	})

	t.Run("exposes the cause", func(t *testing.T) {
		t.Parallel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("expected cause to be reachable")
		}
	})

	t.Run("message carries correlation id", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(err.Error(), ec.CorrelationID.String()) {
			t.Errorf("expected correlation id in %q", err.Error())
		}
	})

	t.Run("is found through wrapping", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("crawl: %w", err)
		ce, ok := AsContextual(wrapped)
		if !ok || ce != err {
			t.Error("expected AsContextual to find the original error")
		}
		if !IsTaxonomyError(wrapped) {
			t.Error("expected taxonomy error")
		}
	})

	t.Run("type names", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			err  *ContextualError
			want string
		}{
			{NewContentFetchError(ec, nil), "ContentFetchError"},
			{NewLinkParsingError(ec, nil), "LinkParsingError"},
			{NewLinkClassificationError(ec, nil), "LinkClassificationError"},
		}
		for _, tt := range tests {
			if got := tt.err.TypeName(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		}
	})
}

func TestStorageAndFormattingErrors(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()
		err := NewResultStorageError("/tmp/out.json", errors.New("disk full"))
		if !errors.Is(err, ErrResultStorage) {
			t.Error("expected ErrResultStorage")
		}
		if IsContextual(err) {
			t.Error("storage errors carry no extraction context")
		}
	})

	t.Run("formatting error", func(t *testing.T) {
		t.Parallel()
		err := NewResultFormattingError("xml", errors.New("unsupported"))
		if !errors.Is(err, ErrResultFormatting) {
			t.Error("expected ErrResultFormatting")
		}
	})

	t.Run("unknown errors are not taxonomy errors", func(t *testing.T) {
		t.Parallel()
		if IsTaxonomyError(errors.New("boom")) {
			t.Error("expected plain error to be unexpected")
		}
	})
}
