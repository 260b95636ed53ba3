package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nao1215/linkaudit/internal/model"
)

func TestReportError(t *testing.T) {
	t.Parallel()

	ec := model.NewExtractionContext("https://example.com/", "test-agent")
	fetchErr := model.NewContentFetchError(ec, errors.New("connection refused"))

	tests := []struct {
		name     string
		err      error
		verbose  bool
		wantCode int
		want     []string
		notWant  []string
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: exitOK,
		},
		{
			name:     "taxonomy error",
			err:      fetchErr,
			wantCode: exitTaxonomy,
			want:     []string{"error: ", "connection refused"},
			notWant:  []string{"correlation id"},
		},
		{
			name:     "taxonomy error verbose",
			err:      fetchErr,
			verbose:  true,
			wantCode: exitTaxonomy,
			want:     []string{"correlation id: " + ec.CorrelationID.String(), "type:", "elapsed:"},
		},
		{
			name:     "wrapped storage error",
			err:      fmt.Errorf("crawl: %w", model.NewResultStorageError("/tmp/out", errors.New("disk full"))),
			wantCode: exitTaxonomy,
			want:     []string{"error: crawl:"},
		},
		{
			name:     "unexpected error",
			err:      errors.New("boom"),
			wantCode: exitUnexpected,
			want:     []string{"unexpected error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			code := reportError(&buf, tt.err, tt.verbose)
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got %q", want, buf.String())
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(buf.String(), notWant) {
					t.Errorf("expected output not to contain %q, got %q", notWant, buf.String())
				}
			}
		})
	}
}
