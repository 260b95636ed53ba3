package model

import (
	"errors"
	"testing"
	"time"
)

func mustLink(t *testing.T, url, text string, c Category) ExtractedLink {
	t.Helper()
	l, err := NewExtractedLink(url, text, c)
	if err != nil {
		t.Fatalf("NewExtractedLink(%q) failed: %v", url, err)
	}
	return l
}

func TestNewExtractionResult(t *testing.T) {
	t.Parallel()

	links := []ExtractedLink{
		mustLink(t, "https://example.com/a.pdf", "A", CategoryDocument),
		mustLink(t, "https://youtube.com/watch?v=1", "V", CategoryVideo),
		mustLink(t, "https://example.org", "Home", CategoryOther),
		mustLink(t, "https://example.com/b.pdf", "B", CategoryDocument),
	}
	result := NewExtractionResult("https://example.com", links)

	t.Run("buckets match categories", func(t *testing.T) {
		t.Parallel()
		for _, c := range Categories {
			for _, l := range result.Bucket(c) {
				if l.Category != c {
					t.Errorf("link %s in %s bucket has category %s", l.URL, c, l.Category)
				}
			}
		}
	})

	t.Run("total equals bucket sizes", func(t *testing.T) {
		t.Parallel()
		want := len(result.DocumentLinks) + len(result.VideoLinks) + len(result.OtherLinks)
		if result.TotalLinks() != want || want != len(links) {
			t.Errorf("expected %d links, got %d", len(links), result.TotalLinks())
		}
	})

	t.Run("preserves discovery order", func(t *testing.T) {
		t.Parallel()
		if result.DocumentLinks[0].DisplayText != "A" || result.DocumentLinks[1].DisplayText != "B" {
			t.Errorf("unexpected document order: %+v", result.DocumentLinks)
		}
	})

	t.Run("summary", func(t *testing.T) {
		t.Parallel()
		s := result.Summary()
		if s.SourceDomain != "example.com" || s.DocumentCount != 2 || s.VideoCount != 1 || s.OtherCount != 1 {
			t.Errorf("unexpected summary: %+v", s)
		}
	})

	t.Run("links by domain", func(t *testing.T) {
		t.Parallel()
		groups := result.LinksByDomain()
		if len(groups["example.com"]) != 2 {
			t.Errorf("expected 2 example.com links, got %d", len(groups["example.com"]))
		}
		if len(groups) != 3 {
			t.Errorf("expected 3 domains, got %d", len(groups))
		}
	})

	t.Run("has content", func(t *testing.T) {
		t.Parallel()
		if !result.HasContent() {
			t.Error("expected content")
		}
		empty := NewExtractionResult("https://example.com", nil)
		if empty.HasContent() {
			t.Error("expected no content")
		}
	})
}

func TestQualityScore(t *testing.T) {
	t.Parallel()

	t.Run("empty result scores zero", func(t *testing.T) {
		t.Parallel()
		if got := NewExtractionResult("https://example.com", nil).QualityScore(); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("content links only scores 100", func(t *testing.T) {
		t.Parallel()
		r := NewExtractionResult("https://example.com", []ExtractedLink{
			mustLink(t, "https://example.com/a.pdf", "A", CategoryDocument),
		})
		if got := r.QualityScore(); got != 100 {
			t.Errorf("expected 100, got %v", got)
		}
	})

	t.Run("mixed result is between", func(t *testing.T) {
		t.Parallel()
		r := NewExtractionResult("https://example.com", []ExtractedLink{
			mustLink(t, "https://example.com/a.pdf", "A", CategoryDocument),
			mustLink(t, "https://example.org", "B", CategoryOther),
		})
		if got := r.QualityScore(); got != 55 {
			t.Errorf("expected 55, got %v", got)
		}
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	meta := func(total, docs int) *ExtractionMetadata {
		m, err := NewExtractionMetadata(MetadataParams{
			TotalLinksFound: total,
			DocumentCount:   docs,
			ProcessingTime:  time.Second,
			CorrelationID:   NewCorrelationID(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return m
	}

	first := NewExtractionResult("https://example.com", []ExtractedLink{
		mustLink(t, "https://example.com/a.pdf", "A", CategoryDocument),
	})
	first.Metadata = meta(1, 1)
	second := NewExtractionResult("https://example.com/lesson-1", []ExtractedLink{
		mustLink(t, "https://example.com/b.pdf", "B", CategoryDocument),
		mustLink(t, "https://example.org", "C", CategoryOther),
	})
	second.Metadata = meta(2, 1)

	merged := first.Merge(second)

	if merged.SourceURL != "https://example.com" {
		t.Errorf("expected aggregate source url, got %q", merged.SourceURL)
	}
	if merged.TotalLinks() != 3 {
		t.Errorf("expected 3 links, got %d", merged.TotalLinks())
	}
	if merged.DocumentLinks[0].DisplayText != "A" || merged.DocumentLinks[1].DisplayText != "B" {
		t.Errorf("unexpected order: %+v", merged.DocumentLinks)
	}
	if merged.Metadata.TotalLinksFound != 3 || merged.Metadata.DocumentCount != 2 {
		t.Errorf("unexpected metadata counts: %+v", merged.Metadata)
	}
	if merged.Metadata.ProcessingTime.Duration() != 2*time.Second {
		t.Errorf("expected summed processing time, got %s", merged.Metadata.ProcessingTime.Duration())
	}
	if merged.Metadata.CorrelationID != first.Metadata.CorrelationID {
		t.Error("expected first correlation id to be kept")
	}
	if first.TotalLinks() != 1 {
		t.Error("merge must not modify the receiver")
	}
}

func TestNewExtractionMetadata(t *testing.T) {
	t.Parallel()

	valid := MetadataParams{
		TotalLinksFound: 3,
		DocumentCount:   1,
		VideoCount:      1,
		ProcessingTime:  time.Millisecond,
		CorrelationID:   NewCorrelationID(),
	}

	t.Run("valid params", func(t *testing.T) {
		t.Parallel()
		m, err := NewExtractionMetadata(valid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	})

	tests := []struct {
		name    string
		mutate  func(p *MetadataParams)
		wantErr error
	}{
		{"negative count", func(p *MetadataParams) { p.VideoCount = -1 }, ErrInvalidMetadata},
		{"counts exceed total", func(p *MetadataParams) { p.DocumentCount = 3 }, ErrInvalidMetadata},
		{"zero processing time", func(p *MetadataParams) { p.ProcessingTime = 0 }, ErrInvalidProcessingTime},
		{"short correlation id", func(p *MetadataParams) { p.CorrelationID = "short" }, ErrInvalidCorrelationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tt.mutate(&p)
			if _, err := NewExtractionMetadata(p); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
