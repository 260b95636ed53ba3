package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkaudit/internal/model"
)

func newTestFormatter() *Formatter {
	return NewFormatter(
		WithVersion("1.2.3"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func testResult(t *testing.T) *model.ExtractionResult {
	t.Helper()

	mk := func(url, text string, c model.Category) model.ExtractedLink {
		l, err := model.NewExtractedLink(url, text, c)
		if err != nil {
			t.Fatalf("failed to create link: %v", err)
		}
		return l
	}

	result := model.NewExtractionResult("https://www.example.com/course", []model.ExtractedLink{
		mk("https://example.com/doc.pdf", "Report, final", model.CategoryDocument),
		mk("https://youtube.com/watch?v=xyz", "Video", model.CategoryVideo),
		mk("https://example.org", `Home "page"`, model.CategoryOther),
	})
	meta, err := model.NewExtractionMetadata(model.MetadataParams{
		PageTitle:       "Course",
		TotalLinksFound: 3,
		DocumentCount:   1,
		VideoCount:      1,
		ProcessingTime:  1500 * time.Millisecond,
		CorrelationID:   "abcd1234",
	})
	if err != nil {
		t.Fatalf("failed to create metadata: %v", err)
	}
	result.Metadata = meta
	return result
}

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("json round trips", func(t *testing.T) {
		t.Parallel()

		out, err := newTestFormatter().Format(testResult(t), "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(out, "\n") {
			t.Error("expected trailing newline")
		}

		var decoded model.ExtractionResult
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if decoded.TotalLinks() != 3 || decoded.Metadata.CorrelationID != "abcd1234" {
			t.Errorf("unexpected decoded result: %+v", decoded.Summary())
		}
		if decoded.Metadata.ProcessingTime.Seconds() != 1.5 {
			t.Errorf("expected 1.5 seconds, got %v", decoded.Metadata.ProcessingTime.Seconds())
		}
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := newTestFormatter().Format(testResult(t), "TEXT")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Extraction Results for: https://www.example.com/course",
			"Total Links Found: 3",
			"Document Links (1):",
			"- Report, final: https://example.com/doc.pdf",
			"Video Links (1):",
			"Other Links (1):",
			"Links by Domain:\n- example.com: 1\n- example.org: 1\n- youtube.com: 1\n",
			"Processing Time: 1.50 seconds (normal)",
			"Correlation ID: abcd1234",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		out, err := newTestFormatter().Format(testResult(t), "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"# Extraction Results for: https://www.example.com/course",
			"## Document Links (1)",
			"[Report, final](https://example.com/doc.pdf)",
			"## Video Links (1)",
			"## Other Links (1)",
			"## Links by Domain",
			"`example.org`",
			"## Extraction Information",
			"mermaid",
			"linkaudit 1.2.3",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		t.Parallel()

		out, err := newTestFormatter().Format(testResult(t), "csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("invalid csv: %v", err)
		}
		want := [][]string{
			{"Type", "Text", "URL"},
			{"Document", "Report, final", "https://example.com/doc.pdf"},
			{"Video", "Video", "https://youtube.com/watch?v=xyz"},
			{"Other", `Home "page"`, "https://example.org"},
		}
		if len(records) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(records))
		}
		for i := range want {
			for j := range want[i] {
				if records[i][j] != want[i][j] {
					t.Errorf("row %d col %d: expected %q, got %q", i, j, want[i][j], records[i][j])
				}
			}
		}
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		empty := model.NewExtractionResult("https://example.com", nil)
		for _, name := range Formats() {
			if _, err := newTestFormatter().Format(empty, name); err != nil {
				t.Errorf("%s: unexpected error: %v", name, err)
			}
		}
	})

	t.Run("domain section omitted without links", func(t *testing.T) {
		t.Parallel()

		empty := model.NewExtractionResult("https://example.com", nil)
		for _, name := range []string{"text", "markdown"} {
			out, err := newTestFormatter().Format(empty, name)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			if strings.Contains(out, "Links by Domain") {
				t.Errorf("%s: expected no domain section:\n%s", name, out)
			}
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		_, err := newTestFormatter().Format(testResult(t), "xml")
		if !errors.Is(err, model.ErrResultFormatting) || !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ResultFormattingError, got %v", err)
		}
		var fe *model.ResultFormattingError
		if !errors.As(err, &fe) || fe.Format != "xml" {
			t.Errorf("expected format 'xml' in error, got %v", err)
		}
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()

		_, err := newTestFormatter().Format(nil, "json")
		if !errors.Is(err, ErrNilResult) {
			t.Errorf("expected ErrNilResult, got %v", err)
		}
	})
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"json", true},
		{"Markdown", true},
		{" csv ", true},
		{"text", true},
		{"yaml", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSupported(tt.name); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if err := newTestFormatter().Write(&sb, testResult(t), "csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(sb.String(), "Type,Text,URL\n") {
		t.Errorf("unexpected output: %q", sb.String())
	}
}
