package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/linkaudit/internal/model"
)

// Supported format names.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// ErrUnsupportedFormat is the cause of a ResultFormattingError for an
// unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrNilResult is returned when there is nothing to format.
var ErrNilResult = errors.New("result is nil")

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatJSON, FormatText, FormatMarkdown, FormatCSV}
}

// IsSupported reports whether name is a supported format, ignoring case.
func IsSupported(name string) bool {
	return slices.Contains(Formats(), strings.ToLower(strings.TrimSpace(name)))
}

// renderFunc renders one result.
type renderFunc func(f *Formatter, result *model.ExtractionResult) (string, error)

// Formatter renders extraction results. It holds no mutable state and is
// safe for concurrent use.
type Formatter struct {
	// version is printed in footers.
	version string

	renderers map[string]renderFunc
	logger    *slog.Logger
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithVersion sets the version shown in text and markdown footers.
func WithVersion(version string) Option {
	return func(f *Formatter) {
		f.version = version
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		f.logger = logger
	}
}

// NewFormatter creates a Formatter for all supported formats.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		version: "dev",
		renderers: map[string]renderFunc{
			FormatJSON:     (*Formatter).formatJSON,
			FormatText:     (*Formatter).formatText,
			FormatMarkdown: (*Formatter).formatMarkdown,
			FormatCSV:      (*Formatter).formatCSV,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Format renders result in the named format.
// Every failure is returned as a *model.ResultFormattingError.
func (f *Formatter) Format(result *model.ExtractionResult, formatType string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(formatType))

	render, ok := f.renderers[name]
	if !ok {
		return "", model.NewResultFormattingError(formatType, fmt.Errorf("%w: %q", ErrUnsupportedFormat, formatType))
	}
	if result == nil {
		return "", model.NewResultFormattingError(name, ErrNilResult)
	}

	out, err := render(f, result)
	if err != nil {
		f.logger.Error("formatting failed", "format", name, "error", err)
		return "", model.NewResultFormattingError(name, err)
	}

	f.logger.Debug("result formatted", "format", name, "bytes", len(out))
	return out, nil
}

// Write renders result and writes it to w.
func (f *Formatter) Write(w io.Writer, result *model.ExtractionResult, formatType string) error {
	out, err := f.Format(result, formatType)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// categoryTitle returns the display name of a category, e.g. "Document".
func categoryTitle(c model.Category) string {
	return cases.Title(language.English).String(string(c))
}

// timestampLayout is used for extraction dates in text and markdown.
const timestampLayout = "2006-01-02 15:04:05 MST"
