package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Category is the semantic bucket a link is classified into.
type Category string

const (
	// CategoryDocument marks links to documents (PDF files).
	CategoryDocument Category = "document"

	// CategoryVideo marks links to video content (YouTube and embeds).
	CategoryVideo Category = "video"

	// CategoryOther marks every link that is neither a document nor a video.
	CategoryOther Category = "other"
)

// Categories lists all categories in bucket order.
var Categories = []Category{CategoryDocument, CategoryVideo, CategoryOther}

// String returns the category identifier.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryVideo, CategoryOther:
		return true
	default:
		return false
	}
}

// RawLink is an unclassified (absolute URL, display text) candidate
// produced by the link parser.
type RawLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// ExtractedLink is one classified link.
// Values are created by NewExtractedLink and are not modified afterwards.
type ExtractedLink struct {
	// URL is the absolute http(s) URL of the link.
	URL string `json:"url"`

	// DisplayText is the trimmed link text. Never empty.
	DisplayText string `json:"display_text"`

	// Category is the bucket the classifier assigned.
	Category Category `json:"category"`

	// IsValid is reserved for accessibility checks and is always true
	// for links built by NewExtractedLink.
	IsValid bool `json:"is_valid"`
}

// NewExtractedLink validates rawURL and builds an ExtractedLink.
// The display text is trimmed; when it is empty the URL is used instead.
func NewExtractedLink(rawURL, text string, category Category) (ExtractedLink, error) {
	if !category.Valid() {
		return ExtractedLink{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	u, err := ParseAbsoluteURL(rawURL)
	if err != nil {
		return ExtractedLink{}, err
	}

	display := strings.TrimSpace(text)
	if display == "" {
		display = u.String()
	}

	return ExtractedLink{
		URL:         u.String(),
		DisplayText: display,
		Category:    category,
		IsValid:     true,
	}, nil
}

// Domain returns the link host without a leading "www.".
func (l ExtractedLink) Domain() string {
	return SourceDomain(l.URL)
}

// ParseAbsoluteURL parses s and requires an http or https scheme and a host.
func ParseAbsoluteURL(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, s)
	}

	return u, nil
}

// SourceDomain returns the lowercase host of rawURL with a leading "www."
// stripped. It returns an empty string when rawURL cannot be parsed.
func SourceDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
