package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/linkaudit/internal/model"
)

// ErrInvalidBaseURL is returned when the base URL is not an absolute
// http(s) URL.
var ErrInvalidBaseURL = errors.New("invalid base url")

// skippedHrefPrefixes are href prefixes that never lead to a page.
var skippedHrefPrefixes = []string{"javascript:", "#", "mailto:", "tel:"}

// videoIndicators mark an embedded URL as video content.
var videoIndicators = []string{"youtube", "youtu.be", "embed", "iframe.ly"}

// documentExtensions are excluded from navigation links.
var documentExtensions = []string{".pdf", ".zip", ".tar.gz", ".docx", ".xlsx", ".pptx"}

// repeatedPDFSuffix matches ".pdf.pdf..." at the end of a text.
var repeatedPDFSuffix = regexp.MustCompile(`(?i)(\.pdf){2,}$`)

// contentSelector selects every element that can reference linked content,
// in document order.
const contentSelector = "a, iframe, embed, object"

// Parser discovers links in HTML content.
// It is stateless and safe for concurrent use.
type Parser struct{}

// NewParser creates a new HTML link parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseLinks returns every (absolute URL, text) candidate in content:
// anchors, iframes, embeds and objects, in document order.
// Duplicates are kept.
func (p *Parser) ParseLinks(content, baseURL string) ([]model.RawLink, error) {
	base, doc, err := p.load(content, baseURL)
	if err != nil {
		return nil, err
	}

	links := make([]model.RawLink, 0)
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		if link, ok := p.processElement(s, base); ok {
			links = append(links, link)
		}
	})

	return links, nil
}

// FindNavigationLinks returns the de-duplicated same-host anchor targets
// of content that do not point at documents or archives. The crawler uses
// them to extend its frontier.
func (p *Parser) FindNavigationLinks(content, baseURL string) ([]string, error) {
	base, doc, err := p.load(content, baseURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, ok := resolveURL(base, href)
		if !ok || !strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			return
		}
		if isDocumentPath(resolved.Path) {
			return
		}
		normalized := normalizeURL(resolved.String())
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})

	return links, nil
}

// PageTitle returns the trimmed text of the first <title> element.
func (p *Parser) PageTitle(content string) string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)

	return title
}

// load validates baseURL and parses content into a goquery document.
func (p *Parser) load(content, baseURL string) (*url.URL, *goquery.Document, error) {
	base, err := model.ParseAbsoluteURL(baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return base, goquery.NewDocumentFromNode(root), nil
}

// processElement turns one matched element into a candidate link.
func (p *Parser) processElement(s *goquery.Selection, base *url.URL) (model.RawLink, bool) {
	n := s.Get(0)

	switch n.Data {
	case "a":
		href := strings.TrimSpace(getAttr(n, "href"))
		resolved, ok := resolveURL(base, href)
		if !ok {
			return model.RawLink{}, false
		}
		return model.RawLink{URL: resolved.String(), Text: anchorText(s, href)}, true

	case "iframe", "embed", "object":
		src := getAttr(n, "src")
		if n.Data == "object" {
			src = getAttr(n, "data")
		}
		resolved, ok := resolveURL(base, src)
		if !ok {
			return model.RawLink{}, false
		}
		u := resolved.String()
		return model.RawLink{URL: u, Text: embedText(n, u)}, true
	}

	return model.RawLink{}, false
}

// anchorText picks the display text of an anchor: the download attribute,
// then the rendered text, then the raw href.
func anchorText(s *goquery.Selection, href string) string {
	var text string
	if download, ok := s.Attr("download"); ok && strings.TrimSpace(download) != "" {
		text = strings.TrimSpace(download)
	} else if inner := collapseSpace(s.Text()); inner != "" {
		text = inner
	} else {
		text = href
	}
	return collapsePDFSuffix(text)
}

// embedText labels embedded content.
func embedText(n *html.Node, u string) string {
	lower := strings.ToLower(u)
	for _, indicator := range videoIndicators {
		if strings.Contains(lower, indicator) {
			return "Embedded Video Content"
		}
	}

	if title := strings.TrimSpace(getAttr(n, "title")); title != "" {
		return title
	}

	if typ := strings.TrimSpace(getAttr(n, "type")); typ != "" {
		parts := strings.Split(typ, "/")
		return fmt.Sprintf("Embedded %s Content", strings.ToUpper(parts[len(parts)-1]))
	}

	return "Embedded Content: " + u
}

// collapsePDFSuffix reduces a trailing ".pdf.pdf..." to a single ".pdf".
func collapsePDFSuffix(s string) string {
	return repeatedPDFSuffix.ReplaceAllString(s, ".pdf")
}

// collapseSpace trims s and folds internal whitespace runs into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves the trimmed href against base. Empty hrefs, skipped
// schemes and results without an http(s) scheme and host are rejected.
func resolveURL(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}

	lower := strings.ToLower(href)
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return nil, false
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil, false
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, false
	}
	if resolved.Host == "" {
		return nil, false
	}

	return resolved, true
}

// isDocumentPath reports whether path ends with a document or archive
// extension.
func isDocumentPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
