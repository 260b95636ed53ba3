package model

import (
	"fmt"
	"math"
	"time"
)

// ExtractionMetadata holds run-level facts about one page extraction.
type ExtractionMetadata struct {
	// PageTitle is the <title> of the page, if any.
	PageTitle string `json:"page_title,omitempty"`

	// TotalLinksFound counts every classified link.
	TotalLinksFound int `json:"total_links_found"`

	// DocumentCount counts links in the document bucket.
	DocumentCount int `json:"document_count"`

	// VideoCount counts links in the video bucket.
	VideoCount int `json:"video_count"`

	// ProcessingTime is the elapsed time of the extraction.
	ProcessingTime ProcessingTime `json:"processing_time_seconds"`

	// Timestamp is when the metadata was created.
	Timestamp time.Time `json:"timestamp"`

	// CorrelationID identifies the extraction attempt.
	CorrelationID CorrelationID `json:"correlation_id"`

	// UserAgent is the user agent the page was fetched with.
	UserAgent string `json:"user_agent,omitempty"`
}

// MetadataParams are the inputs of NewExtractionMetadata.
type MetadataParams struct {
	PageTitle       string
	TotalLinksFound int
	DocumentCount   int
	VideoCount      int
	ProcessingTime  time.Duration
	CorrelationID   CorrelationID
	UserAgent       string
}

// NewExtractionMetadata validates p and stamps the metadata with the
// current time.
func NewExtractionMetadata(p MetadataParams) (*ExtractionMetadata, error) {
	if p.TotalLinksFound < 0 || p.DocumentCount < 0 || p.VideoCount < 0 {
		return nil, fmt.Errorf("%w: negative link count", ErrInvalidMetadata)
	}
	if p.DocumentCount+p.VideoCount > p.TotalLinksFound {
		return nil, fmt.Errorf("%w: document (%d) + video (%d) exceeds total (%d)",
			ErrInvalidMetadata, p.DocumentCount, p.VideoCount, p.TotalLinksFound)
	}
	if _, err := ParseCorrelationID(string(p.CorrelationID)); err != nil {
		return nil, err
	}
	pt, err := NewProcessingTime(p.ProcessingTime)
	if err != nil {
		return nil, err
	}

	return &ExtractionMetadata{
		PageTitle:       p.PageTitle,
		TotalLinksFound: p.TotalLinksFound,
		DocumentCount:   p.DocumentCount,
		VideoCount:      p.VideoCount,
		ProcessingTime:  pt,
		Timestamp:       time.Now(),
		CorrelationID:   p.CorrelationID,
		UserAgent:       p.UserAgent,
	}, nil
}

// ExtractionResult is the output of one page extraction or one crawl.
// Every link sits in exactly one bucket, chosen by its Category.
type ExtractionResult struct {
	// SourceURL is the extracted page, or the start URL of a crawl.
	SourceURL string `json:"source_url"`

	// DocumentLinks holds document links in discovery order.
	DocumentLinks []ExtractedLink `json:"document_links"`

	// VideoLinks holds video links in discovery order.
	VideoLinks []ExtractedLink `json:"video_links"`

	// OtherLinks holds the remaining links in discovery order.
	OtherLinks []ExtractedLink `json:"other_links"`

	// Metadata describes the run. It is nil only for a result that was
	// never produced by an extraction.
	Metadata *ExtractionMetadata `json:"metadata,omitempty"`
}

// NewExtractionResult buckets links by category, preserving their order.
func NewExtractionResult(sourceURL string, links []ExtractedLink) *ExtractionResult {
	r := &ExtractionResult{
		SourceURL:     sourceURL,
		DocumentLinks: []ExtractedLink{},
		VideoLinks:    []ExtractedLink{},
		OtherLinks:    []ExtractedLink{},
	}
	for _, l := range links {
		r.add(l)
	}
	return r
}

func (r *ExtractionResult) add(l ExtractedLink) {
	switch l.Category {
	case CategoryDocument:
		r.DocumentLinks = append(r.DocumentLinks, l)
	case CategoryVideo:
		r.VideoLinks = append(r.VideoLinks, l)
	default:
		r.OtherLinks = append(r.OtherLinks, l)
	}
}

// TotalLinks returns the number of links across all buckets.
func (r *ExtractionResult) TotalLinks() int {
	return len(r.DocumentLinks) + len(r.VideoLinks) + len(r.OtherLinks)
}

// AllLinks returns the document, video and other links, in that order.
func (r *ExtractionResult) AllLinks() []ExtractedLink {
	all := make([]ExtractedLink, 0, r.TotalLinks())
	all = append(all, r.DocumentLinks...)
	all = append(all, r.VideoLinks...)
	all = append(all, r.OtherLinks...)
	return all
}

// Bucket returns the links of one category.
func (r *ExtractionResult) Bucket(c Category) []ExtractedLink {
	switch c {
	case CategoryDocument:
		return r.DocumentLinks
	case CategoryVideo:
		return r.VideoLinks
	default:
		return r.OtherLinks
	}
}

// HasContent reports whether the result holds any document or video link.
func (r *ExtractionResult) HasContent() bool {
	return len(r.DocumentLinks) > 0 || len(r.VideoLinks) > 0
}

// Domain returns the source domain without "www.".
func (r *ExtractionResult) Domain() string {
	return SourceDomain(r.SourceURL)
}

// Summary is a quick overview of a result.
type Summary struct {
	SourceDomain  string `json:"source_domain"`
	TotalLinks    int    `json:"total_links"`
	DocumentCount int    `json:"document_count"`
	VideoCount    int    `json:"video_count"`
	OtherCount    int    `json:"other_count"`
}

// Summary returns per-bucket counts.
func (r *ExtractionResult) Summary() Summary {
	return Summary{
		SourceDomain:  r.Domain(),
		TotalLinks:    r.TotalLinks(),
		DocumentCount: len(r.DocumentLinks),
		VideoCount:    len(r.VideoLinks),
		OtherCount:    len(r.OtherLinks),
	}
}

// LinksByDomain groups every link by its host (without "www."), keeping
// bucket order within each group.
func (r *ExtractionResult) LinksByDomain() map[string][]ExtractedLink {
	groups := make(map[string][]ExtractedLink)
	for _, l := range r.AllLinks() {
		d := l.Domain()
		groups[d] = append(groups[d], l)
	}
	return groups
}

// Weights used by QualityScore.
const (
	documentWeight = 1.0
	videoWeight    = 1.0
	otherWeight    = 0.1
)

// QualityScore rates how content-rich the result is, from 0 to 100.
// Documents and videos count fully, other links count one tenth.
func (r *ExtractionResult) QualityScore() float64 {
	total := r.TotalLinks()
	if total == 0 {
		return 0
	}
	weighted := documentWeight*float64(len(r.DocumentLinks)) +
		videoWeight*float64(len(r.VideoLinks)) +
		otherWeight*float64(len(r.OtherLinks))
	score := weighted / float64(total) * 100
	return math.Min(100, math.Round(score*100)/100)
}

// Merge returns a new result holding r's links followed by other's links.
// The source URL is r's. Metadata counts and processing times are summed;
// the title, correlation id and user agent of r are kept.
func (r *ExtractionResult) Merge(other *ExtractionResult) *ExtractionResult {
	merged := &ExtractionResult{
		SourceURL:     r.SourceURL,
		DocumentLinks: concat(r.DocumentLinks, other.DocumentLinks),
		VideoLinks:    concat(r.VideoLinks, other.VideoLinks),
		OtherLinks:    concat(r.OtherLinks, other.OtherLinks),
	}

	switch {
	case r.Metadata != nil && other.Metadata != nil:
		m := *r.Metadata
		m.TotalLinksFound += other.Metadata.TotalLinksFound
		m.DocumentCount += other.Metadata.DocumentCount
		m.VideoCount += other.Metadata.VideoCount
		m.ProcessingTime = m.ProcessingTime.Add(other.Metadata.ProcessingTime)
		merged.Metadata = &m
	case r.Metadata != nil:
		m := *r.Metadata
		merged.Metadata = &m
	case other.Metadata != nil:
		m := *other.Metadata
		merged.Metadata = &m
	}

	return merged
}

func concat(a, b []ExtractedLink) []ExtractedLink {
	out := make([]ExtractedLink, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
