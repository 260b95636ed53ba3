package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/linkaudit/internal/model"
	"github.com/nao1215/linkaudit/internal/report"
)

// extractRequest is the body of POST /extract.
type extractRequest struct {
	URL        string `json:"url" binding:"required"`
	Format     string `json:"format"`
	SaveResult bool   `json:"save_result"`
}

// crawlRequest is the body of POST /crawl.
type crawlRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxPages int    `json:"max_pages" binding:"omitempty,min=1"`
	Format   string `json:"format"`
}

// linksResponse holds the buckets of a result.
type linksResponse struct {
	Document []model.ExtractedLink `json:"document"`
	Video    []model.ExtractedLink `json:"video"`
	Other    []model.ExtractedLink `json:"other"`
}

// extractionResponse is the JSON body returned for a result.
type extractionResponse struct {
	SourceURL             string                    `json:"source_url"`
	TotalLinks            int                       `json:"total_links"`
	DocumentCount         int                       `json:"document_count"`
	VideoCount            int                       `json:"video_count"`
	OtherCount            int                       `json:"other_count"`
	ProcessingTimeSeconds float64                   `json:"processing_time_seconds"`
	Links                 linksResponse             `json:"links"`
	Metadata              *model.ExtractionMetadata `json:"metadata,omitempty"`
	StorageError          string                    `json:"storage_error,omitempty"`
}

func newExtractionResponse(result *model.ExtractionResult) extractionResponse {
	s := result.Summary()
	resp := extractionResponse{
		SourceURL:     result.SourceURL,
		TotalLinks:    s.TotalLinks,
		DocumentCount: s.DocumentCount,
		VideoCount:    s.VideoCount,
		OtherCount:    s.OtherCount,
		Links: linksResponse{
			Document: result.DocumentLinks,
			Video:    result.VideoLinks,
			Other:    result.OtherLinks,
		},
		Metadata: result.Metadata,
	}
	if result.Metadata != nil {
		resp.ProcessingTimeSeconds = result.Metadata.ProcessingTime.Seconds()
	}
	return resp
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "healthy",
		Version:       s.version,
		UptimeSeconds: time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !s.validateInput(c, req.URL, req.Format) {
		return
	}

	result, _, err := s.extractor.ExtractAndClassify(c.Request.Context(), req.URL, req.SaveResult)
	s.respond(c, result, err, req.Format)
}

func (s *Server) handleCrawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !s.validateInput(c, req.URL, req.Format) {
		return
	}

	maxPages := req.MaxPages
	if maxPages == 0 {
		maxPages = s.maxPages
	}
	maxPages = min(maxPages, MaxCrawlPages)

	result, err := s.crawler.CrawlAndExtract(c.Request.Context(), req.URL, maxPages)
	s.respond(c, result, err, req.Format)
}

// validateInput rejects non-http(s) URLs and unknown formats before any
// work is done.
func (s *Server) validateInput(c *gin.Context, rawURL, format string) bool {
	if _, err := model.ParseAbsoluteURL(rawURL); err != nil {
		badRequest(c, err.Error())
		return false
	}
	if format != "" && !report.IsSupported(format) {
		writeError(c, s.logger, model.NewResultFormattingError(format, report.ErrUnsupportedFormat))
		return false
	}
	return true
}

// respond writes result in the requested format, or the error. A storage
// failure still returns the result, with the failure in storage_error.
func (s *Server) respond(c *gin.Context, result *model.ExtractionResult, err error, format string) {
	var storageErr string
	if err != nil {
		if result == nil || !errors.Is(err, model.ErrResultStorage) {
			writeError(c, s.logger, err)
			return
		}
		s.logger.WarnContext(c.Request.Context(), "result could not be saved", "error", err)
		storageErr = err.Error()
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == report.FormatJSON {
		resp := newExtractionResponse(result)
		resp.StorageError = storageErr
		c.JSON(http.StatusOK, resp)
		return
	}

	body, err := s.formatter.Format(result, format)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.Data(http.StatusOK, contentType(format), []byte(body))
}

// contentType returns the media type of a non-JSON format.
func contentType(format string) string {
	switch format {
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case report.FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
