package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/linkaudit/internal/model"
)

// errorResponse is the body of a taxonomy error.
type errorResponse struct {
	Error          string  `json:"error"`
	Type           string  `json:"type"`
	CorrelationID  string  `json:"correlation_id,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

// statusFor maps an extraction error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrContentFetch):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrLinkParsing), errors.Is(err, model.ErrLinkClassification):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrResultFormatting):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as JSON. Errors outside the taxonomy are logged and
// hidden behind a generic message.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	ctx := c.Request.Context()

	if ce, ok := model.AsContextual(err); ok {
		logger.ErrorContext(ctx, "extraction failed",
			"type", ce.TypeName(),
			"correlation_id", ce.CorrelationID().String(),
			"error", err,
		)
		c.AbortWithStatusJSON(statusFor(err), errorResponse{
			Error:          err.Error(),
			Type:           ce.TypeName(),
			CorrelationID:  ce.CorrelationID().String(),
			ElapsedSeconds: ce.Elapsed().Seconds(),
		})
		return
	}

	var fe *model.ResultFormattingError
	if errors.As(err, &fe) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Type:  "ResultFormattingError",
		})
		return
	}

	logger.ErrorContext(ctx, "unexpected error", "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// badRequest rejects malformed input.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
