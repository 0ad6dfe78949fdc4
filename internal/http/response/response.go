// Package response renders the wire envelope of spec §6.1: every success
// response carries {success, data, meta?}; every error response carries
// {success, error: {code, message, details?, timestamp, path}}.
package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
)

type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Path      string         `json:"path"`
}

type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKWithMeta(c *gin.Context, data, meta any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// Error renders any error as the §7 envelope, recovering an *apierr.Error
// from the chain (or defaulting to INTERNAL_ERROR) so handlers never have
// to pick an HTTP status themselves.
func Error(c *gin.Context, err error) {
	apiErr := apierr.As(err)
	if seconds, ok := apiErr.Details["retryAfterSeconds"].(int); ok {
		c.Header("Retry-After", strconv.Itoa(seconds))
	}
	c.JSON(apiErr.Status, ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			Details:   apiErr.Details,
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
		},
	})
}
