package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError writes an error as an HTTP response. PlatformErrors are mapped
// to their status code; anything else is treated as an internal error.
// Client-facing bodies carry the platform message, never the wrapped cause.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{
				Message: "unknown error",
				Type:    "internal_error",
			},
		})
		return
	}

	if platformErr := GetPlatformError(err); platformErr != nil {
		LogError(log, platformErr)
		c.AbortWithStatusJSON(ErrorTypeToHTTPStatus(platformErr.Type), HTTPErrorResponse{
			Error: &HTTPErrorDetail{
				Message:   platformErr.Message,
				Type:      string(platformErr.Type),
				Code:      platformErr.Code,
				RequestID: platformErr.RequestID,
			},
		})
		return
	}

	log.Error().Err(err).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message: "internal server error",
			Type:    "internal_error",
		},
	})
}
