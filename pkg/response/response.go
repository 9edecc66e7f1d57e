package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/schedule-editor-bot/pkg/errors"
)

// Envelope represents the common response contract of the operational endpoints.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, status int, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(status, Envelope{Error: appErr})
}

// OK acknowledges a request without a body.
func OK(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
