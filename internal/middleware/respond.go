package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/apperror"
	"secondserving/internal/logging"
)

// AbortWithError writes the failure envelope for err and stops the chain.
// Operational errors go out verbatim; anything else is logged and masked.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := appErr.Status()

	entry := logging.For(logging.HTTP).WithFields(map[string]interface{}{
		"path":       c.Request.URL.Path,
		"status":     status,
		"request_id": RequestID(c),
	})
	if !appErr.Operational() || status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debug(appErr.Message)
	}

	if !appErr.Operational() {
		c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": "something went wrong"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"status": envelopeStatus(status), "message": appErr.Message})
}

func envelopeStatus(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}
