package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/logging"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.For(logging.HTTP).WithFields(map[string]interface{}{
					"path":       c.Request.URL.Path,
					"request_id": RequestID(c),
				}).Errorf("panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "something went wrong"})
			}
		}()
		c.Next()
	}
}
