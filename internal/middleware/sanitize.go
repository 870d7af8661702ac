package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// SanitizeBody rejects JSON bodies carrying keys that MongoDB would treat as
// operators or paths: keys starting with "$" or containing ".".
func SanitizeBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || !strings.Contains(c.ContentType(), "json") {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Could not read request body"})
			return
		}
		if len(body) > maxBodyBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"status": "fail", "message": "Request body too large"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			c.Next()
			return
		}

		var doc interface{}
		if err := json.Unmarshal(body, &doc); err != nil {
			// binding reports malformed JSON with a better message
			c.Next()
			return
		}
		if key, bad := forbiddenKey(doc); bad {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "fail",
				"message": "Invalid field name: " + key,
			})
			return
		}
		c.Next()
	}
}

func forbiddenKey(v interface{}) (string, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
				return k, true
			}
			if key, bad := forbiddenKey(child); bad {
				return key, true
			}
		}
	case []interface{}:
		for _, child := range t {
			if key, bad := forbiddenKey(child); bad {
				return key, true
			}
		}
	}
	return "", false
}
