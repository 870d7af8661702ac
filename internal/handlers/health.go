package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/logging"
)

// PingFunc checks the database is reachable.
type PingFunc func(ctx context.Context) error

func Health(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ping(c.Request.Context()); err != nil {
			logging.For(logging.Database).WithError(err).Warn("health check ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "database": "ok"})
	}
}
