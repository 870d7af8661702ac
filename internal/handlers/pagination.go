package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"secondserving/internal/apperror"
	"secondserving/internal/store"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePaginationParams(pageStr, limitStr string) (store.ListOptions, error) {
	page := int64(1)
	limit := int64(defaultPageLimit)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return store.ListOptions{}, apperror.Validation("page must be a positive integer")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return store.ListOptions{}, apperror.Validation("limit must be a positive integer")
		}
		limit = l
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return store.ListOptions{Page: page, Limit: limit}, nil
}

func listOptions(c *gin.Context) (store.ListOptions, bool) {
	opts, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		respondWithError(c, err)
		return store.ListOptions{}, false
	}
	return opts, true
}
