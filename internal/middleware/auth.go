package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"secondserving/internal/apperror"
	"secondserving/internal/logging"
	"secondserving/internal/models"
)

// TokenCookie is the cookie the session token is mirrored into on login.
const TokenCookie = "jwt"

const (
	accountKey    = "account"
	hungerSpotKey = "hungerSpot"
)

type AccountProtector interface {
	Protect(ctx context.Context, raw string, kinds ...models.AccountKind) (*models.Account, error)
}

type HungerSpotProtector interface {
	ProtectHungerSpot(ctx context.Context, raw string) (*models.HungerSpot, error)
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the jwt
// cookie. A malformed header yields an empty token.
func bearerToken(c *gin.Context) string {
	if raw := strings.TrimSpace(c.GetHeader("Authorization")); raw != "" {
		parts := strings.Fields(raw)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "loggedout" {
		return cookie
	}
	return ""
}

// RequireAccount admits donors and volunteers in good standing. With kinds
// set, only those account kinds pass.
func RequireAccount(p AccountProtector, kinds ...models.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := p.Protect(c.Request.Context(), bearerToken(c), kinds...)
		if err != nil {
			logging.For(logging.Auth).WithField("path", c.Request.URL.Path).Debugf("account rejected: %v", err)
			AbortWithError(c, err)
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

func RequireHungerSpot(p HungerSpotProtector) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := p.ProtectHungerSpot(c.Request.Context(), bearerToken(c))
		if err != nil {
			logging.For(logging.Auth).WithField("path", c.Request.URL.Path).Debugf("hunger spot rejected: %v", err)
			AbortWithError(c, err)
			return
		}
		c.Set(hungerSpotKey, spot)
		c.Next()
	}
}

func CurrentAccount(c *gin.Context) (*models.Account, error) {
	if v, ok := c.Get(accountKey); ok {
		if account, ok := v.(*models.Account); ok {
			return account, nil
		}
	}
	return nil, apperror.Authentication("You are not logged in. Please log in to get access.")
}

func CurrentHungerSpot(c *gin.Context) (*models.HungerSpot, error) {
	if v, ok := c.Get(hungerSpotKey); ok {
		if spot, ok := v.(*models.HungerSpot); ok {
			return spot, nil
		}
	}
	return nil, apperror.Authentication("You are not logged in. Please log in to get access.")
}
