package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/models"
	"secondserving/internal/service"
)

// CookieConfig controls the jwt cookie mirrored alongside every issued token.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

type signupRequest struct {
	FullName         string          `json:"fullName" binding:"required"`
	PhoneNumber      string          `json:"phoneNumber" binding:"required"`
	Password         string          `json:"password" binding:"required"`
	PasswordConfirm  string          `json:"passwordConfirm" binding:"required"`
	UserType         string          `json:"userType" binding:"required"`
	Location         *geoInput       `json:"location"`
	OrganizationType string          `json:"organizationType"`
	Vehicle          *models.Vehicle `json:"vehicle"`
	TelegramChatID   int64           `json:"telegramChatId"`
}

type verifyRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	UserType    string `json:"userType" binding:"required"`
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
	UserType    string `json:"userType" binding:"required"`
}

type phoneKindRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	UserType    string `json:"userType" binding:"required"`
}

type resetPasswordRequest struct {
	PhoneNumber     string `json:"phoneNumber" binding:"required"`
	UserType        string `json:"userType" binding:"required"`
	OTP             string `json:"otp" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

func setTokenCookie(c *gin.Context, cookies CookieConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(cookies.TTL.Seconds()), "/", "", cookies.Secure, true)
}

// respondWithToken sends the token in the body and the jwt cookie.
func respondWithToken(c *gin.Context, status int, cookies CookieConfig, token string, data gin.H) {
	setTokenCookie(c, cookies, token)
	c.JSON(status, gin.H{"status": "success", "token": token, "data": data})
}

func Signup(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if !bindJSON(c, &req) {
			return
		}
		err := svc.Signup(c.Request.Context(), service.SignupInput{
			FullName:         req.FullName,
			Phone:            req.PhoneNumber,
			Password:         req.Password,
			PasswordConfirm:  req.PasswordConfirm,
			Kind:             req.UserType,
			Location:         req.Location.point(),
			OrganizationType: req.OrganizationType,
			Vehicle:          req.Vehicle,
			TelegramChatID:   req.TelegramChatID,
		})
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondMessage(c, http.StatusCreated, "OTP sent. Please verify your phone number.")
	}
}

func VerifyOTP(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := svc.VerifyOTP(c.Request.Context(), req.PhoneNumber, req.OTP, req.UserType)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, result.Token, gin.H{"user": result.Account})
	}
}

func Login(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := svc.Login(c.Request.Context(), req.PhoneNumber, req.Password, req.UserType)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, result.Token, gin.H{"user": result.Account})
	}
}

func ResendOTP(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req phoneKindRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.ResendOTP(c.Request.Context(), req.PhoneNumber, req.UserType); err != nil {
			respondWithError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "OTP sent. Please verify your phone number.")
	}
}

func ForgotPassword(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req phoneKindRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.ForgotPassword(c.Request.Context(), req.PhoneNumber, req.UserType); err != nil {
			respondWithError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Password reset code sent to your WhatsApp.")
	}
}

func ResetPassword(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := svc.ResetPassword(c.Request.Context(), service.ResetInput{
			Phone:           req.PhoneNumber,
			Kind:            req.UserType,
			OTP:             req.OTP,
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
		})
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, result.Token, gin.H{"user": result.Account})
	}
}

// Logout overwrites the jwt cookie with a short-lived placeholder.
func Logout(cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, "loggedout", 10, "/", "", cookies.Secure, true)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}
