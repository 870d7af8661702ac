package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/models"
	"secondserving/internal/service"
)

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

type updateMeRequest struct {
	FullName         *string         `json:"fullName"`
	Location         *geoInput       `json:"location"`
	OrganizationType *string         `json:"organizationType"`
	Vehicle          *models.Vehicle `json:"vehicle"`
	TelegramChatID   *int64          `json:"telegramChatId"`
	Password         string          `json:"password"`
	PasswordConfirm  string          `json:"passwordConfirm"`
}

func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"user": account})
	}
}

func UpdateMyPassword(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req updatePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := svc.UpdatePassword(c.Request.Context(), account, req.PasswordCurrent, req.Password, req.PasswordConfirm)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, result.Token, gin.H{"user": result.Account})
	}
}

func UpdateMe(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req updateMeRequest
		if !bindJSON(c, &req) {
			return
		}
		in := service.ProfileUpdate{
			FullName:         req.FullName,
			OrganizationType: req.OrganizationType,
			Vehicle:          req.Vehicle,
			TelegramChatID:   req.TelegramChatID,
			Password:         req.Password,
			PasswordConfirm:  req.PasswordConfirm,
		}
		if req.Location != nil {
			in.Location = req.Location.point()
		}
		updated, err := svc.UpdateMe(c.Request.Context(), account, in)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"user": updated})
	}
}

func DeleteMe(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if err := svc.DeleteMe(c.Request.Context(), account); err != nil {
			respondWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
