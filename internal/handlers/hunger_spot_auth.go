package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/models"
	"secondserving/internal/service"
)

type hungerSpotLoginRequest struct {
	HungerSpotID string `json:"hungerSpotId" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type hungerSpotStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type hungerSpotProfileRequest struct {
	Name          *string               `json:"name"`
	Address       *string               `json:"address"`
	State         *string               `json:"state"`
	Location      *geoInput             `json:"location"`
	ContactPerson *models.ContactPerson `json:"contactPerson"`
	Categories    []string              `json:"categories"`
}

func HungerSpotLogin(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req hungerSpotLoginRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := svc.HungerSpotLogin(c.Request.Context(), req.HungerSpotID, req.Password)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, session.Token, gin.H{"hungerSpot": session.Spot})
	}
}

func GetMyHungerSpot() gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"hungerSpot": spot})
	}
}

func MyHungerSpotDonations(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		opts, ok := listOptions(c)
		if !ok {
			return
		}
		views, err := svc.MyHungerSpotDonations(c.Request.Context(), spot, opts)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, views, len(views))
	}
}

func SetHungerSpotStatus(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req hungerSpotStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		updated, err := svc.SetHungerSpotActive(c.Request.Context(), spot, *req.IsActive)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"hungerSpot": updated})
	}
}

func UpdateHungerSpotPassword(svc *service.Service, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req updatePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := svc.UpdateHungerSpotPassword(c.Request.Context(), spot, req.PasswordCurrent, req.Password, req.PasswordConfirm)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithToken(c, http.StatusOK, cookies, session.Token, gin.H{"hungerSpot": session.Spot})
	}
}

func UpdateHungerSpotProfile(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req hungerSpotProfileRequest
		if !bindJSON(c, &req) {
			return
		}
		in := service.HungerSpotUpdate{
			Name:          req.Name,
			Address:       req.Address,
			State:         req.State,
			ContactPerson: req.ContactPerson,
			Categories:    req.Categories,
		}
		if req.Location != nil {
			in.Location = req.Location.point()
		}
		updated, err := svc.UpdateHungerSpotProfile(c.Request.Context(), spot, in)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"hungerSpot": updated})
	}
}

func MarkDelivered(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := middleware.CurrentHungerSpot(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		donation, err := svc.MarkDelivered(c.Request.Context(), spot, c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"donation": donation})
	}
}
