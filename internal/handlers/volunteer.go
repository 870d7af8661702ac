package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/service"
)

func VolunteerDonations(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		volunteer, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		opts, ok := listOptions(c)
		if !ok {
			return
		}
		views, err := svc.VolunteerDonations(c.Request.Context(), volunteer, opts)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, views, len(views))
	}
}

// DonationPreview is public so the accept link can render before login.
func DonationPreview(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.DonationPreview(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"donation": view})
	}
}

func AcceptDonation(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		volunteer, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		donation, err := svc.AcceptDonation(c.Request.Context(), volunteer, c.Param("donationId"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Pickup accepted",
			"data":    gin.H{"donation": donation},
		})
	}
}

func UpdateVolunteerStatus(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		volunteer, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req statusRequest
		if !bindJSON(c, &req) {
			return
		}
		donation, err := svc.UpdateVolunteerStatus(c.Request.Context(), volunteer, c.Param("donationId"), req.Status, req.HungerSpotID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"donation": donation})
	}
}
