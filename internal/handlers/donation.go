package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/service"
)

type foodDetailsRequest struct {
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	ExpiryTime  *time.Time `json:"expiryTime"`
}

type createDonationRequest struct {
	FoodDetails          foodDetailsRequest `json:"foodDetails"`
	PickupLocation       *pickupInput       `json:"pickupLocation"`
	DonorWilling         bool               `json:"donorWilling"`
	SelectedHungerSpotID string             `json:"selectedHungerSpotId"`
	Notes                string             `json:"notes"`
}

type statusRequest struct {
	Status       string `json:"status" binding:"required"`
	HungerSpotID string `json:"hungerSpotId"`
}

func CreateDonation(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donor, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req createDonationRequest
		if !bindJSON(c, &req) {
			return
		}

		in := service.DonationInput{
			Category:             req.FoodDetails.Category,
			Description:          req.FoodDetails.Description,
			Quantity:             req.FoodDetails.Quantity,
			Unit:                 req.FoodDetails.Unit,
			ExpiryTime:           req.FoodDetails.ExpiryTime,
			DonorWilling:         req.DonorWilling,
			SelectedHungerSpotID: req.SelectedHungerSpotID,
			Notes:                req.Notes,
		}
		if req.PickupLocation != nil {
			in.PickupAddress = req.PickupLocation.Address
			in.Pickup = req.PickupLocation.point()
		}

		donation, err := svc.CreateDonation(c.Request.Context(), donor, in)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusCreated, gin.H{"donation": donation})
	}
}

func MyDonations(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donor, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		opts, ok := listOptions(c)
		if !ok {
			return
		}
		views, err := svc.DonorDonations(c.Request.Context(), donor, opts)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, views, len(views))
	}
}

func UpdateDonorStatus(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donor, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		var req statusRequest
		if !bindJSON(c, &req) {
			return
		}
		donation, err := svc.UpdateDonorStatus(c.Request.Context(), donor, c.Param("id"), req.Status)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"donation": donation})
	}
}

func CancelDonation(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donor, err := middleware.CurrentAccount(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		donation, err := svc.CancelDonation(c.Request.Context(), donor, c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"donation": donation})
	}
}
