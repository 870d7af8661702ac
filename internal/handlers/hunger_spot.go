package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"secondserving/internal/apperror"
	"secondserving/internal/models"
	"secondserving/internal/service"
)

func ListHungerSpots(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spots, err := svc.ListHungerSpots(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, spots, len(spots))
	}
}

func GetHungerSpot(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		spot, err := svc.GetHungerSpot(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondData(c, http.StatusOK, spot)
	}
}

func HungerSpotDonations(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, ok := listOptions(c)
		if !ok {
			return
		}
		views, err := svc.HungerSpotDonations(c.Request.Context(), c.Param("id"), opts)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, views, len(views))
	}
}

// firstQuery returns the first non-empty query value among names.
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// queryPoint reads lat/lng (or latitude/longitude) into a point. Missing or
// unparsable coordinates yield nil.
func queryPoint(c *gin.Context) (*models.GeoPoint, error) {
	rawLat := firstQuery(c, "lat", "latitude")
	rawLng := firstQuery(c, "lng", "longitude")
	if rawLat == "" || rawLng == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, apperror.Validation("lat is invalid")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, apperror.Validation("lng is invalid")
	}
	point := models.NewPoint(lng, lat)
	return &point, nil
}

// NearestHungerSpots backs the donor's hunger spot picker.
func NearestHungerSpots(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		point, err := queryPoint(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		spots, group, err := svc.NearestHungerSpots(
			c.Request.Context(),
			point,
			firstQuery(c, "category", "foodCategory"),
			firstQuery(c, "description", "foodDescription"),
		)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "success",
			"results":     len(spots),
			"targetGroup": group,
			"data":        spots,
		})
	}
}
