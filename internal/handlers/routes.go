package handlers

import (
	"github.com/gin-gonic/gin"

	"secondserving/internal/middleware"
	"secondserving/internal/models"
	"secondserving/internal/service"
)

// RegisterRoutes mounts the API under api. Static segments are registered
// before parameterised ones so /hunger-spots/me never reads as an id.
func RegisterRoutes(api *gin.RouterGroup, svc *service.Service, cookies CookieConfig) {
	anyAccount := middleware.RequireAccount(svc)
	donorOnly := middleware.RequireAccount(svc, models.KindDonor)
	volunteerOnly := middleware.RequireAccount(svc, models.KindVolunteer)
	spotOnly := middleware.RequireHungerSpot(svc)

	accounts := api.Group("/accounts")
	{
		accounts.POST("/signup", Signup(svc))
		accounts.POST("/verify", VerifyOTP(svc, cookies))
		accounts.POST("/login", Login(svc, cookies))
		accounts.POST("/resend-otp", ResendOTP(svc))
		accounts.POST("/forgot-password", ForgotPassword(svc))
		accounts.PATCH("/reset-password", ResetPassword(svc, cookies))
		accounts.POST("/logout", Logout(cookies))

		accounts.GET("/me", anyAccount, GetMe())
		accounts.PATCH("/me/password", anyAccount, UpdateMyPassword(svc, cookies))
		accounts.PATCH("/me", anyAccount, UpdateMe(svc))
		accounts.DELETE("/me", anyAccount, DeleteMe(svc))
	}

	donations := api.Group("/donations", donorOnly)
	{
		donations.POST("", CreateDonation(svc))
		donations.GET("/mine", MyDonations(svc))
		donations.PATCH("/:id/status", UpdateDonorStatus(svc))
		donations.DELETE("/:id", CancelDonation(svc))
	}

	spots := api.Group("/hunger-spots")
	{
		spots.GET("", ListHungerSpots(svc))
		spots.GET("/nearest", NearestHungerSpots(svc))
		spots.POST("/login", HungerSpotLogin(svc, cookies))

		me := spots.Group("/me", spotOnly)
		me.GET("", GetMyHungerSpot())
		me.GET("/donations", MyHungerSpotDonations(svc))
		me.PATCH("/status", SetHungerSpotStatus(svc))
		me.PATCH("/password", UpdateHungerSpotPassword(svc, cookies))
		me.PATCH("", UpdateHungerSpotProfile(svc))
		me.PATCH("/donations/:id/delivered", MarkDelivered(svc))

		spots.GET("/:id", GetHungerSpot(svc))
		spots.GET("/:id/donations", HungerSpotDonations(svc))
	}

	volunteer := api.Group("/volunteer")
	{
		volunteer.GET("/donations/:id", DonationPreview(svc))
		volunteer.GET("/donations", volunteerOnly, VolunteerDonations(svc))
		volunteer.POST("/accept/:donationId", volunteerOnly, AcceptDonation(svc))
		volunteer.PATCH("/update-status/:donationId", volunteerOnly, UpdateVolunteerStatus(svc))
	}
}
