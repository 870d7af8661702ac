package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DonationStatus string

const (
	StatusPending           DonationStatus = "pending"
	StatusVolunteerAssigned DonationStatus = "volunteer_assigned"
	StatusInTransit         DonationStatus = "in_transit"
	StatusDelivered         DonationStatus = "delivered"
	StatusRejected          DonationStatus = "rejected"
	StatusCancelled         DonationStatus = "cancelled"
)

func ParseDonationStatus(value string) (DonationStatus, bool) {
	switch s := DonationStatus(value); s {
	case StatusPending, StatusVolunteerAssigned, StatusInTransit,
		StatusDelivered, StatusRejected, StatusCancelled:
		return s, true
	}
	return "", false
}

// Terminal statuses never transition again.
func (s DonationStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

var FoodUnits = []string{"kg", "pieces", "packets", "portions"}

func ValidFoodUnit(value string) bool {
	for _, u := range FoodUnits {
		if u == value {
			return true
		}
	}
	return false
}

type FoodDetails struct {
	Category    string    `bson:"category" json:"category"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	Unit        string    `bson:"unit" json:"unit"`
	ExpiryTime  time.Time `bson:"expiryTime" json:"expiryTime"`
}

type PickupLocation struct {
	Address string   `bson:"address" json:"address"`
	Point   GeoPoint `bson:"point" json:"point"`
}

// Donation is a unit of surplus food moving from a donor to a hunger spot.
type Donation struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DonorID            primitive.ObjectID  `bson:"donorId" json:"donorId"`
	VolunteerID        *primitive.ObjectID `bson:"volunteerId" json:"volunteerId"`
	DonorWilling       bool                `bson:"donorWilling" json:"donorWilling"`
	FoodDetails        FoodDetails         `bson:"foodDetails" json:"foodDetails"`
	PickupLocation     PickupLocation      `bson:"pickupLocation" json:"pickupLocation"`
	TargetGroup        TargetGroup         `bson:"targetGroup" json:"targetGroup"`
	AssignedHungerSpot *primitive.ObjectID `bson:"assignedHungerSpot" json:"assignedHungerSpot"`
	Status             DonationStatus      `bson:"status" json:"status"`
	RequestTime        time.Time           `bson:"requestTime" json:"requestTime"`
	AssignmentTime     *time.Time          `bson:"assignmentTime,omitempty" json:"assignmentTime,omitempty"`
	DeliveryTime       *time.Time          `bson:"deliveryTime,omitempty" json:"deliveryTime,omitempty"`
	RejectionReason    string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}
