package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountKind identifies which principal a session token belongs to.
type AccountKind string

const (
	KindDonor      AccountKind = "donor"
	KindVolunteer  AccountKind = "volunteer"
	KindHungerSpot AccountKind = "hunger_spot"
	KindSystem     AccountKind = "system"
)

// IsAccount reports whether k is stored in the accounts collection.
func (k AccountKind) IsAccount() bool {
	return k == KindDonor || k == KindVolunteer
}

var OrganizationTypes = []string{"restaurant", "wedding", "event", "institution", "individual"}

func ValidOrganizationType(value string) bool {
	for _, t := range OrganizationTypes {
		if t == value {
			return true
		}
	}
	return false
}

type Vehicle struct {
	HasVehicle bool    `bson:"hasVehicle" json:"hasVehicle"`
	CapacityKg float64 `bson:"capacityKg,omitempty" json:"capacityKg,omitempty"`
}

// Account is a donor or volunteer. Hunger spots authenticate on their own document.
type Account struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName          string             `bson:"fullName" json:"fullName"`
	PhoneNumber       string             `bson:"phoneNumber" json:"phoneNumber"`
	Kind              AccountKind        `bson:"kind" json:"kind"`
	PasswordHash      string             `bson:"passwordHash" json:"-"`
	PasswordChangedAt *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	OTPHash           string             `bson:"otpHash,omitempty" json:"-"`
	OTPExpiresAt      *time.Time         `bson:"otpExpiresAt,omitempty" json:"-"`
	ResetOTPHash      string             `bson:"resetOtpHash,omitempty" json:"-"`
	ResetOTPExpiresAt *time.Time         `bson:"resetOtpExpiresAt,omitempty" json:"-"`
	IsVerified        bool               `bson:"isVerified" json:"isVerified"`
	Active            bool               `bson:"active" json:"active"`
	Location          GeoPoint           `bson:"location" json:"location"`
	OrganizationType  string             `bson:"organizationType,omitempty" json:"organizationType,omitempty"`
	Vehicle           *Vehicle           `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	TelegramChatID    int64              `bson:"telegramChatId,omitempty" json:"telegramChatId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was rotated after issuedAt.
func (a *Account) ChangedPasswordAfter(issuedAt time.Time) bool {
	if a.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < a.PasswordChangedAt.Unix()
}
