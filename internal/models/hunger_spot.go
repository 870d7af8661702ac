package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetGroup is the coarse beneficiary preference used to filter hunger spots.
type TargetGroup string

const (
	GroupEveryone TargetGroup = "everyone"
	GroupYoung    TargetGroup = "young"
)

func ParseTargetGroup(value string) (TargetGroup, bool) {
	switch TargetGroup(value) {
	case GroupEveryone, GroupYoung:
		return TargetGroup(value), true
	}
	return "", false
}

type ContactPerson struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
}

type HungerSpotLocation struct {
	Address string   `bson:"address" json:"address"`
	State   string   `bson:"state,omitempty" json:"state,omitempty"`
	Point   GeoPoint `bson:"point" json:"point"`
}

// HungerSpot is a shelter or community kitchen receiving donations.
type HungerSpot struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Location          HungerSpotLocation `bson:"location" json:"location"`
	Categories        StringList         `bson:"categories" json:"categories"`
	ContactPerson     ContactPerson      `bson:"contactPerson" json:"contactPerson"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	PasswordHash      string             `bson:"passwordHash,omitempty" json:"-"`
	PasswordChangedAt *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (h *HungerSpot) Accepts(group TargetGroup) bool {
	for _, c := range h.Categories {
		if c == string(group) {
			return true
		}
	}
	return false
}

func (h *HungerSpot) ChangedPasswordAfter(issuedAt time.Time) bool {
	if h.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < h.PasswordChangedAt.Unix()
}
