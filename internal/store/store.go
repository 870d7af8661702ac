// Package store defines the persistence contracts used by the services.
// mongostore backs them with MongoDB; memory backs them in tests.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Query makes the active filter explicit. Lookups exclude deactivated records
// unless IncludeInactive is set.
type Query struct {
	IncludeInactive bool
}

var (
	ActiveOnly  = Query{}
	AnyActivity = Query{IncludeInactive: true}
)

type Accounts interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID, q Query) (*models.Account, error)
	FindByPhone(ctx context.Context, phone string, kind models.AccountKind, q Query) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	// NearbyVolunteers returns active, verified volunteers within radius, nearest first.
	NearbyVolunteers(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]models.Account, error)
}

type HungerSpots interface {
	Create(ctx context.Context, spot *models.HungerSpot) error
	FindByID(ctx context.Context, id primitive.ObjectID, q Query) (*models.HungerSpot, error)
	List(ctx context.Context, q Query) ([]models.HungerSpot, error)
	Save(ctx context.Context, spot *models.HungerSpot) error
	// Nearest returns active spots ordered by distance. Only GroupYoung narrows
	// the result to spots listing that category.
	Nearest(ctx context.Context, point models.GeoPoint, group models.TargetGroup, limit int64) ([]models.HungerSpot, error)
}

// Transition carries the fields stamped alongside a status change.
type Transition struct {
	From            models.DonationStatus
	To              models.DonationStatus
	At              time.Time
	AssignmentTime  *time.Time
	DeliveryTime    *time.Time
	HungerSpotID    *primitive.ObjectID
	RejectionReason string
}

type ListOptions struct {
	Page  int64
	Limit int64
}

type Donations interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	ListByDonor(ctx context.Context, donorID primitive.ObjectID, opts ListOptions) ([]models.Donation, error)
	ListByVolunteer(ctx context.Context, volunteerID primitive.ObjectID, opts ListOptions) ([]models.Donation, error)
	ListByHungerSpot(ctx context.Context, spotID primitive.ObjectID, opts ListOptions) ([]models.Donation, error)
	// AssignVolunteer sets volunteerId only while it is unset and the donation is
	// pending. It reports whether this call won.
	AssignVolunteer(ctx context.Context, id, volunteerID primitive.ObjectID, at time.Time) (bool, error)
	// ApplyTransition updates status only while it still equals t.From.
	ApplyTransition(ctx context.Context, id primitive.ObjectID, t Transition) (bool, error)
	ListExpiredPending(ctx context.Context, now time.Time) ([]models.Donation, error)
}

// Stores groups the collections a service needs.
type Stores struct {
	Accounts    Accounts
	HungerSpots HungerSpots
	Donations   Donations
}
