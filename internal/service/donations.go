package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/apperror"
	"secondserving/internal/logging"
	"secondserving/internal/metrics"
	"secondserving/internal/models"
	"secondserving/internal/notify"
	"secondserving/internal/store"
)

type DonationInput struct {
	Category             string
	Description          string
	Quantity             float64
	Unit                 string
	ExpiryTime           *time.Time
	PickupAddress        string
	Pickup               *models.GeoPoint
	DonorWilling         bool
	SelectedHungerSpotID string
	Notes                string
}

type DonorSummary struct {
	ID               primitive.ObjectID `json:"id"`
	FullName         string             `json:"fullName"`
	PhoneNumber      string             `json:"phoneNumber"`
	OrganizationType string             `json:"organizationType,omitempty"`
}

type SpotSummary struct {
	ID            primitive.ObjectID        `json:"id"`
	Name          string                    `json:"name"`
	Location      models.HungerSpotLocation `json:"location"`
	ContactPerson models.ContactPerson      `json:"contactPerson"`
}

// DonationView is a donation with its referenced parties expanded.
type DonationView struct {
	models.Donation
	Donor      *DonorSummary `json:"donor,omitempty"`
	HungerSpot *SpotSummary  `json:"hungerSpot,omitempty"`
}

func summarizeSpot(spot *models.HungerSpot) *SpotSummary {
	return &SpotSummary{ID: spot.ID, Name: spot.Name, Location: spot.Location, ContactPerson: spot.ContactPerson}
}

func (in DonationInput) validate(now time.Time) error {
	if in.Pickup == nil || !in.Pickup.Valid() {
		return apperror.Validation("Pickup coordinates required.")
	}
	if strings.TrimSpace(in.Category) == "" {
		return apperror.Validation("Food category is required to match HungerSpot")
	}
	if in.Quantity <= 0 {
		return apperror.Validation("Quantity must be greater than zero")
	}
	if in.Unit != "" && !models.ValidFoodUnit(in.Unit) {
		return apperror.Validation("Unit must be one of kg, pieces, packets, portions")
	}
	if in.ExpiryTime == nil || in.ExpiryTime.IsZero() {
		return apperror.Validation("Expiry time is required")
	}
	if !in.ExpiryTime.After(now) {
		return apperror.Validation("Expiry time must be in the future")
	}
	return nil
}

// CreateDonation validates, classifies and routes a new donation, then fans
// out notifications. The donation is created even if every notification fails.
func (s *Service) CreateDonation(ctx context.Context, donor *models.Account, in DonationInput) (*models.Donation, error) {
	now := s.now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	var selected *models.HungerSpot
	if in.DonorWilling {
		if strings.TrimSpace(in.SelectedHungerSpotID) == "" {
			return nil, apperror.Validation("Please select a hunger spot for delivery")
		}
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.SelectedHungerSpotID))
		if err != nil {
			return nil, apperror.Validation("Selected hunger spot is not available")
		}
		selected, err = s.stores.HungerSpots.FindByID(ctx, id, store.ActiveOnly)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.Validation("Selected hunger spot is not available")
		}
		if err != nil {
			return nil, err
		}
	}

	pickup := models.NewPoint(in.Pickup.Lng(), in.Pickup.Lat())
	group := s.classify(ctx, in.Category, in.Description)

	unit := in.Unit
	if unit == "" {
		unit = "kg"
	}
	donation := &models.Donation{
		DonorID:      donor.ID,
		DonorWilling: in.DonorWilling,
		FoodDetails: models.FoodDetails{
			Category:    strings.TrimSpace(in.Category),
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Unit:        unit,
			ExpiryTime:  *in.ExpiryTime,
		},
		PickupLocation: models.PickupLocation{Address: strings.TrimSpace(in.PickupAddress), Point: pickup},
		TargetGroup:    group,
		Status:         models.StatusPending,
		RequestTime:    now,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	path := "donor_choice"
	if selected != nil {
		donation.AssignedHungerSpot = &selected.ID
	} else {
		spots, err := s.stores.HungerSpots.Nearest(ctx, pickup, group, autoAssignLimit)
		if err != nil {
			return nil, err
		}
		path = "unmatched"
		if len(spots) > 0 {
			selected = &spots[0]
			donation.AssignedHungerSpot = &selected.ID
			path = "auto"
		}
	}

	if err := s.stores.Donations.Create(ctx, donation); err != nil {
		return nil, err
	}
	metrics.DonationCreated(path)
	logging.For(logging.Donation).
		WithField("donation", donation.ID.Hex()).
		WithField("group", group).
		WithField("path", path).
		Info("donation created")

	if donation.DonorWilling {
		s.send(ctx, "donor_delivering", notify.DonorDelivering(selected, donor, donation))
	} else {
		s.broadcastToVolunteers(ctx, donation)
	}
	return donation, nil
}

// broadcastToVolunteers messages each nearby volunteer in turn, one attempt each.
func (s *Service) broadcastToVolunteers(ctx context.Context, donation *models.Donation) {
	acceptURL := s.opts.AcceptURL(donation.ID.Hex())
	volunteers, err := s.stores.Accounts.NearbyVolunteers(ctx, donation.PickupLocation.Point, s.opts.VolunteerRadiusMeters)
	if err != nil {
		logging.For(logging.Notify).WithError(err).Warn("volunteer lookup failed")
	}
	for i := range volunteers {
		s.send(ctx, "volunteer_wanted", notify.VolunteerWanted(&volunteers[i], donation, acceptURL))
	}
	s.post(ctx, notify.VolunteerGroupPost(donation, acceptURL))

	logging.For(logging.Donation).
		WithField("donation", donation.ID.Hex()).
		WithField("volunteers", len(volunteers)).
		Info("volunteers notified")
}

// NearestHungerSpots backs the donor-choice picker: up to three active spots
// suited to the food, nearest first.
func (s *Service) NearestHungerSpots(ctx context.Context, point *models.GeoPoint, category, description string) ([]models.HungerSpot, models.TargetGroup, error) {
	if point == nil || !point.Valid() {
		return nil, "", apperror.Validation("Pickup coordinates required.")
	}
	if strings.TrimSpace(category) == "" {
		return nil, "", apperror.Validation("Food category is required to match HungerSpot")
	}
	group := s.classify(ctx, category, description)
	spots, err := s.stores.HungerSpots.Nearest(ctx, *point, group, donorChoiceLimit)
	if err != nil {
		return nil, "", err
	}
	return spots, group, nil
}

func (s *Service) DonorDonations(ctx context.Context, donor *models.Account, opts store.ListOptions) ([]DonationView, error) {
	donations, err := s.stores.Donations.ListByDonor(ctx, donor.ID, opts)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, donations), nil
}

func (s *Service) VolunteerDonations(ctx context.Context, volunteer *models.Account, opts store.ListOptions) ([]DonationView, error) {
	donations, err := s.stores.Donations.ListByVolunteer(ctx, volunteer.ID, opts)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, donations), nil
}

// DonationPreview is the public view a volunteer opens from the accept link.
func (s *Service) DonationPreview(ctx context.Context, rawID string) (*DonationView, error) {
	id, err := parseID(rawID, "donation")
	if err != nil {
		return nil, err
	}
	donation, err := s.stores.Donations.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Food donation not found")
	}

	view := s.views(ctx, []models.Donation{*donation})[0]
	if donor, err := s.stores.Accounts.FindByID(ctx, donation.DonorID, store.AnyActivity); err == nil {
		view.Donor = &DonorSummary{
			ID:               donor.ID,
			FullName:         donor.FullName,
			PhoneNumber:      donor.PhoneNumber,
			OrganizationType: donor.OrganizationType,
		}
	}
	return &view, nil
}

// views expands the assigned hunger spot of each donation. Lookup failures
// leave the summary empty.
func (s *Service) views(ctx context.Context, donations []models.Donation) []DonationView {
	spots := make(map[primitive.ObjectID]*SpotSummary)
	out := make([]DonationView, 0, len(donations))
	for _, d := range donations {
		view := DonationView{Donation: d}
		if d.AssignedHungerSpot != nil {
			id := *d.AssignedHungerSpot
			summary, seen := spots[id]
			if !seen {
				if spot, err := s.stores.HungerSpots.FindByID(ctx, id, store.AnyActivity); err == nil {
					summary = summarizeSpot(spot)
				}
				spots[id] = summary
			}
			view.HungerSpot = summary
		}
		out = append(out, view)
	}
	return out
}
