package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/apperror"
	"secondserving/internal/auth"
	"secondserving/internal/logging"
	"secondserving/internal/models"
	"secondserving/internal/store"
)

type HungerSpotSession struct {
	Token string
	Spot  *models.HungerSpot
}

type HungerSpotUpdate struct {
	Name          *string
	Address       *string
	State         *string
	Location      *models.GeoPoint
	ContactPerson *models.ContactPerson
	Categories    []string
}

func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("Invalid " + what + " id")
	}
	return id, nil
}

// HungerSpotLogin authenticates an operator by spot id and password. Inactive
// spots may still log in so they can reactivate themselves.
func (s *Service) HungerSpotLogin(ctx context.Context, rawID, password string) (*HungerSpotSession, error) {
	if strings.TrimSpace(rawID) == "" || password == "" {
		return nil, apperror.Validation("Please provide hunger spot id and password")
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apperror.Authentication("Incorrect id or password")
	}
	spot, err := s.stores.HungerSpots.FindByID(ctx, id, store.AnyActivity)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if spot == nil || !auth.CheckSecret(spot.PasswordHash, password) {
		return nil, apperror.Authentication("Incorrect id or password")
	}
	return s.spotSession(spot)
}

func (s *Service) spotSession(spot *models.HungerSpot) (*HungerSpotSession, error) {
	token, err := s.tokens.Issue(spot.ID, models.KindHungerSpot)
	if err != nil {
		return nil, err
	}
	return &HungerSpotSession{Token: token, Spot: spot}, nil
}

func (s *Service) ProtectHungerSpot(ctx context.Context, raw string) (*models.HungerSpot, error) {
	if raw == "" {
		return nil, apperror.Authentication("You are not logged in. Please log in to get access.")
	}
	sess, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, apperror.Authentication("Invalid token. Please log in again.")
	}
	if sess.Kind != models.KindHungerSpot {
		return nil, apperror.Forbidden("You do not have permission to perform this action")
	}
	spot, err := s.stores.HungerSpots.FindByID(ctx, sess.PrincipalID, store.AnyActivity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.Authentication("The hunger spot belonging to this token no longer exists.")
		}
		return nil, err
	}
	if spot.ChangedPasswordAfter(sess.IssuedAt) {
		return nil, apperror.Authentication("Password recently changed. Please log in again.")
	}
	return spot, nil
}

func (s *Service) UpdateHungerSpotPassword(ctx context.Context, spot *models.HungerSpot, current, password, confirm string) (*HungerSpotSession, error) {
	if !auth.CheckSecret(spot.PasswordHash, current) {
		return nil, apperror.Authentication("Your current password is wrong.")
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return nil, err
	}
	hash, err := auth.HashSecret(password)
	if err != nil {
		return nil, err
	}
	changed := s.now().Add(-passwordClockSkew)
	spot.PasswordHash = hash
	spot.PasswordChangedAt = &changed
	if err := s.stores.HungerSpots.Save(ctx, spot); err != nil {
		return nil, err
	}
	return s.spotSession(spot)
}

func (s *Service) UpdateHungerSpotProfile(ctx context.Context, spot *models.HungerSpot, in HungerSpotUpdate) (*models.HungerSpot, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("Hunger spot name cannot be empty")
		}
		spot.Name = name
	}
	if in.Address != nil {
		spot.Location.Address = strings.TrimSpace(*in.Address)
	}
	if in.State != nil {
		spot.Location.State = strings.TrimSpace(*in.State)
	}
	if in.Location != nil {
		if !in.Location.Valid() {
			return nil, apperror.Validation("Location is required as [longitude, latitude]")
		}
		spot.Location.Point = models.NewPoint(in.Location.Lng(), in.Location.Lat())
	}
	if in.ContactPerson != nil {
		contact := *in.ContactPerson
		if contact.Phone != "" {
			number, err := parsePhone(contact.Phone)
			if err != nil {
				return nil, err
			}
			contact.Phone = number
		}
		spot.ContactPerson = contact
	}
	if in.Categories != nil {
		categories := make(models.StringList, 0, len(in.Categories))
		for _, c := range in.Categories {
			group, ok := models.ParseTargetGroup(strings.ToLower(strings.TrimSpace(c)))
			if !ok {
				return nil, apperror.Validation("Categories must be everyone or young")
			}
			categories = append(categories, string(group))
		}
		spot.Categories = categories
	}

	if err := s.stores.HungerSpots.Save(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *Service) SetHungerSpotActive(ctx context.Context, spot *models.HungerSpot, active bool) (*models.HungerSpot, error) {
	spot.IsActive = active
	if err := s.stores.HungerSpots.Save(ctx, spot); err != nil {
		return nil, err
	}
	logging.For(logging.HungerSpot).
		WithField("spot", spot.ID.Hex()).
		WithField("active", active).
		Info("hunger spot status changed")
	return spot, nil
}

func (s *Service) ListHungerSpots(ctx context.Context) ([]models.HungerSpot, error) {
	return s.stores.HungerSpots.List(ctx, store.ActiveOnly)
}

func (s *Service) GetHungerSpot(ctx context.Context, rawID string) (*models.HungerSpot, error) {
	id, err := parseID(rawID, "hunger spot")
	if err != nil {
		return nil, err
	}
	spot, err := s.stores.HungerSpots.FindByID(ctx, id, store.ActiveOnly)
	if err != nil {
		return nil, notFound(err, "Hunger spot not found")
	}
	return spot, nil
}

func (s *Service) HungerSpotDonations(ctx context.Context, rawID string, opts store.ListOptions) ([]DonationView, error) {
	id, err := parseID(rawID, "hunger spot")
	if err != nil {
		return nil, err
	}
	spot, err := s.stores.HungerSpots.FindByID(ctx, id, store.AnyActivity)
	if err != nil {
		return nil, notFound(err, "Hunger spot not found")
	}
	return s.spotDonations(ctx, spot.ID, opts)
}

func (s *Service) MyHungerSpotDonations(ctx context.Context, spot *models.HungerSpot, opts store.ListOptions) ([]DonationView, error) {
	return s.spotDonations(ctx, spot.ID, opts)
}

func (s *Service) spotDonations(ctx context.Context, id primitive.ObjectID, opts store.ListOptions) ([]DonationView, error) {
	donations, err := s.stores.Donations.ListByHungerSpot(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, donations), nil
}
