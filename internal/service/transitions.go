package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/apperror"
	"secondserving/internal/lifecycle"
	"secondserving/internal/logging"
	"secondserving/internal/metrics"
	"secondserving/internal/models"
	"secondserving/internal/notify"
	"secondserving/internal/store"
)

const expiredReason = "expired before pickup"

func accountActor(a *models.Account) lifecycle.Actor {
	return lifecycle.Actor{Kind: a.Kind, ID: a.ID}
}

func (s *Service) loadDonation(ctx context.Context, rawID string) (*models.Donation, error) {
	id, err := parseID(rawID, "donation")
	if err != nil {
		return nil, err
	}
	donation, err := s.stores.Donations.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Donation not found")
	}
	return donation, nil
}

func parseStatus(raw string) (models.DonationStatus, error) {
	status, ok := models.ParseDonationStatus(strings.TrimSpace(raw))
	if !ok {
		return "", apperror.Validation("Invalid status")
	}
	return status, nil
}

// AcceptDonation assigns the volunteer if nobody has yet. Exactly one of any
// number of concurrent accepts succeeds; the rest get a conflict.
func (s *Service) AcceptDonation(ctx context.Context, volunteer *models.Account, rawID string) (*models.Donation, error) {
	donation, err := s.loadDonation(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Check(donation, models.StatusVolunteerAssigned, accountActor(volunteer)); err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			metrics.AcceptConflict()
		}
		return nil, err
	}

	won, err := s.stores.Donations.AssignVolunteer(ctx, donation.ID, volunteer.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !won {
		metrics.AcceptConflict()
		return nil, apperror.Conflict("Pickup already accepted by another volunteer")
	}
	metrics.Transition(string(models.StatusPending), string(models.StatusVolunteerAssigned))

	updated, err := s.stores.Donations.FindByID(ctx, donation.ID)
	if err != nil {
		return nil, err
	}
	logging.For(logging.Volunteer).
		WithField("donation", updated.ID.Hex()).
		WithField("volunteer", volunteer.ID.Hex()).
		Info("donation accepted")

	if donor, err := s.stores.Accounts.FindByID(ctx, updated.DonorID, store.AnyActivity); err == nil {
		s.send(ctx, "accepted_donor", notify.AcceptedToDonor(donor, volunteer, updated))
	}
	if updated.AssignedHungerSpot != nil {
		if spot, err := s.stores.HungerSpots.FindByID(ctx, *updated.AssignedHungerSpot, store.AnyActivity); err == nil {
			s.send(ctx, "accepted_hunger_spot", notify.AcceptedToHungerSpot(spot, volunteer, updated))
		}
	}
	return updated, nil
}

// transitionOptions carries per-call extras for a status change.
type transitionOptions struct {
	hungerSpotID *primitive.ObjectID
	reason       string
}

// transition checks the edge, then applies it conditionally on the status
// the caller saw. A concurrent change makes this call lose with a conflict.
func (s *Service) transition(ctx context.Context, d *models.Donation, to models.DonationStatus, actor lifecycle.Actor, opts transitionOptions) (*models.Donation, error) {
	// Assignment must set the volunteer, so it only happens through AcceptDonation.
	if to == models.StatusVolunteerAssigned {
		return nil, apperror.Validation("Use the accept link to take this pickup")
	}
	if err := lifecycle.Check(d, to, actor); err != nil {
		return nil, err
	}

	now := s.now()
	t := store.Transition{From: d.Status, To: to, At: now, RejectionReason: opts.reason}
	switch to {
	case models.StatusInTransit:
		if d.AssignmentTime == nil {
			t.AssignmentTime = &now
		}
	case models.StatusDelivered:
		t.DeliveryTime = &now
		if d.AssignedHungerSpot == nil && opts.hungerSpotID != nil {
			t.HungerSpotID = opts.hungerSpotID
		}
	}

	applied, err := s.stores.Donations.ApplyTransition(ctx, d.ID, t)
	if err != nil {
		return nil, err
	}
	if !applied {
		metrics.TransitionConflict(string(t.From), string(t.To))
		return nil, apperror.Conflict("Donation status changed concurrently. Please refresh and try again.")
	}
	metrics.Transition(string(t.From), string(t.To))
	logging.For(logging.Donation).
		WithField("donation", d.ID.Hex()).
		WithField("from", t.From).
		WithField("to", t.To).
		WithField("actor", actor.Kind).
		Info("donation status changed")

	return s.stores.Donations.FindByID(ctx, d.ID)
}

// UpdateVolunteerStatus moves an assigned donation forward. When delivering a
// donation that has no hunger spot, rawSpotID names the receiving spot.
func (s *Service) UpdateVolunteerStatus(ctx context.Context, volunteer *models.Account, rawID, rawStatus, rawSpotID string) (*models.Donation, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	donation, err := s.loadDonation(ctx, rawID)
	if err != nil {
		return nil, err
	}

	var opts transitionOptions
	if strings.TrimSpace(rawSpotID) != "" && status == models.StatusDelivered && donation.AssignedHungerSpot == nil {
		spotID, err := parseID(rawSpotID, "hunger spot")
		if err != nil {
			return nil, err
		}
		if _, err := s.stores.HungerSpots.FindByID(ctx, spotID, store.ActiveOnly); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperror.Validation("Selected hunger spot is not available")
			}
			return nil, err
		}
		opts.hungerSpotID = &spotID
	}
	return s.transition(ctx, donation, status, accountActor(volunteer), opts)
}

// UpdateDonorStatus lets a donor who delivers personally report progress.
func (s *Service) UpdateDonorStatus(ctx context.Context, donor *models.Account, rawID, rawStatus string) (*models.Donation, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	donation, err := s.loadDonation(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, donation, status, accountActor(donor), transitionOptions{})
}

func (s *Service) CancelDonation(ctx context.Context, donor *models.Account, rawID string) (*models.Donation, error) {
	donation, err := s.loadDonation(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, donation, models.StatusCancelled, accountActor(donor), transitionOptions{})
}

func (s *Service) MarkDelivered(ctx context.Context, spot *models.HungerSpot, rawID string) (*models.Donation, error) {
	donation, err := s.loadDonation(ctx, rawID)
	if err != nil {
		return nil, err
	}
	actor := lifecycle.Actor{Kind: models.KindHungerSpot, ID: spot.ID}
	return s.transition(ctx, donation, models.StatusDelivered, actor, transitionOptions{})
}

// RejectExpired rejects pending donations whose food expired before anyone
// picked them up. It returns how many were rejected.
func (s *Service) RejectExpired(ctx context.Context) (int, error) {
	expired, err := s.stores.Donations.ListExpiredPending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	rejected := 0
	for i := range expired {
		_, err := s.transition(ctx, &expired[i], models.StatusRejected, lifecycle.System, transitionOptions{reason: expiredReason})
		if err != nil {
			logging.For(logging.Jobs).WithError(err).WithField("donation", expired[i].ID.Hex()).Warn("expiry rejection skipped")
			continue
		}
		rejected++
	}
	return rejected, nil
}
