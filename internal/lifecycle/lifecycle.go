// Package lifecycle holds the donation status state machine: which status
// changes exist, and which party may make each one.
package lifecycle

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/apperror"
	"secondserving/internal/models"
)

// Actor is the principal asking for a transition.
type Actor struct {
	Kind models.AccountKind
	ID   primitive.ObjectID
}

var System = Actor{Kind: models.KindSystem}

type permit func(d *models.Donation, a Actor) bool

func anyVolunteer(d *models.Donation, a Actor) bool {
	return a.Kind == models.KindVolunteer && !d.DonorWilling
}

func assignedVolunteer(d *models.Donation, a Actor) bool {
	return a.Kind == models.KindVolunteer && d.VolunteerID != nil && *d.VolunteerID == a.ID
}

func owningDonor(d *models.Donation, a Actor) bool {
	return a.Kind == models.KindDonor && d.DonorID == a.ID
}

func willingDonor(d *models.Donation, a Actor) bool {
	return owningDonor(d, a) && d.DonorWilling
}

// receivingSpot is the assigned hunger spot. An unassigned donation gets its
// spot from the delivering volunteer instead.
func receivingSpot(d *models.Donation, a Actor) bool {
	if a.Kind != models.KindHungerSpot || d.AssignedHungerSpot == nil {
		return false
	}
	return *d.AssignedHungerSpot == a.ID
}

func system(_ *models.Donation, a Actor) bool {
	return a.Kind == models.KindSystem
}

var table = map[models.DonationStatus]map[models.DonationStatus][]permit{
	models.StatusPending: {
		models.StatusVolunteerAssigned: {anyVolunteer},
		models.StatusInTransit:         {willingDonor},
		models.StatusCancelled:         {owningDonor},
		models.StatusRejected:          {system},
	},
	models.StatusVolunteerAssigned: {
		models.StatusInTransit: {assignedVolunteer},
		models.StatusDelivered: {assignedVolunteer, receivingSpot},
	},
	models.StatusInTransit: {
		models.StatusDelivered: {assignedVolunteer, willingDonor, receivingSpot},
		models.StatusCancelled: {willingDonor},
	},
}

// IsParty reports whether a may act on d at all.
func IsParty(d *models.Donation, a Actor) bool {
	switch a.Kind {
	case models.KindSystem:
		return true
	case models.KindDonor:
		return owningDonor(d, a)
	case models.KindVolunteer:
		return d.VolunteerID == nil || assignedVolunteer(d, a)
	case models.KindHungerSpot:
		return receivingSpot(d, a)
	}
	return false
}

// Allowed reports whether the edge from d's status to `to` exists for a.
func Allowed(d *models.Donation, to models.DonationStatus, a Actor) bool {
	for _, p := range table[d.Status][to] {
		if p(d, a) {
			return true
		}
	}
	return false
}

// Check validates a transition request. Terminal donations never move, a
// volunteer cannot take an accepted donation, strangers are forbidden and
// undefined edges are validation errors.
func Check(d *models.Donation, to models.DonationStatus, a Actor) error {
	if d.Status.Terminal() {
		return apperror.Validation(fmt.Sprintf("Donation is already %s", d.Status))
	}
	if to == models.StatusVolunteerAssigned && d.VolunteerID != nil {
		return apperror.Conflict("Pickup already accepted by another volunteer")
	}
	if !IsParty(d, a) {
		return apperror.Forbidden("You are not allowed to update this donation")
	}
	if Allowed(d, to, a) {
		return nil
	}

	switch {
	case to == models.StatusCancelled && d.VolunteerID != nil:
		return apperror.Validation("Cannot cancel donation that has been accepted by a volunteer")
	case to == models.StatusCancelled:
		return apperror.Validation("This donation cannot be cancelled")
	case to == models.StatusVolunteerAssigned && d.DonorWilling:
		return apperror.Validation("This donation is being delivered by the donor")
	case a.Kind == models.KindDonor && !d.DonorWilling:
		return apperror.Validation("Status can only be updated for donations you are delivering")
	}
	return apperror.Validation(fmt.Sprintf("Cannot change status from %s to %s", d.Status, to))
}
