package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/apperror"
	"secondserving/internal/models"
)

type parties struct {
	donor, volunteer, other, spot Actor
}

func newParties() parties {
	return parties{
		donor:     Actor{Kind: models.KindDonor, ID: primitive.NewObjectID()},
		volunteer: Actor{Kind: models.KindVolunteer, ID: primitive.NewObjectID()},
		other:     Actor{Kind: models.KindVolunteer, ID: primitive.NewObjectID()},
		spot:      Actor{Kind: models.KindHungerSpot, ID: primitive.NewObjectID()},
	}
}

func donation(p parties, status models.DonationStatus, willing bool, withVolunteer bool) *models.Donation {
	d := &models.Donation{DonorID: p.donor.ID, Status: status, DonorWilling: willing}
	spot := p.spot.ID
	d.AssignedHungerSpot = &spot
	if withVolunteer {
		v := p.volunteer.ID
		d.VolunteerID = &v
	}
	return d
}

func TestDefinedTransitions(t *testing.T) {
	p := newParties()
	cases := []struct {
		name  string
		d     *models.Donation
		to    models.DonationStatus
		actor Actor
	}{
		{"volunteer accepts", donation(p, models.StatusPending, false, false), models.StatusVolunteerAssigned, p.volunteer},
		{"willing donor departs", donation(p, models.StatusPending, true, false), models.StatusInTransit, p.donor},
		{"donor cancels pending", donation(p, models.StatusPending, false, false), models.StatusCancelled, p.donor},
		{"sweeper rejects", donation(p, models.StatusPending, false, false), models.StatusRejected, System},
		{"volunteer picks up", donation(p, models.StatusVolunteerAssigned, false, true), models.StatusInTransit, p.volunteer},
		{"volunteer delivers", donation(p, models.StatusVolunteerAssigned, false, true), models.StatusDelivered, p.volunteer},
		{"spot receives", donation(p, models.StatusVolunteerAssigned, false, true), models.StatusDelivered, p.spot},
		{"volunteer delivers in transit", donation(p, models.StatusInTransit, false, true), models.StatusDelivered, p.volunteer},
		{"willing donor delivers", donation(p, models.StatusInTransit, true, false), models.StatusDelivered, p.donor},
		{"willing donor cancels in transit", donation(p, models.StatusInTransit, true, false), models.StatusCancelled, p.donor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, Check(tc.d, tc.to, tc.actor))
		})
	}
}

func TestUndefinedTransitionsAreValidationErrors(t *testing.T) {
	p := newParties()
	cases := []struct {
		name  string
		d     *models.Donation
		to    models.DonationStatus
		actor Actor
	}{
		{"skip to delivered", donation(p, models.StatusPending, false, false), models.StatusDelivered, p.donor},
		{"back to pending", donation(p, models.StatusInTransit, false, true), models.StatusPending, p.volunteer},
		{"non-willing donor departs", donation(p, models.StatusPending, false, false), models.StatusInTransit, p.donor},
		{"non-willing in transit cancel", donation(p, models.StatusInTransit, false, true), models.StatusCancelled, p.donor},
		{"terminal", donation(p, models.StatusDelivered, false, true), models.StatusInTransit, p.volunteer},
		{"volunteer on willing", donation(p, models.StatusPending, true, false), models.StatusVolunteerAssigned, p.volunteer},
		{"donor rejects", donation(p, models.StatusPending, false, false), models.StatusRejected, p.donor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.d, tc.to, tc.actor)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
		})
	}
}

func TestNonOwnersAreForbidden(t *testing.T) {
	p := newParties()
	stranger := Actor{Kind: models.KindDonor, ID: primitive.NewObjectID()}
	otherSpot := Actor{Kind: models.KindHungerSpot, ID: primitive.NewObjectID()}

	err := Check(donation(p, models.StatusPending, false, false), models.StatusCancelled, stranger)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	err = Check(donation(p, models.StatusVolunteerAssigned, false, true), models.StatusInTransit, p.other)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	err = Check(donation(p, models.StatusInTransit, false, true), models.StatusDelivered, otherSpot)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestSecondAcceptConflicts(t *testing.T) {
	p := newParties()
	err := Check(donation(p, models.StatusVolunteerAssigned, false, true), models.StatusVolunteerAssigned, p.other)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestUnassignedDonationRejectsSpot(t *testing.T) {
	p := newParties()
	d := donation(p, models.StatusInTransit, false, true)
	d.AssignedHungerSpot = nil
	assert.Equal(t, apperror.KindForbidden, apperror.From(Check(d, models.StatusDelivered, p.spot)).Kind)
	assert.False(t, IsParty(d, p.spot))
	assert.NoError(t, Check(d, models.StatusDelivered, p.volunteer))
}

func TestCancelMessages(t *testing.T) {
	p := newParties()
	err := Check(donation(p, models.StatusInTransit, false, true), models.StatusCancelled, p.donor)
	assert.Equal(t, "Cannot cancel donation that has been accepted by a volunteer", apperror.From(err).Message)
}
