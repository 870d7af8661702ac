package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/models"
	"secondserving/internal/store"
)

func TestAssignVolunteerFirstWins(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()

	donation := &models.Donation{Status: models.StatusPending}
	require.NoError(t, stores.Donations.Create(ctx, donation))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := stores.Donations.AssignVolunteer(ctx, donation.ID, primitive.NewObjectID(), time.Now())
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	got, err := stores.Donations.FindByID(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVolunteerAssigned, got.Status)
	assert.NotNil(t, got.VolunteerID)
	assert.NotNil(t, got.AssignmentTime)
}

func TestApplyTransitionChecksCurrentStatus(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()

	donation := &models.Donation{Status: models.StatusInTransit}
	require.NoError(t, stores.Donations.Create(ctx, donation))

	now := time.Now()
	ok, err := stores.Donations.ApplyTransition(ctx, donation.ID, store.Transition{
		From: models.StatusPending, To: models.StatusCancelled, At: now,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	spot := primitive.NewObjectID()
	ok, err = stores.Donations.ApplyTransition(ctx, donation.ID, store.Transition{
		From: models.StatusInTransit, To: models.StatusDelivered, At: now,
		DeliveryTime: &now, HungerSpotID: &spot,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := stores.Donations.FindByID(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.Equal(t, spot, *got.AssignedHungerSpot)
}

func TestNearestSkipsInactiveAndFiltersYoung(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()
	origin := models.NewPoint(77.59, 12.97)

	spots := []models.HungerSpot{
		{Name: "closed", IsActive: false, Categories: models.StringList{"everyone"},
			Location: models.HungerSpotLocation{Point: models.NewPoint(77.5901, 12.9701)}},
		{Name: "near", IsActive: true, Categories: models.StringList{"everyone"},
			Location: models.HungerSpotLocation{Point: models.NewPoint(77.591, 12.971)}},
		{Name: "kids", IsActive: true, Categories: models.StringList{"young"},
			Location: models.HungerSpotLocation{Point: models.NewPoint(77.60, 12.98)}},
		{Name: "far", IsActive: true, Categories: models.StringList{"everyone", "young"},
			Location: models.HungerSpotLocation{Point: models.NewPoint(77.70, 13.05)}},
	}
	for i := range spots {
		require.NoError(t, stores.HungerSpots.Create(ctx, &spots[i]))
	}

	all, err := stores.HungerSpots.Nearest(ctx, origin, models.GroupEveryone, 3)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "near", all[0].Name)
	for _, s := range all {
		assert.True(t, s.IsActive)
	}

	young, err := stores.HungerSpots.Nearest(ctx, origin, models.GroupYoung, 3)
	require.NoError(t, err)
	require.Len(t, young, 2)
	assert.Equal(t, "kids", young[0].Name)
	assert.Equal(t, "far", young[1].Name)
}

func TestNearbyVolunteersWithinRadius(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()
	origin := models.NewPoint(77.59, 12.97)

	volunteers := []models.Account{
		{PhoneNumber: "9000000001", Kind: models.KindVolunteer, Active: true, IsVerified: true,
			Location: models.NewPoint(77.595, 12.975)},
		{PhoneNumber: "9000000002", Kind: models.KindVolunteer, Active: true, IsVerified: true,
			Location: models.NewPoint(77.80, 13.10)},
		{PhoneNumber: "9000000003", Kind: models.KindVolunteer, Active: false, IsVerified: false,
			Location: models.NewPoint(77.591, 12.971)},
		{PhoneNumber: "9000000004", Kind: models.KindDonor, Active: true, IsVerified: true,
			Location: models.NewPoint(77.591, 12.971)},
	}
	for i := range volunteers {
		require.NoError(t, stores.Accounts.Create(ctx, &volunteers[i]))
	}

	got, err := stores.Accounts.NearbyVolunteers(ctx, origin, 3000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9000000001", got[0].PhoneNumber)
}

func TestAccountsActiveFilterAndDuplicates(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()

	acct := &models.Account{PhoneNumber: "9876543210", Kind: models.KindDonor}
	require.NoError(t, stores.Accounts.Create(ctx, acct))
	assert.ErrorIs(t, stores.Accounts.Create(ctx, &models.Account{PhoneNumber: "9876543210", Kind: models.KindDonor}), store.ErrDuplicate)
	require.NoError(t, stores.Accounts.Create(ctx, &models.Account{PhoneNumber: "9876543210", Kind: models.KindVolunteer}))

	_, err := stores.Accounts.FindByPhone(ctx, "9876543210", models.KindDonor, store.ActiveOnly)
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := stores.Accounts.FindByPhone(ctx, "9876543210", models.KindDonor, store.AnyActivity)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, found.ID)

	found.FullName = "changed"
	stored, err := stores.Accounts.FindByID(ctx, acct.ID, store.AnyActivity)
	require.NoError(t, err)
	assert.Empty(t, stored.FullName)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	stores := New().Stores()
	donor := primitive.NewObjectID()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, stores.Donations.Create(ctx, &models.Donation{
			DonorID: donor, Status: models.StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := stores.Donations.ListByDonor(ctx, donor, store.ListOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	empty, err := stores.Donations.ListByDonor(ctx, donor, store.ListOptions{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
