package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"name": "Anna Kitchen", "categories": " Young "})
	require.NoError(t, err)

	var spot HungerSpot
	require.NoError(t, bson.Unmarshal(raw, &spot))
	assert.Equal(t, StringList{"young"}, spot.Categories)
	assert.True(t, spot.Accepts(GroupYoung))
	assert.False(t, spot.Accepts(GroupEveryone))
}

func TestStringListWritesArray(t *testing.T) {
	raw, err := bson.Marshal(HungerSpot{Name: "x"})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, bson.A{}, doc["categories"])
}

func TestDistanceMeters(t *testing.T) {
	// MG Road to Cubbon Park, Bengaluru: roughly 1.3 km apart.
	a := NewPoint(77.6070, 12.9756)
	b := NewPoint(77.5946, 12.9763)
	d := DistanceMeters(a, b)
	assert.InDelta(t, 1350, d, 100)
	assert.Zero(t, DistanceMeters(a, a))
}

func TestGeoPointValid(t *testing.T) {
	assert.True(t, NewPoint(77.59, 12.97).Valid())
	assert.False(t, NewPoint(12.97, 200).Valid())
	assert.False(t, GeoPoint{}.Valid())
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Now().Add(-time.Minute)
	acct := Account{}
	assert.False(t, acct.ChangedPasswordAfter(issued))

	changed := time.Now()
	acct.PasswordChangedAt = &changed
	assert.True(t, acct.ChangedPasswordAfter(issued))
	assert.False(t, acct.ChangedPasswordAfter(changed.Add(time.Second)))
}

func TestDonationStatusTerminal(t *testing.T) {
	for _, s := range []DonationStatus{StatusDelivered, StatusRejected, StatusCancelled} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []DonationStatus{StatusPending, StatusVolunteerAssigned, StatusInTransit} {
		assert.False(t, s.Terminal(), s)
	}
	_, ok := ParseDonationStatus("lost")
	assert.False(t, ok)
}
