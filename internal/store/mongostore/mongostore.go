// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secondserving/internal/store"
)

const (
	AccountsCollection    = "accounts"
	HungerSpotsCollection = "hunger_spots"
	DonationsCollection   = "donations"

	opTimeout = 5 * time.Second
)

// New wires every collection of db into a store.Stores.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Accounts:    &Accounts{col: db.Collection(AccountsCollection)},
		HungerSpots: &HungerSpots{col: db.Collection(HungerSpotsCollection)},
		Donations:   &Donations{col: db.Collection(DonationsCollection)},
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func pageOptions(opts store.ListOptions) *options.FindOptions {
	find := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if opts.Limit > 0 {
		page := opts.Page
		if page < 1 {
			page = 1
		}
		find.SetSkip((page - 1) * opts.Limit).SetLimit(opts.Limit)
	}
	return find
}

func nearFilter(point interface{}, maxDistance float64) bson.M {
	near := bson.M{"$geometry": point}
	if maxDistance > 0 {
		near["$maxDistance"] = maxDistance
	}
	return bson.M{"$near": near}
}
