package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secondserving/internal/logging"
	"secondserving/internal/store/mongostore"
)

func createIndexes(db *mongo.Database, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logging.For(logging.Database).WithField("collection", collection)
	log.Info("creating indexes")
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.WithError(err).Error("index error")
		return err
	}
	log.WithField("indexes", names).Info("indexes ready")
	return nil
}

func EnsureAccountIndexes(db *mongo.Database) error {
	return createIndexes(db, mongostore.AccountsCollection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "phoneNumber", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().
				SetName("phone_kind_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
	})
}

func EnsureHungerSpotIndexes(db *mongo.Database) error {
	return createIndexes(db, mongostore.HungerSpotsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "location.point", Value: "2dsphere"}},
			Options: options.Index().SetName("location_point_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}},
			Options: options.Index().SetName("isActive_index"),
		},
	})
}

func EnsureDonationIndexes(db *mongo.Database) error {
	return createIndexes(db, mongostore.DonationsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pickupLocation.point", Value: "2dsphere"}},
			Options: options.Index().SetName("pickup_point_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "donorId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("donorId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "volunteerId", Value: 1}},
			Options: options.Index().SetName("volunteerId_index"),
		},
		{
			Keys:    bson.D{{Key: "assignedHungerSpot", Value: 1}},
			Options: options.Index().SetName("assignedHungerSpot_index"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "foodDetails.expiryTime", Value: 1}},
			Options: options.Index().SetName("status_expiry"),
		},
	})
}
