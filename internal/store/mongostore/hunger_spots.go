package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secondserving/internal/models"
	"secondserving/internal/store"
)

type HungerSpots struct {
	col *mongo.Collection
}

func spotFilter(filter bson.M, q store.Query) bson.M {
	if !q.IncludeInactive {
		filter["isActive"] = true
	}
	return filter
}

func (s *HungerSpots) Create(ctx context.Context, spot *models.HungerSpot) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if spot.ID.IsZero() {
		spot.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, spot)
	return translate(err, "insert hunger spot")
}

func (s *HungerSpots) FindByID(ctx context.Context, id primitive.ObjectID, q store.Query) (*models.HungerSpot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var spot models.HungerSpot
	if err := s.col.FindOne(ctx, spotFilter(bson.M{"_id": id}, q)).Decode(&spot); err != nil {
		return nil, translate(err, "find hunger spot")
	}
	return &spot, nil
}

func (s *HungerSpots) List(ctx context.Context, q store.Query) ([]models.HungerSpot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.col.Find(ctx, spotFilter(bson.M{}, q), opts)
	if err != nil {
		return nil, translate(err, "list hunger spots")
	}
	defer cursor.Close(ctx)

	spots := make([]models.HungerSpot, 0)
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, translate(err, "decode hunger spots")
	}
	return spots, nil
}

func (s *HungerSpots) Save(ctx context.Context, spot *models.HungerSpot) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	spot.UpdatedAt = time.Now()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": spot.ID}, spot)
	if err != nil {
		return translate(err, "save hunger spot")
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *HungerSpots) Nearest(ctx context.Context, point models.GeoPoint, group models.TargetGroup, limit int64) ([]models.HungerSpot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"isActive":       true,
		"location.point": nearFilter(point, 0),
	}
	if group == models.GroupYoung {
		filter["categories"] = group
	}

	cursor, err := s.col.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, translate(err, "find nearest hunger spots")
	}
	defer cursor.Close(ctx)

	spots := make([]models.HungerSpot, 0, limit)
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, translate(err, "decode hunger spots")
	}
	return spots, nil
}
