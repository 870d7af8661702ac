package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"secondserving/internal/models"
	"secondserving/internal/store"
)

type Accounts struct {
	col *mongo.Collection
}

func activeFilter(filter bson.M, q store.Query) bson.M {
	if !q.IncludeInactive {
		filter["active"] = true
	}
	return filter
}

func (s *Accounts) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, account)
	return translate(err, "insert account")
}

func (s *Accounts) FindByID(ctx context.Context, id primitive.ObjectID, q store.Query) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var account models.Account
	err := s.col.FindOne(ctx, activeFilter(bson.M{"_id": id}, q)).Decode(&account)
	if err != nil {
		return nil, translate(err, "find account")
	}
	return &account, nil
}

func (s *Accounts) FindByPhone(ctx context.Context, phone string, kind models.AccountKind, q store.Query) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var account models.Account
	filter := activeFilter(bson.M{"phoneNumber": phone, "kind": kind}, q)
	if err := s.col.FindOne(ctx, filter).Decode(&account); err != nil {
		return nil, translate(err, "find account by phone")
	}
	return &account, nil
}

func (s *Accounts) Save(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	account.UpdatedAt = time.Now()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		return translate(err, "save account")
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Accounts) NearbyVolunteers(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]models.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"kind":       models.KindVolunteer,
		"active":     true,
		"isVerified": true,
		"location":   nearFilter(point, radiusMeters),
	}
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, translate(err, "find nearby volunteers")
	}
	defer cursor.Close(ctx)

	volunteers := make([]models.Account, 0)
	if err := cursor.All(ctx, &volunteers); err != nil {
		return nil, translate(err, "decode volunteers")
	}
	return volunteers, nil
}
