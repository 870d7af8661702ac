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

type Donations struct {
	col *mongo.Collection
}

func (s *Donations) Create(ctx context.Context, donation *models.Donation) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, donation)
	return translate(err, "insert donation")
}

func (s *Donations) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var donation models.Donation
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		return nil, translate(err, "find donation")
	}
	return &donation, nil
}

func (s *Donations) list(ctx context.Context, filter bson.M, opts store.ListOptions) ([]models.Donation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.col.Find(ctx, filter, pageOptions(opts))
	if err != nil {
		return nil, translate(err, "list donations")
	}
	defer cursor.Close(ctx)

	donations := make([]models.Donation, 0)
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, translate(err, "decode donations")
	}
	return donations, nil
}

func (s *Donations) ListByDonor(ctx context.Context, donorID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"donorId": donorID}, opts)
}

func (s *Donations) ListByVolunteer(ctx context.Context, volunteerID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"volunteerId": volunteerID}, opts)
}

func (s *Donations) ListByHungerSpot(ctx context.Context, spotID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"assignedHungerSpot": spotID}, opts)
}

// AssignVolunteer is a single conditional update; MatchedCount decides the race.
func (s *Donations) AssignVolunteer(ctx context.Context, id, volunteerID primitive.ObjectID, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":         id,
		"volunteerId": nil,
		"status":      models.StatusPending,
	}
	update := bson.M{"$set": bson.M{
		"volunteerId":    volunteerID,
		"status":         models.StatusVolunteerAssigned,
		"assignmentTime": at,
		"updatedAt":      at,
	}}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, translate(err, "assign volunteer")
	}
	return res.MatchedCount == 1, nil
}

func (s *Donations) ApplyTransition(ctx context.Context, id primitive.ObjectID, t store.Transition) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"status":    t.To,
		"updatedAt": t.At,
	}
	if t.AssignmentTime != nil {
		set["assignmentTime"] = *t.AssignmentTime
	}
	if t.DeliveryTime != nil {
		set["deliveryTime"] = *t.DeliveryTime
	}
	if t.HungerSpotID != nil {
		set["assignedHungerSpot"] = *t.HungerSpotID
	}
	if t.RejectionReason != "" {
		set["rejectionReason"] = t.RejectionReason
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "status": t.From}, bson.M{"$set": set})
	if err != nil {
		return false, translate(err, "apply transition")
	}
	return res.MatchedCount == 1, nil
}

func (s *Donations) ListExpiredPending(ctx context.Context, now time.Time) ([]models.Donation, error) {
	return s.list(ctx, bson.M{
		"status":                 models.StatusPending,
		"foodDetails.expiryTime": bson.M{"$lt": now},
	}, store.ListOptions{})
}
