package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

type eventsRepo struct{ c *mongo.Collection }

func (r *eventsRepo) Create(ctx context.Context, e models.Event) error {
	e.UpdatedAt = e.CreatedAt
	_, err := r.c.InsertOne(ctx, e)
	return mapErr(err)
}

func (r *eventsRepo) GetByID(ctx context.Context, id string) (models.Event, error) {
	var e models.Event
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	return e, mapErr(err)
}

func (r *eventsRepo) List(ctx context.Context) ([]models.Event, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update refuses a bound below the stored participant count with ErrConditionFailed.
func (r *eventsRepo) Update(ctx context.Context, e models.Event) error {
	filter := bson.M{"_id": e.ID}
	if e.MaxParticipants != nil {
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$participant_ids"}, *e.MaxParticipants}}
	}
	err := requireMatch(r.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":            e.Title,
		"description":      e.Description,
		"date":             e.Date,
		"time":             e.Time,
		"location":         e.Location,
		"image":            e.Image,
		"max_participants": e.MaxParticipants,
		"status":           e.Status,
		"updated_at":       time.Now().UTC(),
	}}))
	if errors.Is(err, repo.ErrNotFound) && e.MaxParticipants != nil {
		n, cerr := r.c.CountDocuments(ctx, bson.M{"_id": e.ID})
		if cerr != nil {
			return cerr
		}
		if n > 0 {
			return repo.ErrConditionFailed
		}
	}
	return err
}

func (r *eventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// conditionalUpdate applies update only when filter matches and returns the new document.
func (r *eventsRepo) conditionalUpdate(ctx context.Context, filter, update bson.M) (models.Event, error) {
	var e models.Event
	err := r.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, repo.ErrConditionFailed
	}
	return e, mapErr(err)
}

func (r *eventsRepo) AddParticipant(ctx context.Context, eventID, userID string) (models.Event, error) {
	filter := bson.M{
		"_id":             eventID,
		"status":          bson.M{"$in": models.JoinableStatuses},
		"participant_ids": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"max_participants": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$size": "$participant_ids"}, "$max_participants"}}},
		},
	}
	update := bson.M{
		"$push": bson.M{"participant_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *eventsRepo) RemoveParticipant(ctx context.Context, eventID, userID string) (models.Event, error) {
	filter := bson.M{
		"_id":             eventID,
		"participant_ids": userID,
		"organizer_id":    bson.M{"$ne": userID},
	}
	update := bson.M{
		"$pull": bson.M{"participant_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.conditionalUpdate(ctx, filter, update)
}
