package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

type cotisationsRepo struct{ c *mongo.Collection }

func (r *cotisationsRepo) Create(ctx context.Context, c models.Cotisation) error {
	c.UpdatedAt = c.CreatedAt
	_, err := r.c.InsertOne(ctx, c)
	return mapErr(err)
}

func (r *cotisationsRepo) GetByID(ctx context.Context, id string) (models.Cotisation, error) {
	var c models.Cotisation
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, mapErr(err)
}

func (r *cotisationsRepo) List(ctx context.Context, f repo.CotisationFilter) ([]models.Cotisation, error) {
	filter := bson.M{}
	if f.MemberID != "" {
		filter["member_id"] = f.MemberID
	}
	cur, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Cotisation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cotisationsRepo) UpdateStatus(ctx context.Context, id string, status models.CotisationStatus) (models.Cotisation, error) {
	var c models.Cotisation
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	return c, mapErr(err)
}

func (r *cotisationsRepo) LatestCovering(ctx context.Context, memberID string, asOf time.Time) (models.Cotisation, error) {
	var c models.Cotisation
	err := r.c.FindOne(ctx,
		bson.M{
			"member_id":  memberID,
			"status":     models.CotisationValidated,
			"end_period": bson.M{"$gte": asOf},
		},
		options.FindOne().SetSort(bson.D{{Key: "end_period", Value: -1}}),
	).Decode(&c)
	return c, mapErr(err)
}
