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

type postsRepo struct{ c *mongo.Collection }

func (r *postsRepo) Create(ctx context.Context, p models.Post) error {
	p.UpdatedAt = p.CreatedAt
	_, err := r.c.InsertOne(ctx, p)
	return mapErr(err)
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, mapErr(err)
}

func (r *postsRepo) List(ctx context.Context) ([]models.Post, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postsRepo) Update(ctx context.Context, p models.Post) error {
	return requireMatch(r.c.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"title":      p.Title,
		"content":    p.Content,
		"category":   p.Category,
		"image":      p.Image,
		"updated_at": time.Now().UTC(),
	}}))
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
