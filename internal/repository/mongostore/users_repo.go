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

type usersRepo struct{ c *mongo.Collection }

func (r *usersRepo) Create(ctx context.Context, u models.User) error {
	u.UpdatedAt = u.CreatedAt
	_, err := r.c.InsertOne(ctx, u)
	return mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, mapErr(err)
}

func (r *usersRepo) GetMany(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *usersRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	return requireMatch(r.c.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":        u.Name,
		"nickname":    u.Nickname,
		"email":       u.Email,
		"role":        u.Role,
		"profile_pic": u.ProfilePic,
		"updated_at":  time.Now().UTC(),
	}}))
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
