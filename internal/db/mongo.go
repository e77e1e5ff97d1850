package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func NewMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(database), nil
}

/*
EnsureIndexes is called at startup and is idempotent. Errors from every
collection are aggregated so startup can fail with the full picture.
*/
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	sets := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		},
		"posts": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_created_at")},
		},
		"events": {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("idx_date")},
		},
		"cotisations": {
			{Keys: bson.D{{Key: "receipt_number", Value: 1}}, Options: options.Index().SetName("uniq_receipt_number").SetUnique(true)},
			{Keys: bson.D{
				{Key: "member_id", Value: 1},
				{Key: "start_period", Value: 1},
				{Key: "end_period", Value: 1},
			}, Options: options.Index().SetName("idx_member_period")},
		},
		"audit_logs": {
			{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_entity")},
		},
	}

	var problems []string
	for coll, models := range sets {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// IsDuplicateKey detects E11000 across write and command errors.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
