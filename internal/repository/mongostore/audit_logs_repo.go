package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type auditLogsRepo struct{ c *mongo.Collection }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.c.InsertOne(ctx, l)
	return mapErr(err)
}

func (r *auditLogsRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	cur, err := r.c.Find(ctx,
		bson.M{"entity_type": entityType, "entity_id": entityID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AuditLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
