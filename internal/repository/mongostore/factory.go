// Package mongostore implements the repositories on MongoDB, one collection per record type.
package mongostore

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/baharkarakas/asso-backend/internal/db"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

func NewRepositories(database *mongo.Database) repo.Repositories {
	return repo.Repositories{
		Users:       &usersRepo{c: database.Collection("users")},
		Posts:       &postsRepo{c: database.Collection("posts")},
		Events:      &eventsRepo{c: database.Collection("events")},
		Cotisations: &cotisationsRepo{c: database.Collection("cotisations")},
		AuditLogs:   &auditLogsRepo{c: database.Collection("audit_logs")},
	}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case db.IsDuplicateKey(err):
		return repo.ErrDuplicate
	default:
		return err
	}
}

func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
