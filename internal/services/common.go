package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/worker"
)

// FileRemover deletes stored upload files by their public path.
type FileRemover interface {
	Remove(publicPath string) error
}

// Janitor removes images that are no longer referenced by any record, off the request path.
type Janitor struct {
	files FileRemover
	pool  *worker.Pool
}

func NewJanitor(files FileRemover, pool *worker.Pool) *Janitor {
	return &Janitor{files: files, pool: pool}
}

// Discard schedules removal of path. Empty paths and a nil Janitor are ignored.
func (j *Janitor) Discard(path string) {
	if j == nil || j.files == nil || path == "" {
		return
	}
	job := worker.Job{Name: "remove_upload", Run: func() error { return j.files.Remove(path) }}
	if j.pool == nil || !j.pool.Submit(job) {
		if err := job.Run(); err != nil {
			slog.Warn("remove upload", "path", path, "err", err)
		}
	}
}

// storeErr maps repository sentinels to service errors; what names the missing record.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return apperr.New(apperr.NotFound, what+" not found")
	default:
		return apperr.Wrap(apperr.Internal, "", err)
	}
}

func audit(ctx context.Context, logs repo.AuditLogs, entityType, entityID, actorID, action string, details map[string]any) {
	err := logs.Create(ctx, models.AuditLog{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("audit log write failed", "entity", entityType, "id", entityID, "action", action, "err", err)
	}
}
