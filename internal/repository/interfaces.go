package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/asso-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConditionFailed is returned by conditional updates whose preconditions did not match
	// (including a missing record). Callers re-read to find out which precondition failed.
	ErrConditionFailed = errors.New("update precondition failed")
)

type Users interface {
	Create(ctx context.Context, u models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// GetMany skips ids that do not exist.
	GetMany(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

type Posts interface {
	Create(ctx context.Context, p models.Post) error
	GetByID(ctx context.Context, id string) (models.Post, error)
	// List is ordered by created_at, newest first.
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, p models.Post) error
	Delete(ctx context.Context, id string) error
}

type Events interface {
	Create(ctx context.Context, e models.Event) error
	GetByID(ctx context.Context, id string) (models.Event, error)
	// List is ordered by date, soonest first.
	List(ctx context.Context) ([]models.Event, error)
	// Update writes the editable fields; organizer and participants are left untouched.
	// A bound below the stored participant count fails with ErrConditionFailed.
	Update(ctx context.Context, e models.Event) error
	Delete(ctx context.Context, id string) error

	// AddParticipant appends userID only if the event is joinable, userID is not yet a
	// participant and the bound (if any) is not reached, in one atomic write.
	AddParticipant(ctx context.Context, eventID, userID string) (models.Event, error)
	// RemoveParticipant removes userID only if it is a participant and not the organizer.
	RemoveParticipant(ctx context.Context, eventID, userID string) (models.Event, error)
}

type CotisationFilter struct {
	MemberID string // empty means all members
}

type Cotisations interface {
	// Create returns ErrDuplicate when the receipt number is taken.
	Create(ctx context.Context, c models.Cotisation) error
	GetByID(ctx context.Context, id string) (models.Cotisation, error)
	// List is ordered by payment_date, newest first.
	List(ctx context.Context, f CotisationFilter) ([]models.Cotisation, error)
	UpdateStatus(ctx context.Context, id string, status models.CotisationStatus) (models.Cotisation, error)
	// LatestCovering returns the validated cotisation of memberID with the latest
	// end_period >= asOf, or ErrNotFound.
	LatestCovering(ctx context.Context, memberID string, asOf time.Time) (models.Cotisation, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
}

// Repositories bundles one implementation of every store.
type Repositories struct {
	Users       Users
	Posts       Posts
	Events      Events
	Cotisations Cotisations
	AuditLogs   AuditLogs
}
