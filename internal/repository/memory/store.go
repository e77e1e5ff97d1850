// Package memory is an in-process implementation of the repositories, used for
// local development (STORAGE_DRIVER=memory) and tests.
package memory

import (
	"sync"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

type store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	posts       map[string]models.Post
	events      map[string]models.Event
	cotisations map[string]models.Cotisation
	audit       []models.AuditLog
}

func NewRepositories() repository.Repositories {
	s := &store{
		users:       map[string]models.User{},
		posts:       map[string]models.Post{},
		events:      map[string]models.Event{},
		cotisations: map[string]models.Cotisation{},
	}
	return repository.Repositories{
		Users:       &usersRepo{s},
		Posts:       &postsRepo{s},
		Events:      &eventsRepo{s},
		Cotisations: &cotisationsRepo{s},
		AuditLogs:   &auditLogsRepo{s},
	}
}

func cloneEvent(e models.Event) models.Event {
	e.ParticipantIDs = append([]string(nil), e.ParticipantIDs...)
	if e.MaxParticipants != nil {
		n := *e.MaxParticipants
		e.MaxParticipants = &n
	}
	return e
}
