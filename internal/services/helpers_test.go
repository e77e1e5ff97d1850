package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/repository/memory"
	"github.com/baharkarakas/asso-backend/internal/services"
)

type removed struct {
	mu    sync.Mutex
	paths []string
}

func (r *removed) Remove(p string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
	return nil
}

func (r *removed) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type env struct {
	repos       repo.Repositories
	files       *removed
	tokens      *auth.TokenManager
	users       *services.UserService
	posts       *services.PostService
	events      *services.EventService
	cotisations *services.CotisationService
}

// newEnv wires every service on the memory store. The janitor has no pool, so removals run inline.
func newEnv() *env {
	repos := memory.NewRepositories()
	sums := cache.NewSummaries(repos.Users, time.Minute)
	files := &removed{}
	j := services.NewJanitor(files, nil)
	tm := auth.NewTokenManager("asso-test", "access-secret", "refresh-secret", time.Minute, time.Hour)
	return &env{
		repos:       repos,
		files:       files,
		tokens:      tm,
		users:       services.NewUserService(repos.Users, tm, sums, j),
		posts:       services.NewPostService(repos.Posts, repos.AuditLogs, sums, j),
		events:      services.NewEventService(repos.Events, repos.AuditLogs, sums, j),
		cotisations: services.NewCotisationService(repos.Cotisations, repos.AuditLogs, sums),
	}
}

// member stores a user directly and returns its identity.
func (e *env) member(t require.TestingT, id string, role models.Role) auth.Identity {
	err := e.repos.Users.Create(context.Background(), models.User{
		ID: id, Name: "User " + id, Nickname: id, Email: id + "@example.org", Role: role,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return auth.Identity{ID: id, Role: role}
}

func ptr[T any](v T) *T { return &v }
