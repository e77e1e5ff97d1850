package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/repository/memory"
	"github.com/baharkarakas/asso-backend/internal/services"
)

var errUsersDown = errors.New("users unavailable")

// downUsers fails every lookup used to populate views.
type downUsers struct{ repo.Users }

func (downUsers) GetByID(context.Context, string) (models.User, error) {
	return models.User{}, errUsersDown
}

func (downUsers) GetMany(context.Context, []string) ([]models.User, error) {
	return nil, errUsersDown
}

func TestUpdateSucceedsWhenAuthorLookupFails(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	files := &removed{}
	sums := cache.NewSummaries(downUsers{repos.Users}, time.Minute)
	posts := services.NewPostService(repos.Posts, repos.AuditLogs, sums, services.NewJanitor(files, nil))
	author := auth.Identity{ID: "author", Role: models.RoleMember}

	p, err := posts.Create(ctx, author, services.PostInput{Title: "Rentrée", Content: "x", Image: "/uploads/old.png"})
	require.NoError(t, err)
	assert.Nil(t, p.Author)

	got, err := posts.Update(ctx, author, p.ID, services.PostPatch{Image: ptr("/uploads/new.png")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/new.png", got.Image)
	assert.Nil(t, got.Author)

	stored, err := repos.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/new.png", stored.Image)
	assert.Equal(t, []string{"/uploads/old.png"}, files.list())
}

func TestEventUpdateSucceedsWhenParticipantLookupFails(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	files := &removed{}
	sums := cache.NewSummaries(downUsers{repos.Users}, time.Minute)
	events := services.NewEventService(repos.Events, repos.AuditLogs, sums, services.NewJanitor(files, nil))
	org := auth.Identity{ID: "org", Role: models.RoleMember}

	ev, err := events.Create(ctx, org, services.EventInput{
		Title: "Picnic", Description: "Bring food", Location: "Park",
		Date: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ev.ParticipantCount)

	got, err := events.Update(ctx, org, ev.ID, services.EventPatch{Image: ptr("/uploads/new.png")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/new.png", got.Image)
	assert.Nil(t, got.Organizer)
	assert.Empty(t, got.Participants)
	assert.Equal(t, 1, got.ParticipantCount)

	stored, err := repos.Events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/new.png", stored.Image)
	assert.Empty(t, files.list())
}
