package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/services"
)

func register(t *testing.T, e *env, nick, email string) models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), services.RegisterInput{
		Name: "Name " + nick, Nickname: nick, Email: email, Password: "correct horse",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u := register(t, e, "ana", "  Ana@Example.org ")
	assert.Equal(t, "ana@example.org", u.Email)
	assert.Equal(t, models.RoleMember, u.Role)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	_, err := e.users.Register(ctx, services.RegisterInput{Name: "x", Nickname: "xx", Email: "ana@example.org", Password: "12345678"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.users.Register(ctx, services.RegisterInput{Name: "x", Nickname: "xx", Email: "x@example.org", Password: "short"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	s, err := e.users.Login(ctx, "ANA@example.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.User.ID)
	id, err := e.tokens.ParseAccess(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)

	_, err = e.users.Login(ctx, "ana@example.org", "wrong password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = e.users.Login(ctx, "nobody@example.org", "correct horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefreshPicksUpNewRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u := register(t, e, "ana", "ana@example.org")
	s, err := e.users.Login(ctx, "ana@example.org", "correct horse")
	require.NoError(t, err)

	_, err = e.users.Promote(ctx, "ana@example.org")
	require.NoError(t, err)

	s2, err := e.users.Refresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	id, err := e.tokens.ParseAccess(s2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, id.Role)

	_, err = e.users.Refresh(ctx, s.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "access tokens cannot refresh")

	require.NoError(t, e.users.Delete(ctx, auth.Identity{ID: u.ID, Role: models.RoleAdmin}, u.ID))
	_, err = e.users.Refresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	a := register(t, e, "ana", "ana@example.org")
	b := register(t, e, "bob", "bob@example.org")
	ana := auth.Identity{ID: a.ID, Role: models.RoleMember}
	admin := e.member(t, "admin", models.RoleAdmin)

	_, err := e.users.Update(ctx, ana, b.ID, services.UserPatch{Nickname: ptr("bobby")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.users.Update(ctx, ana, a.ID, services.UserPatch{Role: ptr(models.RoleAdmin)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.users.Update(ctx, ana, a.ID, services.UserPatch{Email: ptr("bob@example.org")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := e.users.Update(ctx, ana, a.ID, services.UserPatch{Nickname: ptr("anita")})
	require.NoError(t, err)
	assert.Equal(t, "anita", got.Nickname)

	got, err = e.users.Update(ctx, admin, b.ID, services.UserPatch{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestUpdateRefreshesPopulatedSummary(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	a := register(t, e, "ana", "ana@example.org")
	ana := auth.Identity{ID: a.ID, Role: models.RoleMember}

	p, err := e.posts.Create(ctx, ana, services.PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "ana", p.Author.Nickname)

	_, err = e.users.Update(ctx, ana, a.ID, services.UserPatch{Nickname: ptr("anita")})
	require.NoError(t, err)
	got, err := e.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "anita", got.Author.Nickname)
}

func TestProfilePictureReplacesOldFile(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	a := register(t, e, "ana", "ana@example.org")
	ana := auth.Identity{ID: a.ID, Role: models.RoleMember}
	bob := e.member(t, "bob", models.RoleMember)

	_, err := e.users.SetProfilePicture(ctx, bob, a.ID, "/uploads/x.png")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	u, err := e.users.SetProfilePicture(ctx, ana, a.ID, "/uploads/1.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1.png", u.ProfilePic)
	assert.Empty(t, e.files.list())

	_, err = e.users.SetProfilePicture(ctx, ana, a.ID, "/uploads/2.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/1.png"}, e.files.list())
}

func TestListAndGetUsersRequireAuth(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	a := register(t, e, "ana", "ana@example.org")

	_, err := e.users.List(ctx, auth.Identity{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	list, err := e.users.List(ctx, auth.Identity{ID: "someone", Role: models.RoleMember})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = e.users.Get(ctx, auth.Identity{ID: "someone"}, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	got, err := e.users.Get(ctx, auth.Identity{ID: "someone"}, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Nickname)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u := register(t, e, "leo", "leo@example.org")
	self := auth.Identity{ID: u.ID, Role: models.RoleMember}
	_, err := e.users.SetProfilePicture(ctx, self, u.ID, "/uploads/leo.png")
	require.NoError(t, err)

	other := e.member(t, "other", models.RoleMember)
	err = e.users.Delete(ctx, other, u.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, e.users.Delete(ctx, self, u.ID))
	assert.Contains(t, e.files.list(), "/uploads/leo.png")

	admin := e.member(t, "admin", models.RoleAdmin)
	err = e.users.Delete(ctx, admin, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	register(t, e, "mia", "mia@example.org")

	u, err := e.users.Promote(ctx, " MIA@example.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = e.users.Promote(ctx, "nobody@example.org")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRegisterRejectsLongPassword(t *testing.T) {
	e := newEnv()
	_, err := e.users.Register(context.Background(), services.RegisterInput{
		Name: "Long", Nickname: "long", Email: "long@example.org", Password: strings.Repeat("p", 80),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
