package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
)

var (
	anon   = auth.Identity{}
	owner  = auth.Identity{ID: "owner", Role: models.RoleMember}
	other  = auth.Identity{ID: "other", Role: models.RoleMember}
	admin  = auth.Identity{ID: "admin", Role: models.RoleAdmin}
	actors = map[string]auth.Identity{"anon": anon, "owner": owner, "other": other, "admin": admin}
)

func TestAuthorizeTable(t *testing.T) {
	cases := []struct {
		res     Resource
		act     Action
		allowed []string
	}{
		{Post, Read, []string{"anon", "owner", "other", "admin"}},
		{Post, Create, []string{"owner", "other", "admin"}},
		{Post, Update, []string{"owner"}},
		{Post, Delete, []string{"owner", "admin"}},
		{Event, Update, []string{"owner", "admin"}},
		{Event, Delete, []string{"owner", "admin"}},
		{Event, Join, []string{"owner", "other", "admin"}},
		{Cotisation, List, []string{"admin"}},
		{Cotisation, Read, []string{"owner", "admin"}},
		{Cotisation, UpdateStatus, []string{"admin"}},
		{Cotisation, Delete, nil},
		{User, Create, []string{"anon", "owner", "other", "admin"}},
		{User, SetRole, []string{"admin"}},
	}
	for _, c := range cases {
		for name, actor := range actors {
			want := false
			for _, a := range c.allowed {
				if a == name {
					want = true
				}
			}
			assert.Equal(t, want, Authorize(actor, c.res, c.act, owner.ID), "%s %s by %s", c.act, c.res, name)
		}
	}
}

func TestRequireKinds(t *testing.T) {
	assert.NoError(t, Require(owner, Post, Update, "owner"))
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(Require(anon, Post, Create, "")))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(Require(other, Post, Update, "owner")))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(Require(admin, Post, Update, "owner")))
}
