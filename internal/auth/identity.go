package auth

import (
	"context"

	"github.com/baharkarakas/asso-backend/internal/models"
)

// Identity is the caller derived from a verified bearer token.
type Identity struct {
	ID   string
	Role models.Role
}

func (i Identity) Authenticated() bool { return i.ID != "" }
func (i Identity) IsAdmin() bool       { return i.Role == models.RoleAdmin }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the zero Identity for anonymous requests.
func FromContext(ctx context.Context) Identity {
	if v, ok := ctx.Value(identityKey{}).(Identity); ok {
		return v
	}
	return Identity{}
}
