// Package policy centralizes who may do what on each resource type.
//
// Rules:
//   - Public: anyone, including anonymous callers
//   - Authenticated: any signed-in member or admin
//   - Owner: the author / organizer / member / account holder only
//   - Admin: admins only
//   - OwnerOrAdmin: the owner, or any admin
package policy

import (
	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
)

type Resource string

const (
	Post       Resource = "post"
	Event      Resource = "event"
	Cotisation Resource = "cotisation"
	User       Resource = "user"
)

type Action string

const (
	Create       Action = "create"
	Read         Action = "read"
	List         Action = "list"
	ListOwn      Action = "list_own"
	Update       Action = "update"
	Delete       Action = "delete"
	Join         Action = "join"
	Leave        Action = "leave"
	UpdateStatus Action = "update_status"
	SetRole      Action = "set_role"
)

type Rule int

const (
	Deny Rule = iota
	Public
	Authenticated
	Owner
	Admin
	OwnerOrAdmin
)

var table = map[Resource]map[Action]Rule{
	Post: {
		Create: Authenticated,
		Read:   Public,
		List:   Public,
		Update: Owner,
		Delete: OwnerOrAdmin,
	},
	Event: {
		Create: Authenticated,
		Read:   Public,
		List:   Public,
		Update: OwnerOrAdmin,
		Delete: OwnerOrAdmin,
		Join:   Authenticated,
		Leave:  Authenticated,
	},
	Cotisation: {
		Create:       Authenticated,
		Read:         OwnerOrAdmin,
		List:         Admin,
		ListOwn:      Authenticated,
		UpdateStatus: Admin,
	},
	User: {
		Create:  Public,
		Read:    Authenticated,
		List:    Authenticated,
		Update:  OwnerOrAdmin,
		Delete:  OwnerOrAdmin,
		SetRole: Admin,
	},
}

// RuleFor returns Deny for pairs missing from the table.
func RuleFor(res Resource, act Action) Rule {
	return table[res][act]
}

// Authorize reports whether actor may perform act on a resource owned by ownerID.
// ownerID is ignored by rules that do not depend on ownership.
func Authorize(actor auth.Identity, res Resource, act Action, ownerID string) bool {
	switch RuleFor(res, act) {
	case Public:
		return true
	case Authenticated:
		return actor.Authenticated()
	case Owner:
		return actor.Authenticated() && actor.ID == ownerID
	case Admin:
		return actor.Authenticated() && actor.IsAdmin()
	case OwnerOrAdmin:
		return actor.Authenticated() && (actor.ID == ownerID || actor.IsAdmin())
	default:
		return false
	}
}

// Require is Authorize as an error: Unauthorized for anonymous callers, Forbidden otherwise.
func Require(actor auth.Identity, res Resource, act Action, ownerID string) error {
	if Authorize(actor, res, act, ownerID) {
		return nil
	}
	if !actor.Authenticated() {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	return apperr.New(apperr.Forbidden, "you are not allowed to "+string(act)+" this "+string(res))
}
