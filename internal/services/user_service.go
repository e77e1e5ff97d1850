package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/policy"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/sanitize"
)

const minPasswordLen = 8

type UserService struct {
	r       repo.Users
	tm      *auth.TokenManager
	sums    *cache.Summaries
	janitor *Janitor
}

func NewUserService(r repo.Users, tm *auth.TokenManager, sums *cache.Summaries, j *Janitor) *UserService {
	return &UserService{r: r, tm: tm, sums: sums, janitor: j}
}

type RegisterInput struct {
	Name     string
	Nickname string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if len(in.Password) < minPasswordLen {
		return models.User{}, apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	now := time.Now().UTC()
	u := models.User{
		ID:        uuid.NewString(),
		Name:      sanitize.Text(in.Name),
		Nickname:  sanitize.Text(in.Nickname),
		Email:     in.Email,
		Role:      models.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, apperr.Wrap(apperr.Validation, "", err)
	}
	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.User{}, apperr.New(apperr.Validation, err.Error())
	}
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "hash password", err)
	}
	u.PasswordHash = hash
	if err := s.r.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, apperr.New(apperr.Validation, "email already registered")
		}
		return models.User{}, storeErr(err, "user")
	}
	return u, nil
}

type Session struct {
	User models.User `json:"user"`
	auth.TokenPair
}

// Login answers every credential mismatch with the same Unauthorized error.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	bad := apperr.New(apperr.Unauthorized, "invalid credentials")
	u, err := s.r.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, bad
	}
	if err != nil {
		return Session{}, storeErr(err, "user")
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return Session{}, bad
	}
	pair, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "issue tokens", err)
	}
	return Session{User: u, TokenPair: pair}, nil
}

// Refresh re-reads the account so a promoted or deleted user is reflected in the new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	id, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, apperr.New(apperr.Unauthorized, "invalid refresh token")
	}
	u, err := s.r.GetByID(ctx, id.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, apperr.New(apperr.Unauthorized, "invalid refresh token")
	}
	if err != nil {
		return Session{}, storeErr(err, "user")
	}
	pair, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "issue tokens", err)
	}
	return Session{User: u, TokenPair: pair}, nil
}

func (s *UserService) List(ctx context.Context, actor auth.Identity) ([]models.User, error) {
	if err := policy.Require(actor, policy.User, policy.List, ""); err != nil {
		return nil, err
	}
	users, err := s.r.List(ctx)
	return users, storeErr(err, "user")
}

func (s *UserService) Get(ctx context.Context, actor auth.Identity, id string) (models.User, error) {
	if err := policy.Require(actor, policy.User, policy.Read, id); err != nil {
		return models.User{}, err
	}
	u, err := s.r.GetByID(ctx, id)
	return u, storeErr(err, "user")
}

type UserPatch struct {
	Name     *string
	Nickname *string
	Email    *string
	Role     *models.Role
}

func (s *UserService) Update(ctx context.Context, actor auth.Identity, id string, p UserPatch) (models.User, error) {
	if err := policy.Require(actor, policy.User, policy.Update, id); err != nil {
		return models.User{}, err
	}
	if p.Role != nil {
		if err := policy.Require(actor, policy.User, policy.SetRole, id); err != nil {
			return models.User{}, err
		}
	}
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	if p.Name != nil {
		u.Name = sanitize.Text(*p.Name)
	}
	if p.Nickname != nil {
		u.Nickname = sanitize.Text(*p.Nickname)
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if err := u.Validate(); err != nil {
		return models.User{}, apperr.Wrap(apperr.Validation, "", err)
	}
	return s.save(ctx, u)
}

func (s *UserService) save(ctx context.Context, u models.User) (models.User, error) {
	if err := s.r.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, apperr.New(apperr.Validation, "email already registered")
		}
		return models.User{}, storeErr(err, "user")
	}
	s.sums.Invalidate(u.ID)
	return s.reload(ctx, u.ID)
}

func (s *UserService) reload(ctx context.Context, id string) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	return u, storeErr(err, "user")
}

// SetProfilePicture stores path as the user's picture and schedules removal of the previous one.
func (s *UserService) SetProfilePicture(ctx context.Context, actor auth.Identity, id, path string) (models.User, error) {
	if err := policy.Require(actor, policy.User, policy.Update, id); err != nil {
		return models.User{}, err
	}
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	old := u.ProfilePic
	u.ProfilePic = path
	out, err := s.save(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	if old != path {
		s.janitor.Discard(old)
	}
	return out, nil
}

func (s *UserService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if err := policy.Require(actor, policy.User, policy.Delete, id); err != nil {
		return err
	}
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "user")
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	s.sums.Invalidate(id)
	s.janitor.Discard(u.ProfilePic)
	return nil
}

// Promote grants the admin role; used by the promote command, bypassing the policy.
func (s *UserService) Promote(ctx context.Context, email string) (models.User, error) {
	u, err := s.r.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	u.Role = models.RoleAdmin
	return s.save(ctx, u)
}
