package memory

import (
	"context"
	"sort"
	"time"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

type usersRepo struct{ s *store }

func (r *usersRepo) Create(_ context.Context, u models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *usersRepo) GetMany(_ context.Context, ids []string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *usersRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *usersRepo) Update(_ context.Context, u models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = u
	return nil
}

func (r *usersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}
