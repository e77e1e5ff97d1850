package memory

import (
	"context"
	"sort"
	"time"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

type postsRepo struct{ s *store }

func (r *postsRepo) Create(_ context.Context, p models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.posts[p.ID] = p
	return nil
}

func (r *postsRepo) GetByID(_ context.Context, id string) (models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return models.Post{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *postsRepo) List(_ context.Context) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *postsRepo) Update(_ context.Context, p models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title, cur.Content, cur.Category, cur.Image = p.Title, p.Content, p.Category, p.Image
	cur.UpdatedAt = time.Now().UTC()
	r.s.posts[p.ID] = cur
	return nil
}

func (r *postsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}
