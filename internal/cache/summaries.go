// Package cache keeps user summaries in memory for populating posts, events and cotisations.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

// Summaries is safe for concurrent use. Concurrent misses on the same id share one store read.
//
// Every id carries a generation bumped by Invalidate. A read only fills the cache when the
// generation it started under is still current, so a load racing an invalidation cannot
// put the old summary back.
type Summaries struct {
	c     *gocache.Cache
	sf    singleflight.Group
	users repo.Users

	mu  sync.Mutex
	gen map[string]uint64
}

func NewSummaries(users repo.Users, ttl time.Duration) *Summaries {
	return &Summaries{c: gocache.New(ttl, time.Minute), users: users, gen: map[string]uint64{}}
}

func (s *Summaries) generation(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[id]
}

// fill caches sum unless id was invalidated after gen was read.
func (s *Summaries) fill(id string, gen uint64, sum models.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[id] == gen {
		s.c.SetDefault(id, sum)
	}
}

func (s *Summaries) Get(id string) (models.UserSummary, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return models.UserSummary{}, false
	}
	sum, ok := v.(models.UserSummary)
	return sum, ok
}

// Load returns the summary for id, reading through to the store on a miss.
// ok is false when the user no longer exists.
func (s *Summaries) Load(ctx context.Context, id string) (models.UserSummary, bool, error) {
	if sum, ok := s.Get(id); ok {
		return sum, true, nil
	}
	v, err, _ := s.sf.Do(id, func() (any, error) {
		gen := s.generation(id)
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sum := u.Summary()
		s.fill(id, gen, sum)
		return sum, nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return models.UserSummary{}, false, nil
	}
	if err != nil {
		return models.UserSummary{}, false, err
	}
	return v.(models.UserSummary), true, nil
}

// LoadMany resolves ids in order and skips users that no longer exist.
func (s *Summaries) LoadMany(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	var missing []string
	gens := map[string]uint64{}
	for _, id := range ids {
		if _, ok := s.Get(id); !ok {
			missing = append(missing, id)
			gens[id] = s.generation(id)
		}
	}
	if len(missing) > 1 {
		users, err := s.users.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			s.fill(u.ID, gens[u.ID], u.Summary())
		}
	}

	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		sum, ok, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, sum)
		}
	}
	return out, nil
}

// Invalidate drops the cached summary and detaches any read already in flight for id.
func (s *Summaries) Invalidate(id string) {
	s.mu.Lock()
	s.gen[id]++
	s.c.Delete(id)
	s.mu.Unlock()
	s.sf.Forget(id)
}
