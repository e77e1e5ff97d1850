package memory

import (
	"context"
	"sort"
	"time"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

type cotisationsRepo struct{ s *store }

func (r *cotisationsRepo) Create(_ context.Context, c models.Cotisation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cotisations[c.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.cotisations {
		if existing.ReceiptNumber == c.ReceiptNumber {
			return repository.ErrDuplicate
		}
	}
	r.s.cotisations[c.ID] = c
	return nil
}

func (r *cotisationsRepo) GetByID(_ context.Context, id string) (models.Cotisation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cotisations[id]
	if !ok {
		return models.Cotisation{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *cotisationsRepo) List(_ context.Context, f repository.CotisationFilter) ([]models.Cotisation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Cotisation{}
	for _, c := range r.s.cotisations {
		if f.MemberID != "" && c.MemberID != f.MemberID {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (r *cotisationsRepo) UpdateStatus(_ context.Context, id string, status models.CotisationStatus) (models.Cotisation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cotisations[id]
	if !ok {
		return models.Cotisation{}, repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	r.s.cotisations[id] = c
	return c, nil
}

func (r *cotisationsRepo) LatestCovering(_ context.Context, memberID string, asOf time.Time) (models.Cotisation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		best  models.Cotisation
		found bool
	)
	for _, c := range r.s.cotisations {
		if c.MemberID != memberID || !c.Covers(asOf) {
			continue
		}
		if !found || c.EndPeriod.After(best.EndPeriod) {
			best, found = c, true
		}
	}
	if !found {
		return models.Cotisation{}, repository.ErrNotFound
	}
	return best, nil
}
