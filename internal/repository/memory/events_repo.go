package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

type eventsRepo struct{ s *store }

func (r *eventsRepo) Create(_ context.Context, e models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.events[e.ID] = cloneEvent(e)
	return nil
}

func (r *eventsRepo) GetByID(_ context.Context, id string) (models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *eventsRepo) List(_ context.Context) ([]models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, cloneEvent(e))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *eventsRepo) Update(_ context.Context, e models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.events[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if e.MaxParticipants != nil && len(cur.ParticipantIDs) > *e.MaxParticipants {
		return repository.ErrConditionFailed
	}
	upd := cloneEvent(e)
	upd.OrganizerID = cur.OrganizerID
	upd.ParticipantIDs = cur.ParticipantIDs
	upd.CreatedAt = cur.CreatedAt
	upd.UpdatedAt = time.Now().UTC()
	r.s.events[e.ID] = upd
	return nil
}

func (r *eventsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *eventsRepo) AddParticipant(_ context.Context, eventID, userID string) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || !e.Status.Joinable() || e.HasParticipant(userID) || e.IsFull() {
		return models.Event{}, repository.ErrConditionFailed
	}
	e = cloneEvent(e)
	e.ParticipantIDs = append(e.ParticipantIDs, userID)
	e.UpdatedAt = time.Now().UTC()
	r.s.events[eventID] = e
	return cloneEvent(e), nil
}

func (r *eventsRepo) RemoveParticipant(_ context.Context, eventID, userID string) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || !e.HasParticipant(userID) || e.OrganizerID == userID {
		return models.Event{}, repository.ErrConditionFailed
	}
	e = cloneEvent(e)
	e.ParticipantIDs = slices.DeleteFunc(e.ParticipantIDs, func(id string) bool { return id == userID })
	e.UpdatedAt = time.Now().UTC()
	r.s.events[eventID] = e
	return cloneEvent(e), nil
}
