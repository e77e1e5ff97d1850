package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/metrics"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/policy"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/sanitize"
)

// participationAttempts bounds the retries when an event changes between the
// conditional update and the re-read that explains its failure.
const participationAttempts = 3

type EventService struct {
	r       repo.Events
	logs    repo.AuditLogs
	pop     populator
	janitor *Janitor
}

func NewEventService(r repo.Events, logs repo.AuditLogs, sums *cache.Summaries, j *Janitor) *EventService {
	return &EventService{r: r, logs: logs, pop: populator{sums}, janitor: j}
}

type EventInput struct {
	Title           string
	Description     string
	Date            time.Time
	Time            string
	Location        string
	Image           string
	MaxParticipants *int
	Status          models.EventStatus
}

func (s *EventService) Create(ctx context.Context, actor auth.Identity, in EventInput) (EventView, error) {
	if err := policy.Require(actor, policy.Event, policy.Create, ""); err != nil {
		return EventView{}, err
	}
	now := time.Now().UTC()
	e := models.Event{
		ID:              uuid.NewString(),
		Title:           sanitize.Text(in.Title),
		Description:     sanitize.Content(in.Description),
		Date:            in.Date,
		Time:            sanitize.Text(in.Time),
		Location:        sanitize.Text(in.Location),
		Image:           in.Image,
		MaxParticipants: in.MaxParticipants,
		Status:          in.Status,
		OrganizerID:     actor.ID,
		ParticipantIDs:  []string{actor.ID},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.Validate(); err != nil {
		return EventView{}, apperr.Wrap(apperr.Validation, "", err)
	}
	if err := s.r.Create(ctx, e); err != nil {
		return EventView{}, storeErr(err, "event")
	}
	return s.pop.writtenEvent(ctx, e), nil
}

func (s *EventService) List(ctx context.Context) ([]EventView, error) {
	events, err := s.r.List(ctx)
	if err != nil {
		return nil, storeErr(err, "event")
	}
	return s.pop.events(ctx, events)
}

func (s *EventService) Get(ctx context.Context, id string) (EventView, error) {
	e, err := s.r.GetByID(ctx, id)
	if err != nil {
		return EventView{}, storeErr(err, "event")
	}
	return s.pop.event(ctx, e)
}

type EventPatch struct {
	Title           *string
	Description     *string
	Date            *time.Time
	Time            *string
	Location        *string
	Image           *string
	MaxParticipants *int
	// Unbounded removes the participant bound; it wins over MaxParticipants.
	Unbounded bool
	Status    *models.EventStatus
}

// Update changes the descriptive fields and status. Organizer and participants never change here.
// An error means nothing was written.
func (s *EventService) Update(ctx context.Context, actor auth.Identity, id string, p EventPatch) (EventView, error) {
	e, err := s.r.GetByID(ctx, id)
	if err != nil {
		return EventView{}, storeErr(err, "event")
	}
	if err := policy.Require(actor, policy.Event, policy.Update, e.OrganizerID); err != nil {
		return EventView{}, err
	}
	oldImage := e.Image
	if p.Title != nil {
		e.Title = sanitize.Text(*p.Title)
	}
	if p.Description != nil {
		e.Description = sanitize.Content(*p.Description)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = sanitize.Text(*p.Time)
	}
	if p.Location != nil {
		e.Location = sanitize.Text(*p.Location)
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.MaxParticipants != nil {
		e.MaxParticipants = p.MaxParticipants
	}
	if p.Unbounded {
		e.MaxParticipants = nil
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if err := e.Validate(); err != nil {
		return EventView{}, apperr.Wrap(apperr.Validation, "", err)
	}
	if err := s.r.Update(ctx, e); err != nil {
		if errors.Is(err, repo.ErrConditionFailed) {
			return EventView{}, apperr.New(apperr.Validation, "max_participants is below the current number of participants")
		}
		return EventView{}, storeErr(err, "event")
	}
	if oldImage != e.Image {
		s.janitor.Discard(oldImage)
	}
	if cur, err := s.r.GetByID(ctx, id); err == nil {
		e = cur
	}
	return s.pop.writtenEvent(ctx, e), nil
}

func (s *EventService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	e, err := s.r.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "event")
	}
	if err := policy.Require(actor, policy.Event, policy.Delete, e.OrganizerID); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return storeErr(err, "event")
	}
	audit(ctx, s.logs, "event", id, actor.ID, "deleted", map[string]any{
		"title":        e.Title,
		"organizer_id": e.OrganizerID,
		"participants": len(e.ParticipantIDs),
	})
	s.janitor.Discard(e.Image)
	return nil
}

// Join adds actor to the event. Failures are reported as NotFound, InvalidState,
// AlreadyJoined or Full, checked in that order.
func (s *EventService) Join(ctx context.Context, actor auth.Identity, id string) (EventView, error) {
	if err := policy.Require(actor, policy.Event, policy.Join, ""); err != nil {
		return EventView{}, err
	}
	e, err := s.participate(ctx, id,
		func() (models.Event, error) { return s.r.AddParticipant(ctx, id, actor.ID) },
		func(e models.Event) error { return joinBlocker(e, actor.ID) },
	)
	observe("join", err)
	if err != nil {
		return EventView{}, err
	}
	return s.pop.event(ctx, e)
}

// Leave removes actor from the event. Failures are reported as NotFound,
// NotParticipant or OrganizerCannotLeave, checked in that order.
func (s *EventService) Leave(ctx context.Context, actor auth.Identity, id string) (EventView, error) {
	if err := policy.Require(actor, policy.Event, policy.Leave, ""); err != nil {
		return EventView{}, err
	}
	e, err := s.participate(ctx, id,
		func() (models.Event, error) { return s.r.RemoveParticipant(ctx, id, actor.ID) },
		func(e models.Event) error { return leaveBlocker(e, actor.ID) },
	)
	observe("leave", err)
	if err != nil {
		return EventView{}, err
	}
	return s.pop.event(ctx, e)
}

// participate runs the store's conditional update. When it does not apply, the event
// is re-read and blocker names the violated precondition; if none is violated the
// event moved in between and the update is tried again.
func (s *EventService) participate(ctx context.Context, id string, apply func() (models.Event, error), blocker func(models.Event) error) (models.Event, error) {
	for attempt := 0; attempt < participationAttempts; attempt++ {
		e, err := apply()
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, repo.ErrConditionFailed) {
			return models.Event{}, storeErr(err, "event")
		}
		cur, err := s.r.GetByID(ctx, id)
		if err != nil {
			return models.Event{}, storeErr(err, "event")
		}
		if err := blocker(cur); err != nil {
			return models.Event{}, err
		}
	}
	return models.Event{}, apperr.New(apperr.InvalidState, "event is being modified, try again")
}

func joinBlocker(e models.Event, userID string) error {
	switch {
	case !e.Status.Joinable():
		return apperr.New(apperr.InvalidState, "event is "+string(e.Status)+" and no longer accepts participants")
	case e.HasParticipant(userID):
		return apperr.New(apperr.AlreadyJoined, "already registered for this event")
	case e.IsFull():
		return apperr.New(apperr.Full, "event is full")
	}
	return nil
}

func leaveBlocker(e models.Event, userID string) error {
	switch {
	case !e.HasParticipant(userID):
		return apperr.New(apperr.NotParticipant, "not registered for this event")
	case e.OrganizerID == userID:
		return apperr.New(apperr.OrganizerCannotLeave, "the organizer cannot leave their own event")
	}
	return nil
}

func observe(action string, err error) {
	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
	}
	metrics.Participation.WithLabelValues(action, result).Inc()
}
