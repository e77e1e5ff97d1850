package services

import (
	"context"
	"log/slog"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
)

// PostView is a post with its author populated.
type PostView struct {
	models.Post
	Author *models.UserSummary `json:"author"`
}

// EventView is an event with organizer and participants populated.
type EventView struct {
	models.Event
	Organizer        *models.UserSummary  `json:"organizer"`
	Participants     []models.UserSummary `json:"participants"`
	ParticipantCount int                  `json:"participant_count"`
}

// CotisationView is a cotisation with its member populated.
type CotisationView struct {
	models.Cotisation
	Member *models.UserSummary `json:"member"`
}

type populator struct{ sums *cache.Summaries }

func (p populator) index(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	sums, err := p.sums.LoadMany(ctx, dedupe(ids))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "", err)
	}
	out := make(map[string]models.UserSummary, len(sums))
	for _, s := range sums {
		out[s.ID] = s
	}
	return out, nil
}

func lookup(idx map[string]models.UserSummary, id string, project func(models.UserSummary) models.UserSummary) *models.UserSummary {
	s, ok := idx[id]
	if !ok {
		return nil
	}
	s = project(s)
	return &s
}

func (p populator) posts(ctx context.Context, posts []models.Post) ([]PostView, error) {
	ids := make([]string, 0, len(posts))
	for _, x := range posts {
		ids = append(ids, x.AuthorID)
	}
	idx, err := p.index(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PostView, 0, len(posts))
	for _, x := range posts {
		out = append(out, PostView{Post: x, Author: lookup(idx, x.AuthorID, models.UserSummary.Public)})
	}
	return out, nil
}

func (p populator) post(ctx context.Context, x models.Post) (PostView, error) {
	v, err := p.posts(ctx, []models.Post{x})
	if err != nil {
		return PostView{}, err
	}
	return v[0], nil
}

// writtenPost populates a post that is already stored. A lookup failure only costs the
// author field, so callers never report a committed write as failed.
func (p populator) writtenPost(ctx context.Context, x models.Post) PostView {
	v, err := p.post(ctx, x)
	if err != nil {
		slog.Warn("populate post", "id", x.ID, "err", err)
		return PostView{Post: x}
	}
	return v
}

func (p populator) events(ctx context.Context, events []models.Event) ([]EventView, error) {
	var ids []string
	for _, e := range events {
		ids = append(ids, e.OrganizerID)
		ids = append(ids, e.ParticipantIDs...)
	}
	idx, err := p.index(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		v := EventView{
			Event:            e,
			Organizer:        lookup(idx, e.OrganizerID, models.UserSummary.Public),
			Participants:     make([]models.UserSummary, 0, len(e.ParticipantIDs)),
			ParticipantCount: len(e.ParticipantIDs),
		}
		for _, id := range e.ParticipantIDs {
			if s := lookup(idx, id, models.UserSummary.Public); s != nil {
				v.Participants = append(v.Participants, *s)
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (p populator) event(ctx context.Context, e models.Event) (EventView, error) {
	v, err := p.events(ctx, []models.Event{e})
	if err != nil {
		return EventView{}, err
	}
	return v[0], nil
}

// writtenEvent is writtenPost for events.
func (p populator) writtenEvent(ctx context.Context, e models.Event) EventView {
	v, err := p.event(ctx, e)
	if err != nil {
		slog.Warn("populate event", "id", e.ID, "err", err)
		return EventView{Event: e, Participants: []models.UserSummary{}, ParticipantCount: len(e.ParticipantIDs)}
	}
	return v
}

func (p populator) cotisations(ctx context.Context, cs []models.Cotisation) ([]CotisationView, error) {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.MemberID)
	}
	idx, err := p.index(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]CotisationView, 0, len(cs))
	for _, c := range cs {
		out = append(out, CotisationView{Cotisation: c, Member: lookup(idx, c.MemberID, models.UserSummary.Contact)})
	}
	return out, nil
}

func (p populator) cotisation(ctx context.Context, c models.Cotisation) (CotisationView, error) {
	v, err := p.cotisations(ctx, []models.Cotisation{c})
	if err != nil {
		return CotisationView{}, err
	}
	return v[0], nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
