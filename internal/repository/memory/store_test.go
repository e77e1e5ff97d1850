package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/repository"
)

func TestAddParticipantConcurrentNeverExceedsBound(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	limit := 5
	require.NoError(t, repos.Events.Create(ctx, models.Event{
		ID: "e1", OrganizerID: "org", ParticipantIDs: []string{"org"},
		Status: models.EventUpcoming, MaxParticipants: &limit, Date: time.Now(),
	}))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := repos.Events.AddParticipant(ctx, "e1", fmt.Sprintf("u%d", i)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	ev, err := repos.Events.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 4, ok)
	assert.Len(t, ev.ParticipantIDs, limit)
}

func TestRemoveParticipantKeepsOrganizer(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Events.Create(ctx, models.Event{
		ID: "e1", OrganizerID: "org", ParticipantIDs: []string{"org"}, Status: models.EventOngoing,
	}))
	_, err := repos.Events.RemoveParticipant(ctx, "e1", "org")
	assert.ErrorIs(t, err, repository.ErrConditionFailed)
	_, err = repos.Events.RemoveParticipant(ctx, "missing", "org")
	assert.ErrorIs(t, err, repository.ErrConditionFailed)
}

func TestEventsUpdateIgnoresParticipants(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Events.Create(ctx, models.Event{
		ID: "e1", Title: "a", OrganizerID: "org", ParticipantIDs: []string{"org"}, Status: models.EventUpcoming,
	}))
	require.NoError(t, repos.Events.Update(ctx, models.Event{ID: "e1", Title: "b", OrganizerID: "x", ParticipantIDs: nil}))
	ev, err := repos.Events.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "b", ev.Title)
	assert.Equal(t, "org", ev.OrganizerID)
	assert.Equal(t, []string{"org"}, ev.ParticipantIDs)
}

func TestEventsUpdateRejectsBoundBelowCount(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Events.Create(ctx, models.Event{
		ID: "e1", Title: "a", OrganizerID: "org", ParticipantIDs: []string{"org", "u1"}, Status: models.EventUpcoming,
	}))
	one := 1
	err := repos.Events.Update(ctx, models.Event{ID: "e1", Title: "a", MaxParticipants: &one, Status: models.EventUpcoming})
	assert.ErrorIs(t, err, repository.ErrConditionFailed)
}

func TestCotisationReceiptUnique(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Cotisations.Create(ctx, models.Cotisation{ID: "c1", ReceiptNumber: "COT-202401-AAAAAA"}))
	err := repos.Cotisations.Create(ctx, models.Cotisation{ID: "c2", ReceiptNumber: "COT-202401-AAAAAA"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestLatestCoveringPicksLatestEnd(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	day := func(s string) time.Time { d, _ := time.Parse("2006-01-02", s); return d }
	for i, c := range []models.Cotisation{
		{MemberID: "m", Status: models.CotisationValidated, EndPeriod: day("2024-12-31")},
		{MemberID: "m", Status: models.CotisationValidated, EndPeriod: day("2025-06-30")},
		{MemberID: "m", Status: models.CotisationPending, EndPeriod: day("2026-12-31")},
		{MemberID: "other", Status: models.CotisationValidated, EndPeriod: day("2027-12-31")},
	} {
		c.ID = fmt.Sprintf("c%d", i)
		c.ReceiptNumber = c.ID
		require.NoError(t, repos.Cotisations.Create(ctx, c))
	}
	got, err := repos.Cotisations.LatestCovering(ctx, "m", day("2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	_, err = repos.Cotisations.LatestCovering(ctx, "m", day("2025-07-01"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
