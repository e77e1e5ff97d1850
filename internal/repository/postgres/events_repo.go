package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

type eventsRepo struct{ pool *pgxpool.Pool }

var joinable = []string{string(models.EventUpcoming), string(models.EventOngoing)}

const eventCols = `id, title, description, date, time, location, image, max_participants, status,
	organizer_id, participant_ids, created_at, updated_at`

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Image,
		&e.MaxParticipants, &e.Status, &e.OrganizerID, &e.ParticipantIDs, &e.CreatedAt, &e.UpdatedAt)
	return e, mapErr(err)
}

func (r *eventsRepo) Create(ctx context.Context, e models.Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events(id, title, description, date, time, location, image, max_participants, status,
		                    organizer_id, participant_ids, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)`,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.Location, e.Image, e.MaxParticipants, e.Status,
		e.OrganizerID, e.ParticipantIDs, e.CreatedAt,
	)
	return mapErr(err)
}

func (r *eventsRepo) GetByID(ctx context.Context, id string) (models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventCols+` FROM events WHERE id=$1`, id))
}

func (r *eventsRepo) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventCols+` FROM events ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventsRepo) Update(ctx context.Context, e models.Event) error {
	return requireOne(r.pool.Exec(ctx,
		`UPDATE events
		    SET title=$2, description=$3, date=$4, time=$5, location=$6, image=$7,
		        max_participants=$8, status=$9, updated_at=now()
		  WHERE id=$1`,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.Location, e.Image, e.MaxParticipants, e.Status,
	))
}

func (r *eventsRepo) Delete(ctx context.Context, id string) error {
	return requireOne(r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id))
}

// AddParticipant checks every join precondition inside the UPDATE so concurrent joins
// cannot push the event past its bound.
func (r *eventsRepo) AddParticipant(ctx context.Context, eventID, userID string) (models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events
		    SET participant_ids = array_append(participant_ids, $2), updated_at = now()
		  WHERE id = $1
		    AND status = ANY($3)
		    AND NOT ($2 = ANY(participant_ids))
		    AND (max_participants IS NULL OR cardinality(participant_ids) < max_participants)
		RETURNING `+eventCols,
		eventID, userID, joinable,
	))
	if errors.Is(err, repo.ErrNotFound) {
		return models.Event{}, repo.ErrConditionFailed
	}
	return e, err
}

func (r *eventsRepo) RemoveParticipant(ctx context.Context, eventID, userID string) (models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events
		    SET participant_ids = array_remove(participant_ids, $2), updated_at = now()
		  WHERE id = $1
		    AND $2 = ANY(participant_ids)
		    AND organizer_id <> $2
		RETURNING `+eventCols,
		eventID, userID,
	))
	if errors.Is(err, repo.ErrNotFound) {
		return models.Event{}, repo.ErrConditionFailed
	}
	return e, err
}
