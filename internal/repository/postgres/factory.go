package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:       &usersRepo{pool},
		Posts:       &postsRepo{pool},
		Events:      &eventsRepo{pool},
		Cotisations: &cotisationsRepo{pool},
		AuditLogs:   &auditLogsRepo{pool},
	}
}

// mapErr translates pgx errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return repo.ErrDuplicate
		case "23514": // check_violation, e.g. a bound lowered below a concurrent join
			return repo.ErrConditionFailed
		}
	}
	return err
}

// requireOne turns a zero-row write into ErrNotFound.
func requireOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
