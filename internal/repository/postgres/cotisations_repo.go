package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
)

type cotisationsRepo struct{ pool *pgxpool.Pool }

const cotisationCols = `id, member_id, amount, payment_date, start_period, end_period, payment_method,
	status, receipt_number, notes, created_at, updated_at`

func scanCotisation(row pgx.Row) (models.Cotisation, error) {
	var c models.Cotisation
	err := row.Scan(&c.ID, &c.MemberID, &c.Amount, &c.PaymentDate, &c.StartPeriod, &c.EndPeriod,
		&c.PaymentMethod, &c.Status, &c.ReceiptNumber, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr(err)
}

func (r *cotisationsRepo) Create(ctx context.Context, c models.Cotisation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cotisations(id, member_id, amount, payment_date, start_period, end_period,
		                         payment_method, status, receipt_number, notes, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)`,
		c.ID, c.MemberID, c.Amount, c.PaymentDate, c.StartPeriod, c.EndPeriod,
		c.PaymentMethod, c.Status, c.ReceiptNumber, c.Notes, c.CreatedAt,
	)
	return mapErr(err)
}

func (r *cotisationsRepo) GetByID(ctx context.Context, id string) (models.Cotisation, error) {
	return scanCotisation(r.pool.QueryRow(ctx, `SELECT `+cotisationCols+` FROM cotisations WHERE id=$1`, id))
}

func (r *cotisationsRepo) List(ctx context.Context, f repo.CotisationFilter) ([]models.Cotisation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cotisationCols+`
		   FROM cotisations
		  WHERE ($1::text = '' OR member_id = $1)
		  ORDER BY payment_date DESC`,
		f.MemberID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Cotisation
	for rows.Next() {
		c, err := scanCotisation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cotisationsRepo) UpdateStatus(ctx context.Context, id string, status models.CotisationStatus) (models.Cotisation, error) {
	return scanCotisation(r.pool.QueryRow(ctx,
		`UPDATE cotisations SET status=$2, updated_at=now() WHERE id=$1 RETURNING `+cotisationCols,
		id, status,
	))
}

func (r *cotisationsRepo) LatestCovering(ctx context.Context, memberID string, asOf time.Time) (models.Cotisation, error) {
	return scanCotisation(r.pool.QueryRow(ctx,
		`SELECT `+cotisationCols+`
		   FROM cotisations
		  WHERE member_id=$1 AND status=$2 AND end_period >= $3
		  ORDER BY end_period DESC
		  LIMIT 1`,
		memberID, models.CotisationValidated, asOf,
	))
}
