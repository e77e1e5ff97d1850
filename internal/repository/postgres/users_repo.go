// internal/repository/postgres/users_repo.go
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, name, nickname, email, password_hash, role, profile_pic, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Nickname, &u.Email, &u.PasswordHash, &u.Role, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Create(ctx context.Context, u models.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, name, nickname, email, password_hash, role, profile_pic, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$8)`,
		u.ID, u.Name, u.Nickname, u.Email, u.PasswordHash, u.Role, u.ProfilePic, u.CreatedAt,
	)
	return mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

func (r *usersRepo) GetMany(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+userCols+` FROM users WHERE id = ANY($1)`, ids)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	return r.query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC`)
}

func (r *usersRepo) query(ctx context.Context, q string, args ...any) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	return requireOne(r.pool.Exec(ctx,
		`UPDATE users SET name=$2, nickname=$3, email=$4, role=$5, profile_pic=$6, updated_at=now() WHERE id=$1`,
		u.ID, u.Name, u.Nickname, u.Email, u.Role, u.ProfilePic,
	))
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	return requireOne(r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
}
