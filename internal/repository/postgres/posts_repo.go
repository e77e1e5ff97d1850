package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type postsRepo struct{ pool *pgxpool.Pool }

const postCols = `id, title, content, image, category, author_id, created_at, updated_at`

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Image, &p.Category, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO posts(id, title, content, image, category, author_id, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$7)`,
		p.ID, p.Title, p.Content, p.Image, p.Category, p.AuthorID, p.CreatedAt,
	)
	return mapErr(err)
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postCols+` FROM posts WHERE id=$1`, id))
}

func (r *postsRepo) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postCols+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) Update(ctx context.Context, p models.Post) error {
	return requireOne(r.pool.Exec(ctx,
		`UPDATE posts SET title=$2, content=$3, category=$4, image=$5, updated_at=now() WHERE id=$1`,
		p.ID, p.Title, p.Content, p.Category, p.Image,
	))
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	return requireOne(r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id))
}
