package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, actor_id, action, details, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.EntityType, l.EntityID, l.ActorID, l.Action, l.Details, l.CreatedAt,
	)
	return mapErr(err)
}

func (r *auditLogsRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entity_type, entity_id, actor_id, action, details, created_at
		   FROM audit_logs
		  WHERE entity_type=$1 AND entity_id=$2
		  ORDER BY created_at ASC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.ActorID, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
