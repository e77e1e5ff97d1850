package memory

import (
	"context"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type auditLogsRepo struct{ s *store }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, l)
	return nil
}

// ListByEntity returns entries oldest first.
func (r *auditLogsRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.AuditLog
	for _, l := range r.s.audit {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}
