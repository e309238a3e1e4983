package repositories

import (
	"context"
	"database/sql"

	"github.com/alexkachalkov/scootrate/models"
)

// AuditRepository — журнал действий. Только вставка, записи назад не читаются.
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
}

type postgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

func (r *postgresAuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (user_id, entity, entity_id, action, payload_json)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Entity, entry.EntityID, entry.Action, entry.Payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}
