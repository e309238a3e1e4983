package models

import "time"

// AuditEntry — запись журнала действий администраторов. Только пишется,
// никакая бизнес-логика её не читает.
type AuditEntry struct {
	ID        int       `json:"id" db:"id"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  *int      `json:"entity_id,omitempty" db:"entity_id"`
	Action    string    `json:"action" db:"action"`
	Payload   string    `json:"payload_json" db:"payload_json"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
