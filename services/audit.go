package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

// auditRecorder пишет журнал действий. Журнал — побочный эффект: его сбой
// логируется, но не валит операцию.
type auditRecorder struct {
	auditRepo repositories.AuditRepository
	logger    *slog.Logger
}

func (a *auditRecorder) record(ctx context.Context, actor models.AuthUser, entity string, entityID *int, action string, payload map[string]interface{}) {
	if a.auditRepo == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("failed to marshal audit payload", slog.String("entity", entity), slog.Any("error", err))
		raw = []byte("{}")
	}

	entry := &models.AuditEntry{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Payload:  string(raw),
	}
	if actor.ID > 0 {
		id := actor.ID
		entry.UserID = &id
	}

	if err := a.auditRepo.Insert(ctx, entry); err != nil {
		a.logger.Warn("failed to record audit entry",
			slog.String("entity", entity),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
