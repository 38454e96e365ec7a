package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog is one row of the audit_logs trail. Entity and EntityID name what
// was touched; Meta carries action-specific detail such as the status a
// document moved to.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger appends to the audit trail. Services treat failures here as
// non-fatal: the business write already happened.
type AuditLogger struct {
	pool *pgxpool.Pool
}

func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists one entry. A zero At falls back to the database clock.
func (l *AuditLogger) Record(ctx context.Context, entry AuditLog) error {
	if l == nil || l.pool == nil {
		return errors.New("audit logger not configured")
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("audit entry needs action, entity and entity_id")
	}
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !entry.At.IsZero() {
		at = &entry.At
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		entry.ActorID, entry.Action, entry.Entity, entry.EntityID, meta, at)
	return err
}
