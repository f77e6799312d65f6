package persistence

import (
	"context"
	"embed"

	"github.com/go-faster/errors"

	"github.com/orgmesh/platform-sdk/modules/audit/domain/aggregates/auditevent"
	"github.com/orgmesh/platform-sdk/modules/audit/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/repo"
)

//go:embed schema/audit-schema.sql
var MigrationFiles embed.FS

const auditFindQuery = `
	SELECT id, tenant_id, action, entity_type, entity_id, summary, payload, created_at
	FROM audit_events`

type PgAuditEventRepository struct{}

func NewAuditEventRepository() auditevent.Repository {
	return &PgAuditEventRepository{}
}

func (r *PgAuditEventRepository) GetAll(ctx context.Context) ([]*auditevent.AuditEvent, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryEvents(ctx, tx, auditFindQuery+" WHERE tenant_id = $1 ORDER BY created_at", tenantID.String())
}

func (r *PgAuditEventRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*auditevent.AuditEvent, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryEvents(
		ctx,
		tx,
		auditFindQuery+" WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3 ORDER BY created_at",
		tenantID.String(), entityType, entityID,
	)
}

func (r *PgAuditEventRepository) Save(ctx context.Context, event *auditevent.AuditEvent) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m, err := ToDBAuditEvent(event)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx,
		`INSERT INTO audit_events (id, tenant_id, action, entity_type, entity_id, summary, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.TenantID, m.Action, m.EntityType, m.EntityID, m.Summary, m.Payload, m.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save audit event")
	}
	return nil
}

func (r *PgAuditEventRepository) queryEvents(ctx context.Context, tx repo.Tx, query string, args ...interface{}) ([]*auditevent.AuditEvent, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auditevent.AuditEvent
	for rows.Next() {
		var m models.AuditEvent
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Action, &m.EntityType,
			&m.EntityID, &m.Summary, &m.Payload, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		e, err := ToDomainAuditEvent(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
