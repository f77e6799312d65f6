package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

const breachFindQuery = `
	SELECT id, tenant_id, request_id, breach_type, breach_at, details
	FROM sla_breach_events`

type PgBreachRepository struct{}

func NewBreachRepository() breach.Repository {
	return &PgBreachRepository{}
}

// GetOrCreate races through the unique constraint: ON CONFLICT DO NOTHING
// makes concurrent evaluators converge without serializing the whole pass.
func (r *PgBreachRepository) GetOrCreate(ctx context.Context, b *breach.Breach) (*breach.Breach, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, false, err
	}
	m, err := ToDBBreach(b)
	if err != nil {
		return nil, false, err
	}
	tag, err := tx.Exec(
		ctx,
		`INSERT INTO sla_breach_events (id, tenant_id, request_id, breach_type, breach_at, details)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT ON CONSTRAINT sla_breach_events_dedup_key DO NOTHING`,
		m.ID, m.TenantID, m.RequestID, m.BreachType, m.BreachAt, m.Details,
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to record breach")
	}
	if tag.RowsAffected() > 0 {
		return b, true, nil
	}

	var existing models.SLABreachEvent
	if err := tx.QueryRow(
		ctx,
		breachFindQuery+" WHERE tenant_id = $1 AND request_id = $2 AND breach_type = $3",
		m.TenantID, m.RequestID, m.BreachType,
	).Scan(
		&existing.ID, &existing.TenantID, &existing.RequestID,
		&existing.BreachType, &existing.BreachAt, &existing.Details,
	); err != nil {
		return nil, false, errors.Wrap(err, "failed to load existing breach")
	}
	out, err := ToDomainBreach(existing)
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

func (r *PgBreachRepository) GetAll(ctx context.Context) ([]*breach.Breach, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, breachFindQuery+" WHERE tenant_id = $1 ORDER BY breach_at", tenantID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*breach.Breach
	for rows.Next() {
		var m models.SLABreachEvent
		if err := rows.Scan(&m.ID, &m.TenantID, &m.RequestID, &m.BreachType, &m.BreachAt, &m.Details); err != nil {
			return nil, err
		}
		b, err := ToDomainBreach(m)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PgBreachRepository) CountByProvider(ctx context.Context, tenantID, providerID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(
		ctx,
		`SELECT COUNT(*)
		 FROM sla_breach_events b
		 JOIN service_requests sr ON sr.id = b.request_id
		 JOIN contracts c ON c.id = sr.contract_id
		 WHERE b.tenant_id = $1 AND c.provider_id = $2`,
		tenantID.String(),
		providerID.String(),
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count breaches by provider")
	}
	return count, nil
}
