package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

const kpiFindQuery = `
	SELECT id, tenant_id, unit_id, code, name, target_value, actual_value, created_at, updated_at
	FROM unit_kpis`

type PgKPIRepository struct{}

func NewKPIRepository() kpi.Repository {
	return &PgKPIRepository{}
}

func (r *PgKPIRepository) GetByID(ctx context.Context, id uuid.UUID) (*kpi.KPI, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	kpis, err := r.queryKPIs(ctx, kpiFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(kpis) == 0 {
		return nil, kpi.ErrKPINotFound
	}
	return kpis[0], nil
}

func (r *PgKPIRepository) GetAll(ctx context.Context) ([]*kpi.KPI, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryKPIs(ctx, kpiFindQuery+" WHERE tenant_id = $1 ORDER BY code", tenantID.String())
}

func (r *PgKPIRepository) ListByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*kpi.KPI, error) {
	return r.queryKPIs(ctx, kpiFindQuery+" WHERE tenant_id = $1 AND unit_id = $2 ORDER BY code", tenantID.String(), unitID.String())
}

func (r *PgKPIRepository) Save(ctx context.Context, k *kpi.KPI) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBKPI(k)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO unit_kpis (id, tenant_id, unit_id, code, name, target_value, actual_value, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET code = EXCLUDED.code, name = EXCLUDED.name,
		     target_value = EXCLUDED.target_value, actual_value = EXCLUDED.actual_value,
		     updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.UnitID, m.Code, m.Name, m.TargetValue, m.ActualValue, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to save kpi")
	}
	return nil
}

func (r *PgKPIRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM unit_kpis WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

func (r *PgKPIRepository) queryKPIs(ctx context.Context, query string, args ...any) ([]*kpi.KPI, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*kpi.KPI
	for rows.Next() {
		var m models.KPI
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.UnitID, &m.Code, &m.Name,
			&m.TargetValue, &m.ActualValue, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		k, err := ToDomainKPI(m)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
