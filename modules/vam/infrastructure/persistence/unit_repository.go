package persistence

import (
	"context"
	"embed"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

//go:embed schema/vam-schema.sql
var MigrationFiles embed.FS

const unitFindQuery = `
	SELECT id, tenant_id, code, name, autonomy_level, department, cost_center, created_at, updated_at
	FROM org_units`

type PgUnitRepository struct{}

func NewUnitRepository() unit.Repository {
	return &PgUnitRepository{}
}

func (r *PgUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	units, err := r.queryUnits(ctx, unitFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, unit.ErrUnitNotFound
	}
	return units[0], nil
}

func (r *PgUnitRepository) GetAll(ctx context.Context) ([]*unit.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryUnits(ctx, unitFindQuery+" WHERE tenant_id = $1 ORDER BY code", tenantID.String())
}

func (r *PgUnitRepository) ListAll(ctx context.Context) ([]*unit.Unit, error) {
	return r.queryUnits(ctx, unitFindQuery+" ORDER BY tenant_id, code")
}

func (r *PgUnitRepository) Save(ctx context.Context, u *unit.Unit) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBUnit(u)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO org_units (id, tenant_id, code, name, autonomy_level, department, cost_center, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET code = EXCLUDED.code, name = EXCLUDED.name,
		     autonomy_level = EXCLUDED.autonomy_level, department = EXCLUDED.department,
		     cost_center = EXCLUDED.cost_center, updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.Code, m.Name, m.AutonomyLevel, m.Department, m.CostCenter, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to save unit")
	}
	return nil
}

func (r *PgUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM org_units WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

func (r *PgUnitRepository) UpdateAutonomyLevel(ctx context.Context, tenantID, id uuid.UUID, level unit.AutonomyLevel, now time.Time) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		`UPDATE org_units SET autonomy_level = $1, updated_at = $2 WHERE tenant_id = $3 AND id = $4`,
		string(level), now, tenantID.String(), id.String(),
	); err != nil {
		return errors.Wrap(err, "failed to update autonomy level")
	}
	return nil
}

func (r *PgUnitRepository) queryUnits(ctx context.Context, query string, args ...any) ([]*unit.Unit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*unit.Unit
	for rows.Next() {
		var m models.Unit
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Code, &m.Name, &m.AutonomyLevel,
			&m.Department, &m.CostCenter, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u, err := ToDomainUnit(m)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
