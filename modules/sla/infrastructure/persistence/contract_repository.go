package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

const contractFindQuery = `
	SELECT id, tenant_id, code, provider_id, consumer_id, sla_template_id,
	       start_date, end_date, contract_value, status, version, created_at, updated_at
	FROM contracts`

type PgContractRepository struct{}

func NewContractRepository() contract.Repository {
	return &PgContractRepository{}
}

func (r *PgContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	contracts, err := r.queryContracts(ctx, contractFindQuery+" WHERE tenant_id = $1 AND id = $2", id.String())
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, contract.ErrContractNotFound
	}
	return contracts[0], nil
}

func (r *PgContractRepository) GetAll(ctx context.Context) ([]*contract.Contract, error) {
	return r.queryContracts(ctx, contractFindQuery+" WHERE tenant_id = $1 ORDER BY code")
}

func (r *PgContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBContract(c)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO contracts (id, tenant_id, code, provider_id, consumer_id, sla_template_id,
		                        start_date, end_date, contract_value, status, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE
		 SET code = EXCLUDED.code, provider_id = EXCLUDED.provider_id,
		     consumer_id = EXCLUDED.consumer_id, sla_template_id = EXCLUDED.sla_template_id,
		     start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
		     contract_value = EXCLUDED.contract_value, status = EXCLUDED.status,
		     updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.Code, m.ProviderID, m.ConsumerID, m.SLATemplateID,
		m.StartDate, m.EndDate, m.ContractValue, m.Status, m.Version, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to save contract")
	}
	return nil
}

func (r *PgContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM contracts WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

func (r *PgContractRepository) queryContracts(ctx context.Context, query string, extraArgs ...any) ([]*contract.Contract, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	args := append([]any{tenantID.String()}, extraArgs...)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*contract.Contract
	for rows.Next() {
		var m models.Contract
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Code, &m.ProviderID, &m.ConsumerID, &m.SLATemplateID,
			&m.StartDate, &m.EndDate, &m.ContractValue, &m.Status, &m.Version, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c, err := ToDomainContract(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
