package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

const (
	agreementFindQuery = `
		SELECT id, tenant_id, code, unit_id, total_committed_amount, status, created_at, updated_at
		FROM vam_agreements`

	tranchesFindQuery = `
		SELECT id, tenant_id, agreement_id, amount, status, release_date
		FROM vam_tranches
		WHERE agreement_id = $1
		ORDER BY amount, id`
)

type PgAgreementRepository struct{}

func NewAgreementRepository() agreement.Repository {
	return &PgAgreementRepository{}
}

func (r *PgAgreementRepository) GetByID(ctx context.Context, id uuid.UUID) (*agreement.Agreement, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	agreements, err := r.queryAgreements(ctx, agreementFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(agreements) == 0 {
		return nil, agreement.ErrAgreementNotFound
	}
	return agreements[0], nil
}

func (r *PgAgreementRepository) GetAll(ctx context.Context) ([]*agreement.Agreement, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryAgreements(ctx, agreementFindQuery+" WHERE tenant_id = $1 ORDER BY code", tenantID.String())
}

func (r *PgAgreementRepository) ListActiveByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*agreement.Agreement, error) {
	return r.queryAgreements(
		ctx,
		agreementFindQuery+" WHERE tenant_id = $1 AND unit_id = $2 AND status = 'ACTIVE' ORDER BY code",
		tenantID.String(),
		unitID.String(),
	)
}

func (r *PgAgreementRepository) Save(ctx context.Context, a *agreement.Agreement) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m, tranches := ToDBAgreement(a)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO vam_agreements (id, tenant_id, code, unit_id, total_committed_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE
		 SET code = EXCLUDED.code, unit_id = EXCLUDED.unit_id,
		     total_committed_amount = EXCLUDED.total_committed_amount,
		     status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.Code, m.UnitID, m.TotalCommittedAmount, m.Status, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to save agreement")
	}
	for _, t := range tranches {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO vam_tranches (id, tenant_id, agreement_id, amount, status, release_date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE
			 SET amount = EXCLUDED.amount, status = EXCLUDED.status,
			     release_date = EXCLUDED.release_date`,
			t.ID, tenantID.String(), m.ID, t.Amount, t.Status, t.ReleaseDate,
		); err != nil {
			return errors.Wrap(err, "failed to save tranche")
		}
	}
	return nil
}

func (r *PgAgreementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM vam_agreements WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

// ReleaseTranche flips a PENDING tranche to RELEASED. The status guard in
// the WHERE clause makes the release one-way and idempotent.
func (r *PgAgreementRepository) ReleaseTranche(ctx context.Context, tenantID, trancheID uuid.UUID, releaseDate time.Time) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		`UPDATE vam_tranches SET status = 'RELEASED', release_date = $1
		 WHERE tenant_id = $2 AND id = $3 AND status = 'PENDING'`,
		releaseDate, tenantID.String(), trancheID.String(),
	); err != nil {
		return errors.Wrap(err, "failed to release tranche")
	}
	return nil
}

func (r *PgAgreementRepository) queryAgreements(ctx context.Context, query string, args ...any) ([]*agreement.Agreement, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreementModels []models.Agreement
	for rows.Next() {
		var m models.Agreement
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Code, &m.UnitID,
			&m.TotalCommittedAmount, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		agreementModels = append(agreementModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*agreement.Agreement, 0, len(agreementModels))
	for _, m := range agreementModels {
		tranches, err := r.queryTranches(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		a, err := ToDomainAgreement(m, tranches)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *PgAgreementRepository) queryTranches(ctx context.Context, agreementID string) ([]models.Tranche, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, tranchesFindQuery, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tranche
	for rows.Next() {
		var m models.Tranche
		if err := rows.Scan(&m.ID, &m.TenantID, &m.AgreementID, &m.Amount, &m.Status, &m.ReleaseDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
