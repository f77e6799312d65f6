package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

const requestFindQuery = `
	SELECT id, tenant_id, contract_id, source, external_id, title, priority,
	       opened_at, first_response_at, resolved_at, status, version, created_at, updated_at
	FROM service_requests`

// openWithTargetsQuery feeds the breach evaluator: every unresolved request
// platform-wide, joined with its contract code and SLA targets.
const openWithTargetsQuery = `
	SELECT sr.id, sr.tenant_id, sr.contract_id, sr.source, sr.external_id, sr.title, sr.priority,
	       sr.opened_at, sr.first_response_at, sr.resolved_at, sr.status, sr.version, sr.created_at, sr.updated_at,
	       c.code, t.id IS NOT NULL, t.response_hours, t.resolution_hours
	FROM service_requests sr
	JOIN contracts c ON c.id = sr.contract_id
	LEFT JOIN sla_templates t ON t.id = c.sla_template_id
	WHERE sr.status IN ('OPEN', 'IN_PROGRESS')
	ORDER BY sr.opened_at`

type PgServiceRequestRepository struct{}

func NewServiceRequestRepository() servicerequest.Repository {
	return &PgServiceRequestRepository{}
}

func (r *PgServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*servicerequest.ServiceRequest, error) {
	requests, err := r.queryRequests(ctx, requestFindQuery+" WHERE tenant_id = $1 AND id = $2", id.String())
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, servicerequest.ErrRequestNotFound
	}
	return requests[0], nil
}

func (r *PgServiceRequestRepository) GetAll(ctx context.Context) ([]*servicerequest.ServiceRequest, error) {
	return r.queryRequests(ctx, requestFindQuery+" WHERE tenant_id = $1 ORDER BY opened_at DESC")
}

func (r *PgServiceRequestRepository) Save(ctx context.Context, request *servicerequest.ServiceRequest) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBRequest(request)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO service_requests (id, tenant_id, contract_id, source, external_id, title, priority,
		                               opened_at, first_response_at, resolved_at, status, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO UPDATE
		 SET source = EXCLUDED.source, external_id = EXCLUDED.external_id,
		     title = EXCLUDED.title, priority = EXCLUDED.priority,
		     opened_at = EXCLUDED.opened_at, first_response_at = EXCLUDED.first_response_at,
		     resolved_at = EXCLUDED.resolved_at, status = EXCLUDED.status,
		     updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.ContractID, m.Source, m.ExternalID, m.Title, m.Priority,
		m.OpenedAt, m.FirstResponseAt, m.ResolvedAt, m.Status, m.Version, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to save service request")
	}
	return nil
}

func (r *PgServiceRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM service_requests WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

func (r *PgServiceRequestRepository) ListOpenWithTargets(ctx context.Context) ([]servicerequest.OpenRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, openWithTargetsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []servicerequest.OpenRequest
	for rows.Next() {
		var m models.ServiceRequest
		var item servicerequest.OpenRequest
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.ContractID, &m.Source, &m.ExternalID, &m.Title, &m.Priority,
			&m.OpenedAt, &m.FirstResponseAt, &m.ResolvedAt, &m.Status, &m.Version, &m.CreatedAt, &m.UpdatedAt,
			&item.ContractCode, &item.HasTemplate, &item.ResponseHours, &item.ResolutionHours,
		); err != nil {
			return nil, err
		}
		request, err := ToDomainRequest(m)
		if err != nil {
			return nil, err
		}
		item.Request = request
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PgServiceRequestRepository) queryRequests(ctx context.Context, query string, extraArgs ...any) ([]*servicerequest.ServiceRequest, error) {
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

	var out []*servicerequest.ServiceRequest
	for rows.Next() {
		var m models.ServiceRequest
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.ContractID, &m.Source, &m.ExternalID, &m.Title, &m.Priority,
			&m.OpenedAt, &m.FirstResponseAt, &m.ResolvedAt, &m.Status, &m.Version, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		request, err := ToDomainRequest(m)
		if err != nil {
			return nil, err
		}
		out = append(out, request)
	}
	return out, rows.Err()
}
