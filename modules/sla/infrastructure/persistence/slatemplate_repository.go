package persistence

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/slatemplate"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

//go:embed schema/sla-schema.sql
var MigrationFiles embed.FS

const templateFindQuery = `
	SELECT id, tenant_id, name, response_hours, resolution_hours, availability_percent, created_at, updated_at
	FROM sla_templates`

type PgSLATemplateRepository struct{}

func NewSLATemplateRepository() slatemplate.Repository {
	return &PgSLATemplateRepository{}
}

func (r *PgSLATemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*slatemplate.SLATemplate, error) {
	templates, err := r.queryTemplates(ctx, templateFindQuery+" WHERE tenant_id = $1 AND id = $2", true, id.String())
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, slatemplate.ErrTemplateNotFound
	}
	return templates[0], nil
}

func (r *PgSLATemplateRepository) GetAll(ctx context.Context) ([]*slatemplate.SLATemplate, error) {
	return r.queryTemplates(ctx, templateFindQuery+" WHERE tenant_id = $1 ORDER BY name", true)
}

func (r *PgSLATemplateRepository) Save(ctx context.Context, template *slatemplate.SLATemplate) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBTemplate(template)
	_, err = tx.Exec(
		ctx,
		`INSERT INTO sla_templates (id, tenant_id, name, response_hours, resolution_hours, availability_percent, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, response_hours = EXCLUDED.response_hours,
		     resolution_hours = EXCLUDED.resolution_hours,
		     availability_percent = EXCLUDED.availability_percent,
		     updated_at = EXCLUDED.updated_at`,
		m.ID, tenantID.String(), m.Name, m.ResponseHours, m.ResolutionHours, m.AvailabilityPercent, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *PgSLATemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM sla_templates WHERE tenant_id = $1 AND id = $2`, tenantID.String(), id.String())
	return err
}

func (r *PgSLATemplateRepository) queryTemplates(ctx context.Context, query string, tenantScoped bool, extraArgs ...any) ([]*slatemplate.SLATemplate, error) {
	args := make([]any, 0, len(extraArgs)+1)
	if tenantScoped {
		tenantID, err := composables.UseTenantID(ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, tenantID.String())
	}
	args = append(args, extraArgs...)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*slatemplate.SLATemplate
	for rows.Next() {
		var m models.SLATemplate
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Name, &m.ResponseHours, &m.ResolutionHours,
			&m.AvailabilityPercent, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		template, err := ToDomainTemplate(m)
		if err != nil {
			return nil, err
		}
		out = append(out, template)
	}
	return out, rows.Err()
}
