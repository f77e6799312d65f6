package persistence

import (
	"context"
	"embed"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/repo"
)

//go:embed schema/workflows-schema.sql
var MigrationFiles embed.FS

const (
	definitionFindQuery = `
		SELECT id, tenant_id, name, entity_type, is_active, created_at, updated_at
		FROM workflow_definitions`

	statesFindQuery = `
		SELECT id, definition_id, code, name, rank, is_initial, is_terminal
		FROM workflow_states
		WHERE definition_id = $1
		ORDER BY rank, name`

	transitionsFindQuery = `
		SELECT id, definition_id, from_code, to_code, name
		FROM workflow_transitions
		WHERE definition_id = $1`

	actionsFindQuery = `
		SELECT id, definition_id, state_code, name, action_kind, config, is_active
		FROM workflow_state_actions
		WHERE definition_id = $1
		ORDER BY state_code, name`
)

type PgWorkflowRepository struct{}

func NewWorkflowRepository() workflow.Repository {
	return &PgWorkflowRepository{}
}

func (r *PgWorkflowRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workflow_definitions WHERE tenant_id = $1`,
		tenantID.String(),
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgWorkflowRepository) GetAll(ctx context.Context) ([]*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryDefinitions(
		ctx,
		definitionFindQuery+" WHERE tenant_id = $1 ORDER BY entity_type, name",
		tenantID.String(),
	)
}

func (r *PgWorkflowRepository) GetPaginated(ctx context.Context, params *workflow.FindParams) ([]*workflow.Definition, error) {
	if params == nil {
		params = &workflow.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := definitionFindQuery + " WHERE tenant_id = $1"
	args := []any{tenantID.String()}
	if params.EntityType != "" {
		query += " AND entity_type = $2"
		args = append(args, string(params.EntityType))
	}
	if params.ActiveOnly {
		query += " AND is_active"
	}
	query += fmt.Sprintf(" ORDER BY entity_type, name OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	return r.queryDefinitions(ctx, query, args...)
}

func (r *PgWorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	definitions, err := r.queryDefinitions(
		ctx,
		definitionFindQuery+" WHERE tenant_id = $1 AND id = $2",
		tenantID.String(),
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	if len(definitions) == 0 {
		return nil, workflow.ErrDefinitionNotFound
	}
	return definitions[0], nil
}

func (r *PgWorkflowRepository) GetActive(ctx context.Context, entityType workflow.EntityType) (*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	definitions, err := r.queryDefinitions(
		ctx,
		definitionFindQuery+" WHERE tenant_id = $1 AND entity_type = $2 AND is_active",
		tenantID.String(),
		string(entityType),
	)
	if err != nil {
		return nil, err
	}
	if len(definitions) == 0 {
		return nil, workflow.ErrDefinitionNotFound
	}
	return definitions[0], nil
}

func (r *PgWorkflowRepository) Save(ctx context.Context, definition *workflow.Definition) (*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	model := ToDBDefinition(definition)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO workflow_definitions (id, tenant_id, name, entity_type, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, entity_type = EXCLUDED.entity_type,
		     is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`,
		model.ID,
		tenantID.String(),
		model.Name,
		model.EntityType,
		model.IsActive,
		model.CreatedAt,
		model.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to save workflow definition")
	}

	// Children are replaced wholesale; the aggregate is saved as one unit.
	for _, table := range []string{"workflow_states", "workflow_transitions", "workflow_state_actions"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE definition_id = $1`, model.ID); err != nil {
			return nil, errors.Wrap(err, "failed to clear workflow children")
		}
	}

	for _, state := range definition.States() {
		m := ToDBState(definition.ID(), state)
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workflow_states (id, definition_id, code, name, rank, is_initial, is_terminal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.DefinitionID, m.Code, m.Name, m.Rank, m.IsInitial, m.IsTerminal,
		); err != nil {
			return nil, errors.Wrap(err, "failed to save workflow state")
		}
	}

	for _, transition := range definition.Transitions() {
		m := ToDBTransition(definition.ID(), transition)
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workflow_transitions (id, definition_id, from_code, to_code, name)
			 VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.DefinitionID, m.FromCode, m.ToCode, m.Name,
		); err != nil {
			return nil, errors.Wrap(err, "failed to save workflow transition")
		}
	}

	for _, action := range definition.Actions() {
		m, err := ToDBStateAction(definition.ID(), action)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workflow_state_actions (id, definition_id, state_code, name, action_kind, config, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.DefinitionID, m.StateCode, m.Name, m.ActionKind, m.Config, m.IsActive,
		); err != nil {
			return nil, errors.Wrap(err, "failed to save workflow state action")
		}
	}

	return r.GetByID(ctx, definition.ID())
}

func (r *PgWorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workflow_definitions WHERE tenant_id = $1 AND id = $2`,
		tenantID.String(),
		id.String(),
	); err != nil {
		return errors.Wrap(err, "failed to delete workflow definition")
	}
	return nil
}

func (r *PgWorkflowRepository) queryDefinitions(ctx context.Context, query string, args ...any) ([]*workflow.Definition, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defModels := make([]models.WorkflowDefinition, 0)
	for rows.Next() {
		var m models.WorkflowDefinition
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.Name, &m.EntityType, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		defModels = append(defModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	definitions := make([]*workflow.Definition, 0, len(defModels))
	for _, m := range defModels {
		definition, err := r.loadAggregate(ctx, tx, m)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}
	return definitions, nil
}

func (r *PgWorkflowRepository) loadAggregate(ctx context.Context, tx repo.Tx, defModel models.WorkflowDefinition) (*workflow.Definition, error) {
	stateModels, err := queryRows(ctx, tx, statesFindQuery, defModel.ID, func(rows pgx.Rows) (models.WorkflowState, error) {
		var m models.WorkflowState
		err := rows.Scan(&m.ID, &m.DefinitionID, &m.Code, &m.Name, &m.Rank, &m.IsInitial, &m.IsTerminal)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	transitionModels, err := queryRows(ctx, tx, transitionsFindQuery, defModel.ID, func(rows pgx.Rows) (models.WorkflowTransition, error) {
		var m models.WorkflowTransition
		err := rows.Scan(&m.ID, &m.DefinitionID, &m.FromCode, &m.ToCode, &m.Name)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	actionModels, err := queryRows(ctx, tx, actionsFindQuery, defModel.ID, func(rows pgx.Rows) (models.WorkflowStateAction, error) {
		var m models.WorkflowStateAction
		err := rows.Scan(&m.ID, &m.DefinitionID, &m.StateCode, &m.Name, &m.ActionKind, &m.Config, &m.IsActive)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	return ToDomainDefinition(defModel, stateModels, transitionModels, actionModels)
}

func queryRows[T any](ctx context.Context, tx repo.Tx, query, definitionID string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := tx.Query(ctx, query, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
