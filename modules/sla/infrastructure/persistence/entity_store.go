package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

// entityTables maps each workflow entity type to its table and the columns
// an UPDATE_FIELD action may touch.
var entityTables = map[workflow.EntityType]struct {
	table  string
	fields map[string]string
}{
	workflow.EntityTypeContract: {
		table: "contracts",
		fields: map[string]string{
			"contract_value": "contract_value",
			"end_date":       "end_date",
		},
	},
	workflow.EntityTypeRequest: {
		table: "service_requests",
		fields: map[string]string{
			"priority":          "priority",
			"external_id":       "external_id",
			"first_response_at": "first_response_at",
			"resolved_at":       "resolved_at",
		},
	},
}

// PgEntityStore persists workflow-driven status changes for contracts and
// service requests.
type PgEntityStore struct{}

func NewEntityStore() workflow.EntityStore {
	return &PgEntityStore{}
}

func (s *PgEntityStore) UpdateStatus(ctx context.Context, entity workflow.Entity, status string, now time.Time) error {
	spec, ok := entityTables[entity.EntityType()]
	if !ok {
		return errors.Errorf("no table for entity type %s", entity.EntityType())
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(
		ctx,
		fmt.Sprintf(
			`UPDATE %s SET status = $1, version = version + 1, updated_at = $2
			 WHERE tenant_id = $3 AND id = $4 AND version = $5`,
			spec.table,
		),
		status, now, entity.TenantID().String(), entity.EntityID().String(), entity.Version(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update entity status")
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrVersionConflict
	}
	return nil
}

func (s *PgEntityStore) SetField(ctx context.Context, entity workflow.Entity, field string, value any) (bool, error) {
	spec, ok := entityTables[entity.EntityType()]
	if !ok {
		return false, errors.Errorf("no table for entity type %s", entity.EntityType())
	}
	column, ok := spec.fields[field]
	if !ok {
		return false, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec(
		ctx,
		fmt.Sprintf(
			`UPDATE %s SET %s = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3`,
			spec.table, column,
		),
		value, entity.TenantID().String(), entity.EntityID().String(),
	); err != nil {
		return false, errors.Wrapf(err, "failed to set field %s", field)
	}
	return true, nil
}
