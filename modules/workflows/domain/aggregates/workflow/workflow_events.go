package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/pkg/composables"
)

// TransitionedEvent is published after an entity's status change and its
// state actions have committed.
type TransitionedEvent struct {
	TenantID   uuid.UUID
	EntityID   uuid.UUID
	EntityType EntityType
	From       string
	To         string
	At         time.Time
}

func NewTransitionedEvent(ctx context.Context, entity Entity, from, to string) (*TransitionedEvent, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		tenantID = entity.TenantID()
	}
	return &TransitionedEvent{
		TenantID:   tenantID,
		EntityID:   entity.EntityID(),
		EntityType: entity.EntityType(),
		From:       from,
		To:         to,
		At:         time.Now(),
	}, nil
}

// DefinitionSavedEvent is published when an administrator creates or edits
// a workflow definition.
type DefinitionSavedEvent struct {
	TenantID   uuid.UUID
	ID         uuid.UUID
	EntityType EntityType
	Name       string
}

func NewDefinitionSavedEvent(definition *Definition) *DefinitionSavedEvent {
	return &DefinitionSavedEvent{
		TenantID:   definition.TenantID(),
		ID:         definition.ID(),
		EntityType: definition.EntityType(),
		Name:       definition.Name(),
	}
}
