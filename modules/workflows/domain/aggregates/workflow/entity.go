package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entity is any business object participating in the state machine. The
// engine never owns these objects; it reads the current status and writes
// a new one through the EntityStore.
type Entity interface {
	EntityID() uuid.UUID
	TenantID() uuid.UUID
	EntityType() EntityType
	Status() string
	// Version is the optimistic concurrency counter checked-and-incremented
	// on every status write.
	Version() int64
}

// EntityStore is the persistence collaborator for business entities,
// implemented by the surrounding CRUD layer.
type EntityStore interface {
	// UpdateStatus persists the entity's status and updated-at timestamp,
	// guarded by the entity version. Returns ErrVersionConflict when a
	// concurrent writer got there first.
	UpdateStatus(ctx context.Context, entity Entity, status string, now time.Time) error
	// SetField writes the single named field (plus an updated-at timestamp
	// when the entity tracks one). Reports false when the entity exposes no
	// field of that name.
	SetField(ctx context.Context, entity Entity, field string, value any) (bool, error)
}
