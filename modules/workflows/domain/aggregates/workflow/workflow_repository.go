package workflow

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	EntityType EntityType
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*Definition, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Definition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	// GetActive returns the unique active definition for the entity type,
	// or ErrDefinitionNotFound.
	GetActive(ctx context.Context, entityType EntityType) (*Definition, error)
	// Save persists the whole aggregate (definition, states, transitions,
	// actions), replacing any previous version of it.
	Save(ctx context.Context, definition *Definition) (*Definition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
