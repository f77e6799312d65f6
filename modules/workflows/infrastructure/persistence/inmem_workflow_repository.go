package persistence

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *SafeMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.m[key]
	return val, found
}

func (s *SafeMap[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *SafeMap[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]V, 0, len(s.m))
	for _, v := range s.m {
		values = append(values, v)
	}
	return values
}

func (s *SafeMap[K, V]) Snapshot() map[K]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.m)
}

type definitionKey struct {
	tenantID     uuid.UUID
	definitionID uuid.UUID
}

// InmemWorkflowRepository backs the definition store with process memory.
// Used in tests and by embedders that configure workflows in code.
type InmemWorkflowRepository struct {
	storage *SafeMap[definitionKey, *workflow.Definition]
}

func NewInmemWorkflowRepository() *InmemWorkflowRepository {
	return &InmemWorkflowRepository{
		storage: NewSafeMap[definitionKey, *workflow.Definition](),
	}
}

func (r *InmemWorkflowRepository) Count(ctx context.Context) (int64, error) {
	definitions, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(definitions)), nil
}

func (r *InmemWorkflowRepository) GetAll(ctx context.Context) ([]*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*workflow.Definition, 0)
	for key, d := range r.storage.Snapshot() {
		if key.tenantID == tenantID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType() != out[j].EntityType() {
			return out[i].EntityType() < out[j].EntityType()
		}
		return out[i].Name() < out[j].Name()
	})
	return out, nil
}

func (r *InmemWorkflowRepository) GetPaginated(ctx context.Context, params *workflow.FindParams) ([]*workflow.Definition, error) {
	if params == nil {
		params = &workflow.FindParams{}
	}
	definitions, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*workflow.Definition, 0, len(definitions))
	for _, d := range definitions {
		if params.EntityType != "" && d.EntityType() != params.EntityType {
			continue
		}
		if params.ActiveOnly && !d.IsActive() {
			continue
		}
		filtered = append(filtered, d)
	}

	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []*workflow.Definition{}, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], nil
}

func (r *InmemWorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	definition, found := r.storage.Get(definitionKey{tenantID: tenantID, definitionID: id})
	if !found {
		return nil, workflow.ErrDefinitionNotFound
	}
	return definition, nil
}

func (r *InmemWorkflowRepository) GetActive(ctx context.Context, entityType workflow.EntityType) (*workflow.Definition, error) {
	definitions, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range definitions {
		if d.EntityType() == entityType && d.IsActive() {
			return d, nil
		}
	}
	return nil, workflow.ErrDefinitionNotFound
}

func (r *InmemWorkflowRepository) Save(ctx context.Context, definition *workflow.Definition) (*workflow.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.storage.Set(definitionKey{tenantID: tenantID, definitionID: definition.ID()}, definition)
	return definition, nil
}

func (r *InmemWorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	r.storage.Delete(definitionKey{tenantID: tenantID, definitionID: id})
	return nil
}
