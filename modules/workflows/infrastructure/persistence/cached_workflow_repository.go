package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence/models"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type cachedAggregate struct {
	Definition  models.WorkflowDefinition    `json:"definition"`
	States      []models.WorkflowState       `json:"states"`
	Transitions []models.WorkflowTransition  `json:"transitions"`
	Actions     []models.WorkflowStateAction `json:"actions"`
}

// CachedWorkflowRepository adds a Redis read-through cache for
// active-definition lookups, the hot path of every transition check.
// Writes invalidate the tenant's cached entries; all other reads pass
// through to the inner repository.
type CachedWorkflowRepository struct {
	inner  workflow.Repository
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedWorkflowRepository(inner workflow.Repository, redisClient *redis.Client, ttl time.Duration) *CachedWorkflowRepository {
	return &CachedWorkflowRepository{
		inner:  inner,
		redis:  redisClient,
		prefix: "workflows:active:v1",
		ttl:    ttl,
	}
}

func (r *CachedWorkflowRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}

func (r *CachedWorkflowRepository) GetAll(ctx context.Context) ([]*workflow.Definition, error) {
	return r.inner.GetAll(ctx)
}

func (r *CachedWorkflowRepository) GetPaginated(ctx context.Context, params *workflow.FindParams) ([]*workflow.Definition, error) {
	return r.inner.GetPaginated(ctx, params)
}

func (r *CachedWorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Definition, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedWorkflowRepository) GetActive(ctx context.Context, entityType workflow.EntityType) (*workflow.Definition, error) {
	key, err := r.cacheKey(ctx, entityType)
	if err != nil {
		return nil, err
	}

	cached, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		var aggregate cachedAggregate
		if unmarshalErr := json.Unmarshal([]byte(cached), &aggregate); unmarshalErr == nil {
			return ToDomainDefinition(aggregate.Definition, aggregate.States, aggregate.Transitions, aggregate.Actions)
		}
	} else if err != redis.Nil {
		// Cache trouble must not break lookups; fall through to the store.
		return r.inner.GetActive(ctx, entityType)
	}

	definition, err := r.inner.GetActive(ctx, entityType)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := r.encode(definition); marshalErr == nil {
		_ = r.redis.Set(ctx, key, payload, r.ttl).Err()
	}
	return definition, nil
}

func (r *CachedWorkflowRepository) Save(ctx context.Context, definition *workflow.Definition) (*workflow.Definition, error) {
	saved, err := r.inner.Save(ctx, definition)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, definition.EntityType())
	return saved, nil
}

func (r *CachedWorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	definition, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, definition.EntityType())
	return nil
}

func (r *CachedWorkflowRepository) encode(definition *workflow.Definition) ([]byte, error) {
	aggregate := cachedAggregate{
		Definition:  ToDBDefinition(definition),
		States:      make([]models.WorkflowState, 0),
		Transitions: make([]models.WorkflowTransition, 0),
		Actions:     make([]models.WorkflowStateAction, 0),
	}
	for _, s := range definition.States() {
		aggregate.States = append(aggregate.States, ToDBState(definition.ID(), s))
	}
	for _, t := range definition.Transitions() {
		aggregate.Transitions = append(aggregate.Transitions, ToDBTransition(definition.ID(), t))
	}
	for _, a := range definition.Actions() {
		m, err := ToDBStateAction(definition.ID(), a)
		if err != nil {
			return nil, err
		}
		aggregate.Actions = append(aggregate.Actions, m)
	}
	return json.Marshal(aggregate)
}

func (r *CachedWorkflowRepository) invalidate(ctx context.Context, entityType workflow.EntityType) {
	if key, err := r.cacheKey(ctx, entityType); err == nil {
		_ = r.redis.Del(ctx, key).Err()
	}
}

func (r *CachedWorkflowRepository) cacheKey(ctx context.Context, entityType workflow.EntityType) (string, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:{%s}:%s", r.prefix, tenantID.String(), entityType), nil
}
