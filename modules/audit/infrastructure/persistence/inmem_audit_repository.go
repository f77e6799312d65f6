package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/orgmesh/platform-sdk/modules/audit/domain/aggregates/auditevent"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

// InmemAuditEventRepository keeps the trail in an append-only slice.
type InmemAuditEventRepository struct {
	mu     sync.RWMutex
	events []*auditevent.AuditEvent
}

func NewInmemAuditEventRepository() *InmemAuditEventRepository {
	return &InmemAuditEventRepository{}
}

func (r *InmemAuditEventRepository) GetAll(ctx context.Context) ([]*auditevent.AuditEvent, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*auditevent.AuditEvent
	for _, e := range r.events {
		if e.TenantID() == tenantID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *InmemAuditEventRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*auditevent.AuditEvent, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*auditevent.AuditEvent
	for _, e := range all {
		if e.EntityType() == entityType && e.EntityID() == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *InmemAuditEventRepository) Save(ctx context.Context, event *auditevent.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}
