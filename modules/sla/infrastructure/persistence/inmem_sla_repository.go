package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/slatemplate"
	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type breachKey struct {
	tenantID  uuid.UUID
	requestID uuid.UUID
	kind      breach.Kind
}

// InmemSLAStore backs the module's repositories with mutex-guarded maps.
// One store holds all four collections so the cross-aggregate reads
// (open requests with targets, breach counts by provider) work without a
// database.
type InmemSLAStore struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*slatemplate.SLATemplate
	contracts map[uuid.UUID]*contract.Contract
	requests  map[uuid.UUID]*servicerequest.ServiceRequest
	breaches  map[breachKey]*breach.Breach
}

func NewInmemSLAStore() *InmemSLAStore {
	return &InmemSLAStore{
		templates: map[uuid.UUID]*slatemplate.SLATemplate{},
		contracts: map[uuid.UUID]*contract.Contract{},
		requests:  map[uuid.UUID]*servicerequest.ServiceRequest{},
		breaches:  map[breachKey]*breach.Breach{},
	}
}

func (s *InmemSLAStore) Templates() slatemplate.Repository { return &inmemTemplates{store: s} }

func (s *InmemSLAStore) Contracts() contract.Repository { return &inmemContracts{store: s} }

func (s *InmemSLAStore) Requests() servicerequest.Repository { return &inmemRequests{store: s} }

func (s *InmemSLAStore) Breaches() breach.Repository { return &inmemBreaches{store: s} }

func (s *InmemSLAStore) EntityStore() workflow.EntityStore { return &inmemEntityStore{store: s} }

type inmemTemplates struct {
	store *InmemSLAStore
}

func (r *inmemTemplates) GetByID(ctx context.Context, id uuid.UUID) (*slatemplate.SLATemplate, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.templates[id]
	if !ok || t.TenantID() != tenantID {
		return nil, slatemplate.ErrTemplateNotFound
	}
	return t, nil
}

func (r *inmemTemplates) GetAll(ctx context.Context) ([]*slatemplate.SLATemplate, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*slatemplate.SLATemplate
	for _, t := range r.store.templates {
		if t.TenantID() == tenantID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *inmemTemplates) Save(ctx context.Context, template *slatemplate.SLATemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.templates[template.ID()] = template
	return nil
}

func (r *inmemTemplates) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.templates, id)
	return nil
}

type inmemContracts struct {
	store *InmemSLAStore
}

func (r *inmemContracts) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.contracts[id]
	if !ok || c.TenantID() != tenantID {
		return nil, contract.ErrContractNotFound
	}
	return c, nil
}

func (r *inmemContracts) GetAll(ctx context.Context) ([]*contract.Contract, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*contract.Contract
	for _, c := range r.store.contracts {
		if c.TenantID() == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemContracts) Save(ctx context.Context, c *contract.Contract) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.contracts[c.ID()] = c
	return nil
}

func (r *inmemContracts) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.contracts, id)
	return nil
}

type inmemRequests struct {
	store *InmemSLAStore
}

func (r *inmemRequests) GetByID(ctx context.Context, id uuid.UUID) (*servicerequest.ServiceRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	req, ok := r.store.requests[id]
	if !ok || req.TenantID() != tenantID {
		return nil, servicerequest.ErrRequestNotFound
	}
	return req, nil
}

func (r *inmemRequests) GetAll(ctx context.Context) ([]*servicerequest.ServiceRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*servicerequest.ServiceRequest
	for _, req := range r.store.requests {
		if req.TenantID() == tenantID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt().After(out[j].OpenedAt()) })
	return out, nil
}

func (r *inmemRequests) Save(ctx context.Context, request *servicerequest.ServiceRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.requests[request.ID()] = request
	return nil
}

func (r *inmemRequests) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.requests, id)
	return nil
}

func (r *inmemRequests) ListOpenWithTargets(ctx context.Context) ([]servicerequest.OpenRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []servicerequest.OpenRequest
	for _, req := range r.store.requests {
		if req.Status() != string(servicerequest.StatusOpen) && req.Status() != string(servicerequest.StatusInProgress) {
			continue
		}
		c, ok := r.store.contracts[req.ContractID()]
		if !ok {
			continue
		}
		item := servicerequest.OpenRequest{Request: req, ContractCode: c.Code()}
		if templateID := c.SLATemplateID(); templateID != nil {
			if t, ok := r.store.templates[*templateID]; ok {
				item.HasTemplate = true
				item.ResponseHours = t.ResponseHours()
				item.ResolutionHours = t.ResolutionHours()
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Request.OpenedAt().Before(out[j].Request.OpenedAt())
	})
	return out, nil
}

type inmemBreaches struct {
	store *InmemSLAStore
}

func (r *inmemBreaches) GetOrCreate(ctx context.Context, b *breach.Breach) (*breach.Breach, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := breachKey{tenantID: b.TenantID(), requestID: b.RequestID(), kind: b.Kind()}
	if existing, ok := r.store.breaches[key]; ok {
		return existing, false, nil
	}
	r.store.breaches[key] = b
	return b, true, nil
}

func (r *inmemBreaches) GetAll(ctx context.Context) ([]*breach.Breach, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*breach.Breach
	for key, b := range r.store.breaches {
		if key.tenantID == tenantID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BreachAt().Before(out[j].BreachAt()) })
	return out, nil
}

func (r *inmemBreaches) CountByProvider(ctx context.Context, tenantID, providerID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var count int64
	for key, b := range r.store.breaches {
		if key.tenantID != tenantID {
			continue
		}
		req, ok := r.store.requests[b.RequestID()]
		if !ok {
			continue
		}
		c, ok := r.store.contracts[req.ContractID()]
		if !ok {
			continue
		}
		if c.ProviderID() == providerID {
			count++
		}
	}
	return count, nil
}

type inmemEntityStore struct {
	store *InmemSLAStore
}

func (s *inmemEntityStore) UpdateStatus(ctx context.Context, entity workflow.Entity, status string, now time.Time) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	switch entity.EntityType() {
	case workflow.EntityTypeRequest:
		req, ok := s.store.requests[entity.EntityID()]
		if !ok {
			return servicerequest.ErrRequestNotFound
		}
		if req.Version() != entity.Version() {
			return workflow.ErrVersionConflict
		}
		s.store.requests[entity.EntityID()] = servicerequest.New(
			req.Title(),
			req.ContractID(),
			servicerequest.WithID(req.ID()),
			servicerequest.WithTenantID(req.TenantID()),
			servicerequest.WithSource(req.Source()),
			servicerequest.WithExternalID(req.ExternalID()),
			servicerequest.WithPriority(req.Priority()),
			servicerequest.WithOpenedAt(req.OpenedAt()),
			servicerequest.WithStatus(servicerequest.Status(status)),
			servicerequest.WithVersion(req.Version()+1),
			servicerequest.WithCreatedAt(req.CreatedAt()),
			servicerequest.WithUpdatedAt(now),
		)
		return nil
	case workflow.EntityTypeContract:
		c, ok := s.store.contracts[entity.EntityID()]
		if !ok {
			return contract.ErrContractNotFound
		}
		if c.Version() != entity.Version() {
			return workflow.ErrVersionConflict
		}
		opts := []contract.Option{
			contract.WithID(c.ID()),
			contract.WithTenantID(c.TenantID()),
			contract.WithStartDate(c.StartDate()),
			contract.WithValue(c.Value()),
			contract.WithStatus(status),
			contract.WithVersion(c.Version() + 1),
			contract.WithCreatedAt(c.CreatedAt()),
			contract.WithUpdatedAt(now),
		}
		if templateID := c.SLATemplateID(); templateID != nil {
			opts = append(opts, contract.WithSLATemplateID(*templateID))
		}
		if end := c.EndDate(); end != nil {
			opts = append(opts, contract.WithEndDate(*end))
		}
		s.store.contracts[entity.EntityID()] = contract.New(c.Code(), c.ProviderID(), c.ConsumerID(), opts...)
		return nil
	}
	return workflow.ErrVersionConflict
}

func (s *inmemEntityStore) SetField(ctx context.Context, entity workflow.Entity, field string, value any) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if entity.EntityType() != workflow.EntityTypeRequest {
		return false, nil
	}
	req, ok := s.store.requests[entity.EntityID()]
	if !ok {
		return false, servicerequest.ErrRequestNotFound
	}
	opts := []servicerequest.Option{
		servicerequest.WithID(req.ID()),
		servicerequest.WithTenantID(req.TenantID()),
		servicerequest.WithSource(req.Source()),
		servicerequest.WithExternalID(req.ExternalID()),
		servicerequest.WithPriority(req.Priority()),
		servicerequest.WithOpenedAt(req.OpenedAt()),
		servicerequest.WithStatus(servicerequest.Status(req.Status())),
		servicerequest.WithVersion(req.Version()),
		servicerequest.WithCreatedAt(req.CreatedAt()),
		servicerequest.WithUpdatedAt(time.Now()),
	}
	if at := req.FirstResponseAt(); at != nil {
		opts = append(opts, servicerequest.WithFirstResponseAt(*at))
	}
	if at := req.ResolvedAt(); at != nil {
		opts = append(opts, servicerequest.WithResolvedAt(*at))
	}
	switch field {
	case "priority":
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		opts = append(opts, servicerequest.WithPriority(s))
	case "external_id":
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		opts = append(opts, servicerequest.WithExternalID(s))
	case "first_response_at":
		at, ok := value.(time.Time)
		if !ok {
			return false, nil
		}
		opts = append(opts, servicerequest.WithFirstResponseAt(at))
	case "resolved_at":
		at, ok := value.(time.Time)
		if !ok {
			return false, nil
		}
		opts = append(opts, servicerequest.WithResolvedAt(at))
	default:
		return false, nil
	}
	s.store.requests[req.ID()] = servicerequest.New(req.Title(), req.ContractID(), opts...)
	return true, nil
}
