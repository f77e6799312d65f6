package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

// InmemVAMStore backs the module's repositories with mutex-guarded maps.
type InmemVAMStore struct {
	mu         sync.RWMutex
	units      map[uuid.UUID]*unit.Unit
	kpis       map[uuid.UUID]*kpi.KPI
	agreements map[uuid.UUID]*agreement.Agreement
}

func NewInmemVAMStore() *InmemVAMStore {
	return &InmemVAMStore{
		units:      map[uuid.UUID]*unit.Unit{},
		kpis:       map[uuid.UUID]*kpi.KPI{},
		agreements: map[uuid.UUID]*agreement.Agreement{},
	}
}

func (s *InmemVAMStore) Units() unit.Repository { return &inmemUnits{store: s} }

func (s *InmemVAMStore) KPIs() kpi.Repository { return &inmemKPIs{store: s} }

func (s *InmemVAMStore) Agreements() agreement.Repository { return &inmemAgreements{store: s} }

type inmemUnits struct {
	store *InmemVAMStore
}

func (r *inmemUnits) GetByID(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.units[id]
	if !ok || u.TenantID() != tenantID {
		return nil, unit.ErrUnitNotFound
	}
	return u, nil
}

func (r *inmemUnits) GetAll(ctx context.Context) ([]*unit.Unit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*unit.Unit
	for _, u := range r.store.units {
		if u.TenantID() == tenantID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemUnits) ListAll(ctx context.Context) ([]*unit.Unit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*unit.Unit, 0, len(r.store.units))
	for _, u := range r.store.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemUnits) Save(ctx context.Context, u *unit.Unit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.units[u.ID()] = u
	return nil
}

func (r *inmemUnits) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.units, id)
	return nil
}

func (r *inmemUnits) UpdateAutonomyLevel(ctx context.Context, tenantID, id uuid.UUID, level unit.AutonomyLevel, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.units[id]
	if !ok || u.TenantID() != tenantID {
		return unit.ErrUnitNotFound
	}
	r.store.units[id] = unit.New(
		u.Code(),
		u.Name(),
		unit.WithID(u.ID()),
		unit.WithTenantID(u.TenantID()),
		unit.WithAutonomyLevel(level),
		unit.WithDepartment(u.Department()),
		unit.WithCostCenter(u.CostCenter()),
		unit.WithCreatedAt(u.CreatedAt()),
		unit.WithUpdatedAt(now),
	)
	return nil
}

type inmemKPIs struct {
	store *InmemVAMStore
}

func (r *inmemKPIs) GetByID(ctx context.Context, id uuid.UUID) (*kpi.KPI, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	k, ok := r.store.kpis[id]
	if !ok || k.TenantID() != tenantID {
		return nil, kpi.ErrKPINotFound
	}
	return k, nil
}

func (r *inmemKPIs) GetAll(ctx context.Context) ([]*kpi.KPI, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*kpi.KPI
	for _, k := range r.store.kpis {
		if k.TenantID() == tenantID {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemKPIs) ListByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*kpi.KPI, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*kpi.KPI
	for _, k := range r.store.kpis {
		if k.TenantID() == tenantID && k.UnitID() == unitID {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemKPIs) Save(ctx context.Context, k *kpi.KPI) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.kpis[k.ID()] = k
	return nil
}

func (r *inmemKPIs) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.kpis, id)
	return nil
}

type inmemAgreements struct {
	store *InmemVAMStore
}

func (r *inmemAgreements) GetByID(ctx context.Context, id uuid.UUID) (*agreement.Agreement, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.agreements[id]
	if !ok || a.TenantID() != tenantID {
		return nil, agreement.ErrAgreementNotFound
	}
	return a, nil
}

func (r *inmemAgreements) GetAll(ctx context.Context) ([]*agreement.Agreement, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*agreement.Agreement
	for _, a := range r.store.agreements {
		if a.TenantID() == tenantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemAgreements) ListActiveByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*agreement.Agreement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*agreement.Agreement
	for _, a := range r.store.agreements {
		if a.TenantID() == tenantID && a.UnitID() == unitID && a.Status() == agreement.StatusActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out, nil
}

func (r *inmemAgreements) Save(ctx context.Context, a *agreement.Agreement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.agreements[a.ID()] = a
	return nil
}

func (r *inmemAgreements) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.agreements, id)
	return nil
}

func (r *inmemAgreements) ReleaseTranche(ctx context.Context, tenantID, trancheID uuid.UUID, releaseDate time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, a := range r.store.agreements {
		if a.TenantID() != tenantID {
			continue
		}
		changed := false
		tranches := a.Tranches()
		next := make([]agreement.Tranche, 0, len(tranches))
		for _, t := range tranches {
			if t.ID() == trancheID && t.Status() == agreement.TranchePending {
				next = append(next, agreement.TrancheWith(t.ID(), t.Amount(), agreement.TrancheReleased, &releaseDate))
				changed = true
				continue
			}
			next = append(next, t)
		}
		if !changed {
			continue
		}
		r.store.agreements[id] = agreement.New(
			a.Code(),
			a.UnitID(),
			agreement.WithID(a.ID()),
			agreement.WithTenantID(a.TenantID()),
			agreement.WithTotal(a.Total()),
			agreement.WithStatus(a.Status()),
			agreement.WithTranches(next...),
			agreement.WithCreatedAt(a.CreatedAt()),
			agreement.WithUpdatedAt(a.UpdatedAt()),
		)
		return nil
	}
	return nil
}
