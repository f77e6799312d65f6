package kpi

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrKPINotFound = errors.New("kpi not found")

// KPI is a per-unit performance indicator. A KPI counts as hit when both
// values are present and actual meets or beats target.
type KPI struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	unitID    uuid.UUID
	code      string
	name      string
	target    *decimal.Decimal
	actual    *decimal.Decimal
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*KPI)

func WithID(id uuid.UUID) Option {
	return func(k *KPI) {
		k.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(k *KPI) {
		k.tenantID = tenantID
	}
}

func WithTarget(target decimal.Decimal) Option {
	return func(k *KPI) {
		k.target = &target
	}
}

func WithActual(actual decimal.Decimal) Option {
	return func(k *KPI) {
		k.actual = &actual
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(k *KPI) {
		k.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(k *KPI) {
		k.updatedAt = updatedAt
	}
}

func New(code, name string, unitID uuid.UUID, opts ...Option) *KPI {
	k := &KPI{
		id:        uuid.New(),
		unitID:    unitID,
		code:      code,
		name:      name,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *KPI) ID() uuid.UUID { return k.id }

func (k *KPI) TenantID() uuid.UUID { return k.tenantID }

func (k *KPI) UnitID() uuid.UUID { return k.unitID }

func (k *KPI) Code() string { return k.code }

func (k *KPI) Name() string { return k.name }

func (k *KPI) Target() *decimal.Decimal { return k.target }

func (k *KPI) Actual() *decimal.Decimal { return k.actual }

func (k *KPI) CreatedAt() time.Time { return k.createdAt }

func (k *KPI) UpdatedAt() time.Time { return k.updatedAt }

// Hit reports whether both values are present and the actual meets or
// exceeds the target.
func (k *KPI) Hit() bool {
	if k.target == nil || k.actual == nil {
		return false
	}
	return k.actual.GreaterThanOrEqual(*k.target)
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*KPI, error)
	GetAll(ctx context.Context) ([]*KPI, error)
	Save(ctx context.Context, k *KPI) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUnit returns the unit's KPIs regardless of the tenant in
	// context; the scoring engine supplies the tenant explicitly.
	ListByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*KPI, error)
}
