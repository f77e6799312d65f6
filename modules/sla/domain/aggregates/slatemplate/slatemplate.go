package slatemplate

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrTemplateNotFound = errors.New("sla template not found")

// SLATemplate names the service-level targets a contract can point at.
// Hour targets are optional; a nil target disables that check entirely.
type SLATemplate struct {
	id                  uuid.UUID
	tenantID            uuid.UUID
	name                string
	responseHours       *int
	resolutionHours     *int
	availabilityPercent *decimal.Decimal
	createdAt           time.Time
	updatedAt           time.Time
}

type Option func(*SLATemplate)

func WithID(id uuid.UUID) Option {
	return func(t *SLATemplate) {
		t.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(t *SLATemplate) {
		t.tenantID = tenantID
	}
}

func WithResponseHours(hours int) Option {
	return func(t *SLATemplate) {
		t.responseHours = &hours
	}
}

func WithResolutionHours(hours int) Option {
	return func(t *SLATemplate) {
		t.resolutionHours = &hours
	}
}

func WithAvailabilityPercent(percent decimal.Decimal) Option {
	return func(t *SLATemplate) {
		t.availabilityPercent = &percent
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *SLATemplate) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *SLATemplate) {
		t.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) *SLATemplate {
	t := &SLATemplate{
		id:        uuid.New(),
		name:      name,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *SLATemplate) ID() uuid.UUID { return t.id }

func (t *SLATemplate) TenantID() uuid.UUID { return t.tenantID }

func (t *SLATemplate) Name() string { return t.name }

func (t *SLATemplate) ResponseHours() *int { return t.responseHours }

func (t *SLATemplate) ResolutionHours() *int { return t.resolutionHours }

func (t *SLATemplate) AvailabilityPercent() *decimal.Decimal { return t.availabilityPercent }

func (t *SLATemplate) CreatedAt() time.Time { return t.createdAt }

func (t *SLATemplate) UpdatedAt() time.Time { return t.updatedAt }

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SLATemplate, error)
	GetAll(ctx context.Context) ([]*SLATemplate, error)
	Save(ctx context.Context, template *SLATemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
