package contract

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
)

var ErrContractNotFound = errors.New("contract not found")

// Contract is a service relationship between two organizational units. The
// provider side is what breach counts roll up to during autonomy scoring.
type Contract struct {
	id            uuid.UUID
	tenantID      uuid.UUID
	code          string
	providerID    uuid.UUID
	consumerID    uuid.UUID
	slaTemplateID *uuid.UUID
	startDate     time.Time
	endDate       *time.Time
	value         decimal.Decimal
	status        string
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

type Option func(*Contract)

func WithID(id uuid.UUID) Option {
	return func(c *Contract) {
		c.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(c *Contract) {
		c.tenantID = tenantID
	}
}

func WithSLATemplateID(templateID uuid.UUID) Option {
	return func(c *Contract) {
		c.slaTemplateID = &templateID
	}
}

func WithStartDate(start time.Time) Option {
	return func(c *Contract) {
		c.startDate = start
	}
}

func WithEndDate(end time.Time) Option {
	return func(c *Contract) {
		c.endDate = &end
	}
}

func WithValue(value decimal.Decimal) Option {
	return func(c *Contract) {
		c.value = value
	}
}

func WithStatus(status string) Option {
	return func(c *Contract) {
		c.status = status
	}
}

func WithVersion(version int64) Option {
	return func(c *Contract) {
		c.version = version
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(c *Contract) {
		c.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(c *Contract) {
		c.updatedAt = updatedAt
	}
}

func New(code string, providerID, consumerID uuid.UUID, opts ...Option) *Contract {
	c := &Contract{
		id:         uuid.New(),
		code:       code,
		providerID: providerID,
		consumerID: consumerID,
		startDate:  time.Now(),
		value:      decimal.Zero,
		status:     "DRAFT",
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) ID() uuid.UUID { return c.id }

func (c *Contract) Code() string { return c.code }

func (c *Contract) ProviderID() uuid.UUID { return c.providerID }

func (c *Contract) ConsumerID() uuid.UUID { return c.consumerID }

func (c *Contract) SLATemplateID() *uuid.UUID { return c.slaTemplateID }

func (c *Contract) StartDate() time.Time { return c.startDate }

func (c *Contract) EndDate() *time.Time { return c.endDate }

func (c *Contract) Value() decimal.Decimal { return c.value }

func (c *Contract) CreatedAt() time.Time { return c.createdAt }

func (c *Contract) UpdatedAt() time.Time { return c.updatedAt }

// EntityID, TenantID, EntityType, Status and Version satisfy the workflow
// engine's entity contract so contracts can be driven through configured
// state machines.
func (c *Contract) EntityID() uuid.UUID { return c.id }

func (c *Contract) TenantID() uuid.UUID { return c.tenantID }

func (c *Contract) EntityType() workflow.EntityType { return workflow.EntityTypeContract }

func (c *Contract) Status() string { return c.status }

func (c *Contract) Version() int64 { return c.version }

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetAll(ctx context.Context) ([]*Contract, error)
	Save(ctx context.Context, contract *Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}
