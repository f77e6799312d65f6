package breach

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindResponse   Kind = "RESPONSE"
	KindResolution Kind = "RESOLUTION"
)

// Breach records one missed SLA target for one request. At most one breach
// per (tenant, request, kind) ever exists; the evaluator relies on the
// repository to enforce that.
type Breach struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	requestID uuid.UUID
	kind      Kind
	breachAt  time.Time
	details   map[string]any
}

type Option func(*Breach)

func WithID(id uuid.UUID) Option {
	return func(b *Breach) {
		b.id = id
	}
}

func WithBreachAt(at time.Time) Option {
	return func(b *Breach) {
		b.breachAt = at
	}
}

func WithDetails(details map[string]any) Option {
	return func(b *Breach) {
		b.details = details
	}
}

func New(tenantID, requestID uuid.UUID, kind Kind, opts ...Option) *Breach {
	b := &Breach{
		id:        uuid.New(),
		tenantID:  tenantID,
		requestID: requestID,
		kind:      kind,
		breachAt:  time.Now(),
		details:   map[string]any{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breach) ID() uuid.UUID { return b.id }

func (b *Breach) TenantID() uuid.UUID { return b.tenantID }

func (b *Breach) RequestID() uuid.UUID { return b.requestID }

func (b *Breach) Kind() Kind { return b.kind }

func (b *Breach) BreachAt() time.Time { return b.breachAt }

func (b *Breach) Details() map[string]any { return b.details }

type Repository interface {
	// GetOrCreate persists the breach unless one already exists for the same
	// (tenant, request, kind). Reports whether this call created it; on a
	// duplicate the existing breach is returned unchanged.
	GetOrCreate(ctx context.Context, b *Breach) (*Breach, bool, error)
	GetAll(ctx context.Context) ([]*Breach, error)
	// CountByProvider counts all-time breaches on requests whose contract
	// names the given unit as provider.
	CountByProvider(ctx context.Context, tenantID, providerID uuid.UUID) (int64, error)
}
