package agreement

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrAgreementNotFound = errors.New("agreement not found")

type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

type TrancheStatus string

const (
	TranchePending  TrancheStatus = "PENDING"
	TrancheReleased TrancheStatus = "RELEASED"
)

// Tranche is a gated portion of an agreement's committed amount. Release is
// one-way: the engine never reverts a released tranche.
type Tranche struct {
	id          uuid.UUID
	amount      decimal.Decimal
	status      TrancheStatus
	releaseDate *time.Time
}

func NewTranche(amount decimal.Decimal) Tranche {
	return Tranche{
		id:     uuid.New(),
		amount: amount,
		status: TranchePending,
	}
}

func TrancheWith(id uuid.UUID, amount decimal.Decimal, status TrancheStatus, releaseDate *time.Time) Tranche {
	return Tranche{id: id, amount: amount, status: status, releaseDate: releaseDate}
}

func (t Tranche) ID() uuid.UUID { return t.id }

func (t Tranche) Amount() decimal.Decimal { return t.amount }

func (t Tranche) Status() TrancheStatus { return t.status }

func (t Tranche) ReleaseDate() *time.Time { return t.releaseDate }

// Agreement ties a committed amount to one unit; its tranches are released
// by the autonomy engine as the unit's score allows.
type Agreement struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	code      string
	unitID    uuid.UUID
	total     decimal.Decimal
	status    Status
	tranches  []Tranche
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Agreement)

func WithID(id uuid.UUID) Option {
	return func(a *Agreement) {
		a.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(a *Agreement) {
		a.tenantID = tenantID
	}
}

func WithTotal(total decimal.Decimal) Option {
	return func(a *Agreement) {
		a.total = total
	}
}

func WithStatus(status Status) Option {
	return func(a *Agreement) {
		a.status = status
	}
}

func WithTranches(tranches ...Tranche) Option {
	return func(a *Agreement) {
		a.tranches = tranches
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(a *Agreement) {
		a.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(a *Agreement) {
		a.updatedAt = updatedAt
	}
}

func New(code string, unitID uuid.UUID, opts ...Option) *Agreement {
	a := &Agreement{
		id:        uuid.New(),
		code:      code,
		unitID:    unitID,
		total:     decimal.Zero,
		status:    StatusDraft,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agreement) ID() uuid.UUID { return a.id }

func (a *Agreement) TenantID() uuid.UUID { return a.tenantID }

func (a *Agreement) Code() string { return a.code }

func (a *Agreement) UnitID() uuid.UUID { return a.unitID }

func (a *Agreement) Total() decimal.Decimal { return a.total }

func (a *Agreement) Status() Status { return a.status }

func (a *Agreement) Tranches() []Tranche { return a.tranches }

func (a *Agreement) CreatedAt() time.Time { return a.createdAt }

func (a *Agreement) UpdatedAt() time.Time { return a.updatedAt }

// PendingTranches returns the tranches still awaiting release.
func (a *Agreement) PendingTranches() []Tranche {
	var out []Tranche
	for _, t := range a.tranches {
		if t.Status() == TranchePending {
			out = append(out, t)
		}
	}
	return out
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Agreement, error)
	GetAll(ctx context.Context) ([]*Agreement, error)
	Save(ctx context.Context, a *Agreement) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListActiveByUnit returns the unit's ACTIVE agreements with tranches
	// loaded, regardless of the tenant in context.
	ListActiveByUnit(ctx context.Context, tenantID, unitID uuid.UUID) ([]*Agreement, error)
	// ReleaseTranche marks a PENDING tranche RELEASED with the given date.
	// Releasing an already-released tranche is a no-op.
	ReleaseTranche(ctx context.Context, tenantID, trancheID uuid.UUID, releaseDate time.Time) error
}
