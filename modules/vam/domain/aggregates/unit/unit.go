package unit

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrUnitNotFound = errors.New("unit not found")

type AutonomyLevel string

const (
	AutonomyRestricted AutonomyLevel = "RESTRICTED"
	AutonomyStandard   AutonomyLevel = "STANDARD"
	AutonomyHigh       AutonomyLevel = "HIGH"
)

// Score derives the autonomy score from all-time breach count and KPI
// attainment, clamped to [0, 100].
func Score(breaches, kpiHits int) int {
	score := 100 - breaches*10 + kpiHits*5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// LevelForScore classifies a score into an autonomy level.
func LevelForScore(score int) AutonomyLevel {
	switch {
	case score >= 80:
		return AutonomyHigh
	case score >= 50:
		return AutonomyStandard
	default:
		return AutonomyRestricted
	}
}

// Unit is an organizational unit operating under service contracts. Its
// autonomy level is owned by the scoring engine, never edited directly.
type Unit struct {
	id            uuid.UUID
	tenantID      uuid.UUID
	code          string
	name          string
	autonomyLevel AutonomyLevel
	department    string
	costCenter    string
	createdAt     time.Time
	updatedAt     time.Time
}

type Option func(*Unit)

func WithID(id uuid.UUID) Option {
	return func(u *Unit) {
		u.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(u *Unit) {
		u.tenantID = tenantID
	}
}

func WithAutonomyLevel(level AutonomyLevel) Option {
	return func(u *Unit) {
		u.autonomyLevel = level
	}
}

func WithDepartment(department string) Option {
	return func(u *Unit) {
		u.department = department
	}
}

func WithCostCenter(costCenter string) Option {
	return func(u *Unit) {
		u.costCenter = costCenter
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(u *Unit) {
		u.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(u *Unit) {
		u.updatedAt = updatedAt
	}
}

func New(code, name string, opts ...Option) *Unit {
	u := &Unit{
		id:            uuid.New(),
		code:          code,
		name:          name,
		autonomyLevel: AutonomyRestricted,
		createdAt:     time.Now(),
		updatedAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Unit) ID() uuid.UUID { return u.id }

func (u *Unit) TenantID() uuid.UUID { return u.tenantID }

func (u *Unit) Code() string { return u.code }

func (u *Unit) Name() string { return u.name }

func (u *Unit) AutonomyLevel() AutonomyLevel { return u.autonomyLevel }

func (u *Unit) Department() string { return u.department }

func (u *Unit) CostCenter() string { return u.costCenter }

func (u *Unit) CreatedAt() time.Time { return u.createdAt }

func (u *Unit) UpdatedAt() time.Time { return u.updatedAt }

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	GetAll(ctx context.Context) ([]*Unit, error)
	Save(ctx context.Context, u *Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListAll returns every unit on the platform. The scoring engine is a
	// cross-tenant pass, so this read ignores the tenant in context.
	ListAll(ctx context.Context) ([]*Unit, error)
	// UpdateAutonomyLevel persists the level and updated-at timestamp. The
	// write is unconditional: scoring is a full recompute.
	UpdateAutonomyLevel(ctx context.Context, tenantID, id uuid.UUID, level AutonomyLevel, now time.Time) error
}
