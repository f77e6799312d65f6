package servicerequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
)

type Source string

const (
	SourceJitbit Source = "JITBIT"
	SourceJira   Source = "JIRA"
	SourceManual Source = "MANUAL"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// ServiceRequest is a unit of work raised against a contract. The response
// and resolution clocks both start at openedAt; firstResponseAt and
// resolvedAt stop them.
type ServiceRequest struct {
	id              uuid.UUID
	tenantID        uuid.UUID
	contractID      uuid.UUID
	source          Source
	externalID      string
	title           string
	priority        string
	openedAt        time.Time
	firstResponseAt *time.Time
	resolvedAt      *time.Time
	status          Status
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

type Option func(*ServiceRequest)

func WithID(id uuid.UUID) Option {
	return func(r *ServiceRequest) {
		r.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(r *ServiceRequest) {
		r.tenantID = tenantID
	}
}

func WithSource(source Source) Option {
	return func(r *ServiceRequest) {
		r.source = source
	}
}

func WithExternalID(externalID string) Option {
	return func(r *ServiceRequest) {
		r.externalID = externalID
	}
}

func WithPriority(priority string) Option {
	return func(r *ServiceRequest) {
		r.priority = priority
	}
}

func WithOpenedAt(openedAt time.Time) Option {
	return func(r *ServiceRequest) {
		r.openedAt = openedAt
	}
}

func WithFirstResponseAt(at time.Time) Option {
	return func(r *ServiceRequest) {
		r.firstResponseAt = &at
	}
}

func WithResolvedAt(at time.Time) Option {
	return func(r *ServiceRequest) {
		r.resolvedAt = &at
	}
}

func WithStatus(status Status) Option {
	return func(r *ServiceRequest) {
		r.status = status
	}
}

func WithVersion(version int64) Option {
	return func(r *ServiceRequest) {
		r.version = version
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(r *ServiceRequest) {
		r.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(r *ServiceRequest) {
		r.updatedAt = updatedAt
	}
}

func New(title string, contractID uuid.UUID, opts ...Option) *ServiceRequest {
	r := &ServiceRequest{
		id:         uuid.New(),
		contractID: contractID,
		source:     SourceManual,
		title:      title,
		priority:   "MEDIUM",
		openedAt:   time.Now(),
		status:     StatusOpen,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ServiceRequest) ID() uuid.UUID { return r.id }

func (r *ServiceRequest) ContractID() uuid.UUID { return r.contractID }

func (r *ServiceRequest) Source() Source { return r.source }

func (r *ServiceRequest) ExternalID() string { return r.externalID }

func (r *ServiceRequest) Title() string { return r.title }

func (r *ServiceRequest) Priority() string { return r.priority }

func (r *ServiceRequest) OpenedAt() time.Time { return r.openedAt }

func (r *ServiceRequest) FirstResponseAt() *time.Time { return r.firstResponseAt }

func (r *ServiceRequest) ResolvedAt() *time.Time { return r.resolvedAt }

func (r *ServiceRequest) CreatedAt() time.Time { return r.createdAt }

func (r *ServiceRequest) UpdatedAt() time.Time { return r.updatedAt }

// EntityID, TenantID, EntityType, Status and Version satisfy the workflow
// engine's entity contract.
func (r *ServiceRequest) EntityID() uuid.UUID { return r.id }

func (r *ServiceRequest) TenantID() uuid.UUID { return r.tenantID }

func (r *ServiceRequest) EntityType() workflow.EntityType { return workflow.EntityTypeRequest }

func (r *ServiceRequest) Status() string { return string(r.status) }

func (r *ServiceRequest) Version() int64 { return r.version }
