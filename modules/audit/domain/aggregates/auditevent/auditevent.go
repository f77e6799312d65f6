package auditevent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate      Action = "CREATE"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionStateChange Action = "STATE_CHANGE"
)

const summaryMaxLen = 255

// AuditEvent is an append-only record of something that happened to a
// business entity: who-did-what in a form operators can query per entity.
type AuditEvent struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	action     Action
	entityType string
	entityID   string
	summary    string
	payload    map[string]any
	createdAt  time.Time
}

type Option func(*AuditEvent)

func WithID(id uuid.UUID) Option {
	return func(e *AuditEvent) {
		e.id = id
	}
}

func WithPayload(payload map[string]any) Option {
	return func(e *AuditEvent) {
		e.payload = payload
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(e *AuditEvent) {
		e.createdAt = createdAt
	}
}

func New(tenantID uuid.UUID, action Action, entityType, entityID, summary string, opts ...Option) *AuditEvent {
	if len(summary) > summaryMaxLen {
		summary = summary[:summaryMaxLen]
	}
	e := &AuditEvent{
		id:         uuid.New(),
		tenantID:   tenantID,
		action:     action,
		entityType: entityType,
		entityID:   entityID,
		summary:    summary,
		payload:    map[string]any{},
		createdAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *AuditEvent) ID() uuid.UUID { return e.id }

func (e *AuditEvent) TenantID() uuid.UUID { return e.tenantID }

func (e *AuditEvent) Action() Action { return e.action }

func (e *AuditEvent) EntityType() string { return e.entityType }

func (e *AuditEvent) EntityID() string { return e.entityID }

func (e *AuditEvent) Summary() string { return e.summary }

func (e *AuditEvent) Payload() map[string]any { return e.payload }

func (e *AuditEvent) CreatedAt() time.Time { return e.createdAt }

type Repository interface {
	GetAll(ctx context.Context) ([]*AuditEvent, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditEvent, error)
	Save(ctx context.Context, event *AuditEvent) error
}
