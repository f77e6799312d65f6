package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/modules/audit/domain/aggregates/auditevent"
	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type AuditServiceConfig struct {
	Events auditevent.Repository
	Pool   *pgxpool.Pool
	Logger *logrus.Entry
}

// AuditService records what happened to business entities. Its handlers
// subscribe to the eventbus, so the trail grows as a side effect of the
// operations other modules publish.
type AuditService struct {
	events auditevent.Repository
	pool   *pgxpool.Pool
	logger *logrus.Entry
}

func NewAuditService(cfg AuditServiceConfig) *AuditService {
	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = logrus.NewEntry(l)
	}
	return &AuditService{
		events: cfg.Events,
		pool:   cfg.Pool,
		logger: logger,
	}
}

func (s *AuditService) Log(ctx context.Context, event *auditevent.AuditEvent) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.events.Save(txCtx, event)
	})
}

func (s *AuditService) GetAll(ctx context.Context) ([]*auditevent.AuditEvent, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*auditevent.AuditEvent, error) {
		return s.events.GetAll(txCtx)
	})
}

// EntityTrail returns the entity's audit history, oldest first.
func (s *AuditService) EntityTrail(ctx context.Context, entityType, entityID string) ([]*auditevent.AuditEvent, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*auditevent.AuditEvent, error) {
		return s.events.ListByEntity(txCtx, entityType, entityID)
	})
}

// OnWorkflowTransitioned records a STATE_CHANGE for every committed entity
// transition. Handlers run on the publisher's goroutine after the
// transition's transaction; a failed write is logged, never propagated.
func (s *AuditService) OnWorkflowTransitioned(event *workflow.TransitionedEvent) {
	e := auditevent.New(
		event.TenantID,
		auditevent.ActionStateChange,
		string(event.EntityType),
		event.EntityID.String(),
		fmt.Sprintf("Status changed: %s -> %s", event.From, event.To),
		auditevent.WithPayload(map[string]any{"from": event.From, "to": event.To}),
		auditevent.WithCreatedAt(event.At),
	)
	if err := s.Log(s.handlerContext(event.TenantID), e); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"entity_type": event.EntityType,
			"entity_id":   event.EntityID,
		}).Warn("audit: failed to record state change")
	}
}

// OnDefinitionSaved records administrator edits to workflow definitions.
func (s *AuditService) OnDefinitionSaved(event *workflow.DefinitionSavedEvent) {
	e := auditevent.New(
		event.TenantID,
		auditevent.ActionUpdate,
		"WORKFLOW_DEFINITION",
		event.ID.String(),
		fmt.Sprintf("Saved workflow definition %q for %s", event.Name, event.EntityType),
	)
	if err := s.Log(s.handlerContext(event.TenantID), e); err != nil {
		s.logger.WithError(err).WithField("definition_id", event.ID).Warn("audit: failed to record definition save")
	}
}

// Events carry their own tenant; the handler context is rebuilt from it
// because the publishing transaction is already gone.
func (s *AuditService) handlerContext(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	if s.pool != nil {
		ctx = composables.WithPool(ctx, s.pool)
	}
	return composables.WithTenantID(ctx, tenantID)
}
