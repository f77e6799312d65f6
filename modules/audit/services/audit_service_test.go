package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/modules/audit/domain/aggregates/auditevent"
	"github.com/orgmesh/platform-sdk/modules/audit/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/audit/services"
	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/eventbus"
)

type auditFixture struct {
	ctx      context.Context
	tenantID uuid.UUID
	repo     *persistence.InmemAuditEventRepository
	service  *services.AuditService
	bus      eventbus.EventBus
}

func newAuditFixture(t *testing.T) *auditFixture {
	t.Helper()
	tenantID := uuid.New()
	repo := persistence.NewInmemAuditEventRepository()
	service := services.NewAuditService(services.AuditServiceConfig{Events: repo})

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(log)
	bus.Subscribe(service.OnWorkflowTransitioned)
	bus.Subscribe(service.OnDefinitionSaved)

	return &auditFixture{
		ctx:      composables.WithTenantID(context.Background(), tenantID),
		tenantID: tenantID,
		repo:     repo,
		service:  service,
		bus:      bus,
	}
}

func TestAuditService_RecordsTransitions(t *testing.T) {
	f := newAuditFixture(t)
	entityID := uuid.New()
	at := time.Now()

	f.bus.Publish(&workflow.TransitionedEvent{
		TenantID:   f.tenantID,
		EntityID:   entityID,
		EntityType: workflow.EntityTypeRequest,
		From:       "OPEN",
		To:         "IN_PROGRESS",
		At:         at,
	})

	trail, err := f.service.EntityTrail(f.ctx, string(workflow.EntityTypeRequest), entityID.String())
	require.NoError(t, err)
	require.Len(t, trail, 1)
	e := trail[0]
	assert.Equal(t, auditevent.ActionStateChange, e.Action())
	assert.Equal(t, "Status changed: OPEN -> IN_PROGRESS", e.Summary())
	assert.Equal(t, map[string]any{"from": "OPEN", "to": "IN_PROGRESS"}, e.Payload())
	assert.Equal(t, at, e.CreatedAt())
}

func TestAuditService_RecordsDefinitionSaves(t *testing.T) {
	f := newAuditFixture(t)
	definitionID := uuid.New()

	f.bus.Publish(&workflow.DefinitionSavedEvent{
		TenantID:   f.tenantID,
		ID:         definitionID,
		EntityType: workflow.EntityTypeContract,
		Name:       "Contract Lifecycle",
	})

	trail, err := f.service.EntityTrail(f.ctx, "WORKFLOW_DEFINITION", definitionID.String())
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, auditevent.ActionUpdate, trail[0].Action())
	assert.Equal(t, `Saved workflow definition "Contract Lifecycle" for CONTRACT`, trail[0].Summary())
}

func TestAuditService_TrailIsTenantScoped(t *testing.T) {
	f := newAuditFixture(t)
	entityID := uuid.New()

	f.bus.Publish(&workflow.TransitionedEvent{
		TenantID:   uuid.New(),
		EntityID:   entityID,
		EntityType: workflow.EntityTypeRequest,
		From:       "OPEN",
		To:         "RESOLVED",
		At:         time.Now(),
	})

	trail, err := f.service.EntityTrail(f.ctx, string(workflow.EntityTypeRequest), entityID.String())
	require.NoError(t, err)
	assert.Empty(t, trail, "other tenants' events stay invisible")
}

func TestNew_TruncatesSummary(t *testing.T) {
	long := strings.Repeat("x", 300)
	e := auditevent.New(uuid.New(), auditevent.ActionCreate, "CONTRACT", "id", long)
	assert.Len(t, e.Summary(), 255)
}
