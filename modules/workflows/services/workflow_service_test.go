package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/workflows/services"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type testEntity struct {
	id       uuid.UUID
	tenantID uuid.UUID
	status   string
	version  int64
}

func (e *testEntity) EntityID() uuid.UUID { return e.id }

func (e *testEntity) TenantID() uuid.UUID { return e.tenantID }

func (e *testEntity) EntityType() workflow.EntityType { return workflow.EntityTypeRequest }

func (e *testEntity) Status() string { return e.status }

func (e *testEntity) Version() int64 { return e.version }

type testEntityStore struct {
	mu           sync.Mutex
	statuses     map[uuid.UUID]string
	fields       map[string]any
	staleVersion bool
}

func newTestEntityStore() *testEntityStore {
	return &testEntityStore{
		statuses: map[uuid.UUID]string{},
		fields:   map[string]any{},
	}
}

func (s *testEntityStore) UpdateStatus(_ context.Context, entity workflow.Entity, status string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleVersion {
		return workflow.ErrVersionConflict
	}
	s.statuses[entity.EntityID()] = status
	return nil
}

func (s *testEntityStore) SetField(_ context.Context, _ workflow.Entity, field string, value any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if field != "priority" {
		return false, nil
	}
	s.fields[field] = value
	return true, nil
}

type testNotifier struct {
	mu       sync.Mutex
	alerts   []string
	webhooks []string
	fail     bool
}

func (n *testNotifier) SendAlert(_ context.Context, subject, _ string, _ []string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return false
	}
	n.alerts = append(n.alerts, subject)
	return true
}

func (n *testNotifier) SendWebhookMessage(_ context.Context, text string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return false
	}
	n.webhooks = append(n.webhooks, text)
	return true
}

func requestLifecycle(t *testing.T, actions ...workflow.StateAction) *workflow.Definition {
	t.Helper()
	return workflow.New(
		"Request Lifecycle",
		workflow.EntityTypeRequest,
		workflow.WithStates(
			workflow.NewState("OPEN", "Open", workflow.StateWithOrder(1), workflow.StateWithInitial(true)),
			workflow.NewState("IN_PROGRESS", "In Progress", workflow.StateWithOrder(2)),
			workflow.NewState("RESOLVED", "Resolved", workflow.StateWithOrder(3), workflow.StateWithTerminal(true)),
		),
		workflow.WithTransitions(
			workflow.NewTransition("OPEN", "IN_PROGRESS", "Start"),
			workflow.NewTransition("IN_PROGRESS", "RESOLVED", "Resolve"),
		),
		workflow.WithActions(actions...),
	)
}

type fixture struct {
	ctx      context.Context
	service  *services.WorkflowService
	repo     workflow.Repository
	entities *testEntityStore
	notifier *testNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := composables.WithTenantID(context.Background(), uuid.New())
	repo := persistence.NewInmemWorkflowRepository()
	entities := newTestEntityStore()
	notifier := &testNotifier{}
	service := services.NewWorkflowService(services.WorkflowServiceConfig{
		Repo:     repo,
		Entities: entities,
		Notifier: notifier,
	})
	return &fixture{ctx: ctx, service: service, repo: repo, entities: entities, notifier: notifier}
}

func (f *fixture) entity(status string) *testEntity {
	tenantID, _ := composables.UseTenantID(f.ctx)
	return &testEntity{id: uuid.New(), tenantID: tenantID, status: status}
}

func TestWorkflowService_Transition(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SaveDefinition(f.ctx, requestLifecycle(t))
	require.NoError(t, err)

	e := f.entity("OPEN")
	require.NoError(t, f.service.Transition(f.ctx, e, "IN_PROGRESS"))
	assert.Equal(t, "IN_PROGRESS", f.entities.statuses[e.EntityID()])
}

func TestWorkflowService_Transition_Illegal(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SaveDefinition(f.ctx, requestLifecycle(t))
	require.NoError(t, err)

	e := f.entity("OPEN")
	err = f.service.Transition(f.ctx, e, "RESOLVED")
	require.ErrorIs(t, err, workflow.ErrIllegalTransition)
	assert.Empty(t, f.entities.statuses, "entity is untouched on an illegal transition")
}

func TestWorkflowService_Transition_NoDefinition(t *testing.T) {
	f := newFixture(t)

	e := f.entity("WHATEVER")
	require.NoError(t, f.service.Transition(f.ctx, e, "ANYTHING"))
	assert.Equal(t, "ANYTHING", f.entities.statuses[e.EntityID()])
}

func TestWorkflowService_Transition_VersionConflict(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SaveDefinition(f.ctx, requestLifecycle(t))
	require.NoError(t, err)
	f.entities.staleVersion = true

	e := f.entity("OPEN")
	err = f.service.Transition(f.ctx, e, "IN_PROGRESS")
	assert.ErrorIs(t, err, workflow.ErrVersionConflict)
}

func TestWorkflowService_Transition_RunsNotificationAction(t *testing.T) {
	notify, err := workflow.NewStateAction("RESOLVED", "notify-requester", workflow.NotificationConfig{
		Recipients: []string{"requester@example.com"},
	})
	require.NoError(t, err)

	f := newFixture(t)
	_, err = f.service.SaveDefinition(f.ctx, requestLifecycle(t, notify))
	require.NoError(t, err)

	e := f.entity("IN_PROGRESS")
	require.NoError(t, f.service.Transition(f.ctx, e, "RESOLVED"))
	require.Len(t, f.notifier.alerts, 1)
	assert.Equal(t, "Workflow action: notify-requester", f.notifier.alerts[0], "empty subject falls back to the action name")
}

func TestWorkflowService_Transition_NotificationFailureIsSwallowed(t *testing.T) {
	notify, err := workflow.NewStateAction("IN_PROGRESS", "notify", workflow.NotificationConfig{
		Recipients: []string{"requester@example.com"},
	})
	require.NoError(t, err)

	f := newFixture(t)
	f.notifier.fail = true
	_, err = f.service.SaveDefinition(f.ctx, requestLifecycle(t, notify))
	require.NoError(t, err)

	e := f.entity("OPEN")
	require.NoError(t, f.service.Transition(f.ctx, e, "IN_PROGRESS"))
	assert.Equal(t, "IN_PROGRESS", f.entities.statuses[e.EntityID()], "failed dispatch never blocks the transition")
}

func TestWorkflowService_Transition_RunsFieldUpdateAction(t *testing.T) {
	bump, err := workflow.NewStateAction("IN_PROGRESS", "bump-priority", workflow.FieldUpdateConfig{
		Field: "priority", Value: "HIGH",
	})
	require.NoError(t, err)
	unknown, err := workflow.NewStateAction("IN_PROGRESS", "set-missing", workflow.FieldUpdateConfig{
		Field: "no_such_field", Value: 1,
	})
	require.NoError(t, err)

	f := newFixture(t)
	_, err = f.service.SaveDefinition(f.ctx, requestLifecycle(t, bump, unknown))
	require.NoError(t, err)

	e := f.entity("OPEN")
	require.NoError(t, f.service.Transition(f.ctx, e, "IN_PROGRESS"))
	assert.Equal(t, "HIGH", f.entities.fields["priority"])
	assert.NotContains(t, f.entities.fields, "no_such_field", "unknown fields are skipped")
}

func TestWorkflowService_CanTransition_NoDefinition(t *testing.T) {
	f := newFixture(t)
	allowed, err := f.service.CanTransition(f.ctx, workflow.EntityTypeContract, "A", "B")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWorkflowService_StateChoices_NoDefinition(t *testing.T) {
	f := newFixture(t)
	choices, err := f.service.StateChoices(f.ctx, workflow.EntityTypeContract)
	require.NoError(t, err)
	assert.Empty(t, choices)
}

func TestWorkflowService_InitialStateCode(t *testing.T) {
	f := newFixture(t)

	code, err := f.service.InitialStateCode(f.ctx, workflow.EntityTypeRequest, "OPEN")
	require.NoError(t, err)
	assert.Equal(t, "OPEN", code, "fallback is used without a definition")

	_, err = f.service.SaveDefinition(f.ctx, requestLifecycle(t))
	require.NoError(t, err)

	code, err = f.service.InitialStateCode(f.ctx, workflow.EntityTypeRequest, "FALLBACK")
	require.NoError(t, err)
	assert.Equal(t, "OPEN", code)
}

func TestWorkflowService_RenderFlowchart(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SaveDefinition(f.ctx, requestLifecycle(t))
	require.NoError(t, err)

	chart, err := f.service.RenderFlowchart(f.ctx, workflow.EntityTypeRequest)
	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\n    OPEN -->|Start| IN_PROGRESS\n    IN_PROGRESS -->|Resolve| RESOLVED", chart)
}

func TestWorkflowService_RenderFlowchart_NoTransitions(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SaveDefinition(f.ctx, workflow.New("Empty", workflow.EntityTypeRequest))
	require.NoError(t, err)

	chart, err := f.service.RenderFlowchart(f.ctx, workflow.EntityTypeRequest)
	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\n    EMPTY[No transitions configured]", chart)
}
