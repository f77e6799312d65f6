package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/slatemplate"
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/sla/services"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendAlert(_ context.Context, _, _ string, _ []string) bool {
	return true
}

func (n *recordingNotifier) SendWebhookMessage(_ context.Context, text string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return true
}

type slaFixture struct {
	ctx      context.Context
	tenantID uuid.UUID
	store    *persistence.InmemSLAStore
	notifier *recordingNotifier
	service  *services.BreachService
	contract *contract.Contract
}

// newSLAFixture seeds one tenant with a 5h/5h template and a contract
// bound to it.
func newSLAFixture(t *testing.T) *slaFixture {
	t.Helper()
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)
	store := persistence.NewInmemSLAStore()

	template := slatemplate.New(
		"Gold",
		slatemplate.WithTenantID(tenantID),
		slatemplate.WithResponseHours(5),
		slatemplate.WithResolutionHours(5),
	)
	require.NoError(t, store.Templates().Save(ctx, template))

	c := contract.New(
		"CTR-001",
		uuid.New(),
		uuid.New(),
		contract.WithTenantID(tenantID),
		contract.WithSLATemplateID(template.ID()),
	)
	require.NoError(t, store.Contracts().Save(ctx, c))

	notifier := &recordingNotifier{}
	service := services.NewBreachService(services.BreachServiceConfig{
		Requests: store.Requests(),
		Breaches: store.Breaches(),
		Notifier: notifier,
	})
	return &slaFixture{
		ctx:      ctx,
		tenantID: tenantID,
		store:    store,
		notifier: notifier,
		service:  service,
		contract: c,
	}
}

func (f *slaFixture) openRequest(t *testing.T, title string, openedAt time.Time, opts ...servicerequest.Option) *servicerequest.ServiceRequest {
	t.Helper()
	opts = append([]servicerequest.Option{
		servicerequest.WithTenantID(f.tenantID),
		servicerequest.WithOpenedAt(openedAt),
	}, opts...)
	req := servicerequest.New(title, f.contract.ID(), opts...)
	require.NoError(t, f.store.Requests().Save(f.ctx, req))
	return req
}

func TestBreachService_CheckBreaches_WithinTarget(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-4*time.Hour))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, f.notifier.messages)
}

func TestBreachService_CheckBreaches_ExactTargetIsNotABreach(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-5*time.Hour))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created, "a target is breached only when strictly exceeded")
}

func TestBreachService_CheckBreaches_OverdueRequest(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-6*time.Hour))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created, "both response and resolution targets are overdue")

	breaches, err := f.store.Breaches().GetAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, breaches, 2)
	kinds := []breach.Kind{breaches[0].Kind(), breaches[1].Kind()}
	assert.ElementsMatch(t, []breach.Kind{breach.KindResponse, breach.KindResolution}, kinds)
	for _, b := range breaches {
		assert.Equal(t, now, b.BreachAt())
		assert.Equal(t, map[string]any{"target_hours": 5}, b.Details())
	}

	assert.Contains(t, f.notifier.messages, "SLA BREACH (RESPONSE): Printer down | Contract CTR-001")
	assert.Contains(t, f.notifier.messages, "SLA BREACH (RESOLUTION): Printer down | Contract CTR-001")
}

func TestBreachService_CheckBreaches_Idempotent(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-6*time.Hour))

	first, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := f.service.CheckBreaches(f.ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Scanned)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, f.notifier.messages, 2, "alerts fire only on the run that records the breach")
}

func TestBreachService_CheckBreaches_RespondedRequest(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-6*time.Hour),
		servicerequest.WithFirstResponseAt(now.Add(-5*time.Hour)))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created, "resolution is still overdue after a response")

	breaches, err := f.store.Breaches().GetAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, breaches, 1)
	assert.Equal(t, breach.KindResolution, breaches[0].Kind())
}

func TestBreachService_CheckBreaches_ResolvedRequestIsSkipped(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()
	f.openRequest(t, "Printer down", now.Add(-48*time.Hour),
		servicerequest.WithStatus(servicerequest.StatusResolved),
		servicerequest.WithResolvedAt(now.Add(-time.Hour)))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Equal(t, 0, result.Created)
}

func TestBreachService_CheckBreaches_ZeroTargetMeansNoTarget(t *testing.T) {
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)
	store := persistence.NewInmemSLAStore()

	template := slatemplate.New(
		"Availability only",
		slatemplate.WithTenantID(tenantID),
		slatemplate.WithResponseHours(0),
		slatemplate.WithResolutionHours(0),
	)
	require.NoError(t, store.Templates().Save(ctx, template))
	c := contract.New("CTR-AVAIL", uuid.New(), uuid.New(),
		contract.WithTenantID(tenantID),
		contract.WithSLATemplateID(template.ID()),
	)
	require.NoError(t, store.Contracts().Save(ctx, c))

	now := time.Now()
	req := servicerequest.New("Ancient", c.ID(),
		servicerequest.WithTenantID(tenantID),
		servicerequest.WithOpenedAt(now.Add(-1000*time.Hour)),
	)
	require.NoError(t, store.Requests().Save(ctx, req))

	service := services.NewBreachService(services.BreachServiceConfig{
		Requests: store.Requests(),
		Breaches: store.Breaches(),
	})
	result, err := service.CheckBreaches(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Created, "a zero-hour target is no target at all")
}

func TestBreachService_CheckBreaches_NoTemplate(t *testing.T) {
	f := newSLAFixture(t)
	now := time.Now()

	bare := contract.New("CTR-002", uuid.New(), uuid.New(), contract.WithTenantID(f.tenantID))
	require.NoError(t, f.store.Contracts().Save(f.ctx, bare))
	req := servicerequest.New("Orphan", bare.ID(),
		servicerequest.WithTenantID(f.tenantID),
		servicerequest.WithOpenedAt(now.Add(-100*time.Hour)),
	)
	require.NoError(t, f.store.Requests().Save(f.ctx, req))

	result, err := f.service.CheckBreaches(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Created, "contracts without targets are scanned but never breach")
}
