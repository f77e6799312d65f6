package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	slapersistence "github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam/services"
	"github.com/orgmesh/platform-sdk/pkg/composables"
)

type vamFixture struct {
	ctx      context.Context
	tenantID uuid.UUID
	vam      *persistence.InmemVAMStore
	sla      *slapersistence.InmemSLAStore
	service  *services.AutonomyService
	unit     *unit.Unit
}

func newVAMFixture(t *testing.T) *vamFixture {
	t.Helper()
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)
	vamStore := persistence.NewInmemVAMStore()
	slaStore := slapersistence.NewInmemSLAStore()

	u := unit.New("OPS", "Operations", unit.WithTenantID(tenantID))
	require.NoError(t, vamStore.Units().Save(ctx, u))

	service := services.NewAutonomyService(services.AutonomyServiceConfig{
		Units:      vamStore.Units(),
		KPIs:       vamStore.KPIs(),
		Agreements: vamStore.Agreements(),
		Breaches:   slaStore.Breaches(),
	})
	return &vamFixture{
		ctx:      ctx,
		tenantID: tenantID,
		vam:      vamStore,
		sla:      slaStore,
		service:  service,
		unit:     u,
	}
}

// recordBreaches attributes n resolution breaches to the unit as contract
// provider, each on its own request.
func (f *vamFixture) recordBreaches(t *testing.T, n int) {
	t.Helper()
	c := contract.New("CTR-OPS", f.unit.ID(), uuid.New(), contract.WithTenantID(f.tenantID))
	require.NoError(t, f.sla.Contracts().Save(f.ctx, c))
	for i := 0; i < n; i++ {
		req := servicerequest.New("Incident", c.ID(), servicerequest.WithTenantID(f.tenantID))
		require.NoError(t, f.sla.Requests().Save(f.ctx, req))
		_, created, err := f.sla.Breaches().GetOrCreate(f.ctx, breach.New(f.tenantID, req.ID(), breach.KindResolution))
		require.NoError(t, err)
		require.True(t, created)
	}
}

func (f *vamFixture) addKPIs(t *testing.T, hits, misses int) {
	t.Helper()
	ten := decimal.NewFromInt(10)
	for i := 0; i < hits; i++ {
		k := kpi.New(string(rune('A'+i)), "Hit KPI", f.unit.ID(),
			kpi.WithTenantID(f.tenantID),
			kpi.WithTarget(ten),
			kpi.WithActual(ten),
		)
		require.NoError(t, f.vam.KPIs().Save(f.ctx, k))
	}
	for i := 0; i < misses; i++ {
		k := kpi.New(string(rune('M'+i)), "Missed KPI", f.unit.ID(),
			kpi.WithTenantID(f.tenantID),
			kpi.WithTarget(ten),
			kpi.WithActual(decimal.NewFromInt(3)),
		)
		require.NoError(t, f.vam.KPIs().Save(f.ctx, k))
	}
}

func (f *vamFixture) activeAgreement(t *testing.T, tranches ...agreement.Tranche) *agreement.Agreement {
	t.Helper()
	a := agreement.New("AGR-001", f.unit.ID(),
		agreement.WithTenantID(f.tenantID),
		agreement.WithStatus(agreement.StatusActive),
		agreement.WithTranches(tranches...),
	)
	require.NoError(t, f.vam.Agreements().Save(f.ctx, a))
	return a
}

func (f *vamFixture) reloadUnit(t *testing.T) *unit.Unit {
	t.Helper()
	u, err := f.vam.Units().GetByID(f.ctx, f.unit.ID())
	require.NoError(t, err)
	return u
}

func TestAutonomyService_ComputeAutonomyScores(t *testing.T) {
	f := newVAMFixture(t)
	f.recordBreaches(t, 2)
	f.addKPIs(t, 3, 1)
	now := time.Now()

	result, err := f.service.ComputeAutonomyScores(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	// 100 - 10*2 + 5*3 = 95
	assert.Equal(t, unit.AutonomyHigh, f.reloadUnit(t).AutonomyLevel())
}

func TestAutonomyService_ComputeAutonomyScores_ReleasesTranches(t *testing.T) {
	f := newVAMFixture(t)
	f.addKPIs(t, 1, 0)
	a := f.activeAgreement(t,
		agreement.NewTranche(decimal.NewFromInt(50000)),
		agreement.NewTranche(decimal.NewFromInt(25000)),
	)
	now := time.Now()

	result, err := f.service.ComputeAutonomyScores(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Released)

	reloaded, err := f.vam.Agreements().GetByID(f.ctx, a.ID())
	require.NoError(t, err)
	assert.Empty(t, reloaded.PendingTranches())
	for _, tr := range reloaded.Tranches() {
		require.NotNil(t, tr.ReleaseDate())
		assert.Equal(t, now, *tr.ReleaseDate())
	}
}

func TestAutonomyService_ComputeAutonomyScores_BelowThresholdHoldsTranches(t *testing.T) {
	f := newVAMFixture(t)
	f.recordBreaches(t, 5) // 100 - 50 = 50, STANDARD
	a := f.activeAgreement(t, agreement.NewTranche(decimal.NewFromInt(50000)))

	result, err := f.service.ComputeAutonomyScores(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Released)
	assert.Equal(t, unit.AutonomyStandard, f.reloadUnit(t).AutonomyLevel())

	reloaded, err := f.vam.Agreements().GetByID(f.ctx, a.ID())
	require.NoError(t, err)
	assert.Len(t, reloaded.PendingTranches(), 1)
}

func TestAutonomyService_ComputeAutonomyScores_DraftAgreementIsIgnored(t *testing.T) {
	f := newVAMFixture(t)
	a := agreement.New("AGR-DRAFT", f.unit.ID(),
		agreement.WithTenantID(f.tenantID),
		agreement.WithTranches(agreement.NewTranche(decimal.NewFromInt(50000))),
	)
	require.NoError(t, f.vam.Agreements().Save(f.ctx, a))

	result, err := f.service.ComputeAutonomyScores(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Released, "tranches release only under active agreements")
}

func TestAutonomyService_ComputeAutonomyScores_ReleaseIsOneWay(t *testing.T) {
	f := newVAMFixture(t)
	a := f.activeAgreement(t, agreement.NewTranche(decimal.NewFromInt(50000)))
	releasedAt := time.Now()

	result, err := f.service.ComputeAutonomyScores(f.ctx, releasedAt)
	require.NoError(t, err)
	require.Equal(t, 1, result.Released)

	// The unit's score collapses after the release.
	f.recordBreaches(t, 6)
	later, err := f.service.ComputeAutonomyScores(f.ctx, releasedAt.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, later.Released)
	assert.Equal(t, unit.AutonomyRestricted, f.reloadUnit(t).AutonomyLevel())

	reloaded, err := f.vam.Agreements().GetByID(f.ctx, a.ID())
	require.NoError(t, err)
	require.Len(t, reloaded.Tranches(), 1)
	tr := reloaded.Tranches()[0]
	assert.Equal(t, agreement.TrancheReleased, tr.Status())
	require.NotNil(t, tr.ReleaseDate())
	assert.Equal(t, releasedAt, *tr.ReleaseDate(), "later passes never touch a released tranche")
}
