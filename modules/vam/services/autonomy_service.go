package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
)

// BreachCounter supplies all-time SLA breach counts attributed to a unit as
// contract provider. The SLA module's breach repository satisfies it.
type BreachCounter interface {
	CountByProvider(ctx context.Context, tenantID, providerID uuid.UUID) (int64, error)
}

const releaseThreshold = 70

type AutonomyServiceConfig struct {
	Units      unit.Repository
	KPIs       kpi.Repository
	Agreements agreement.Repository
	Breaches   BreachCounter
	Logger     *logrus.Entry
}

// AutonomyService is the periodic scoring engine. Each pass is a full
// recompute over every unit on the platform; callers serialize invocations
// (the scheduler runs it under an advisory lock).
type AutonomyService struct {
	units      unit.Repository
	kpis       kpi.Repository
	agreements agreement.Repository
	breaches   BreachCounter
	logger     *logrus.Entry
}

func NewAutonomyService(cfg AutonomyServiceConfig) *AutonomyService {
	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = logrus.NewEntry(l)
	}
	return &AutonomyService{
		units:      cfg.Units,
		kpis:       cfg.KPIs,
		agreements: cfg.Agreements,
		breaches:   cfg.Breaches,
		logger:     logger,
	}
}

type ScoreResult struct {
	Updated  int
	Released int
}

// ComputeAutonomyScores rescores every unit: all-time breach count against
// KPI hits, level persisted unconditionally even when unchanged. Units
// scoring at or above the release threshold get their pending tranches
// released under active agreements; release carries the date of now and is
// never undone by later passes.
func (s *AutonomyService) ComputeAutonomyScores(ctx context.Context, now time.Time) (*ScoreResult, error) {
	units, err := s.units.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list units")
	}

	result := &ScoreResult{}
	m := getVAMMetrics()
	for _, u := range units {
		breachCount, err := s.breaches.CountByProvider(ctx, u.TenantID(), u.ID())
		if err != nil {
			return nil, errors.Wrapf(err, "count breaches for unit %s", u.Code())
		}
		kpis, err := s.kpis.ListByUnit(ctx, u.TenantID(), u.ID())
		if err != nil {
			return nil, errors.Wrapf(err, "list kpis for unit %s", u.Code())
		}
		hits := 0
		for _, k := range kpis {
			if k.Hit() {
				hits++
			}
		}

		score := unit.Score(int(breachCount), hits)
		level := unit.LevelForScore(score)
		if err := s.units.UpdateAutonomyLevel(ctx, u.TenantID(), u.ID(), level, now); err != nil {
			return nil, errors.Wrapf(err, "update autonomy level for unit %s", u.Code())
		}
		result.Updated++
		m.unitsScored.Inc()
		m.scores.Observe(float64(score))
		s.logger.WithFields(logrus.Fields{
			"unit":     u.Code(),
			"score":    score,
			"level":    level,
			"breaches": breachCount,
			"kpi_hits": hits,
		}).Debug("unit scored")

		if score < releaseThreshold {
			continue
		}
		released, err := s.releaseTranches(ctx, u, now)
		if err != nil {
			return nil, err
		}
		result.Released += released
	}
	return result, nil
}

func (s *AutonomyService) releaseTranches(ctx context.Context, u *unit.Unit, now time.Time) (int, error) {
	agreements, err := s.agreements.ListActiveByUnit(ctx, u.TenantID(), u.ID())
	if err != nil {
		return 0, errors.Wrapf(err, "list agreements for unit %s", u.Code())
	}
	released := 0
	for _, a := range agreements {
		for _, t := range a.PendingTranches() {
			if err := s.agreements.ReleaseTranche(ctx, u.TenantID(), t.ID(), now); err != nil {
				return released, errors.Wrapf(err, "release tranche %s", t.ID())
			}
			released++
			getVAMMetrics().tranchesReleased.Inc()
			s.logger.WithFields(logrus.Fields{
				"unit":      u.Code(),
				"agreement": a.Code(),
				"tranche":   t.ID(),
				"amount":    t.Amount(),
			}).Info("tranche released")
		}
	}
	return released, nil
}
