package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/breach"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/servicerequest"
	"github.com/orgmesh/platform-sdk/pkg/notifications"
)

type BreachServiceConfig struct {
	Requests servicerequest.Repository
	Breaches breach.Repository
	Notifier notifications.Notifier
	Logger   *logrus.Entry
}

// BreachService is the periodic SLA evaluator. CheckBreaches is safe to
// invoke repeatedly and concurrently: the breach repository deduplicates on
// (tenant, request, kind), so reruns converge on the same set of events.
type BreachService struct {
	requests servicerequest.Repository
	breaches breach.Repository
	notifier notifications.Notifier
	logger   *logrus.Entry
}

func NewBreachService(cfg BreachServiceConfig) *BreachService {
	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = logrus.NewEntry(l)
	}
	return &BreachService{
		requests: cfg.Requests,
		breaches: cfg.Breaches,
		notifier: cfg.Notifier,
		logger:   logger,
	}
}

type BreachCheckResult struct {
	Scanned int
	Created int
}

// CheckBreaches scans every unresolved request across all tenants against
// its contract's SLA targets as of now. A target is breached when the
// fractional hours since openedAt strictly exceed it and the corresponding
// milestone timestamp is still unset; an unset or zero target does not
// breach. Each breach is recorded once; the webhook alert fires only on the
// run that records it.
func (s *BreachService) CheckBreaches(ctx context.Context, now time.Time) (*BreachCheckResult, error) {
	items, err := s.requests.ListOpenWithTargets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list open requests")
	}

	result := &BreachCheckResult{}
	m := getSLAMetrics()
	for _, item := range items {
		result.Scanned++
		m.requestsScanned.Inc()
		if !item.HasTemplate {
			continue
		}
		req := item.Request
		elapsed := now.Sub(req.OpenedAt()).Seconds() / 3600.0

		if hasTarget(item.ResponseHours) && req.FirstResponseAt() == nil && elapsed > float64(*item.ResponseHours) {
			created, err := s.record(ctx, item, breach.KindResponse, *item.ResponseHours, now)
			if err != nil {
				return nil, err
			}
			if created {
				result.Created++
			}
		}

		if hasTarget(item.ResolutionHours) && req.ResolvedAt() == nil && elapsed > float64(*item.ResolutionHours) {
			created, err := s.record(ctx, item, breach.KindResolution, *item.ResolutionHours, now)
			if err != nil {
				return nil, err
			}
			if created {
				result.Created++
			}
		}
	}
	return result, nil
}

func hasTarget(hours *int) bool {
	return hours != nil && *hours > 0
}

func (s *BreachService) record(ctx context.Context, item servicerequest.OpenRequest, kind breach.Kind, targetHours int, now time.Time) (bool, error) {
	req := item.Request
	b := breach.New(
		req.TenantID(),
		req.ID(),
		kind,
		breach.WithBreachAt(now),
		breach.WithDetails(map[string]any{"target_hours": targetHours}),
	)
	_, created, err := s.breaches.GetOrCreate(ctx, b)
	if err != nil {
		return false, errors.Wrapf(err, "record %s breach for request %s", kind, req.ID())
	}
	if !created {
		return false, nil
	}

	getSLAMetrics().breachesCreated.WithLabelValues(string(kind)).Inc()
	text := fmt.Sprintf("SLA BREACH (%s): %s | Contract %s", kind, req.Title(), item.ContractCode)
	if s.notifier != nil && !s.notifier.SendWebhookMessage(ctx, text) {
		s.logger.WithFields(logrus.Fields{
			"request_id": req.ID(),
			"kind":       kind,
		}).Warn("breach alert delivery failed")
	}
	return true, nil
}
