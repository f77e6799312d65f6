package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/contract"
	"github.com/orgmesh/platform-sdk/modules/sla/domain/aggregates/slatemplate"
	slapersistence "github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/agreement"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/kpi"
	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
	vampersistence "github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
)

func newSeedCmd() *cobra.Command {
	var tenantFlag string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo data: two units, an SLA template, a contract, an agreement and a KPI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ctx, pool, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			defer closeModules()

			tenantID := uuid.New()
			if tenantFlag != "" {
				tenantID, err = uuid.Parse(tenantFlag)
				if err != nil {
					return errors.Wrap(err, "parse tenant id")
				}
			}
			if err := seedDemoData(composables.WithTenantID(ctx, tenantID), tenantID); err != nil {
				return err
			}
			configuration.Use().Logger().WithField("tenant_id", tenantID).Info("seed complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantFlag, "tenant", "", "tenant UUID to seed into (default: a fresh tenant)")
	return cmd
}

// seedDemoData writes one demo scenario in a single transaction: the IT
// unit provides a contract with SLA targets to the Operations unit and
// carries an agreement plus a KPI for the autonomy pass.
func seedDemoData(ctx context.Context, tenantID uuid.UUID) error {
	units := vampersistence.NewUnitRepository()
	templates := slapersistence.NewSLATemplateRepository()
	contracts := slapersistence.NewContractRepository()
	agreements := vampersistence.NewAgreementRepository()
	kpis := vampersistence.NewKPIRepository()

	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		ops := unit.New("ME-OPS", "Operations", unit.WithTenantID(tenantID))
		it := unit.New("ME-IT", "IT Services", unit.WithTenantID(tenantID))
		for _, u := range []*unit.Unit{ops, it} {
			if err := units.Save(txCtx, u); err != nil {
				return errors.Wrapf(err, "seed unit %s", u.Code())
			}
		}

		template := slatemplate.New(
			"Standard SLA",
			slatemplate.WithTenantID(tenantID),
			slatemplate.WithResponseHours(4),
			slatemplate.WithResolutionHours(24),
			slatemplate.WithAvailabilityPercent(decimal.NewFromFloat(99.5)),
		)
		if err := templates.Save(txCtx, template); err != nil {
			return errors.Wrap(err, "seed sla template")
		}

		c := contract.New(
			"C-0001",
			it.ID(),
			ops.ID(),
			contract.WithTenantID(tenantID),
			contract.WithSLATemplateID(template.ID()),
			contract.WithStartDate(time.Now()),
			contract.WithValue(decimal.NewFromInt(100000)),
		)
		if err := contracts.Save(txCtx, c); err != nil {
			return errors.Wrap(err, "seed contract")
		}

		a := agreement.New(
			"VAM-0001",
			it.ID(),
			agreement.WithTenantID(tenantID),
			agreement.WithTotal(decimal.NewFromInt(500000)),
		)
		if err := agreements.Save(txCtx, a); err != nil {
			return errors.Wrap(err, "seed agreement")
		}

		k := kpi.New(
			"KPI-DEL-01",
			"Delivery On-Time %",
			it.ID(),
			kpi.WithTenantID(tenantID),
			kpi.WithTarget(decimal.NewFromInt(95)),
		)
		if err := kpis.Save(txCtx, k); err != nil {
			return errors.Wrap(err, "seed kpi")
		}
		return nil
	})
}
