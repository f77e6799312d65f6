package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	slaservices "github.com/orgmesh/platform-sdk/modules/sla/services"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
)

func newSLACheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sla-check",
		Short: "Run one SLA breach evaluation pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, pool, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			defer closeModules()

			svc := app.Service(slaservices.BreachService{}).(*slaservices.BreachService)
			result, err := svc.CheckBreaches(ctx, time.Now())
			if err != nil {
				return err
			}
			configuration.Use().Logger().WithFields(logrus.Fields{
				"scanned": result.Scanned,
				"created": result.Created,
			}).Info("sla check complete")
			return nil
		},
	}
}
