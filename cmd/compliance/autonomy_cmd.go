package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	vamservices "github.com/orgmesh/platform-sdk/modules/vam/services"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
)

func newAutonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autonomy",
		Short: "Run one autonomy scoring pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, pool, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			defer closeModules()

			svc := app.Service(vamservices.AutonomyService{}).(*vamservices.AutonomyService)
			result, err := svc.ComputeAutonomyScores(ctx, time.Now())
			if err != nil {
				return err
			}
			configuration.Use().Logger().WithFields(logrus.Fields{
				"updated":  result.Updated,
				"released": result.Released,
			}).Info("autonomy scoring complete")
			return nil
		},
	}
}
