package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	slaservices "github.com/orgmesh/platform-sdk/modules/sla/services"
	vamservices "github.com/orgmesh/platform-sdk/modules/vam/services"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
	"github.com/orgmesh/platform-sdk/pkg/metrics"
	"github.com/orgmesh/platform-sdk/pkg/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run both evaluators on their schedules with an HTTP metrics endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, ctx, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			defer closeModules()

			breaches := app.Service(slaservices.BreachService{}).(*slaservices.BreachService)
			autonomy := app.Service(vamservices.AutonomyService{}).(*vamservices.AutonomyService)

			sched := scheduler.New(scheduler.Options{
				Pool:   pool,
				Logger: logger.WithField("component", "scheduler"),
			})
			if err := sched.Add(scheduler.Job{
				Name:     "sla-check",
				Interval: conf.Scheduler.SLACheckInterval,
				Run: func(ctx context.Context, now time.Time) error {
					_, err := breaches.CheckBreaches(ctx, now)
					return err
				},
			}); err != nil {
				return err
			}
			// The scoring pass must never overlap with itself across
			// instances; the advisory lock serializes it.
			if err := sched.Add(scheduler.Job{
				Name:         "autonomy",
				Interval:     conf.Scheduler.AutonomyInterval,
				SingleActive: true,
				Run: func(ctx context.Context, now time.Time) error {
					_, err := autonomy.ComputeAutonomyScores(ctx, now)
					return err
				},
			}); err != nil {
				return err
			}

			r := mux.NewRouter()
			for _, controller := range app.Controllers() {
				controller.Register(r)
			}
			if conf.Prometheus.Enabled {
				metrics.NewPrometheusController(conf.Prometheus.Path).Register(r)
			}
			r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", conf.ServerPort),
				Handler:           r,
				ReadHeaderTimeout: 3 * time.Second,
			}
			go func() {
				logger.Infof("listening on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("http server stopped")
					cancel()
				}
			}()

			err = sched.Run(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if sErr := srv.Shutdown(shutdownCtx); sErr != nil {
				logger.WithError(sErr).Warn("http shutdown failed")
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
