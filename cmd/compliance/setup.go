package main

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgmesh/platform-sdk/modules"
	"github.com/orgmesh/platform-sdk/pkg/application"
	"github.com/orgmesh/platform-sdk/pkg/composables"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
	"github.com/orgmesh/platform-sdk/pkg/eventbus"
)

// bootstrap builds the application with all modules loaded and the schema
// applied. The returned context carries the pool for the composables layer.
func bootstrap(ctx context.Context) (application.Application, context.Context, *pgxpool.Pool, error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "connect to database")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, nil, errors.Wrap(err, "load modules")
	}
	if err := app.Migrations().Apply(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, errors.Wrap(err, "apply migrations")
	}
	return app, composables.WithPool(ctx, pool), pool, nil
}

// closeModules releases resources modules hold outside the pool, such as
// the workflow cache's Redis connection.
func closeModules() {
	for _, m := range modules.BuiltInModules {
		if c, ok := m.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
