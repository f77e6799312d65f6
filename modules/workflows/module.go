package workflows

import (
	"github.com/redis/go-redis/v9"

	"github.com/orgmesh/platform-sdk/modules/workflows/domain/aggregates/workflow"
	"github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/workflows/services"
	"github.com/orgmesh/platform-sdk/pkg/application"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
	"github.com/orgmesh/platform-sdk/pkg/notifications"
)

func NewModule(entities workflow.EntityStore) application.Module {
	return &Module{entities: entities}
}

type Module struct {
	entities workflow.EntityStore
	redis    *redis.Client
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&persistence.MigrationFiles)

	conf := configuration.Use()
	repo := persistence.NewWorkflowRepository()
	var store workflow.Repository = repo
	if conf.WorkflowCacheEnabled {
		if m.redis == nil {
			m.redis = redis.NewClient(&redis.Options{Addr: conf.RedisURL})
		}
		store = persistence.NewCachedWorkflowRepository(repo, m.redis, conf.WorkflowCacheTTL)
	}

	app.RegisterServices(
		services.NewWorkflowService(services.WorkflowServiceConfig{
			Repo:     store,
			Entities: m.entities,
			Notifier: notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{
				URL:     conf.Notification.WebhookURL,
				Timeout: conf.Notification.WebhookTimeout,
				Logger:  conf.Logger().WithField("module", m.Name()),
			}),
			Publisher: app.EventPublisher(),
			Logger:    conf.Logger().WithField("module", m.Name()),
		}),
	)

	return nil
}

func (m *Module) Name() string {
	return "workflows"
}

// Close releases the cache connection. Safe when the cache is disabled.
func (m *Module) Close() error {
	if m.redis == nil {
		return nil
	}
	return m.redis.Close()
}
