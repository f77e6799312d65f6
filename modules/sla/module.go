package sla

import (
	"github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/sla/services"
	"github.com/orgmesh/platform-sdk/pkg/application"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
	"github.com/orgmesh/platform-sdk/pkg/notifications"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&persistence.MigrationFiles)

	conf := configuration.Use()
	app.RegisterServices(
		services.NewBreachService(services.BreachServiceConfig{
			Requests: persistence.NewServiceRequestRepository(),
			Breaches: persistence.NewBreachRepository(),
			Notifier: notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{
				URL:     conf.Notification.WebhookURL,
				Timeout: conf.Notification.WebhookTimeout,
				Logger:  conf.Logger().WithField("module", m.Name()),
			}),
			Logger: conf.Logger().WithField("module", m.Name()),
		}),
	)

	return nil
}

func (m *Module) Name() string {
	return "sla"
}
