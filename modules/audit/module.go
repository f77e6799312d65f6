package audit

import (
	"github.com/orgmesh/platform-sdk/modules/audit/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/audit/services"
	"github.com/orgmesh/platform-sdk/pkg/application"
	"github.com/orgmesh/platform-sdk/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&persistence.MigrationFiles)

	conf := configuration.Use()
	service := services.NewAuditService(services.AuditServiceConfig{
		Events: persistence.NewAuditEventRepository(),
		Pool:   app.DB(),
		Logger: conf.Logger().WithField("module", m.Name()),
	})
	app.RegisterServices(service)
	app.EventPublisher().Subscribe(service.OnWorkflowTransitioned)
	app.EventPublisher().Subscribe(service.OnDefinitionSaved)

	return nil
}

func (m *Module) Name() string {
	return "audit"
}
