package vam

import (
	slapersistence "github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam/services"
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
	app.RegisterServices(
		services.NewAutonomyService(services.AutonomyServiceConfig{
			Units:      persistence.NewUnitRepository(),
			KPIs:       persistence.NewKPIRepository(),
			Agreements: persistence.NewAgreementRepository(),
			Breaches:   slapersistence.NewBreachRepository(),
			Logger:     conf.Logger().WithField("module", m.Name()),
		}),
	)

	return nil
}

func (m *Module) Name() string {
	return "vam"
}
