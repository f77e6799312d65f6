package modules

import (
	"github.com/orgmesh/platform-sdk/modules/audit"
	"github.com/orgmesh/platform-sdk/modules/sla"
	slapersistence "github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	"github.com/orgmesh/platform-sdk/modules/vam"
	"github.com/orgmesh/platform-sdk/modules/workflows"
	"github.com/orgmesh/platform-sdk/pkg/application"
)

var BuiltInModules = []application.Module{
	workflows.NewModule(slapersistence.NewEntityStore()),
	sla.NewModule(),
	vam.NewModule(),
	audit.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
