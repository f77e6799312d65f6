package application

import (
	"context"
	"embed"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgmesh/platform-sdk/pkg/eventbus"
)

// Module is a self-registering feature unit (workflows, sla, vam).
type Module interface {
	Name() string
	Register(app Application) error
}

// Controller exposes an HTTP surface (metrics, health) on the shared router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// MigrationManager collects embedded schema files from modules and applies
// them in registration order.
type MigrationManager interface {
	RegisterSchema(fs *embed.FS)
	Apply(ctx context.Context) error
}

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Migrations() MigrationManager

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller
}
