package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"reflect"
	"sort"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/pkg/eventbus"
)

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:        opts.Pool,
		eventBus:    opts.EventBus,
		logger:      opts.Logger,
		migrations:  NewMigrationManager(opts.Pool, opts.Logger),
		services:    map[reflect.Type]interface{}{},
		controllers: map[string]Controller{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	migrations  MigrationManager
	services    map[reflect.Type]interface{}
	controllers map[string]Controller
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventBus
}

func (app *application) Migrations() MigrationManager {
	return app.migrations
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) Controllers() []Controller {
	out := make([]Controller, 0, len(app.controllers))
	for _, c := range app.controllers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// ---- MigrationManager implementation ----

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

// Apply executes every embedded .sql file against the pool in registration
// order. Schema files are written to be idempotent (CREATE TABLE IF NOT
// EXISTS), so Apply is safe to run on every startup.
func (m *migrationManager) Apply(ctx context.Context) error {
	if m.pool == nil {
		return errors.New("migrations: no database pool configured")
	}
	for _, fsys := range m.schemas {
		files, err := listSQLFiles(fsys)
		if err != nil {
			return err
		}
		for _, file := range files {
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				return errors.Wrapf(err, "read schema %s", file)
			}
			if m.logger != nil {
				m.logger.WithField("file", file).Info("applying schema")
			}
			if _, err := m.pool.Exec(ctx, string(content)); err != nil {
				return errors.Wrapf(err, "apply schema %s", file)
			}
		}
	}
	return nil
}

func listSQLFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && len(path) > 4 && path[len(path)-4:] == ".sql" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk schema files")
	}
	sort.Strings(files)
	return files, nil
}
