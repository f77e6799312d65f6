package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/orgmesh/platform-sdk/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"orgmesh"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type NotificationOptions struct {
	WebhookURL     string        `env:"TEAMS_WEBHOOK_URL"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	FromEmail      string        `env:"DEFAULT_FROM_EMAIL"`
}

type SchedulerOptions struct {
	SLACheckInterval time.Duration `env:"SLA_CHECK_INTERVAL" envDefault:"5m"`
	AutonomyInterval time.Duration `env:"AUTONOMY_INTERVAL" envDefault:"24h"`
}

type Configuration struct {
	Database     DatabaseOptions
	Prometheus   PrometheusOptions
	Notification NotificationOptions
	Scheduler    SchedulerOptions

	RedisURL             string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	WorkflowCacheEnabled bool          `env:"WORKFLOW_CACHE_ENABLED" envDefault:"false"`
	WorkflowCacheTTL     time.Duration `env:"WORKFLOW_CACHE_TTL" envDefault:"30s"`

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`

	// RLS enforcement mode (disabled/enforce).
	RLSEnforce string `env:"RLS_ENFORCE" envDefault:"disabled"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.validateRLS(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}

func (c *Configuration) validateRLS() error {
	mode := strings.ToLower(strings.TrimSpace(c.RLSEnforce))
	if mode == "" {
		mode = "disabled"
	}
	switch mode {
	case "disabled", "enforce":
	default:
		return fmt.Errorf("invalid RLS_ENFORCE=%q (expected disabled|enforce)", c.RLSEnforce)
	}
	return nil
}

func (c *Configuration) Unload() {
	if c.logFile != nil {
		_ = c.logFile.Close()
		c.logFile = nil
	}
}
