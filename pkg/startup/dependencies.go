package startup

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/trellis/config"
	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/graph"
	"github.com/Ramsey-B/trellis/pkg/kafka"
	"github.com/Ramsey-B/trellis/pkg/middleware"
	"github.com/Ramsey-B/trellis/pkg/redis"
	"github.com/Ramsey-B/trellis/pkg/routes/behavior"
	"github.com/Ramsey-B/trellis/pkg/routes/company"
	"github.com/Ramsey-B/trellis/pkg/routes/health"
	"github.com/Ramsey-B/trellis/pkg/routes/investor"
	"github.com/Ramsey-B/trellis/pkg/routes/network"
	"github.com/Ramsey-B/trellis/pkg/routes/nli"
	"github.com/Ramsey-B/trellis/pkg/routes/overlap"
	"github.com/Ramsey-B/trellis/pkg/routes/relationship"
	"github.com/Ramsey-B/trellis/pkg/routes/scenario"
	"github.com/Ramsey-B/trellis/pkg/routes/suggested"
	"github.com/Ramsey-B/trellis/pkg/routes/termsheet"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Dependency names used for ordering via DependsOn
const (
	DependencyTracing  = "tracing"
	DependencyPostgres = "postgres"
	DependencyRedis    = "redis"
	DependencyGraph    = "graph"
	DependencyProducer = "kafka-producer"
	DependencyConsumer = "kafka-consumer"
	DependencyServer   = "http-server"
)

// TracingDependency installs the OTel tracer provider before anything that
// opens spans starts
type TracingDependency struct {
	cfg      config.Config
	shutdown func(context.Context) error
}

func NewTracingDependency(cfg config.Config) *TracingDependency {
	return &TracingDependency{cfg: cfg}
}

func (d *TracingDependency) GetName() string { return DependencyTracing }
func (d *TracingDependency) DependsOn() []string { return nil }

func (d *TracingDependency) Start(ctx context.Context) error {
	shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  d.cfg.AppName,
		Version:      d.cfg.Version,
		OTLPEnabled:  d.cfg.OTLPEnabled,
		OTLPProtocol: d.cfg.OTLPProtocol,
		OTLPEndpoint: d.cfg.OTLPEndpoint,
		OTLPInsecure: d.cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	d.shutdown = shutdown
	return nil
}

func (d *TracingDependency) Stop(ctx context.Context) error {
	if d.shutdown == nil {
		return nil
	}
	return d.shutdown(ctx)
}

// PostgresDependency connects the system of record and runs migrations. The
// process must not serve traffic on an unmigrated schema, so a migration
// failure fails startup.
type PostgresDependency struct {
	cfg    config.Config
	logger ectologger.Logger

	// DB is populated by Start; the harness registers it with the container
	DB *database.DatabaseInstance
}

func NewPostgresDependency(cfg config.Config, logger ectologger.Logger) *PostgresDependency {
	return &PostgresDependency{cfg: cfg, logger: logger}
}

func (d *PostgresDependency) GetName() string { return DependencyPostgres }
func (d *PostgresDependency) DependsOn() []string { return []string{DependencyTracing} }

func (d *PostgresDependency) Start(ctx context.Context) error {
	port, err := strconv.Atoi(d.cfg.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port %q: %w", d.cfg.DatabasePort, err)
	}

	db, err := database.Connect(ctx, database.Config{
		Host:            d.cfg.DatabaseHost,
		Port:            port,
		User:            d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	}, d.logger)
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(d.cfg.DatabaseName, driver); err != nil {
		db.Close()
		return err
	}

	d.DB = db
	return nil
}

func (d *PostgresDependency) Stop(ctx context.Context) error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// RedisDependency connects the suggested-feed cache
type RedisDependency struct {
	cfg    config.Config
	logger ectologger.Logger

	Client *redis.Client
}

func NewRedisDependency(cfg config.Config, logger ectologger.Logger) *RedisDependency {
	return &RedisDependency{cfg: cfg, logger: logger}
}

func (d *RedisDependency) GetName() string { return DependencyRedis }
func (d *RedisDependency) DependsOn() []string { return nil }

func (d *RedisDependency) Start(ctx context.Context) error {
	client, err := redis.NewClient(redis.Config{
		Host:     d.cfg.RedisHost,
		Port:     d.cfg.RedisPort,
		Password: d.cfg.RedisPassword,
		DB:       d.cfg.RedisDB,
	}, d.logger)
	if err != nil {
		return err
	}
	d.Client = client
	return nil
}

func (d *RedisDependency) Stop(ctx context.Context) error {
	if d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// GraphDependency connects the Memgraph mirror. The mirror is best effort at
// request time but must be reachable at startup when enabled, so a dead graph
// store surfaces in deploys instead of as silently stale mirrors.
type GraphDependency struct {
	cfg    config.Config
	logger ectologger.Logger

	Client *graph.Client
}

func NewGraphDependency(cfg config.Config, logger ectologger.Logger) *GraphDependency {
	return &GraphDependency{cfg: cfg, logger: logger}
}

func (d *GraphDependency) GetName() string { return DependencyGraph }
func (d *GraphDependency) DependsOn() []string { return nil }

func (d *GraphDependency) Start(ctx context.Context) error {
	if !d.cfg.GraphMirrorEnabled {
		d.logger.WithContext(ctx).Info("Graph mirror disabled, skipping connection")
		return nil
	}

	client, err := graph.NewClient(graph.Config{
		Host:     d.cfg.GraphDBHost,
		Port:     d.cfg.GraphDBPort,
		Username: d.cfg.GraphDBUser,
		Password: d.cfg.GraphDBPassword,
	}, d.logger)
	if err != nil {
		return err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		client.Close(ctx)
		return fmt.Errorf("graph connectivity check failed: %w", err)
	}
	d.Client = client
	return nil
}

func (d *GraphDependency) Stop(ctx context.Context) error {
	if d.Client == nil {
		return nil
	}
	return d.Client.Close(ctx)
}

// ProducerDependency owns the domain-event writer lifecycle
type ProducerDependency struct {
	cfg    config.Config
	logger ectologger.Logger

	Producer *kafka.Producer
}

func NewProducerDependency(cfg config.Config, logger ectologger.Logger) *ProducerDependency {
	return &ProducerDependency{cfg: cfg, logger: logger}
}

func (d *ProducerDependency) GetName() string { return DependencyProducer }
func (d *ProducerDependency) DependsOn() []string { return nil }

func (d *ProducerDependency) Start(ctx context.Context) error {
	d.Producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      d.cfg.KafkaBrokers,
		Topic:        d.cfg.KafkaEventsTopic,
		BatchSize:    d.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(d.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: d.cfg.KafkaRequiredAcks,
		Compression:  d.cfg.KafkaCompression,
	}, d.logger)
	return nil
}

func (d *ProducerDependency) Stop(ctx context.Context) error {
	if d.Producer == nil {
		return nil
	}
	return d.Producer.Close()
}

// ConsumerDependency runs the interaction intake consumer. The handler is
// supplied by the harness because the processor behind it needs repositories
// from the container.
type ConsumerDependency struct {
	cfg     config.Config
	logger  ectologger.Logger
	handler kafka.MessageHandler

	consumer *kafka.Consumer
}

func NewConsumerDependency(cfg config.Config, logger ectologger.Logger, handler kafka.MessageHandler) *ConsumerDependency {
	return &ConsumerDependency{cfg: cfg, logger: logger, handler: handler}
}

func (d *ConsumerDependency) GetName() string { return DependencyConsumer }

func (d *ConsumerDependency) DependsOn() []string {
	return []string{DependencyPostgres, DependencyProducer}
}

func (d *ConsumerDependency) Start(ctx context.Context) error {
	if !d.cfg.KafkaConsumerEnabled {
		d.logger.WithContext(ctx).Info("Kafka consumer disabled, skipping")
		return nil
	}
	d.consumer = kafka.NewConsumer(d.cfg, d.logger, d.handler)
	return d.consumer.Start(ctx)
}

func (d *ConsumerDependency) Stop(ctx context.Context) error {
	if d.consumer == nil {
		return nil
	}
	return d.consumer.Stop()
}

// ServerDependency mounts the HTTP surface and starts serving. It comes up
// last and flips readiness once the listener is running.
type ServerDependency struct {
	cfg      config.Config
	logger   ectologger.Logger
	postgres *PostgresDependency
	redis    *RedisDependency
	graph    *GraphDependency

	echo    *echo.Echo
	checker *health.Checker
}

func NewServerDependency(cfg config.Config, logger ectologger.Logger, postgres *PostgresDependency, redis *RedisDependency, graph *GraphDependency) *ServerDependency {
	return &ServerDependency{cfg: cfg, logger: logger, postgres: postgres, redis: redis, graph: graph}
}

func (d *ServerDependency) GetName() string { return DependencyServer }

func (d *ServerDependency) DependsOn() []string {
	deps := []string{DependencyTracing, DependencyPostgres}
	if d.redis != nil {
		deps = append(deps, DependencyRedis)
	}
	if d.graph != nil {
		deps = append(deps, DependencyGraph)
	}
	return deps
}

func (d *ServerDependency) Start(ctx context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(d.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(d.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(d.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(d.cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = d.cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(d.logger)
	e.Use(otelecho.Middleware(d.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(d.logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.cfg.AllowOrigins,
		AllowMethods: d.cfg.AllowMethods,
	}))

	RegisterRoutes(e)

	var cache health.Pinger
	if d.redis != nil && d.redis.Client != nil {
		cache = d.redis.Client
	}
	var mirror interface {
		VerifyConnectivity(ctx context.Context) error
	}
	if d.graph != nil && d.graph.Client != nil {
		mirror = d.graph.Client
	}
	d.checker = health.NewChecker(d.postgres.DB.DB, cache, mirror, d.cfg.Version)
	d.checker.RegisterRoutes(e)

	d.echo = e
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", d.cfg.Port)); err != nil && err != http.ErrServerClosed {
			d.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	d.checker.SetReady(true)
	d.logger.WithContext(ctx).WithField("port", d.cfg.Port).Info("HTTP server listening")
	return nil
}

func (d *ServerDependency) Stop(ctx context.Context) error {
	if d.checker != nil {
		d.checker.SetReady(false)
	}
	if d.echo == nil {
		return nil
	}
	return d.echo.Shutdown(ctx)
}

// RegisterRoutes mounts every route group on the echo instance. All domain
// routes are company scoped under /api/v1/companies/:companyID.
func RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	companies := api.Group("/companies")
	company.Register(companies)

	scoped := companies.Group("/:companyID")
	investor.Register(scoped.Group("/investors"))
	suggested.Register(scoped.Group("/suggested-investors"))
	overlap.Register(scoped.Group("/overlap"))
	relationship.Register(scoped.Group("/relationships"))
	network.Register(scoped)
	behavior.Register(scoped)
	termsheet.Register(scoped)
	scenario.Register(scoped)
	nli.Register(scoped)
}
