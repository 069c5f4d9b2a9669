// Package bootstrap assembles the enrichment and evaluation services from
// configuration. Backing stores are optional: without a DSN, Redis URL or
// brokers the process runs on in-memory stores with no cache and no stream.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"

	"mutafriches/internal/enrichment"
	"mutafriches/internal/enrichment/adapters/httpapi"
	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/enricher"
	"mutafriches/internal/enrichment/georisk"
	enrichmetrics "mutafriches/internal/enrichment/metrics"
	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/enrichment/providers"
	"mutafriches/internal/enrichment/publisher"
	enrichstore "mutafriches/internal/enrichment/store"
	"mutafriches/internal/evaluation"
	evalmetrics "mutafriches/internal/evaluation/metrics"
	evalstore "mutafriches/internal/evaluation/store"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
	"mutafriches/internal/platform/config"
	"mutafriches/internal/platform/kafka"
	"mutafriches/internal/platform/postgres"
	"mutafriches/internal/platform/redis"
)

const tracerName = "mutafriches/enrichment"

// App holds the wired services and the resources they own.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Enrichment *enrichment.Service
	Evaluation *evaluation.Service
	Recorder   *audit.Recorder

	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

// New opens the configured backends and wires both services. On error every
// resource opened so far is released.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}
	if err := app.wire(ctx); err != nil {
		_ = app.closeResources()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	provs, err := config.LoadProviders(cfg.ProvidersFile)
	if err != nil {
		return err
	}

	if a.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return err
	}
	if a.db != nil && cfg.Postgres.MigrateOnStart {
		if err := postgres.Migrate(ctx, a.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if a.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return err
	}
	if a.kafka, err = kafka.NewClient(cfg.Kafka); err != nil {
		return err
	}
	if a.kafka != nil {
		if err := kafka.EnsureTopic(ctx, a.kafka, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return err
		}
	}

	m := enrichmetrics.New()
	repos, reader := a.auditRepositories()
	a.Recorder = audit.NewRecorder(repos,
		audit.WithLogger(a.Logger),
		audit.WithFailureCounter(m),
		audit.WithCapacity(cfg.AuditQueue),
	)

	pipe := newPipeline(provs, a.Logger, m, a.Recorder)
	enrichOpts := []enrichment.Option{
		enrichment.WithLogger(a.Logger),
		enrichment.WithCacheObserver(m),
		enrichment.WithAuditReader(reader),
	}
	if a.redis != nil {
		enrichOpts = append(enrichOpts,
			enrichment.WithCache(enrichstore.NewRedisParcelCache(a.redis.Client, cfg.Cache.EnrichmentTTL)))
	}
	a.Enrichment = enrichment.NewService(pipe, enrichOpts...)

	a.Evaluation = evaluation.NewService(
		a.evaluationRepository(),
		mutability.NewScorer(mutability.DefaultMatrix()),
		mutability.Estimator{},
		evaluation.WithLogger(a.Logger),
		evaluation.WithMetrics(evalmetrics.New()),
		evaluation.WithEnricher(a.Enrichment),
		evaluation.WithCacheTTL(cfg.Cache.EvaluationTTL),
	)

	a.Logger.InfoContext(ctx, "services wired",
		"postgres", a.db != nil,
		"redis", a.redis != nil,
		"kafka", a.kafka != nil,
		"providers", len(provs),
	)
	return nil
}

// auditRepositories returns the recorder sinks and the store that serves the
// audit trail back. Kafka is write-only.
func (a *App) auditRepositories() ([]audit.Repository, audit.Reader) {
	var (
		repos  []audit.Repository
		reader audit.Reader
	)
	if a.db != nil {
		pg := enrichstore.NewAuditPostgres(a.db)
		repos, reader = append(repos, pg), pg
	} else {
		mem := audit.NewMemoryRepository()
		repos, reader = append(repos, mem), mem
	}
	if a.kafka != nil {
		repos = append(repos, publisher.NewKafka(a.kafka, a.Config.Kafka.AuditTopic))
	}
	return repos, reader
}

func (a *App) evaluationRepository() evaluation.Repository {
	if a.db != nil {
		return evalstore.NewPostgres(a.db)
	}
	return evalstore.NewInMemory()
}

func newPipeline(provs config.Providers, logger *slog.Logger, m *enrichmetrics.Metrics, rec *audit.Recorder) *pipeline.Pipeline {
	client := func(name string) *providers.Client {
		return providerClient(name, provs[name], logger, m)
	}
	opt := enricher.WithLogger(logger)

	geoRisks := provs[config.ProviderGeoRisks]
	datasets := httpapi.NewDatasets(func(id parcel.GeoRiskSource) httpapi.JSONGetter {
		return providerClient(config.ProviderGeoRisks+"."+string(id), geoRisks, logger, m)
	})
	fanOut := georisk.New(datasets, georisk.WithLogger(logger), georisk.WithObserver(m))

	cadastre := enricher.NewCadastre(
		httpapi.NewCadastre(client(config.ProviderCadastre)),
		httpapi.NewBuildings(client(config.ProviderBuildings)),
		opt,
	)
	stages := pipeline.Stages{
		Energy: enricher.NewEnergy(httpapi.NewGrid(client(config.ProviderGrid)), opt),
		Transport: enricher.NewTransport(
			httpapi.NewTransit(client(config.ProviderTransit)),
			httpapi.NewTownHalls(client(config.ProviderTownHalls)),
			httpapi.NewRoads(client(config.ProviderRoads)),
			opt,
		),
		Urbanism: enricher.NewUrbanism(
			httpapi.NewHousing(client(config.ProviderHousing)),
			httpapi.NewAmenities(client(config.ProviderAmenities)),
			opt,
		),
		NaturalRisk: enricher.NewNaturalRisk(
			httpapi.NewClay(client(config.ProviderClay)),
			httpapi.NewCavities(client(config.ProviderCavities)),
			opt,
		),
		TechnologicalRisk: enricher.NewTechnologicalRisk(
			httpapi.NewPollutedSites(client(config.ProviderPollutedSite)),
			httpapi.NewInstallations(client(config.ProviderInstallation)),
			opt,
		),
		GeoRisk: enricher.NewGeoRisk(fanOut, opt),
		Zoning: enricher.NewZoning(
			httpapi.NewEnvironment(client(config.ProviderEnvironment)),
			httpapi.NewHeritage(client(config.ProviderHeritage)),
			httpapi.NewUrbanPlan(client(config.ProviderUrbanPlan)),
			opt,
		),
	}

	return pipeline.New(cadastre, stages,
		pipeline.WithLogger(logger),
		pipeline.WithAuditRecorder(rec),
		pipeline.WithMetrics(m),
		pipeline.WithTracer(otel.Tracer(tracerName)),
	)
}

func providerClient(name string, p config.Provider, logger *slog.Logger, m *enrichmetrics.Metrics) *providers.Client {
	return providers.NewClient(providers.Config{
		Name:          name,
		BaseURL:       p.BaseURL,
		Timeout:       p.Timeout.Std(),
		RatePerSecond: p.RatePerSecond,
		Burst:         p.Burst,
	}, providers.WithLogger(logger), providers.WithObserver(m))
}

// Health pings the configured backends.
func (a *App) Health(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close drains pending audit logs, cache writes and evaluation writes, then
// releases the backends.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Recorder != nil {
		if err := a.Recorder.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("audit recorder: %w", err))
		}
	}
	if a.Enrichment != nil {
		if err := a.Enrichment.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("enrichment cache writes: %w", err))
		}
	}
	if a.Evaluation != nil {
		if err := a.Evaluation.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("evaluation writes: %w", err))
		}
	}
	errs = append(errs, a.closeResources())
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
