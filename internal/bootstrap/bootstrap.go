package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	httpadapter "github.com/simplycomply/compliance-api/internal/adapters/http"
	"github.com/simplycomply/compliance-api/internal/catalog"
	"github.com/simplycomply/compliance-api/internal/config"
	"github.com/simplycomply/compliance-api/internal/core/ports"
	"github.com/simplycomply/compliance-api/internal/core/usecase"
	"github.com/simplycomply/compliance-api/internal/infrastructure/auth"
	"github.com/simplycomply/compliance-api/internal/infrastructure/export/xlsx"
	"github.com/simplycomply/compliance-api/internal/infrastructure/lock/redislocker"
	"github.com/simplycomply/compliance-api/internal/infrastructure/payment/stripe"
	"github.com/simplycomply/compliance-api/internal/infrastructure/queue/nats"
	"github.com/simplycomply/compliance-api/internal/infrastructure/repository/memory"
	"github.com/simplycomply/compliance-api/internal/infrastructure/repository/postgres"
	"github.com/simplycomply/compliance-api/internal/infrastructure/resilience"
	"github.com/simplycomply/compliance-api/internal/infrastructure/storage/gcs"
	"github.com/simplycomply/compliance-api/internal/infrastructure/storage/localfs"
	"github.com/simplycomply/compliance-api/internal/infrastructure/storage/s3store"
	"github.com/simplycomply/compliance-api/internal/observability/metrics"
)

const serviceName = "compliance-api"

// Repositories is the backend-neutral view of the collection set.
type Repositories struct {
	Users         ports.UserRepository
	Businesses    ports.BusinessRepository
	Items         ports.ComplianceItemRepository
	Scores        ports.ScoreRepository
	Employees     ports.EmployeeRepository
	Requirements  ports.RequirementRepository
	Notifications ports.NotificationRepository
	Transactions  ports.TransactionRepository
	Documents     ports.DocumentRepository
}

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics
	Repos   Repositories

	Services httpadapter.Services
	Scores   ports.ScoreRecomputer

	closers []func()
}

// New wires the API process. Optional collaborators (Redis, NATS) are skipped
// when their URL is empty.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics.NewHTTPServerMetrics(serviceName)}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	executor := resilience.NewExecutor(resilienceConfig(cfg)).WithStateObserver(app.Metrics.ObserveBreaker)

	repos, err := app.openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Repos = repos

	storage, err := app.openStorage(ctx, cfg, executor)
	if err != nil {
		return nil, err
	}

	var locker ports.BusinessLocker
	if cfg.RedisURL != "" {
		redisLocker, err := redislocker.Connect(ctx, cfg.RedisURL, time.Duration(cfg.LockTTLSeconds)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("init business locker: %w", err)
		}
		app.closers = append(app.closers, func() { _ = redisLocker.Close() })
		locker = redisLocker
		slog.Info("business_locker_enabled", "backend", "redis")
	}

	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		events = publisher
		slog.Info("event_publisher_enabled", "backend", "nats", "prefix", cfg.NATSSubjectPrefix)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTAlgorithm, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	hasher := auth.NewBcryptHasher(0)
	gateway := stripe.New(stripe.Config{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		BaseURL:       cfg.StripeAPIURL,
	}, executor)

	cat := catalog.Default()
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate sector catalog: %w", err)
	}

	seeder := usecase.NewItemSeeder(cat, repos.Items, repos.Requirements, app.Metrics)
	engine := usecase.NewScoreEngine(repos.Businesses, repos.Items, repos.Scores, events, app.Metrics)
	lifecycle := usecase.NewLifecycleCoordinator(seeder, engine, repos.Items, repos.Employees, repos.Requirements, locker, events)

	app.Scores = engine
	app.Services = httpadapter.Services{
		Accounts: usecase.NewAccountUseCase(repos.Users, tokens, hasher, usecase.AdminCredentials{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
		}),
		Businesses:    usecase.NewBusinessUseCase(repos.Businesses, lifecycle),
		Compliance:    usecase.NewComplianceUseCase(repos.Businesses, repos.Items, repos.Notifications, storage, lifecycle, engine),
		Employees:     usecase.NewEmployeeUseCase(repos.Businesses, repos.Employees, repos.Requirements, cat, lifecycle),
		Insights:      usecase.NewInsightsUseCase(repos.Businesses, repos.Items, repos.Employees, repos.Requirements),
		Notifications: usecase.NewNotificationUseCase(repos.Notifications),
		Subscriptions: usecase.NewSubscriptionUseCase(repos.Businesses, repos.Transactions, repos.Notifications, gateway, app.Metrics),
		Admin:         usecase.NewAdminUseCase(repos.Users, repos.Businesses, repos.Scores, repos.Transactions, xlsx.NewBusinessReport()),
		Library:       usecase.NewDocumentLibraryUseCase(repos.Documents, storage),
		Catalog:       cat,
	}
	ok = true
	return app, nil
}

// Handler builds the HTTP surface of the app.
func (a *App) Handler() *httpadapter.Router {
	return httpadapter.NewRouter(a.Services, httpadapter.Options{
		CORSOrigins:    a.Config.CORSOrigins,
		RateLimitRPS:   a.Config.APIRateLimitRPS,
		RateLimitBurst: a.Config.APIRateLimitBurst,
		MaxInFlight:    a.Config.APIMaxInFlight,
		QueueTimeout:   time.Duration(a.Config.APIQueueTimeoutMS) * time.Millisecond,
		Metrics:        a.Metrics,
	})
}

func (a *App) openRepositories(ctx context.Context, cfg config.Config) (Repositories, error) {
	switch cfg.StorageBackend {
	case "memory":
		slog.Warn("memory_backend_enabled", "note", "data is lost on restart")
		return memoryRepositories(memory.New()), nil
	case "postgres", "":
		db, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return Repositories{}, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		return postgresRepositories(postgres.New(db)), nil
	default:
		return Repositories{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// OpenPostgres opens the pool and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db, cfg.DBName); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ObjectStorage, error) {
	switch {
	case strings.TrimSpace(cfg.S3Bucket) != "":
		storage, err := s3store.New(s3store.Config{
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3EndpointURL,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, executor)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		slog.Info("object_storage_selected", "backend", "s3", "bucket", cfg.S3Bucket)
		return storage, nil
	case strings.TrimSpace(cfg.GCSBucket) != "":
		storage, err := gcs.New(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON, executor)
		if err != nil {
			return nil, fmt.Errorf("init gcs storage: %w", err)
		}
		a.closers = append(a.closers, func() { _ = storage.Close() })
		slog.Info("object_storage_selected", "backend", "gcs", "bucket", cfg.GCSBucket)
		return storage, nil
	default:
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		slog.Info("object_storage_selected", "backend", "localfs", "path", cfg.StoragePath)
		return storage, nil
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.Breaker.Enabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceRetryAttempts > 0 {
		out.Retry.MaxAttempts = cfg.ResilienceRetryAttempts
	}
	return out
}

func memoryRepositories(r *memory.Repositories) Repositories {
	return Repositories{
		Users:         r.Users,
		Businesses:    r.Businesses,
		Items:         r.Items,
		Scores:        r.Scores,
		Employees:     r.Employees,
		Requirements:  r.Requirements,
		Notifications: r.Notifications,
		Transactions:  r.Transactions,
		Documents:     r.Documents,
	}
}

func postgresRepositories(r *postgres.Repositories) Repositories {
	return Repositories{
		Users:         r.Users,
		Businesses:    r.Businesses,
		Items:         r.Items,
		Scores:        r.Scores,
		Employees:     r.Employees,
		Requirements:  r.Requirements,
		Notifications: r.Notifications,
		Transactions:  r.Transactions,
		Documents:     r.Documents,
	}
}

// Close releases collaborators in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
