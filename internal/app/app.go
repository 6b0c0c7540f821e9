// Package app builds the process object graph from configuration. Both the
// server and the admin CLI start from here so they see the same stores.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shareregistry/internal/auth/credential"
	"shareregistry/internal/auth/lockout"
	authhandler "shareregistry/internal/auth/handler"
	authmetrics "shareregistry/internal/auth/metrics"
	"shareregistry/internal/auth/secrets"
	authservice "shareregistry/internal/auth/service"
	"shareregistry/internal/auth/store/revocation"
	userstore "shareregistry/internal/auth/store/user"
	jwttoken "shareregistry/internal/jwt_token"
	"shareregistry/internal/platform/config"
	"shareregistry/internal/platform/metrics"
	"shareregistry/internal/platform/postgres"
	"shareregistry/internal/platform/redis"
	profilehandler "shareregistry/internal/profile/handler"
	profilemetrics "shareregistry/internal/profile/metrics"
	profileservice "shareregistry/internal/profile/service"
	profilestore "shareregistry/internal/profile/store/profile"
	httptransport "shareregistry/internal/transport/http"
	"shareregistry/pkg/email"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/audit/publisher"
	kafkasink "shareregistry/pkg/platform/audit/store/kafka"
	auditmemory "shareregistry/pkg/platform/audit/store/memory"
	auditpostgres "shareregistry/pkg/platform/audit/store/postgres"
	"shareregistry/pkg/platform/circuit"
)

const (
	auditBufferSize    = 1024
	mailDeliveryBudget = 2 * time.Minute
)

type profileStore interface {
	profileservice.Store
	Ping(ctx context.Context) error
}

type revocationList interface {
	authservice.RevocationList
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Profiles *profileservice.Service
	Accounts *authservice.Service
	Issuer   *credential.Issuer

	db         *sql.DB
	redis      *redis.Client
	kafka      *kafkasink.Sink
	profiles   profileStore
	users      authservice.UserStore
	trl        revocationList
	jwt        *jwttoken.JWTService
	publisher  *publisher.Publisher
	dispatcher *credential.AsyncDispatcher
	httpM      *metrics.Metrics
}

// New connects the configured backends and builds the services. Without a
// DATABASE_URL everything runs in memory, which suits local development.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	var auditStore audit.Store
	if cfg.Database.URL != "" {
		a.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(a.db); err != nil {
				return nil, err
			}
		}
		a.profiles = profilestore.NewPostgres(a.db)
		a.users = userstore.NewPostgres(a.db)
		auditStore = auditpostgres.New(a.db)
		logger.InfoContext(ctx, "using postgres stores")
	} else {
		a.profiles = profilestore.NewInMemory()
		a.users = userstore.New()
		auditStore = auditmemory.NewInMemoryStore()
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if a.redis != nil {
		a.trl = revocation.NewRedisTRL(a.redis.Client)
	} else {
		a.trl = revocation.NewInMemoryTRL()
	}
	var lockoutStore lockout.Store = lockout.NewInMemoryStore()
	if a.redis != nil {
		lockoutStore = lockout.NewRedisStore(a.redis.Client)
	}
	throttle, err := lockout.New(lockoutStore,
		lockout.WithLogger(logger),
		lockout.WithConfig(lockout.Config{
			Attempts:     cfg.Auth.LockoutAttempts,
			Window:       cfg.Auth.LockoutWindow,
			LockDuration: cfg.Auth.LockoutDuration,
		}),
	)
	if err != nil {
		return nil, err
	}

	pubOpts := []publisher.Option{
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(logger),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		a.kafka, err = kafkasink.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, err
		}
		if err := a.kafka.EnsureTopic(ctx, 3, 1); err != nil {
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		pubOpts = append(pubOpts, publisher.WithSink(a.kafka))
	}
	a.publisher = publisher.NewPublisher(auditStore, pubOpts...)

	a.jwt = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	hasher := secrets.NewHasher(cfg.Auth.BcryptCost)
	authM := authmetrics.New()
	sender := a.mailSender(authM)
	a.dispatcher = credential.NewAsyncDispatcher(mailDeliveryBudget)

	a.Issuer, err = credential.New(a.users, hasher, sender,
		credential.WithLogger(logger),
		credential.WithMetrics(authM),
		credential.WithAuditPublisher(a.publisher),
		credential.WithDispatcher(a.dispatcher),
		credential.WithLoginURL(cfg.SMTP.LoginURL),
	)
	if err != nil {
		return nil, err
	}

	a.Accounts, err = authservice.New(a.users, a.jwt, a.trl, hasher, secrets.GeneratePassword,
		authservice.WithLogger(logger),
		authservice.WithMetrics(authM),
		authservice.WithAuditPublisher(a.publisher),
		authservice.WithMailer(sender, cfg.SMTP.LoginURL),
		authservice.WithLoginThrottle(throttle),
		authservice.WithDispatcher(a.dispatcher),
	)
	if err != nil {
		return nil, err
	}

	profileOpts := []profileservice.Option{
		profileservice.WithLogger(logger),
		profileservice.WithMetrics(profilemetrics.New()),
		profileservice.WithAuditPublisher(a.publisher),
		profileservice.WithAuditLog(a.publisher),
		profileservice.WithCreateHook(a.Issuer),
	}
	if cfg.DeactivateAccountOnProfileDelete {
		profileOpts = append(profileOpts, profileservice.WithDeleteHook(a.Accounts))
	}
	a.Profiles, err = profileservice.New(a.profiles, profileOpts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// mailSender picks SMTP behind a circuit breaker, or a logging sender when no
// SMTP host is configured.
func (a *App) mailSender(m *authmetrics.Metrics) email.Sender {
	cfg := a.Config.SMTP
	if cfg.Host == "" {
		a.Logger.Warn("SMTP_HOST not set, outbound mail is logged instead of sent")
		return email.NewLogSender(a.Logger)
	}
	smtp := email.NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From, cfg.SendTimeout)
	breaker := circuit.New("smtp", circuit.WithFailureThreshold(cfg.BreakerFailures))
	return email.NewGuardedSender(smtp, breaker,
		email.WithGuardLogger(a.Logger),
		email.WithStateChange(m.SetCircuitOpen),
	)
}

// Router builds the HTTP handler with every feature mounted.
func (a *App) Router() http.Handler {
	if a.httpM == nil {
		a.httpM = metrics.New()
	}
	return httptransport.NewRouter(httptransport.Deps{
		Logger:         a.Logger,
		Metrics:        a.httpM,
		Validator:      jwttoken.NewJWTServiceAdapter(a.jwt),
		Revocations:    a.trl,
		Checks:         a.checks(),
		MetricsHandler: metrics.Handler(),
		Handlers: []httptransport.RouteRegistrar{
			authhandler.New(a.Accounts, a.Logger),
			profilehandler.New(a.Profiles, a.Logger),
		},
	})
}

func (a *App) checks() []httptransport.Check {
	checks := []httptransport.Check{{Name: "profiles", Ping: a.profiles.Ping}}
	if a.redis != nil {
		checks = append(checks, httptransport.Check{Name: "redis", Ping: a.redis.Health})
	}
	if a.kafka != nil {
		checks = append(checks, httptransport.Check{Name: "kafka", Ping: a.kafka.Ping})
	}
	return checks
}

// BootstrapAdmin creates the configured admin account on first start. It is a
// no-op when ADMIN_PASSWORD is unset.
func (a *App) BootstrapAdmin(ctx context.Context) error {
	admin := a.Config.Admin
	if admin.Password == "" {
		return nil
	}
	user, created, err := a.Accounts.EnsureAdmin(ctx, admin.Username, admin.Password, admin.Email)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		a.Logger.InfoContext(ctx, "admin account created", "username", user.Username)
	}
	return nil
}

// DB exposes the database handle, nil when running in memory.
func (a *App) DB() *sql.DB { return a.db }

// Close waits for pending mail, drains the audit queue and releases
// connections, in that order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wait for mail delivery: %w", err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit publisher: %w", err))
		}
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
