package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/audit"
	"github.com/baechuer/account-service/internal/config"
	"github.com/baechuer/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	"github.com/baechuer/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/account-service/internal/infrastructure/redis"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/infrastructure/storage"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
	"github.com/baechuer/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(addr string, debug bool) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewS3Store func(ctx context.Context, cfg storage.S3Config) (account.AssetStore, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface {
	account.EventPublisher
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	readiness := map[string]handlers.Pinger{}

	// 1) account store
	var repo account.AccountRepo
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return fail(err)
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := deps.Migrate(ctx, db)
			cancel()
			if err != nil {
				return fail(fmt.Errorf("migrate: %w", err))
			}
		}

		pg := postgres.NewAccountRepo(db)
		repo = pg
		readiness["database"] = pg
	} else {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory account store")
		repo = memory.NewAccountRepo()
	}

	// 2) redis (best-effort)
	var limiter middleware.RateLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			readiness["redis"] = c
			if rc, ok := c.(*redis.Client); ok {
				limiter = redis.NewFixedWindowLimiter(rc)
			}
		}
	}

	// 3) publisher
	var pub account.EventPublisher = memory.NewNoopPublisher(logger.Logger)
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.IsDev():
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			return fail(err)
		}
	}

	// 4) asset store
	var assets account.AssetStore
	var uploadsDir string
	switch cfg.StorageDriver {
	case "s3":
		if deps.NewS3Store == nil {
			return fail(errors.New("bootstrap: s3 storage not available"))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s, err := deps.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		cancel()
		if err != nil {
			return fail(err)
		}
		assets = s
	default:
		s, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			return fail(err)
		}
		assets = s
		uploadsDir = s.Dir()
	}

	// 5) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Dur("ttl", cfg.AccessTokenTTL).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	// 6) service
	svc := account.NewService(
		repo,
		hasher,
		signer,
		assets,
		pub,
		account.Config{
			MaxUploadSize:            cfg.MaxUploadSize,
			AdminCreateRequiresAdmin: cfg.AdminCreateRequiresAdmin,
		},
	).WithAudit(audit.New(logger.Logger).Func())

	// first admin
	if cfg.BootstrapAdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := svc.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		cancel()
		if err != nil {
			return fail(fmt.Errorf("bootstrap admin: %w", err))
		}
		if created {
			logger.Logger.Info().Msg("bootstrap admin created")
		}
	}

	// 7) handlers + middleware
	accountH := handlers.NewAccountHandler(svc, cfg.MaxUploadSize)
	healthH := handlers.NewHealthHandler(readiness)

	rl := func(key string, limit int) func(http.Handler) http.Handler {
		return middleware.RateLimit(limiter, middleware.FixedWindowConfig{
			RouteKey: key,
			Limit:    limit,
			Window:   time.Minute,

			TrustForwardedFor: cfg.TrustProxyHeaders,
		}, response.WriteError)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Accounts: accountH,

		AuthMW:         middleware.Auth(svc, response.WriteError),
		OptionalAuthMW: middleware.OptionalAuth(svc, response.WriteError),
		AdminMW:        middleware.RequireAdmin(response.WriteError),

		SignupRL: rl("account.signup", cfg.SignupRateLimit),
		LoginRL:  rl("account.login", cfg.LoginRateLimit),
		AdminRL:  rl("account.admins", cfg.AdminRateLimit),

		Metrics:    promhttp.Handler(),
		UploadsURL: cfg.UploadBaseURL,
		UploadsDir: uploadsDir,
		Production: !cfg.IsDev(),
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq.NewPublisher(url, exchange)
		},
		NewS3Store: func(ctx context.Context, cfg storage.S3Config) (account.AssetStore, error) {
			s, err := storage.NewS3Store(ctx, cfg, logger.Logger)
			if err != nil {
				return nil, err
			}
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
			return s, nil
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
