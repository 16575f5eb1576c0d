package bootstrap

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/caseflow/auth-service/internal/application/auth"
	"github.com/caseflow/auth-service/internal/config"
	"github.com/caseflow/auth-service/internal/domain"
	"github.com/caseflow/auth-service/internal/infrastructure/db/postgres"
	"github.com/caseflow/auth-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/caseflow/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/caseflow/auth-service/internal/infrastructure/security"
	"github.com/caseflow/auth-service/internal/logger"
	http_handlers "github.com/caseflow/auth-service/internal/transport/http/handlers"
	"github.com/caseflow/auth-service/internal/transport/http/middleware"
	"github.com/caseflow/auth-service/internal/transport/http/response"
	"github.com/caseflow/auth-service/internal/transport/http/router"
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

	NewDB func(addr string, debug bool) (DBCloser, error)

	NewPublisher func(rabbitURL string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type Publisher interface{}

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

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	// 2) repositories
	userRepo := postgres.NewUserRepo(sqlDB)
	sessionRepo := postgres.NewSessionRepo(sqlDB)
	resetRepo := postgres.NewResetTokenRepo(sqlDB)

	// 3) publisher
	var pub Publisher
	if cfg.RabbitURL == "" && cfg.IsDev() {
		logger.Logger.Warn().Msg("rabbitmq not configured; using noop publisher")
		pub = memory.NewNoopPublisher()
	} else {
		pub, err = deps.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.IsDev() {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
				pub = memory.NewNoopPublisher()
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else if p, ok := pub.(interface{ SetExchange(string) }); ok {
			p.SetExchange(cfg.RabbitExchange)
		}
	}

	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 5) service
	eventPub, ok := pub.(auth.EventPublisher)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: publisher does not implement the event port")
	}

	authSvc := auth.NewService(
		userRepo,
		hasher,
		signer,
		sessionRepo,
		resetRepo,
		eventPub,
		auth.Config{
			SessionTokenTTL:      cfg.SessionTokenTTL,
			PasswordResetTTL:     cfg.PasswordResetTTL,
			PasswordResetBaseURL: cfg.PasswordResetBaseURL,
		},
	)

	authSvc = authSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc, cfg.IsDev())
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Auth(signer, sessionRepo, response.WriteError)
	adminMW := middleware.RequireAtLeast(string(domain.RoleAdmin), response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:  healthH,
		Auth:    authH,
		AuthMW:  authMW,
		AdminMW: adminMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
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
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return config.NewDB(addr, debug)
		},
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
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
