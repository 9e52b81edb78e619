// Package app wires configuration, identity, the backend client, storage and the
// activity journal into a running StudyMate companion.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"studymate/docs"
	"studymate/internal/apiclient"
	"studymate/internal/config"
	"studymate/internal/database"
	"studymate/internal/database/migration"
	handlers "studymate/internal/http/handler"
	"studymate/internal/http/middleware"
	"studymate/internal/identity"
	"studymate/internal/logging"
	"studymate/internal/otel"
	"studymate/internal/repository"
	"studymate/internal/repository/postgres"
	"studymate/internal/service"
	"studymate/internal/storage"
)

const maxUploadBytes = 25 << 20

// App holds the long-lived components shared by the server and the CLI. Session, Client
// and Study belong to the local user of the CLI; the server builds one set per browser.
type App struct {
	Config   *config.AppConfig
	Log      *logging.Logger
	Session  *identity.Session
	Client   *apiclient.Client
	Study    service.StudyService
	DB       *sql.DB
	Registry *prometheus.Registry
	Sessions *handlers.SessionStore

	auth        identity.Authenticator
	login       handlers.LoginFlow
	metrics     *apiclient.Metrics
	clips       storage.Storage
	journal     repository.ActivityRepository
	unsubscribe func()
}

// New builds an App. prompt is used by the code flow when signing in without a browser callback.
func New(ctx context.Context, cfg *config.AppConfig, log *logging.Logger, prompt identity.CodePrompt) (*App, error) {
	if log == nil {
		log = logging.Default()
	}
	a := &App{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var err error
	a.auth, err = identity.NewAuthenticator(cfg.Identity, prompt)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	if flow, ok := a.auth.(*identity.CodeFlow); ok {
		a.login = flow
	}

	a.metrics, err = apiclient.NewMetrics(a.Registry)
	if err != nil {
		return nil, fmt.Errorf("backend metrics: %w", err)
	}

	a.clips, err = newClipStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("clip storage: %w", err)
	}

	if cfg.Database.Enabled() {
		a.DB, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, a.DB, log, cfg.Database.Host); err != nil {
			_ = a.DB.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.journal = postgres.NewActivityPostgres(a.DB)
	}

	a.Session, a.Client, a.Study, err = a.newCaller()
	if err != nil {
		return nil, err
	}

	// clips belong to the principal that created them
	a.unsubscribe = a.Session.Subscribe(func(p *identity.Principal) {
		if p != nil {
			return
		}
		if err := a.Study.Close(context.Background()); err != nil {
			log.Error("release_clips_failed", err, nil)
		}
	})
	return a, nil
}

// newCaller builds a signed-out identity session with its own backend client and study
// service. Metrics, clip storage and the journal are shared.
func (a *App) newCaller() (*identity.Session, *apiclient.Client, service.StudyService, error) {
	sess := identity.NewSession(a.auth)
	client, err := apiclient.New(a.Config.Backend.BaseURL, sess,
		apiclient.WithRoutes(apiclient.RoutesFromConfig(a.Config.Backend)),
		apiclient.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("backend client: %w", err)
	}
	study := service.NewStudyService(service.Deps{
		API:        client,
		Principals: sess,
		Clips:      a.clips,
		Journal:    a.journal,
		Log:        a.Log,
		ClipTTL:    time.Duration(a.Config.ClipURLTTLSec) * time.Second,
	})
	return sess, client, study, nil
}

func newClipStore(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.MinIO.Enabled() {
		return storage.NewMinIO(ctx, cfg.MinIO)
	}
	return storage.NewMemory("/audio/"), nil
}

// Server builds the HTTP companion server.
func (a *App) Server() (*fiber.App, error) {
	srv := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxUploadBytes,
	})

	srv.Use(otelfiber.Middleware())
	srv.Use(middleware.RequestID())
	srv.Use(middleware.Logger(a.Log))

	var gatherer prometheus.Gatherer
	if a.Config.MetricsEnabled {
		pm, err := middleware.NewPrometheusMiddleware(a.Registry)
		if err != nil {
			return nil, fmt.Errorf("http metrics: %w", err)
		}
		srv.Use(pm.Handler())
		gatherer = a.Registry
	}

	if a.Sessions == nil {
		a.Sessions = handlers.NewSessionStore(func() (*handlers.Caller, error) {
			sess, _, study, err := a.newCaller()
			if err != nil {
				return nil, err
			}
			return &handlers.Caller{Session: sess, Study: study}, nil
		}, handlers.SessionConfig{
			IdleTimeout:  time.Duration(a.Config.SessionIdleMin) * time.Minute,
			SecureCookie: a.Config.CookieSecure,
		}, a.Log)
	}

	handlers.RegisterRoutes(srv, handlers.Deps{
		DB:       a.DB,
		Sessions: a.Sessions,
		Login:    a.login,
		Gatherer: gatherer,
	})

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})
	return srv, nil
}

// Run serves the companion on addr until ctx is cancelled, then shuts down the server,
// the App and tracing.
func Run(ctx context.Context, cfg *config.AppConfig, log *logging.Logger, addr string) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	closeCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	}

	a, err := New(ctx, cfg, log, nil)
	if err != nil {
		cctx, cancel := closeCtx()
		defer cancel()
		return errors.Join(err, shutdownTracing(cctx))
	}
	srv, err := a.Server()
	if err != nil {
		cctx, cancel := closeCtx()
		defer cancel()
		return errors.Join(err, a.Close(cctx), shutdownTracing(cctx))
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = srv.ShutdownWithTimeout(10 * time.Second)
		case <-done:
		}
	}()

	log.Info("server_started", map[string]any{"addr": addr, "backend": cfg.Backend.BaseURL})
	listenErr := srv.Listen(addr)
	close(done)

	cctx, cancel := closeCtx()
	defer cancel()
	return errors.Join(listenErr, a.Close(cctx), shutdownTracing(cctx))
}

// Close ends browser sessions, releases live clips and closes the journal database.
func (a *App) Close(ctx context.Context) error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var errs []error
	if a.Sessions != nil {
		if err := a.Sessions.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Study.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
