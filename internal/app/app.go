// Package app is the composition root: it turns a Config into a running
// portal server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/agrisure/portal/internal/api"
	"github.com/agrisure/portal/internal/api/handler"
	"github.com/agrisure/portal/internal/core/ports"
	"github.com/agrisure/portal/internal/core/service"
	"github.com/agrisure/portal/internal/core/session"
	"github.com/agrisure/portal/internal/infrastructure/backend"
	"github.com/agrisure/portal/internal/infrastructure/db/kvrepo"
	"github.com/agrisure/portal/internal/infrastructure/db/memory"
	"github.com/agrisure/portal/internal/infrastructure/db/mongo"
	"github.com/agrisure/portal/internal/infrastructure/db/redis"
	"github.com/agrisure/portal/internal/infrastructure/geo"
	"github.com/agrisure/portal/internal/infrastructure/httpclient"
	"github.com/agrisure/portal/internal/infrastructure/queue"
	"github.com/agrisure/portal/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// App holds every long-lived component of the portal.
type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	echo     *echo.Echo
	notifier *queue.SessionNotifier

	Auth       *service.AuthService
	API        *backend.ApiClient
	Admin      *backend.AdminClient
	Policies   *backend.PoliciesClient
	Monitoring *backend.CropMonitoringClient
	Locations  *geo.Client

	rdb   *goredis.Client
	mongo *gomongo.Client
}

// New connects the configured stores and builds the clients, the auth
// service and the router. Call Close when done, even if Run is never called.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	kv, err := a.kvStore(ctx)
	if err != nil {
		return nil, err
	}
	tokens := session.NewTokenStore(kv, log)
	a.notifier = queue.NewSessionNotifier(cfg.SessionEventBuffer, log)

	ex := httpclient.New(httpclient.Options{
		Name:             "backend",
		BaseURL:          cfg.Backend.BaseURL,
		HTTPClient:       &http.Client{Timeout: cfg.Backend.Timeout},
		Tokens:           tokens,
		StrictJSON:       cfg.Backend.StrictJSON,
		OnSessionExpired: a.sessionExpired,
		Logger:           log,
	})
	a.API = backend.NewApiClient(ex)
	a.Admin = backend.NewAdminClient(ex)
	a.Policies = backend.NewPoliciesClient(ex)
	a.Monitoring = backend.NewCropMonitoringClient(ex)
	a.Locations = geo.New(geo.Options{
		BaseURL:   cfg.Geo.BaseURL,
		Host:      cfg.Geo.Host,
		Key:       cfg.Geo.Key,
		FanoutRPS: cfg.Geo.FanoutRPS,
		Logger:    log,
	})

	pingers := map[string]handler.Pinger{"session_store": kv}

	authBackend, err := a.authBackend(ctx, kv, pingers)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Auth = service.NewAuthService(ctx, authBackend, kv, tokens, log)

	a.notifier.Subscribe(func(_ context.Context, ev ports.SessionExpired) {
		log.Warn().
			Str("method", ev.Method).
			Str("path", ev.Path).
			Time("at", ev.At).
			Msg("session expired, user signed out")
	})

	a.echo = api.NewRouter(api.Deps{
		Auth:       a.Auth,
		Policies:   a.Policies,
		Claims:     a.API,
		Monitoring: a.Monitoring,
		Statistics: a.Admin,
		Locations:  a.Locations,
		Pingers:    pingers,
		Logger:     log,
	})

	return a, nil
}

// sessionExpired signs the auth service out before the failing call returns,
// then tells the asynchronous subscribers.
func (a *App) sessionExpired(ctx context.Context, ev ports.SessionExpired) {
	if a.Auth != nil {
		a.Auth.HandleSessionExpired(ctx, ev)
	}
	a.notifier.Publish(ctx, ev)
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run starts the session notifier and serves HTTP until ctx is cancelled,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.notifier.Start(ctx)

	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Str("auth_mode", a.cfg.Auth.Mode).Msg("portal listening")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.echo.Shutdown(shutdownCtx)
}

// Close releases the store connections.
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close")
		}
	}
	if a.mongo != nil {
		if err := mongo.Disconnect(a.mongo); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
}

func (a *App) kvStore(ctx context.Context) (ports.KVStore, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverRedis:
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		return redis.NewKVStore(rdb, a.cfg.Redis.Prefix), nil
	default:
		return memory.NewKVStore(), nil
	}
}

func (a *App) authBackend(ctx context.Context, kv ports.KVStore, pingers map[string]handler.Pinger) (ports.AuthBackend, error) {
	if a.cfg.Auth.Mode == config.AuthModeRemote {
		return backend.NewRemoteBackend(a.API), nil
	}

	var repo interface {
		ports.UserRepository
		handler.Pinger
	}
	switch a.cfg.Storage.DirectoryDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
			AppName:  "agrisure-portal",
		})
		if err != nil {
			return nil, err
		}
		a.mongo = client
		users := mongo.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("user directory indexes: %w", err)
		}
		repo = users
	default:
		repo = kvrepo.NewUserRepository(kv)
	}
	pingers["user_directory"] = repo

	directory := service.NewDirectoryBackend(repo, a.cfg.Auth.SessionSecret, a.cfg.Auth.TokenTTL)
	if err := directory.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed user directory: %w", err)
	}
	return directory, nil
}
