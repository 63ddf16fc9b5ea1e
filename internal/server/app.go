// Package server wires configuration, storage, services and transports into
// the PetNest API process and runs it until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/cache"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/metrics"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/petnest/internal/server/rest"
	"github.com/dmitrijs2005/petnest/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/petnest/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	metrics  *metrics.Metrics
	tokens   *auth.TokenIssuer
	sessions *services.SessionService
	identity *services.IdentityService
	profile  *services.ProfileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "using the built-in JWT secret; set PETNEST_SECRET_KEY in production")
	}

	db, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, metrics: metrics.New()}

	// Left as a nil interface when redis is off so the session service
	// skips the cache entirely.
	var sessionCache services.SessionCache
	if c.RedisURL != "" {
		client, err := cache.Connect(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		sessionCache = cache.NewRedisSessionCache(client)
		logger.Info(ctx, "session cache enabled", "ttl", c.SessionCacheTTL.String())
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	app.tokens = auth.NewTokenIssuer(c.SecretKey, c.SessionValidityDuration)
	app.sessions = services.NewSessionService(db, rm, c, sessionCache, logger.With("module", "sessions"), app.metrics)
	app.identity = services.NewIdentityService(db, rm, hasher, app.tokens, app.sessions, logger.With("module", "identity"), app.metrics)
	app.profile = services.NewProfileService(db, rm, logger.With("module", "profile"))

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := rest.NewHandler(app.config, app.logger, app.identity, app.profile, app.tokens, app.sessions, app.db, app.metrics)
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, h.Routes())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then releases the
// database and redis connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sessions.RunReaper(ctx, app.config.SessionReapInterval)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
}
