// pkg/human1/sdk.go
package human1

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/database"
	"human1-sdk/internal/common/env"
	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/common/observability"
	"human1-sdk/internal/controllers/query"
	"human1-sdk/internal/models"
	"human1-sdk/internal/oracle"
	"human1-sdk/internal/routes"
	"human1-sdk/internal/translator"
)

var ErrAlreadyBound = errors.New("SDK_ALREADY_BOUND")

// Options configures Init. Everything is optional: without Config the
// configuration is loaded from env files and config.yaml, and without Oracle
// one is built against the configured Postgres database and LLM.
type Options struct {
	App        Application
	Registry   *Registry
	BasePath   string
	Config     *config.Config
	ConfigFile string
	Env        env.Options
	Logger     logger.Logger
	Oracle     oracle.Oracle
	Middleware []Middleware // wrapped around each mounted route, after auth
}

// SDK is the handle returned by Init.
type SDK struct {
	mu       sync.RWMutex
	app      Application
	registry *Registry

	cfg        *config.Config
	loader     *config.Loader
	envResult  env.Result
	logger     logger.Logger
	handler    *query.Handler
	routes     []models.RouteDefinition
	basePath   string
	middleware []Middleware

	db     *database.PostgresClient
	cache  *database.RedisClient
	obs    *observability.Observability
	tracer *sdktrace.TracerProvider

	initialized atomic.Bool
	closeOnce   sync.Once
}

var defaultSDK atomic.Pointer[SDK]

// Default returns the handle of the most recent successful Init, or nil.
func Default() *SDK {
	return defaultSDK.Load()
}

// Init builds the SDK and, when an application is given or can be found in
// the registry, mounts its routes there. Finding no application is not an
// error: the handle comes back unbound and Bind mounts later.
func Init(ctx context.Context, opts Options) (*SDK, error) {
	s := &SDK{registry: opts.Registry}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, loader, err := config.LoadWithOptions(config.Options{Env: opts.Env, ConfigFile: opts.ConfigFile})
		if err != nil {
			return nil, err
		}
		cfg = loaded
		s.loader = loader
		s.envResult = loader.EnvResult
	} else {
		s.envResult = env.Result{Success: true}
	}
	s.cfg = cfg

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	}
	s.logger = log.WithFields(map[string]interface{}{"component": "human1-sdk"})

	o := opts.Oracle
	if o == nil {
		agent, err := s.buildOracle(ctx, log)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		o = agent
	}

	if cfg.Metrics.Enabled {
		s.obs = observability.New(cfg.App.Name, s.logger)
	}
	s.tracer = observability.NewTracerProvider(cfg.App.Name, cfg.Tracing)

	s.handler = query.NewHandler(query.LoadConfig(cfg), query.Deps{
		Translator:    translator.New(o, log),
		Observability: s.obs,
	}, log)
	s.routes = routes.Default(s.handler)
	s.basePath = NormalizeBasePath(firstNonEmpty(opts.BasePath, cfg.Server.BasePath, DefaultBasePath))
	s.middleware = append([]Middleware{JWTAuth(cfg.Server.Auth, log)}, opts.Middleware...)

	app := opts.App
	explicit := !isNilApp(app)
	if !explicit {
		app, _ = s.registry.Detect()
	}

	if isNilApp(app) {
		s.logger.Warn("no application registered; call Bind to mount the SDK routes", map[string]interface{}{
			"basePath": s.basePath,
		})
	} else if err := s.bind(app, explicit); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.initialized.Store(true)
	defaultSDK.Store(s)

	s.logger.Info("Human1 SDK initialized", map[string]interface{}{
		"basePath":      s.basePath,
		"bound":         s.App() != nil,
		"routes":        len(s.routes),
		"envFile":       s.envResult.LoadedPath,
		"defaultFormat": string(s.handler.DefaultFormat()),
	})
	return s, nil
}

func (s *SDK) buildOracle(ctx context.Context, log logger.Logger) (oracle.Oracle, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.NewPostgres(s.cfg.Database.Postgres)
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	s.db = db
	s.cache = database.NewRedis(s.cfg.Database.Redis)

	agent, err := oracle.New(ctx, s.cfg.Oracle, db, s.cache, log)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// Bind registers app and mounts the SDK routes on it. A handle binds once.
func (s *SDK) Bind(app Application) error {
	if isNilApp(app) {
		return fmt.Errorf("%w: application is nil", ErrInvalidApplication)
	}
	return s.bind(app, true)
}

func (s *SDK) bind(app Application, register bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.app != nil {
		return ErrAlreadyBound
	}
	if register {
		if err := s.registry.Register(app); err != nil {
			return err
		}
	}

	n, err := Mount(app, s.basePath, s.routes, s.middleware...)
	if err != nil {
		return err
	}
	s.app = app

	s.logger.Info("mounted SDK routes", map[string]interface{}{
		"basePath": s.basePath,
		"routes":   n,
	})
	return nil
}

func (s *SDK) App() Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.app
}

func (s *SDK) IsInitialized() bool {
	return s.initialized.Load()
}

func (s *SDK) Routes() []RouteDefinition {
	out := make([]RouteDefinition, len(s.routes))
	copy(out, s.routes)
	return out
}

func (s *SDK) BasePath() string {
	return s.basePath
}

// Execute runs one query exactly as POST <basePath>/query would.
func (s *SDK) Execute(ctx context.Context, req RequestData) Envelope {
	return s.handler.Execute(ctx, req)
}

func (s *SDK) History(_ context.Context) []HistoryEntry {
	return s.handler.HistoryStore().List()
}

func (s *SDK) DefaultFormat() ResponseFormat {
	return s.handler.DefaultFormat()
}

func (s *SDK) SetDefaultFormat(format ResponseFormat) error {
	return s.handler.SetDefaultFormat(format)
}

func (s *SDK) EnvResult() env.Result {
	return s.envResult
}

func (s *SDK) Config() *config.Config {
	return s.cfg
}

// Loader is nil when Init was given a Config.
func (s *SDK) Loader() *config.Loader {
	return s.loader
}

func (s *SDK) Logger() logger.Logger {
	return s.logger
}

// Ready pings the database and cache the oracle depends on. An injected
// oracle has none, so it is always ready.
func (s *SDK) Ready(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
	}
	if err := s.cache.Ping(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Close releases the connections and telemetry providers. It is safe to call
// more than once.
func (s *SDK) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.db != nil {
			if err := s.db.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.obs.Shutdown()
		observability.ShutdownTracer(s.tracer)
		defaultSDK.CompareAndSwap(s, nil)
	})
	return errors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
