package botflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/internal/variables"
	"github.com/aretw0/botflow/pkg/adapters/cache"
	"github.com/aretw0/botflow/pkg/adapters/file"
	httpAdapter "github.com/aretw0/botflow/pkg/adapters/http"
	loamAdapter "github.com/aretw0/botflow/pkg/adapters/loam"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/botflow/pkg/adapters/redis"
	sqlAdapter "github.com/aretw0/botflow/pkg/adapters/sql"
	"github.com/aretw0/botflow/pkg/config"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/observability"
	"github.com/aretw0/botflow/pkg/persistence/middleware"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Bot is the high-level entry point: a flow, its stores and the engine that
// answers events against them.
type Bot struct {
	Name       string
	Loader     ports.FlowLoader
	States     ports.StateStore
	Users      ports.UserRecordStore
	Variables  *variables.Store
	Engine     *runtime.Engine
	Sessions   *session.Manager
	Dispatcher *dispatch.Dispatcher
	Metrics    *observability.Metrics

	registry *prometheus.Registry
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	closers  []func() error
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithLoader injects a flow loader, bypassing the file loader.
func WithLoader(l ports.FlowLoader) Option {
	return func(b *Bot) {
		b.Loader = l
	}
}

// WithLifecycleHooks registers hooks that run after the built-in metric and log hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// New wires a Bot from cfg. Backends that open connections are closed by Close.
func New(cfg *config.Config, opts ...Option) (*Bot, error) {
	b := &Bot{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}

	if b.Loader == nil {
		if err := b.openLoader(cfg.FlowPath); err != nil {
			return nil, fmt.Errorf("failed to load flow: %w", err)
		}
	}
	if b.Name != "" {
		b.logger = b.logger.With("flow", b.Name)
	}

	if err := b.openStores(cfg); err != nil {
		_ = b.Close()
		return nil, err
	}

	metrics, err := observability.NewMetrics(b.registry)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	b.Metrics = metrics
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(b.logger), b.hooks)

	b.Variables = variables.New(b.Users, cache.NewVolatile(cache.WithTTL(cfg.VolatileTTL)),
		variables.WithLogger(b.logger),
		variables.WithLifecycleHooks(hooks),
	)
	b.Engine = runtime.NewEngine(b.Variables, b.States,
		runtime.WithLogger(b.logger),
		runtime.WithLifecycleHooks(hooks),
	)
	b.Dispatcher = dispatch.New(b.Loader, b.Engine, b.Sessions,
		dispatch.WithLogger(b.logger),
		dispatch.WithMaxChain(cfg.MaxChain),
		dispatch.WithMaxInputSize(cfg.MaxInputSize),
	)
	return b, nil
}

// NamedLoader is a flow loader that knows the flow's name.
type NamedLoader interface {
	ports.FlowLoader
	Name() string
}

// OpenLoader reads a flow file, or a directory holding one document per node.
func OpenLoader(path string, logger *slog.Logger) (NamedLoader, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		loader, err := loamAdapter.Open(path, loamAdapter.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return loader, nil
	}
	loader, err := file.NewLoader(path, file.WithLoaderLogger(logger))
	if err != nil {
		return nil, err
	}
	return loader, nil
}

func (b *Bot) openLoader(path string) error {
	loader, err := OpenLoader(path, b.logger)
	if err != nil {
		return err
	}
	b.Loader, b.Name = loader, loader.Name()
	return nil
}

func (b *Bot) openStores(cfg *config.Config) error {
	var (
		client *backend.Client
		db     *gorm.DB
	)
	if cfg.NeedsRedis() {
		client = redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		b.closers = append(b.closers, client.Close)
	}
	if cfg.NeedsSQL() {
		var err error
		db, err = sqlAdapter.Open(cfg.SQL.Driver, cfg.SQL.DSN, b.logger)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			b.closers = append(b.closers, sqlDB.Close)
		}
		if err := sqlAdapter.Migrate(db); err != nil {
			return err
		}
	}
	prefix := redisAdapter.WithPrefix(cfg.Redis.Prefix)

	switch cfg.StateStore {
	case config.StoreFile:
		b.States = file.New(cfg.StateDir)
	case config.StoreRedis:
		b.States = redisAdapter.NewFromClient(client, prefix)
	case config.StoreSQL:
		b.States = sqlAdapter.NewStore(db)
	default:
		b.States = memory.NewStore()
	}

	var users ports.UserRecordStore
	switch cfg.UserStore {
	case config.StoreFile:
		users = file.NewUserStore(cfg.UsersDir)
	case config.StoreRedis:
		users = redisAdapter.NewUserStore(client, prefix)
	case config.StoreSQL:
		users = sqlAdapter.NewUserStore(db)
	default:
		users = memory.NewUserStore()
	}

	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIPatterns, b.logger)
		if err != nil {
			return err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: cfg.EncryptionKey}))
	}
	b.Users = middleware.Chain(users, mws...)

	sessionOpts := []session.Option{
		session.WithLogger(b.logger),
		session.WithLockTTL(cfg.LockTTL),
	}
	if client != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)))
	}
	b.Sessions = session.NewManager(b.States, sessionOpts...)
	return nil
}

// Handle dispatches one incoming event.
func (b *Bot) Handle(ctx context.Context, ev dispatch.Event) (*dispatch.Result, error) {
	return b.Dispatcher.Handle(ctx, ev)
}

// Respond resolves a node for a user and records the resulting waits,
// without following Next. It is the preview used by the CLI.
func (b *Bot) Respond(ctx context.Context, nodeID, userID string) (*domain.Response, error) {
	var resp *domain.Response
	err := b.Sessions.WithLock(ctx, userID, func(ctx context.Context) error {
		node, err := b.Loader.GetNode(nodeID)
		if err != nil {
			return err
		}
		resp, err = b.Engine.Respond(ctx, node, userID)
		return err
	})
	return resp, err
}

// HTTPHandler returns the HTTP API with /metrics served from the Bot's registry.
func (b *Bot) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(b.Dispatcher, b.Sessions, b.Loader,
		httpAdapter.WithLogger(b.logger),
		httpAdapter.WithVersion(Version),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{})),
	)
}

// Watch returns a channel that signals when the flow definition changes.
// Returns error if the loader does not support watching.
func (b *Bot) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := b.Loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Close releases backend connections.
func (b *Bot) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}
