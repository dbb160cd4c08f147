package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/msgcat"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	"github.com/mcoot/chessgame-go/internal/services/game"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
	"github.com/mcoot/chessgame-go/internal/storage"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	pgstorage "github.com/mcoot/chessgame-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/chessgame-go/internal/storage/redis"
	"github.com/mcoot/chessgame-go/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Catalog *msgcat.Catalog
	Logger  *slog.Logger

	// Services
	AuthService     *auth.Service
	LobbyController *lobby.Controller
	Locks           *game.Locks
	Registry        *ws.Registry
	Coordinator     *game.Coordinator
	WSHandler       *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// MessagesDir is an optional directory of yaml files overriding notification texts
	MessagesDir string
	// WSConfig holds websocket endpoint settings (optional)
	WSConfig ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	catalog := msgcat.Default()
	if cfg.MessagesDir != "" {
		catalog, err = msgcat.New(cfg.MessagesDir)
		if err != nil {
			closeStorage(store)
			return nil, fmt.Errorf("load messages: %w", err)
		}
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	wsCfg := cfg.WSConfig
	if wsCfg.WriteTimeout == 0 && wsCfg.ReadLimit == 0 {
		wsCfg = ws.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), catalog, authCfg, wsCfg, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		return pgStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	catalog *msgcat.Catalog,
	authCfg auth.Config,
	wsCfg ws.Config,
	logger *slog.Logger,
) *App {
	locks := game.NewLocks()
	authService := auth.New(store, clk, logger.With(slog.String("component", "auth")), authCfg)
	lobbyController := lobby.NewController(store, locks, clk, logger.With(slog.String("component", "lobby")))
	registry := ws.NewRegistry(logger, wsCfg.WriteTimeout)
	coordinator := game.NewCoordinator(
		store,
		authService,
		registry,
		locks,
		catalog,
		clk,
		logger.With(slog.String("component", "coordinator")),
	)
	wsHandler := ws.NewHandler(coordinator, registry, logger, wsCfg)

	return &App{
		Storage:         store,
		Clock:           clk,
		Catalog:         catalog,
		Logger:          logger,
		AuthService:     authService,
		LobbyController: lobbyController,
		Locks:           locks,
		Registry:        registry,
		Coordinator:     coordinator,
		WSHandler:       wsHandler,
	}
}

// Close releases the storage backend's connections, if it holds any
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeStorage(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
