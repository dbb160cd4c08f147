package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/chessgame-go/internal/api"
	"github.com/mcoot/chessgame-go/internal/factory"
	pgstorage "github.com/mcoot/chessgame-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/chessgame-go/internal/storage/redis"
)

// serverConfig is everything main reads from the environment
type serverConfig struct {
	Server   api.ServerConfig
	Factory  factory.Config
	LogLevel slog.Level
}

// loadConfig builds the server configuration from getenv
func loadConfig(getenv func(string) string) (serverConfig, error) {
	cfg := serverConfig{
		Server:   api.DefaultServerConfig(),
		LogLevel: slog.LevelInfo,
	}

	if port := getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Server.Port = p
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q", level)
		}
	}

	cfg.Factory.StorageType = getenv("STORAGE_TYPE")
	switch cfg.Factory.StorageType {
	case factory.StorageTypeRedis:
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if prefix := getenv("REDIS_KEY_PREFIX"); prefix != "" {
			redisCfg.KeyPrefix = prefix
		}
		cfg.Factory.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		dbURL := getenv("DATABASE_URL")
		if dbURL == "" {
			return cfg, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = dbURL
		cfg.Factory.PostgresConfig = &pgCfg
	}

	if ttl := getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid SESSION_TTL %q", ttl)
		}
		cfg.Factory.AuthConfig.SessionDuration = d
	}

	cfg.Factory.MessagesDir = getenv("MESSAGES_DIR")

	return cfg, nil
}
