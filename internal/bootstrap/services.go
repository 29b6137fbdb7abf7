package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Navaneethoudoju/ASHA-companion-Web/config"
	memorystore "github.com/Navaneethoudoju/ASHA-companion-Web/internal/adapters/memory"
	redisstore "github.com/Navaneethoudoju/ASHA-companion-Web/internal/adapters/redis"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/ports"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/service"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth    *service.AuthService
	Lookups *service.LookupService
	API     *upstream.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the upstream client, session store, and domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
		appCfg.Sanitize()
	}

	api, err := upstream.New(upstream.Config{
		BaseURL: appCfg.Upstream.BaseURL,
		Timeout: appCfg.Upstream.Timeout,
	}, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build upstream client: %w", err)
	}

	sessions := buildSessionStore(deps.RedisClient, appCfg.IsDev, logger)

	authService := service.NewAuthService(service.AuthServiceOptions{
		API:        api,
		Sessions:   sessions,
		SessionTTL: appCfg.Session.TTL,
	})
	lookupService := service.NewLookupService(api)

	return ServiceContainer{
		Auth:    authService,
		Lookups: lookupService,
		API:     api,
	}, nil
}

// buildSessionStore picks the Redis-backed store when a client is available.
// Dev mode without Redis falls back to the in-memory store so the app runs
// standalone; sessions then die with the process.
//
//nolint:ireturn // the port hides which store backs the sessions.
func buildSessionStore(client redis.UniversalClient, isDev bool, logger *slog.Logger) ports.SessionStore {
	if client != nil {
		return redisstore.NewSessionStore(client)
	}
	if isDev {
		logger.Warn("no redis client; using in-memory session store (dev only)")
		return memorystore.NewSessionStore()
	}
	// Production without Redis is a misconfiguration, but an in-memory store
	// still beats refusing every login.
	logger.Error("no redis client in production; sessions will not survive restarts")
	return memorystore.NewSessionStore()
}

// ConnectRedis establishes a connection to Redis.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single or sentinel clients at runtime.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	var (
		client   redis.UniversalClient
		addrDesc string
		err      error
	)

	if cfg.UseSentinel {
		client, addrDesc, err = newSentinelClient(cfg)
	} else {
		client, addrDesc, err = newDirectClient(cfg)
	}
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		// Log connection without credentials
		if i := strings.LastIndex(addrDesc, "@"); i > -1 {
			addrDesc = addrDesc[i+1:]
		}
		logger.Info("redis connected", "addr", addrDesc)
	}

	return client, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newSentinelClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	nodes := normalizeAddrs(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}

	opts := &redis.FailoverOptions{
		MasterName:       cfg.SentinelMasterName,
		SentinelAddrs:    nodes,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
		DB:               0,
	}
	client := redis.NewFailoverClient(opts)
	return client, "sentinel:" + cfg.SentinelMasterName, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), opt.Addr, nil
	}

	opts := &redis.Options{
		Addr:     uri,
		Password: cfg.Password,
		DB:       0,
	}
	return redis.NewClient(opts), uri, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
