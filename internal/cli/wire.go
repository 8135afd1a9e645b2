package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/ppiankov/folio/internal/config"
	"github.com/ppiankov/folio/internal/feed"
	"github.com/ppiankov/folio/internal/logging"
)

// app is what every command builds from the config: a logger, the cache
// and the feed client.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *cache.Store
	client *feed.Client
}

func (a *app) Close() {
	if err := a.store.Backend().Close(); err != nil {
		a.log.Warn("close cache", "error", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	backend, err := openBackend(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	store := cache.New(backend, cache.WithLogger(log))

	adapter, err := newAdapter(cfg.Feed)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	client, err := feed.NewClient(cfg.Feed.URL, adapter, store, feed.WithLogger(log))
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("create feed client: %w", err)
	}

	return &app{cfg: cfg, log: log, store: store, client: client}, nil
}

func openBackend(cfg config.CacheConfig) (cache.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := cache.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendFile:
		dir, err := cache.OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case config.BackendRedis:
		return cache.NewRedis(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), nil
	case config.BackendMemory:
		return cache.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

func newAdapter(cfg config.FeedConfig) (feed.Adapter, error) {
	httpClient := feed.NewHTTPClient(cfg.Timeout.Duration, cfg.UserAgent)

	switch cfg.Mode {
	case config.ModeDirect:
		return feed.NewDirect(httpClient), nil
	case config.ModeRelay:
		relayURL := cfg.RelayURL
		if relayURL == "" {
			relayURL = feed.DefaultRelayURL
		}
		a, err := feed.NewRelay(httpClient, relayURL)
		if err != nil {
			return nil, fmt.Errorf("create relay adapter: %w", err)
		}
		return a, nil
	case config.ModeJSON:
		apiURL := cfg.JSONAPIURL
		if apiURL == "" {
			apiURL = feed.DefaultJSONAPIURL
		}
		a, err := feed.NewJSON(httpClient, apiURL)
		if err != nil {
			return nil, fmt.Errorf("create json adapter: %w", err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown feed mode %q", cfg.Mode)
}
