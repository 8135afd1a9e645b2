package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/folio/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile   = "config.yaml"
	DefaultDir          = ".folio"
	DefaultHandle       = "@moetezafif"
	DefaultFeedBase     = "https://medium.com/feed/"
	DefaultMode         = ModeDirect
	DefaultTimeout      = 30 * time.Second
	DefaultCacheBackend = BackendSQLite
	DefaultSQLitePath   = "cache.db"
	DefaultFileCacheDir = "cache"
	DefaultRedisAddr    = "localhost:6379"
	DefaultServerAddr   = ":8080"
	DefaultBlogPath     = "public/article.json"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Feed access modes.
const (
	ModeDirect = "direct"
	ModeRelay  = "relay"
	ModeJSON   = "json"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultAllowedOrigins is the dev server of the site that embeds the feed.
var DefaultAllowedOrigins = []string{"http://localhost:5173"}

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Feed   FeedConfig   `yaml:"feed"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	Blog   BlogConfig   `yaml:"blog"`
	Log    LogConfig    `yaml:"log"`
}

type FeedConfig struct {
	Handle     string   `yaml:"handle"`
	URL        string   `yaml:"url"`
	Mode       string   `yaml:"mode"`
	RelayURL   string   `yaml:"relay_url"`
	JSONAPIURL string   `yaml:"json_api_url"`
	Timeout    Duration `yaml:"timeout"`
	UserAgent  string   `yaml:"user_agent"`
}

type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`

	// Resolved from env var at load time.
	Password string `yaml:"-"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type BlogConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg, dir)
}

// LoadOrDefault is Load, except that a missing config.yaml yields the
// default configuration.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultsIn(dir), nil
	}
	return cfg, err
}

// Default returns the configuration used when no file is present, with the
// cache kept under DefaultDir.
func Default() *Config {
	return defaultsIn(DefaultDir)
}

func defaultsIn(dir string) *Config {
	cfg, err := finish(&Config{}, dir)
	if err != nil {
		// Defaults always validate.
		panic(err)
	}
	return cfg
}

// finish completes cfg. Default cache paths are placed inside dir; explicit
// relative paths are left relative to the working directory.
func finish(cfg *Config, dir string) (*Config, error) {
	applyDefaults(cfg, dir)
	resolveEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config, dir string) {
	if cfg.Feed.Handle == "" {
		cfg.Feed.Handle = DefaultHandle
	}
	if !strings.HasPrefix(cfg.Feed.Handle, "@") {
		cfg.Feed.Handle = "@" + cfg.Feed.Handle
	}
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = DefaultFeedBase + cfg.Feed.Handle
	}
	if cfg.Feed.Mode == "" {
		cfg.Feed.Mode = DefaultMode
	}
	if cfg.Feed.Timeout.Duration == 0 {
		cfg.Feed.Timeout.Duration = DefaultTimeout
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.Path == "" {
		switch cfg.Cache.Backend {
		case BackendSQLite:
			cfg.Cache.Path = filepath.Join(dir, DefaultSQLitePath)
		case BackendFile:
			cfg.Cache.Path = filepath.Join(dir, DefaultFileCacheDir)
		}
	}
	if cfg.Cache.Backend == BackendRedis && cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if cfg.Blog.Path == "" {
		cfg.Blog.Path = DefaultBlogPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Cache.Redis.PasswordEnv != "" {
		cfg.Cache.Redis.Password = os.Getenv(cfg.Cache.Redis.PasswordEnv)
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Feed.URL)
	if err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed.url: %q is not an absolute http(s) url", cfg.Feed.URL)
	}

	switch cfg.Feed.Mode {
	case ModeDirect, ModeRelay, ModeJSON:
		// valid
	default:
		return fmt.Errorf("feed.mode: unknown mode %q (want direct, relay or json)", cfg.Feed.Mode)
	}

	if cfg.Feed.Timeout.Duration < 0 {
		return fmt.Errorf("feed.timeout: must not be negative, got %s", cfg.Feed.Timeout.Duration)
	}

	switch cfg.Cache.Backend {
	case BackendSQLite, BackendFile, BackendRedis, BackendMemory:
		// valid
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want sqlite, file, redis or memory)", cfg.Cache.Backend)
	}
	if cfg.Cache.Redis.DB < 0 {
		return fmt.Errorf("cache.redis.db: must not be negative, got %d", cfg.Cache.Redis.DB)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("log.format: unknown format %q (want text or json)", cfg.Log.Format)
	}

	return nil
}
