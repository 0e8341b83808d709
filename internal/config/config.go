package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shelf/internal/kv"
)

// Config holds shelf's runtime settings.
type Config struct {
	APIURL            string
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	StoreBackend  string
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PageSize      int
	AlertDuration time.Duration

	LogPath  string
	LogLevel string
}

const (
	defaultConfigPath     = "~/.config/shelf/config.toml"
	defaultAPIURL         = "https://fakestoreapi.com"
	defaultRequestTimeout = 10
	defaultRPS            = 5
	defaultStorePath      = "~/.local/share/shelf/store.json"
	defaultRedisAddr      = "127.0.0.1:6379"
	defaultRedisPrefix    = "shelf:"
	defaultPageSize       = 3
	defaultAlertSeconds   = 10
	defaultLogPath        = "~/.local/share/shelf/shelf.log"
	defaultLogLevel       = "info"
)

// raw mirrors config.toml. Environment variables override file values.
type raw struct {
	APIURL            string  `toml:"api_url" env:"SHELF_API_URL"`
	RequestTimeout    int     `toml:"request_timeout_seconds" env:"SHELF_REQUEST_TIMEOUT_SECONDS"`
	RequestsPerSecond float64 `toml:"requests_per_second" env:"SHELF_REQUESTS_PER_SECOND"`
	StoreBackend      string  `toml:"store_backend" env:"SHELF_STORE_BACKEND"`
	StorePath         string  `toml:"store_path" env:"SHELF_STORE_PATH"`
	RedisAddr         string  `toml:"redis_addr" env:"SHELF_REDIS_ADDR"`
	RedisPassword     string  `toml:"redis_password" env:"SHELF_REDIS_PASSWORD"`
	RedisDB           int     `toml:"redis_db" env:"SHELF_REDIS_DB"`
	RedisPrefix       string  `toml:"redis_prefix" env:"SHELF_REDIS_PREFIX"`
	PageSize          int     `toml:"page_size" env:"SHELF_PAGE_SIZE"`
	AlertSeconds      int     `toml:"alert_seconds" env:"SHELF_ALERT_SECONDS"`
	LogPath           string  `toml:"log_path" env:"SHELF_LOG_PATH"`
	LogLevel          string  `toml:"log_level" env:"SHELF_LOG_LEVEL"`
}

// Load reads the config at path (or the default location), applies SHELF_*
// environment overrides, and fills defaults for anything missing. A missing
// file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var r raw
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &r); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&r); err != nil {
		return Config{}, fmt.Errorf("read env overrides: %w", err)
	}
	return r.normalize()
}

func (r raw) normalize() (Config, error) {
	cfg := Config{
		APIURL:            orDefault(r.APIURL, defaultAPIURL),
		RequestTimeout:    time.Duration(positiveOr(r.RequestTimeout, defaultRequestTimeout)) * time.Second,
		RequestsPerSecond: r.RequestsPerSecond,
		StoreBackend:      strings.ToLower(orDefault(r.StoreBackend, kv.BackendFile)),
		RedisAddr:         orDefault(r.RedisAddr, defaultRedisAddr),
		RedisPassword:     r.RedisPassword,
		RedisDB:           r.RedisDB,
		RedisPrefix:       orDefault(r.RedisPrefix, defaultRedisPrefix),
		PageSize:          positiveOr(r.PageSize, defaultPageSize),
		AlertDuration:     time.Duration(positiveOr(r.AlertSeconds, defaultAlertSeconds)) * time.Second,
		LogLevel:          strings.ToLower(orDefault(r.LogLevel, defaultLogLevel)),
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("redis_db must be >= 0, got %d", cfg.RedisDB)
	}

	switch cfg.StoreBackend {
	case kv.BackendFile, kv.BackendRedis, kv.BackendMemory:
	default:
		return Config{}, fmt.Errorf("store_backend must be file, redis or memory, got %q", cfg.StoreBackend)
	}

	var err error
	if cfg.StorePath, err = expandPath(orDefault(r.StorePath, defaultStorePath)); err != nil {
		return Config{}, fmt.Errorf("store_path: %w", err)
	}
	if cfg.LogPath, err = expandPath(orDefault(r.LogPath, defaultLogPath)); err != nil {
		return Config{}, fmt.Errorf("log_path: %w", err)
	}
	return cfg, nil
}

// StoreOptions maps the store settings onto kv.Options.
func (c Config) StoreOptions() kv.Options {
	return kv.Options{
		Backend:       c.StoreBackend,
		Path:          c.StorePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

func orDefault(v, def string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return def
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
