package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/shelf/internal/kv"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PageSize != 3 {
		t.Fatalf("PageSize = %d, want 3", cfg.PageSize)
	}
	if cfg.AlertDuration != 10*time.Second {
		t.Fatalf("AlertDuration = %v, want 10s", cfg.AlertDuration)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.StoreBackend != kv.BackendFile {
		t.Fatalf("StoreBackend = %q, want file", cfg.StoreBackend)
	}
	wantStore, err := expandPath(defaultStorePath)
	if err != nil {
		t.Fatalf("expandPath(defaultStorePath) returned error: %v", err)
	}
	if cfg.StorePath != wantStore {
		t.Fatalf("StorePath = %q, want %q", cfg.StorePath, wantStore)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_url = "  http://127.0.0.1:8080  "
request_timeout_seconds = 3
requests_per_second = 2.5
store_backend = " Redis "
redis_addr = "10.0.0.5:6380"
redis_db = 2
redis_prefix = "test:"
page_size = 5
alert_seconds = 4
store_path = "  ~/shelf/data.json  "
log_level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8080" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.RequestsPerSecond != 2.5 {
		t.Fatalf("timeout/rps = %v/%v, want 3s/2.5", cfg.RequestTimeout, cfg.RequestsPerSecond)
	}
	if cfg.StoreBackend != kv.BackendRedis {
		t.Fatalf("StoreBackend = %q, want redis", cfg.StoreBackend)
	}
	if cfg.PageSize != 5 || cfg.AlertDuration != 4*time.Second {
		t.Fatalf("page/alert = %d/%v, want 5/4s", cfg.PageSize, cfg.AlertDuration)
	}
	if cfg.StorePath != filepath.Join(home, "shelf/data.json") {
		t.Fatalf("StorePath = %q, want under HOME", cfg.StorePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}

	opts := cfg.StoreOptions()
	if opts.Backend != kv.BackendRedis || opts.RedisAddr != "10.0.0.5:6380" || opts.RedisDB != 2 || opts.RedisPrefix != "test:" {
		t.Fatalf("StoreOptions = %+v", opts)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
api_url = "   "
page_size = 0
alert_seconds = -5
requests_per_second = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PageSize != defaultPageSize || cfg.AlertDuration != defaultAlertSeconds*time.Second {
		t.Fatalf("page/alert = %d/%v, want defaults", cfg.PageSize, cfg.AlertDuration)
	}
	if cfg.RequestsPerSecond != defaultRPS {
		t.Fatalf("RequestsPerSecond = %v, want %v", cfg.RequestsPerSecond, defaultRPS)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELF_PAGE_SIZE", "7")
	t.Setenv("SHELF_STORE_BACKEND", "memory")
	t.Setenv("SHELF_API_URL", "http://env.example")

	path := writeConfig(t, `
page_size = 5
api_url = "http://file.example"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PageSize != 7 {
		t.Fatalf("PageSize = %d, want env value 7", cfg.PageSize)
	}
	if cfg.StoreBackend != kv.BackendMemory {
		t.Fatalf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.APIURL != "http://env.example" {
		t.Fatalf("APIURL = %q, want env value", cfg.APIURL)
	}
}

func TestLoad_BadEnvValueFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELF_PAGE_SIZE", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "env overrides") {
		t.Fatalf("Load error = %v, want env override error", err)
	}
}

func TestLoad_UnknownBackendFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `store_backend = "sqlite"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error, want unknown backend error")
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `api_url = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
