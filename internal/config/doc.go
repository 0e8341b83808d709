// Package config loads shelf's settings.
//
// # Resolution
//
//  1. The path given with -config, else ~/.config/shelf/config.toml
//  2. A missing file is fine; every key has a default
//  3. SHELF_* environment variables override file values
//  4. Blank or non-positive values fall back to defaults
//
// # TOML Format
//
//	api_url = "https://fakestoreapi.com"
//	request_timeout_seconds = 10
//	requests_per_second = 5
//	store_backend = "file"          # file | redis | memory
//	store_path = "~/.local/share/shelf/store.json"
//	redis_addr = "127.0.0.1:6379"
//	redis_db = 0
//	redis_prefix = "shelf:"
//	page_size = 3
//	alert_seconds = 10
//	log_path = "~/.local/share/shelf/shelf.log"
//	log_level = "info"
//
// Each key's environment name is SHELF_ plus the key in upper case, for
// example SHELF_STORE_BACKEND=redis.
//
// # Error Handling
//
// Load fails on unreadable files, TOML syntax errors, malformed environment
// values, and an unknown store backend.
package config
