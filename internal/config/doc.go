// Package config loads CineVibe client settings.
//
// # Resolution order
//
//  1. Built-in defaults (see Default)
//  2. ~/.config/cinevibe/config.toml, or the path passed to Load; a missing
//     file is not an error
//  3. CINEVIBE_* environment variables, which win over the file
//
// Empty or out-of-range values fall back to the defaults, and token_path and
// log_path get tilde expansion.
//
// # TOML format
//
//	api_url = "https://api.cinevibe.app"
//	page_size = 20
//	profile_ttl_seconds = 60
//	operation_reset_ms = 2000
//	request_timeout_seconds = 10
//	max_retries = 2
//	requests_per_second = 10
//	token_path = "~/.config/cinevibe/token"
//	log_path = "~/.local/state/cinevibe/cinevibe.log"
//	log_level = "info"
//
// The bearer token itself is never read from the file: it comes from
// CINEVIBE_TOKEN or the file at token_path.
package config
