// Package app is the composition root of the CineVibe client.
//
// # Overview
//
// Run loads configuration and preferences, opens the log file, reads the
// signed-in identity from the token, builds the API client and the shared
// profile cache, starts the profile refresher and then blocks in the TUI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()            TOML file, then CINEVIBE_* env
//	       ├─────> prefs.Load()             Theme and start view
//	       ├─────> logging.New()            zap console log file
//	       ├─────> auth.NewTokenProvider()  Bearer token and identity
//	       ├─────> api.NewClient()          REST client
//	       ├─────> profile.New()            Shared current-user cache
//	       ├─────> StartProfileRefresher()  Background refresh
//	       └─────> ui.Run()                 Start TUI (blocks)
//
// # Error Handling
//
// Missing or invalid configuration, an unreadable or expired token and a bad
// API URL are fatal and returned from Run. Request failures after startup
// are never fatal: the screens show them and the refresher retries with
// capped exponential backoff.
package app
