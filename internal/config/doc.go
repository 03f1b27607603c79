// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragdesk.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Backend URL, request timeout, reset-on-start
//   - RenderConfig: Citation excerpt length, markdown style and wrapping
//   - UIConfig: Theme and transcript export directory
//   - LogConfig: Log file location
//   - WatchConfig: File types and pacing for watch-mode ingestion
//   - HistoryConfig: Saved-session database location and size
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RAGDESK_*), including ones set in ./.env
//   - ~/.ragdesk/config.toml
//   - ~/.ragdesk/config.json
//   - Built-in defaults
//
// RAGDESK_HOME relocates the whole ~/.ragdesk directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClientWithConfig(&backend.Config{
//	    BaseURL: cfg.Backend.URL,
//	    Timeout: cfg.Backend.Timeout(),
//	})
package config
