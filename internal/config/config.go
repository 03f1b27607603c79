// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/ragdesk/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragdesk configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend BackendConfig `toml:"backend" json:"backend"`
	Render  RenderConfig  `toml:"render" json:"render"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
	Watch   WatchConfig   `toml:"watch" json:"watch"`
	History HistoryConfig `toml:"history" json:"history"`
}

// BackendConfig describes how to reach the question-answering backend.
type BackendConfig struct {
	// URL is the backend base URL
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds each request, in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// SkipReset keeps the remote knowledge store when the TUI starts.
	// By default every session starts from an empty store.
	SkipReset bool `toml:"skip_reset" json:"skip_reset"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// RenderConfig controls how answers are displayed.
type RenderConfig struct {
	// CitationExcerptLength is how many characters of each citation are shown
	CitationExcerptLength int `toml:"citation_excerpt_length" json:"citation_excerpt_length"`
	// PlainText disables markdown conversion
	PlainText bool `toml:"plain_text" json:"plain_text"`
	// WordWrap is the markdown wrap width for non-interactive output (0 = none)
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// Style is a glamour style name: auto, dark, light, notty, dracula, ...
	Style string `toml:"style" json:"style"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark", or "light"
	Theme string `toml:"theme" json:"theme"`
	// ExportDir is where Ctrl+E writes transcripts (empty = ~/.ragdesk/exports)
	ExportDir string `toml:"export_dir" json:"export_dir"`
	// HistoryFile stores chat REPL history (empty = ~/.ragdesk/history)
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Path is the log file; "-" logs to stderr; empty = ~/.ragdesk/ragdesk.log
	Path string `toml:"path" json:"path"`
}

// WatchConfig controls `ingest --watch`.
type WatchConfig struct {
	// Extensions lists file suffixes to ingest, e.g. [".txt", ".md"]
	Extensions []string `toml:"extensions" json:"extensions"`
	// MinIntervalMs is the minimum gap between two watch-mode ingests
	MinIntervalMs int `toml:"min_interval_ms" json:"min_interval_ms"`
	// DebounceMs waits for writes to a file to settle before ingesting it
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
}

// HistoryConfig controls the saved-session database.
type HistoryConfig struct {
	// Disabled stops sessions from being saved on exit
	Disabled bool `toml:"disabled" json:"disabled"`
	// Path is the SQLite file (empty = ~/.ragdesk/sessions.db)
	Path string `toml:"path" json:"path"`
	// MaxSessions is how many sessions are kept; the oldest are pruned
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8000",
			TimeoutSecs: 120,
		},
		Render: RenderConfig{
			CitationExcerptLength: 100,
			WordWrap:              80,
			Style:                 "auto",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Watch: WatchConfig{
			Extensions:    []string{".txt", ".md"},
			MinIntervalMs: 1000,
			DebounceMs:    500,
		},
		History: HistoryConfig{
			MaxSessions: 100,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ragdesk configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RAGDESK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragdesk"), nil
}

func configFile(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configFile("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configFile("config.json") }

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// LogPath resolves Log.Path: "" means the default file, "-" means stderr.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return configFile("ragdesk.log")
}

// ExportDir resolves UI.ExportDir.
func (c *Config) ExportDir() (string, error) {
	if c.UI.ExportDir != "" {
		return c.UI.ExportDir, nil
	}
	return configFile("exports")
}

// HistoryPath resolves UI.HistoryFile.
func (c *Config) HistoryPath() (string, error) {
	if c.UI.HistoryFile != "" {
		return c.UI.HistoryFile, nil
	}
	return configFile("history")
}

// HistoryDBPath resolves History.Path.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	return configFile("sessions.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. A ./.env file
// is read into the environment, then environment overrides are applied.
// When a file exists but cannot be parsed, defaults are returned together
// with the load error.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()
	var loadErr error

	tomlPath, tomlErr := ConfigPathTOML()
	jsonPath, jsonErr := ConfigPathJSON()
	switch {
	case tomlErr == nil && fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		}
	case jsonErr == nil && fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			cfg = Default()
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads and validates configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills zero values left by a partial config file.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Render.CitationExcerptLength == 0 {
		cfg.Render.CitationExcerptLength = defaults.Render.CitationExcerptLength
	}
	if cfg.Render.Style == "" {
		cfg.Render.Style = defaults.Render.Style
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = defaults.Watch.Extensions
	}
	if cfg.Watch.MinIntervalMs == 0 {
		cfg.Watch.MinIntervalMs = defaults.Watch.MinIntervalMs
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
	if cfg.History.MaxSessions == 0 {
		cfg.History.MaxSessions = defaults.History.MaxSessions
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ragdesk configuration file\n")
	buf.WriteString("# Generated by ragdesk - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg to path as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes = map[string]bool{"auto": true, "dark": true, "light": true}
	validStyles = map[string]bool{
		"auto": true, "dark": true, "light": true, "notty": true, "ascii": true,
		"dracula": true, "pink": true, "tokyo-night": true,
	}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Backend.URL),
		})
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Backend.TimeoutSecs),
		})
	}

	if c.Render.CitationExcerptLength < 1 || c.Render.CitationExcerptLength > 10000 {
		errs = append(errs, ValidationError{
			Field:   "render.citation_excerpt_length",
			Message: fmt.Sprintf("must be between 1 and 10000, got %d", c.Render.CitationExcerptLength),
		})
	}
	if c.Render.WordWrap < 0 || c.Render.WordWrap > 1000 {
		errs = append(errs, ValidationError{
			Field:   "render.word_wrap",
			Message: fmt.Sprintf("must be between 0 and 1000, got %d", c.Render.WordWrap),
		})
	}
	if !validStyles[strings.ToLower(c.Render.Style)] {
		errs = append(errs, ValidationError{
			Field:   "render.style",
			Message: fmt.Sprintf("unknown style '%s'", c.Render.Style),
		})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ValidationError{
				Field:   "watch.extensions",
				Message: fmt.Sprintf("extension '%s' must start with a dot", ext),
			})
		}
	}
	if c.Watch.MinIntervalMs < 0 || c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch",
			Message: "intervals cannot be negative",
		})
	}

	if c.History.MaxSessions < 1 || c.History.MaxSessions > 100000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_sessions",
			Message: fmt.Sprintf("must be between 1 and 100000, got %d", c.History.MaxSessions),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RAGDESK_BACKEND_URL: overrides backend.url
//   - RAGDESK_TIMEOUT: overrides backend.timeout_secs
//   - RAGDESK_EXCERPT_LENGTH: overrides render.citation_excerpt_length
//   - RAGDESK_PLAIN: set to "1" or "true" to disable markdown
//   - RAGDESK_THEME: overrides ui.theme
//   - RAGDESK_LOG_PATH: overrides log.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RAGDESK_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("RAGDESK_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("RAGDESK_EXCERPT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Render.CitationExcerptLength = n
		}
	}
	if v := os.Getenv("RAGDESK_PLAIN"); v != "" {
		c.Render.PlainText = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("RAGDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RAGDESK_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type; comma-separated strings fill string lists.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks key through the struct by TOML tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i], "."))
		}
		idx := fieldIndexByTag(v.Type(), part)
		if idx < 0 {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = v.Field(idx)
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
	}
	return v, nil
}

func fieldIndexByTag(t reflect.Type, name string) int {
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if strings.EqualFold(tag, name) {
			return i
		}
	}
	return -1
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(b)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.IsValid() && val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns every settable key in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + strings.Split(f.Tag.Get("toml"), ",")[0]
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	sort.Strings(keys)
	return keys
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Watch.Extensions = append([]string(nil), c.Watch.Extensions...)
	return &clone
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if cfg == nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return err
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
