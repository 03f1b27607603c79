// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	get <key>           Print one value
//	set <key> <value>   Change a value in the config file
//	reset               Write the defaults to the config file
//	path                Show the config file location
//
// Examples:
//
//	ragdesk config set backend.url http://10.0.0.5:8000
//	ragdesk config set render.citation_excerpt_length 200
//	ragdesk config set watch.extensions .txt,.md,.rst
package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/ragdesk/internal/config"
)

// ConfigPathData is the --json payload of config path.
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ConfigValueData is the --json payload of config get and set.
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// RunConfig handles the "config" command.
func RunConfig(env *Env, args Args) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		return configShow(env, args)
	case "get":
		return configGet(env, args)
	case "set":
		return configSet(env, args)
	case "reset":
		return configReset(env, args)
	case "path":
		return configPath(env, args)
	default:
		return NewUsageError("unknown config subcommand: "+args.Subcommand, "ragdesk config show")
	}
}

func configShow(env *Env, args Args) error {
	cfg := env.Config
	if args.JSON {
		return NewJSONResponse("config", cfg).Print(env.Stdout)
	}

	fmt.Fprintln(env.Stdout, TitleStyle.Render("ragdesk configuration"))
	section := ""
	for _, key := range config.GetAllKeys() {
		head, _, _ := strings.Cut(key, ".")
		if head != section && strings.Contains(key, ".") {
			section = head
			fmt.Fprintln(env.Stdout, SectionStyle.Render("["+section+"]"))
		}
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(env.Stdout, "  %s %s\n", LabelStyle.Render(key), ValueStyle.Render(formatValue(val)))
	}
	return nil
}

func configGet(env *Env, args Args) error {
	if args.ConfigKey == "" {
		return NewUsageError("config get needs a key", "ragdesk config get backend.url")
	}
	val, err := env.Config.Get(args.ConfigKey)
	if err != nil {
		return NewUsageError(err.Error(), "ragdesk config get backend.url")
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: val}).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, formatValue(val))
	return nil
}

// configSet edits the file configuration only, so environment and flag
// overrides are never persisted.
func configSet(env *Env, args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return NewUsageError("config set needs a key and a value", "ragdesk config set backend.timeout_secs 300")
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "locate file", err)
	}
	cfg, err := loadFileConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewUsageError(err.Error(), "ragdesk config set backend.timeout_secs 300")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveFileConfig(cfg, path); err != nil {
		return err
	}

	val, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: val}).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, formatValue(val))
	return nil
}

func configReset(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "locate file", err)
	}
	if err := saveFileConfig(config.Default(), path); err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigPathData{Path: path, Exists: true}).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s %s\n", SuccessStyle.Render("Defaults written to"), path)
	return nil
}

func configPath(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "locate file", err)
	}
	_, statErr := os.Stat(path)
	if args.JSON {
		return NewJSONResponse("config", ConfigPathData{Path: path, Exists: statErr == nil}).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, path)
	return nil
}

// loadFileConfig reads the TOML file at path without env overrides.
func loadFileConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if err := config.LoadTOML(cfg, path); err != nil {
		return nil, NewCommandError("config", "load", err)
	}
	return cfg, nil
}

// saveFileConfig writes cfg to path and refreshes the process-wide config,
// keeping any environment overrides.
func saveFileConfig(cfg *config.Config, path string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return NewCommandError("config", "create directory", err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "save", err)
	}
	if err := config.ReloadGlobal(); err != nil {
		log.Printf("CONFIG_RELOAD_ERROR | err=%v", err)
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case string:
		if val == "" {
			return `""`
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// ensureParent creates the directory that will hold path.
func ensureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}
