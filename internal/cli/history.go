// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Saved sessions.
//
// Subcommands:
//
//	list (default)          List saved sessions, newest first
//	show <id>               Print a session as markdown
//	export <id> [md|json]   Write a session to the export directory
//	search <text>           Sessions whose chat or knowledge contains text
//	delete <id>             Remove a session
//
// IDs may be shortened to any unique prefix.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/export"
	"github.com/jeranaias/ragdesk/internal/storage"
)

// HistoryExportData is the --json payload of history export and delete.
type HistoryExportData struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// OpenHistory opens the session database named by cfg.
func OpenHistory(cfg *config.Config) (*storage.Store, error) {
	path, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	store.MaxSessions = cfg.History.MaxSessions
	return store, nil
}

// SaveSession stores t in the history database unless history is disabled
// or t is empty. It reports whether anything was written.
func SaveSession(ctx context.Context, cfg *config.Config, t *export.Transcript) (bool, error) {
	if cfg.History.Disabled || t.IsEmpty() {
		return false, nil
	}
	store, err := OpenHistory(cfg)
	if err != nil {
		return false, err
	}
	defer store.Close()
	if err := store.Save(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

// RunHistory handles the "history" command.
func RunHistory(ctx context.Context, env *Env, args Args) error {
	sub := strings.ToLower(args.Subcommand)
	switch sub {
	case "", "list", "ls", "search", "show", "export", "delete", "rm":
	default:
		return NewUsageError("unknown history subcommand: "+args.Subcommand, "ragdesk history list")
	}

	store, err := OpenHistory(env.Config)
	if err != nil {
		return NewCommandError("history", "open database", err)
	}
	defer store.Close()

	switch sub {
	case "", "list", "ls":
		metas, err := store.List(ctx)
		if err != nil {
			return NewCommandError("history", "list", err)
		}
		return printSessions(env, args, metas)

	case "search":
		if strings.TrimSpace(args.Query) == "" {
			return NewUsageError("history search needs some text", `ragdesk history search "titan"`)
		}
		metas, err := store.Search(ctx, args.Query)
		if err != nil {
			return NewCommandError("history", "search", err)
		}
		return printSessions(env, args, metas)

	case "show":
		t, err := loadSession(ctx, store, args.Query)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("history", t).Print(env.Stdout)
		}
		data, err := export.NewMarkdownExporter(export.DefaultOptions()).Export(t)
		if err != nil {
			return NewCommandError("history", "render", err)
		}
		fmt.Fprint(env.Stdout, string(data))
		return nil

	case "export":
		t, err := loadSession(ctx, store, args.Query)
		if err != nil {
			return err
		}
		dir, err := env.Config.ExportDir()
		if err != nil {
			return NewCommandError("history", "export", err)
		}
		opts := &export.Options{OutputDir: dir, IncludeMetadata: true, IncludeTimestamps: true}
		exporter, err := export.ForFormat(args.Format, opts)
		if err != nil {
			return NewUsageError(err.Error(), "ragdesk history export ID json")
		}
		path, err := export.ExportToFile(t, exporter, opts)
		if err != nil {
			return NewCommandError("history", "export", err)
		}
		log.Printf("EXPORT_COMPLETE | id=%s path=%s", t.SessionID, path)
		if args.JSON {
			return NewJSONResponse("history", HistoryExportData{ID: t.SessionID, Path: path}).Print(env.Stdout)
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", SuccessStyle.Render("Exported to"), path)
		return nil

	default: // delete, rm
		if args.Query == "" {
			return NewUsageError("history delete needs a session ID", "ragdesk history delete 0f8fad5b")
		}
		id, err := store.Delete(ctx, args.Query)
		if err != nil {
			return historyLookupError(err)
		}
		if args.JSON {
			return NewJSONResponse("history", HistoryExportData{ID: id}).Print(env.Stdout)
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", SuccessStyle.Render("Deleted"), id)
		return nil
	}
}

func loadSession(ctx context.Context, store *storage.Store, id string) (*export.Transcript, error) {
	if id == "" {
		return nil, NewUsageError("a session ID is required", "ragdesk history show 0f8fad5b")
	}
	t, err := store.Load(ctx, id)
	if err != nil {
		return nil, historyLookupError(err)
	}
	return t, nil
}

// historyLookupError turns an unknown or ambiguous ID into a usage error.
func historyLookupError(err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) || errors.Is(err, storage.ErrAmbiguousID) {
		return NewUsageError(err.Error(), "ragdesk history list")
	}
	return NewCommandError("history", "load", err)
}

func printSessions(env *Env, args Args, metas []storage.SessionMeta) error {
	if args.JSON {
		return NewJSONResponse("history", metas).Print(env.Stdout)
	}
	fmt.Fprint(env.Stdout, storage.FormatSessionList(metas))
	if len(metas) == 0 {
		fmt.Fprintln(env.Stdout)
	}
	return nil
}
