// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ingest.go - Teach text to the backend, once or from a watched directory.
//
// Examples:
//
//	ragdesk ingest "Project Titan launches in Q3 2028."
//	ragdesk ingest --file memo.txt
//	cat memo.txt | ragdesk ingest
//	ragdesk ingest --watch ./notes --existing
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/watch"
)

// IngestData is the --json payload of ingest.
type IngestData struct {
	Chunks int    `json:"chunks"`
	Status string `json:"status,omitempty"`
	Chars  int    `json:"chars"`
	Path   string `json:"path,omitempty"`
}

// RunIngest handles the "ingest" command.
func RunIngest(ctx context.Context, env *Env, args Args) error {
	ingestion := controller.NewIngestion(env.Client, session.NewStore(), env.Reporter(args))
	if args.WatchDir != "" {
		return runWatch(ctx, env, args, ingestion)
	}

	text, err := env.ReadText("ingest", args.Query, args.File)
	if err != nil {
		return err
	}
	result, err := ingestion.Ingest(ctx, text)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("ingest", IngestData{
			Chunks: result.Chunks,
			Status: result.Status,
			Chars:  len([]rune(text)),
			Path:   args.File,
		}).Print(env.Stdout)
	}
	return nil
}

// runWatch ingests files under args.WatchDir until ctx is cancelled.
func runWatch(ctx context.Context, env *Env, args Args, ingestion *controller.Ingestion) error {
	wc := env.Config.Watch
	w, err := watch.New(args.WatchDir, ingestion, watch.Options{
		Extensions:      wc.Extensions,
		Debounce:        time.Duration(wc.DebounceMs) * time.Millisecond,
		MinInterval:     time.Duration(wc.MinIntervalMs) * time.Millisecond,
		IncludeExisting: args.Subcommand == "existing",
	})
	if err != nil {
		return NewCommandError("ingest", "watch", err)
	}

	if !args.Quiet && !args.JSON {
		fmt.Fprintf(env.Stderr, "%s %s (Ctrl+C to stop)\n",
			TitleStyle.Render("Watching"), args.WatchDir)
	}

	return w.Run(ctx, func(ev watch.Event) {
		if args.JSON {
			if ev.Err != nil {
				resp := NewJSONErrorResponse("ingest", ev.Err)
				resp.Data = IngestData{Path: ev.Path}
				_ = resp.Print(env.Stdout)
				return
			}
			_ = NewJSONResponse("ingest", IngestData{
				Chunks: ev.Result.Chunks,
				Status: ev.Result.Status,
				Path:   ev.Path,
			}).Print(env.Stdout)
			return
		}
		if !args.Quiet {
			fmt.Fprintf(env.Stderr, "  %s\n", DimStyle.Render(ev.Path))
		}
	})
}
