// ragdesk - A terminal desk for teaching text to a retrieval QA backend and
// asking questions about it.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragdesk/internal/cli"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/export"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/ui/app"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := config.Load()
	if cfg == nil {
		// config commands still run so the file can be repaired
		if cmd != cli.CmdConfig {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.ExitConfigError)
		}
		cfg = config.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if args.URL != "" {
		cfg.Backend.URL = args.URL
	}
	config.SetGlobal(cfg)

	closeLog := setupLogging(cfg, cmd, args)
	defer closeLog()
	log.Printf("STARTUP | version=%s command=%s backend=%s", Version, cmd, cfg.Backend.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var code int
	if cmd == cli.CmdTUI {
		code = runTUI(config.Global())
	} else {
		code = cli.Execute(ctx, cmd, args, cli.NewEnv(args))
	}

	stop()
	closeLog()
	os.Exit(code)
}

// setupLogging points the standard logger at the configured file. With
// --verbose outside the TUI, lines also go to stderr.
func setupLogging(cfg *config.Config, cmd cli.Command, args cli.Args) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path, err := cfg.LogPath()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	var out io.Writer = io.Discard
	closer := func() {}
	switch {
	case path == "-" && cmd != cli.CmdTUI:
		out = os.Stderr
	case path != "-":
		if err := os.MkdirAll(filepath.Dir(path), 0700); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
				out = f
				closer = func() { _ = f.Close() }
			}
		}
	}

	if args.Verbose && cmd != cli.CmdTUI && out != os.Stderr {
		out = io.MultiWriter(out, os.Stderr)
	}
	log.SetOutput(out)

	var once sync.Once
	return func() { once.Do(closer) }
}

// runTUI starts the two-pane interface and returns the exit code.
func runTUI(cfg *config.Config) int {
	theme := styles.NewTheme(cfg.UI.Theme)
	client := cli.NewClient(cfg)

	m := app.New(app.Options{
		Config:     cfg,
		Backend:    client,
		Store:      session.NewStore(),
		Theme:      theme,
		BackendURL: client.BaseURL(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running ragdesk: %v\n", err)
		return cli.ExitGeneralError
	}

	store := m.Store()
	t := export.FromState(store.ID(), store.StartTime(), store.Snapshot())
	saved, err := cli.SaveSession(context.Background(), cfg, t)
	switch {
	case err != nil:
		log.Printf("HISTORY_SAVE_ERROR | id=%s err=%v", store.ID(), err)
		fmt.Fprintf(os.Stderr, "Warning: session not saved: %v\n", err)
	case saved:
		fmt.Fprintf(os.Stderr, "Session saved. Reopen with: ragdesk history show %.8s\n", store.ID())
	}
	return cli.ExitSuccess
}
