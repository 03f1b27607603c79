// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of ragdesk.
//
// # Key Types
//
//   - Command: Enumeration of the CLI commands
//   - Args: Parsed command-line arguments
//   - ArgParser: Flag and positional parsing shared by the commands
//   - Env: Config, backend client and standard streams for one run
//   - JSONResponse: Envelope for --json output
//
// # Usage
//
//	cmd, args := cli.Parse()
//	config.SetGlobal(cfg)
//	os.Exit(cli.Execute(ctx, cmd, args, cli.NewEnv(args)))
//
// # Commands
//
//   - tui: Interactive terminal UI (default, run by main)
//   - ask: Single question
//   - chat: Line-based chat REPL with history
//   - ingest: Add text, a file, stdin, or a watched directory
//   - reset: Wipe the backend knowledge store
//   - eval: Reset, ingest a test knowledge base, ask the test questions
//   - config: Show, get and set configuration
//   - history: List, search, show, export and delete saved sessions
//   - version, help
package cli
