// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for ragdesk.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdIngest
	CmdReset
	CmdEval
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdIngest:
		return "ingest"
	case CmdReset:
		return "reset"
	case CmdEval:
		return "eval"
	case CmdConfig:
		return "config"
	case CmdHistory:
		return "history"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON    bool   // Output in JSON format
	Quiet   bool   // Suppress status lines
	Verbose bool   // Also log to stderr
	URL     string // Backend URL override

	// Command-specific
	Query      string
	File       string
	WatchDir   string
	HTML       bool
	Format     string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after the command name)
	Raw []string
}

const usageText = `ragdesk - terminal client for a retrieval-augmented QA backend

Paste documents in, ask questions, get answers with numbered citations.

Usage:
  ragdesk                         Start the TUI (default)
  ragdesk ask "question"          Ask a single question
  ragdesk chat                    Line-based chat with history
  ragdesk ingest "text"           Teach the backend some text
  ragdesk ingest --file notes.md  Ingest a file ("-" reads stdin)
  ragdesk ingest --watch DIR      Ingest files as they change in DIR
  ragdesk reset                   Wipe the backend knowledge store
  ragdesk eval [--file KB]        Run the built-in evaluation
  ragdesk config [show|get|set|path|reset]
  ragdesk history [list|show ID|export ID [md|json]|search TEXT|delete ID]
  ragdesk version
  ragdesk help

Global Flags:
  --url URL       Backend URL (default from config, http://127.0.0.1:8000)
  --json          JSON output for ask, ingest, reset, eval, config, version
  -q, --quiet     Suppress status lines
  -v, --verbose   Also write the log to stderr

Ask Flags:
  --html          Render the answer as sanitized HTML
  -f, --file F    Read the question from a file

Chat Commands:
  /ingest TEXT    Teach text without leaving the chat
  /file PATH      Ingest a file
  /kb             Show what was ingested this session
  /reset          Wipe the backend knowledge store
  /export [md|json]  Write the session transcript
  /help, /quit

TUI Keys:
  Tab / Shift+Tab  Move between fields and buttons
  Enter            Send question (or press focused button)
  Ctrl+S           Ingest the text in the left pane
  Ctrl+E           Export the session transcript
  PgUp / PgDn      Scroll the chat
  Ctrl+C           Quit

Environment:
  RAGDESK_HOME, RAGDESK_BACKEND_URL, RAGDESK_TIMEOUT, RAGDESK_EXCERPT_LENGTH,
  RAGDESK_PLAIN, RAGDESK_THEME, RAGDESK_LOG_PATH (a .env file is read first)

Version: %s
`

// PrintUsage prints the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ragdesk version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a command line without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch name {
	case "tui":
		return CmdTUI, parsed
	case "ask", "a":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed
	case "chat":
		return CmdChat, parsed
	case "ingest", "teach":
		parseIngestArgs(&parsed, remaining)
		return CmdIngest, parsed
	case "reset":
		return CmdReset, parsed
	case "eval", "evaluate":
		parseEvalArgs(&parsed, remaining)
		return CmdEval, parsed
	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed
	case "history", "sessions":
		parseHistoryArgs(&parsed, remaining)
		return CmdHistory, parsed
	case "version", "--version":
		return CmdVersion, parsed
	case "help", "-h", "--help":
		return CmdHelp, parsed
	default:
		parsed.Raw = append([]string{name}, remaining...)
		return CmdUnknown, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--json":
			parsed.JSON = true
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsed.URL = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--url=") {
				parsed.URL = strings.TrimPrefix(arg, "--url=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, parsed
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "html")
	args.HTML = p.BoolFlag("html")
	args.File = p.Flag("file")
	if args.File == "" {
		args.File = p.Flag("f")
	}
	args.Query = JoinPositionalArgs(p, 0)
}

// parseIngestArgs parses ingest command specific arguments.
func parseIngestArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "existing")
	args.File = p.Flag("file")
	if args.File == "" {
		args.File = p.Flag("f")
	}
	args.WatchDir = p.Flag("watch")
	if args.WatchDir == "" {
		args.WatchDir = p.Flag("w")
	}
	if p.BoolFlag("existing") {
		args.Subcommand = "existing"
	}
	args.Query = JoinPositionalArgs(p, 0)
}

// parseEvalArgs parses eval command specific arguments.
func parseEvalArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.File = p.Flag("file")
	if args.File == "" {
		args.File = p.Flag("f")
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// parseHistoryArgs parses history command specific arguments.
func parseHistoryArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		return
	}
	args.Subcommand = remaining[0]
	rest := remaining[1:]
	if strings.EqualFold(args.Subcommand, "search") {
		args.Query = strings.Join(rest, " ")
		return
	}
	if len(rest) > 0 {
		args.Query = rest[0]
	}
	if len(rest) > 1 {
		args.Format = rest[1]
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// Execute runs a non-TUI command and returns the process exit code.
func Execute(ctx context.Context, cmd Command, args Args, env *Env) int {
	var err error
	switch cmd {
	case CmdAsk:
		err = RunAsk(ctx, env, args)
	case CmdChat:
		err = RunChat(ctx, env, args)
	case CmdIngest:
		err = RunIngest(ctx, env, args)
	case CmdReset:
		err = RunReset(ctx, env, args)
	case CmdEval:
		err = RunEval(ctx, env, args)
	case CmdConfig:
		err = RunConfig(env, args)
	case CmdHistory:
		err = RunHistory(ctx, env, args)
	case CmdVersion:
		err = RunVersion(env, args)
	case CmdHelp:
		PrintUsage(env.Stdout)
	default:
		err = NewUsageError(fmt.Sprintf("unknown command %q", strings.Join(args.Raw, " ")), "ragdesk help")
	}
	if err != nil {
		DisplayError(env, cmd.String(), err, args.JSON)
	}
	return GetExitCode(err)
}

// VersionData is the --json payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// RunVersion handles the "version" command.
func RunVersion(env *Env, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(env.Stdout)
	}
	PrintVersion(env.Stdout)
	return nil
}
