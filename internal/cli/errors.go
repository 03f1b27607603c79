// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for ragdesk commands.
//
// Commands always return errors and never exit themselves; Execute
// displays the error and maps it to an exit code.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/ragdesk/internal/backend"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/controller"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitServerError indicates the backend answered with an error or garbage
	ExitServerError = 6
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "ingest")
	Action  string // Action being performed (e.g., "read file")
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is invalid command-line input.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// NewCommandError creates a new command error.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// NewUsageError creates a new usage error.
func NewUsageError(reason, example string) error {
	return &UsageError{Reason: reason, Example: example}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) || controller.IsValidation(err) {
		return ExitUsageError
	}

	var cfgErr config.ValidateErrors
	var cfgOne config.ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &cfgOne) {
		return ExitConfigError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	switch backend.Classify(err) {
	case backend.ErrTypeConnection:
		var connErr *backend.ConnectionError
		if errors.As(err, &connErr) && errors.Is(connErr.Cause, context.DeadlineExceeded) {
			return ExitTimeoutError
		}
		return ExitNetworkError
	case backend.ErrTypeServer, backend.ErrTypeMalformed:
		return ExitServerError
	}
	return ExitGeneralError
}

// errorType names an error for JSON output.
func errorType(err error) string {
	var usageErr *UsageError
	switch {
	case errors.As(err, &usageErr), controller.IsValidation(err):
		return "usage_error"
	case errors.Is(err, controller.ErrBusy):
		return "busy"
	}
	if t := backend.Classify(err); t != backend.ErrTypeUnknown {
		return t.String()
	}
	return "generic_error"
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to stderr, or as a JSON envelope to stdout.
func DisplayError(env *Env, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = errorType(err)
		resp.Detail = backend.Detail(err)
		_ = resp.Print(env.Stdout)
		return
	}
	fmt.Fprintf(env.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
