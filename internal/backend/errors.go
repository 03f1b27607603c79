// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeServer
	ErrTypeMalformed
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeServer:
		return "server"
	case ErrTypeMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ConnectionError means the request/response exchange could not complete.
type ConnectionError struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ServerError means the backend answered with a non-success status.
type ServerError struct {
	Endpoint   string
	StatusCode int
	// Detail is the backend's "detail" field, empty when absent.
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// MalformedResponseError means a success status carried an unusable body.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	// Detail is a "detail" field found in the body, if any.
	Detail string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	msg := "malformed response from " + e.Endpoint + ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Classify returns the ErrorType for err.
func Classify(err error) ErrorType {
	var connErr *ConnectionError
	var srvErr *ServerError
	var badErr *MalformedResponseError
	switch {
	case errors.As(err, &connErr):
		return ErrTypeConnection
	case errors.As(err, &srvErr):
		return ErrTypeServer
	case errors.As(err, &badErr):
		return ErrTypeMalformed
	default:
		return ErrTypeUnknown
	}
}

// Detail returns the backend-supplied detail carried by err, or "".
func Detail(err error) string {
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Detail
	}
	var badErr *MalformedResponseError
	if errors.As(err, &badErr) {
		return badErr.Detail
	}
	return ""
}
