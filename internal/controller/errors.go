// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import "errors"

// ValidationError means user input was rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Sentinel errors for easy checking.
var (
	// ErrBusy is returned when the operation already has a request in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrEmptyQuestion is returned by Submit for blank questions.
	ErrEmptyQuestion = &ValidationError{Field: "question", Message: "question is empty"}

	// ErrEmptyText is returned by Begin for blank ingestion text.
	ErrEmptyText = &ValidationError{Field: "text", Message: "Please enter some text."}

	// ErrSettled is returned when Settle is called a second time.
	ErrSettled = errors.New("request already settled")
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
