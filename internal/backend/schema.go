// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jeranaias/ragdesk/internal/model"
)

// =============================================================================
// WIRE SCHEMAS
// =============================================================================

// IngestRequest is the /ingest body.
type IngestRequest struct {
	Text string `json:"text"`
}

// ChatRequest is the /chat body.
type ChatRequest struct {
	Question string `json:"question"`
}

// ingestPayload is the /ingest success body.
type ingestPayload struct {
	Chunks *int   `json:"chunks" validate:"required,gte=0"`
	Status string `json:"status"`
}

// chatPayload is the /chat success body. Detail is read so a body with no
// answer can still explain itself.
type chatPayload struct {
	Answer    string           `json:"answer" validate:"required"`
	Citations []model.Citation `json:"citations" validate:"dive"`
	TimeTaken float64          `json:"time_taken" validate:"gte=0"`
	Detail    string           `json:"detail"`
}

// errorPayload is the body FastAPI-style backends send with a failure.
type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validatePayload checks v against its struct tags and returns a readable
// summary of every violated field.
func validatePayload(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// decodeInto unmarshals and validates a success body for endpoint.
func decodeInto(endpoint string, body json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: "unexpected shape", Cause: err}
	}
	if err := validatePayload(v); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: "schema violation", Cause: err}
	}
	return nil
}

// parseDetail extracts a human-readable detail from an error body.
// String details are returned verbatim; structured ones as compact JSON.
func parseDetail(body []byte) string {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil || len(p.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Detail, &s); err == nil {
		return s
	}
	if string(p.Detail) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, p.Detail); err != nil {
		return string(p.Detail)
	}
	return buf.String()
}
