// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the question-answering backend.
//
// Every call is a single JSON POST to the backend base URL plus an endpoint
// path. There are no retries: one attempt per call, and every failure is
// reported as one of three typed errors.
//
// # Error Types
//
//   - ConnectionError: the exchange never completed (refused, timed out, cancelled)
//   - ServerError: non-2xx status, with the backend's "detail" when present
//   - MalformedResponseError: a 2xx body that is not JSON or fails its schema
//
// # Endpoints
//
//	POST /reset   (no body)            -> ignored
//	POST /ingest  {"text": ...}        -> {"chunks": N}
//	POST /chat    {"question": ...}    -> {"answer": ..., "citations": [...], "time_taken": s}
//
// # Usage
//
//	client := backend.NewClientWithConfig(&backend.Config{BaseURL: "http://127.0.0.1:8000"})
//	resp, err := client.Chat(ctx, "When is the deadline?")
//	var srvErr *backend.ServerError
//	if errors.As(err, &srvErr) {
//	    fmt.Println(srvErr.Detail)
//	}
package backend
