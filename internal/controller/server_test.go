// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newScenarioServer fakes the backend: /ingest reports 3 chunks, /chat
// answers the deadline question and fails anything containing "empty".
func newScenarioServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
	})
	mux.HandleFunc("/ingest", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "indexed", "chunks": 3})
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Question == "empty please" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "index empty"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":     "March 15th [1]",
			"citations":  []map[string]interface{}{{"id": 1, "text": "The deadline is March 15th."}},
			"time_taken": 0.1,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
