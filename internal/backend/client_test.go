// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server running handler and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// =============================================================================
// CALL TESTS
// =============================================================================

func TestCall_PostsJSONBody(t *testing.T) {
	var gotMethod, gotType, gotPath string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, `{"ok": true}`)
	})

	raw, err := client.Call(context.Background(), "/ingest", IngestRequest{Text: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/ingest", gotPath)
	assert.Equal(t, map[string]string{"text": "hello"}, gotBody)
}

func TestCall_NilPayloadSendsNoBody(t *testing.T) {
	var bodyLen int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodyLen = len(data)
		writeJSON(w, http.StatusOK, `{"status": "reset"}`)
	})

	_, err := client.Call(context.Background(), EndpointReset, nil)
	require.NoError(t, err)
	assert.Zero(t, bodyLen)
}

func TestCall_ServerErrorWithDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail": "index empty"}`)
	})

	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{Question: "q"})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusInternalServerError, srvErr.StatusCode)
	assert.Equal(t, "index empty", srvErr.Detail)
	assert.Equal(t, ErrTypeServer, Classify(err))
	assert.Equal(t, "index empty", Detail(err))
}

func TestCall_ServerErrorWithoutDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{Question: "q"})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Empty(t, srvErr.Detail)
	assert.Contains(t, srvErr.Error(), "Bad Gateway")
}

func TestCall_StructuredDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail": [ {"msg": "field required"} ]}`)
	})

	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{})
	assert.Equal(t, `[{"msg":"field required"}]`, Detail(err))
}

func TestCall_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "not json")
	})

	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{Question: "q"})
	var badErr *MalformedResponseError
	require.ErrorAs(t, err, &badErr)
	assert.Equal(t, ErrTypeMalformed, Classify(err))
}

func TestCall_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClientWithConfig(&Config{BaseURL: url})
	_, err := client.Call(context.Background(), EndpointIngest, IngestRequest{Text: "x"})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "backend unreachable", connErr.Message)
	assert.Equal(t, ErrTypeConnection, Classify(err))
}

func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClientWithConfig(&Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{Question: "slow"})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "request timed out", connErr.Message)
}

func TestCall_Cancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Call(ctx, EndpointChat, ChatRequest{Question: "q"})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "request cancelled", connErr.Message)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCall_SingleAttempt(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusServiceUnavailable, `{"detail": "busy"}`)
	})

	_, err := client.Call(context.Background(), EndpointChat, ChatRequest{Question: "q"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&Config{BaseURL: "http://example.test:9000/"})
	assert.Equal(t, "http://example.test:9000", c.BaseURL())

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

// =============================================================================
// TYPED OPERATION TESTS
// =============================================================================

func TestIngest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status": "indexed", "chunks": 3}`)
	})

	res, err := client.Ingest(context.Background(), "Project Titan memo")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, "indexed", res.Status)
}

func TestIngest_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing chunks", `{"status": "indexed"}`},
		{"negative chunks", `{"chunks": -1}`},
		{"chunks not a number", `{"chunks": "three"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			_, err := client.Ingest(context.Background(), "x")
			var badErr *MalformedResponseError
			assert.ErrorAs(t, err, &badErr)
		})
	}
}

func TestChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "When is the deadline?", req.Question)
		writeJSON(w, http.StatusOK, `{
			"answer": "March 15th [1].",
			"citations": [{"id": 1, "text": "The deadline is March 15th."}],
			"time_taken": 0.42
		}`)
	})

	resp, err := client.Chat(context.Background(), "When is the deadline?")
	require.NoError(t, err)
	assert.Equal(t, "March 15th [1].", resp.Answer)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "1", resp.Citations[0].ID.String())
	assert.InDelta(t, 0.42, resp.TimeTaken, 1e-9)
}

func TestChat_MissingAnswerKeepsDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"detail": "no documents indexed"}`)
	})

	_, err := client.Chat(context.Background(), "q")
	var badErr *MalformedResponseError
	require.ErrorAs(t, err, &badErr)
	assert.Equal(t, "no documents indexed", badErr.Detail)
	assert.Equal(t, "no documents indexed", Detail(err))
}

func TestChat_CitationWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"answer": "a", "citations": [{"text": "orphan"}]}`)
	})

	_, err := client.Chat(context.Background(), "q")
	var badErr *MalformedResponseError
	assert.ErrorAs(t, err, &badErr)
}

func TestReset_IgnoresBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, client.Reset(context.Background()))
}

func TestReset_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail": "db locked"}`)
	})
	err := client.Reset(context.Background())
	assert.Equal(t, ErrTypeServer, Classify(err))
}
