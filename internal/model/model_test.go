// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Status != StatusComplete {
		t.Errorf("Status = %q, want 'complete'", msg.Status)
	}
	if msg.ID == "" {
		t.Error("ID should not be empty")
	}
}

func TestNewPendingAssistantMessage(t *testing.T) {
	msg := NewPendingAssistantMessage("Thinking...")

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want 'assistant'", msg.Role)
	}
	if !msg.IsPending() {
		t.Errorf("Status = %q, want 'pending'", msg.Status)
	}
	if msg.Text != "Thinking..." {
		t.Errorf("Text = %q, want 'Thinking...'", msg.Text)
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate id %q after %d messages", id, i)
		}
		seen[id] = true
	}
}

func TestChatMessage_Transitions(t *testing.T) {
	pending := NewPendingAssistantMessage("Thinking...")

	done, err := pending.Complete("answer", 1.5)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != StatusComplete || done.Text != "answer" || done.TimeTaken != 1.5 {
		t.Errorf("Complete() = %+v", done)
	}
	if pending.Status != StatusPending {
		t.Error("Complete() must not mutate the receiver")
	}
	if done.ID != pending.ID {
		t.Error("Complete() must keep the message ID")
	}

	if _, err := done.Fail("late"); !errors.Is(err, ErrTerminalMessage) {
		t.Errorf("Fail() on complete message error = %v, want ErrTerminalMessage", err)
	}

	failed, err := pending.Fail("Connection Error: refused")
	if err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if _, err := failed.Complete("x", 0); !errors.Is(err, ErrTerminalMessage) {
		t.Errorf("Complete() on failed message error = %v, want ErrTerminalMessage", err)
	}
}

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("other"), "other"},
	}
	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

// =============================================================================
// CITATION TESTS
// =============================================================================

func TestCitationID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  CitationID
	}{
		{"integer", `{"id": 1, "text": "a"}`, "1"},
		{"string", `{"id": "doc-7", "text": "a"}`, "doc-7"},
		{"null", `{"id": null, "text": "a"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Citation
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unmarshal error = %v", err)
			}
			if c.ID != tt.want {
				t.Errorf("ID = %q, want %q", c.ID, tt.want)
			}
		})
	}

	var c Citation
	if err := json.Unmarshal([]byte(`{"id": true}`), &c); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestCitationID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Citation{{ID: "3", Text: "x"}, {ID: "a", Text: "y"}})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := `[{"id":3,"text":"x"},{"id":"a","text":"y"}]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestChatResponse_Latency(t *testing.T) {
	r := ChatResponse{TimeTaken: 1.25}
	if got := r.Latency(); got != 1250*time.Millisecond {
		t.Errorf("Latency() = %v, want 1.25s", got)
	}
}

func TestKnowledgeLogEntry_Header(t *testing.T) {
	e := KnowledgeLogEntry{Timestamp: time.Date(2025, 3, 1, 9, 5, 7, 0, time.UTC), Text: "x"}
	if got := e.Header(); got != "[Update @ 09:05:07]" {
		t.Errorf("Header() = %q", got)
	}
}
