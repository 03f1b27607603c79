// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// MessageStatus is the lifecycle state of a chat message.
type MessageStatus string

const (
	StatusPending  MessageStatus = "pending"
	StatusComplete MessageStatus = "complete"
	StatusFailed   MessageStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s MessageStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// ErrTerminalMessage is returned when settling a message that already settled.
var ErrTerminalMessage = errors.New("message already settled")

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// ChatMessage is a single entry in the session's chat log.
// Values are copied, never shared; transitions return a new value.
type ChatMessage struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Text      string        `json:"text"`
	Status    MessageStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`

	// TimeTaken is the backend-reported answer latency in seconds.
	TimeTaken float64 `json:"time_taken,omitempty"`
}

// NewUserMessage creates a complete user message.
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Text:      text,
		Status:    StatusComplete,
		Timestamp: time.Now(),
	}
}

// NewPendingAssistantMessage creates the placeholder shown while an answer
// is awaited.
func NewPendingAssistantMessage(placeholder string) ChatMessage {
	return ChatMessage{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Text:      placeholder,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return uuid.NewString()
}

// Complete returns a copy of m settled as complete.
func (m ChatMessage) Complete(text string, timeTaken float64) (ChatMessage, error) {
	if m.Status.IsTerminal() {
		return m, fmt.Errorf("%w: %s is %s", ErrTerminalMessage, m.ID, m.Status)
	}
	m.Text = text
	m.Status = StatusComplete
	m.TimeTaken = timeTaken
	return m, nil
}

// Fail returns a copy of m settled as failed.
func (m ChatMessage) Fail(text string) (ChatMessage, error) {
	if m.Status.IsTerminal() {
		return m, fmt.Errorf("%w: %s is %s", ErrTerminalMessage, m.ID, m.Status)
	}
	m.Text = text
	m.Status = StatusFailed
	return m, nil
}

// IsPending reports whether the message still awaits an answer.
func (m ChatMessage) IsPending() bool {
	return m.Status == StatusPending
}
