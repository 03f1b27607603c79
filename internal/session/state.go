// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/status"
)

// ErrUnknownMessage is returned when settling a message not in the log.
var ErrUnknownMessage = errors.New("unknown message")

// State is an immutable snapshot of a session.
type State struct {
	messages  []model.ChatMessage
	knowledge []model.KnowledgeLogEntry
	statuses  map[status.Region]string

	ChatInFlight   bool
	IngestInFlight bool

	// Version increases by one with every transition.
	Version uint64
}

// Transition derives a new State from the current one.
type Transition func(State) (State, error)

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the chat log in submission order.
func (s State) Messages() []model.ChatMessage {
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of chat log entries.
func (s State) MessageCount() int {
	return len(s.messages)
}

// Message looks up a chat log entry by ID.
func (s State) Message(id string) (model.ChatMessage, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.messages[i], true
	}
	return model.ChatMessage{}, false
}

// Knowledge returns a copy of the knowledge log.
func (s State) Knowledge() []model.KnowledgeLogEntry {
	out := make([]model.KnowledgeLogEntry, len(s.knowledge))
	copy(out, s.knowledge)
	return out
}

// Status returns the latest status line for region, or "".
func (s State) Status(region status.Region) string {
	return s.statuses[region]
}

// PendingCount returns how many assistant messages await an answer.
func (s State) PendingCount() int {
	n := 0
	for _, m := range s.messages {
		if m.IsPending() {
			n++
		}
	}
	return n
}

func (s State) indexOf(id string) int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// AppendMessages returns a State with msgs added to the end of the chat log.
func (s State) AppendMessages(msgs ...model.ChatMessage) State {
	next := make([]model.ChatMessage, len(s.messages), len(s.messages)+len(msgs))
	copy(next, s.messages)
	s.messages = append(next, msgs...)
	return s
}

// SettleMessage replaces the pending entry with the same ID by msg.
// Settling an unknown or already settled entry is an error.
func (s State) SettleMessage(msg model.ChatMessage) (State, error) {
	i := s.indexOf(msg.ID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.ID)
	}
	if s.messages[i].Status.IsTerminal() {
		return s, fmt.Errorf("%w: %s", model.ErrTerminalMessage, msg.ID)
	}
	next := make([]model.ChatMessage, len(s.messages))
	copy(next, s.messages)
	next[i] = msg
	s.messages = next
	return s, nil
}

// AppendKnowledge returns a State with entry added to the knowledge log.
func (s State) AppendKnowledge(entry model.KnowledgeLogEntry) State {
	next := make([]model.KnowledgeLogEntry, len(s.knowledge), len(s.knowledge)+1)
	copy(next, s.knowledge)
	s.knowledge = append(next, entry)
	return s
}

// WithStatus returns a State whose region shows message.
func (s State) WithStatus(region status.Region, message string) State {
	next := make(map[status.Region]string, len(s.statuses)+1)
	for k, v := range s.statuses {
		next[k] = v
	}
	next[region] = message
	s.statuses = next
	return s
}

// WithChatInFlight sets the chat in-flight flag.
func (s State) WithChatInFlight(v bool) State {
	s.ChatInFlight = v
	return s
}

// WithIngestInFlight sets the ingestion in-flight flag.
func (s State) WithIngestInFlight(v bool) State {
	s.IngestInFlight = v
	return s
}
