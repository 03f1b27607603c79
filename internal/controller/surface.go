// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/session"
)

// Store is the session state holder the controllers transition.
type Store interface {
	Update(fn session.Transition) (session.State, error)
}

// Ingester performs an ingestion call.
type Ingester interface {
	Ingest(ctx context.Context, text string) (model.IngestResult, error)
}

// Asker performs a chat call.
type Asker interface {
	Chat(ctx context.Context, question string) (model.ChatResponse, error)
}

// Resetter clears the backend's knowledge store.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResponseRenderer turns an answer into display markup.
type ResponseRenderer interface {
	Render(resp model.ChatResponse) string
}

// InputSurface is the part of a display that owns an input field.
type InputSurface interface {
	ClearInput()
}

// ChatSurface is the display for the chat log.
type ChatSurface interface {
	InputSurface
	ScrollToLatest()
}
