// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/model"
)

// ResetDoneMsg carries the outcome of the start-of-session reset.
type ResetDoneMsg struct {
	Outcome controller.Outcome[struct{}]
}

// IngestDoneMsg carries the outcome of an ingestion.
type IngestDoneMsg struct {
	Pending *controller.PendingIngest
	Outcome controller.Outcome[model.IngestResult]
}

// ChatDoneMsg carries the outcome of a question.
type ChatDoneMsg struct {
	Pending *controller.PendingChat
	Outcome controller.Outcome[model.ChatResponse]
}

// ExportDoneMsg reports where a transcript was written.
type ExportDoneMsg struct {
	Path string
	Err  error
}
