// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the backend client,
// the controllers, and the UI.
//
// # Key Types
//
//   - ChatMessage: One entry in the chat log (user question or assistant answer)
//   - MessageStatus: pending, complete or failed; terminal states are final
//   - Citation: Source chunk reference returned with an answer
//   - ChatResponse: Decoded /chat payload (answer, citations, time taken)
//   - IngestResult: Decoded /ingest payload (chunk count)
//   - KnowledgeLogEntry: Text the operator successfully indexed this session
//
// # Usage
//
//	q := model.NewUserMessage("What is the deadline?")
//	a := model.NewPendingAssistantMessage("Thinking...")
//	done, err := a.Complete("The deadline is March 15th.", 1.2)
package model
