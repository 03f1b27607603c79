// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller drives the two stateful operations of a session,
// adding text to the knowledge base and asking a question, plus the
// one-time reset at startup.
//
// Each operation runs in three phases so an event loop can keep the
// network call off its own goroutine:
//
//  1. Begin/Submit runs synchronously: it validates input, takes the
//     operation's in-flight guard, and records the optimistic state
//     (status line, chat placeholder).
//  2. Run performs the backend call and returns an Outcome. It may run on
//     any goroutine.
//  3. Settle applies the Outcome to the session and releases the guard.
//     It runs exactly once per accepted request, whatever the result.
//
// Ingest and Send chain the three phases for callers that can block.
//
// Each controller has a guard of capacity one. A request made while the
// previous one is still unsettled is rejected with ErrBusy; nothing is
// queued and nothing is cancelled.
package controller
