// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app is the ragdesk terminal interface: a Bubble Tea program with a
knowledge pane on the left and a chat pane on the right.

# Layout

  - Header: product name, backend URL, session id
  - Knowledge pane: corpus textarea, [ Ingest ] button, knowledge base preview
  - Chat pane: chat log viewport, question input, [ Send ] button
  - Status bar: one line per region (reset, ingest, chat)
  - Help line

# Event Flow

Every backend operation runs in three steps. The synchronous step
(Begin/Submit) runs inside Update and applies the optimistic transition.
The network step runs in a tea.Cmd and returns a *DoneMsg. Update then
calls Settle with the outcome. All session state changes therefore happen
on the Bubble Tea event loop.

The Enter key, the Send button and the Space key on a focused button all
call the same submit functions, so the controllers' single in-flight
guard covers every entry point.
*/
package app
