// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one operator session.
//
// A State value is never modified in place. Every change goes through a
// transition that returns a new State, and the Store swaps the current
// snapshot under a mutex. Views render from a snapshot, so what is shown
// is always a projection of one consistent state.
//
// # Contents
//
//   - the chat log (append-only, pending entries settle exactly once)
//   - the knowledge log (text successfully indexed this session)
//   - in-flight flags for chat and ingestion
//   - the latest status line per region
//
// # Usage
//
//	store := session.NewStore()
//	state, err := store.Update(func(s session.State) (session.State, error) {
//	    return s.AppendMessages(model.NewUserMessage("hi")), nil
//	})
package session
